// DriveDock Core
// Copyright (c) 2026 The DriveDock Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of DriveDock Core.
//
// DriveDock Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// DriveDock Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with DriveDock Core.  If not, see <http://www.gnu.org/licenses/>.

// Package service assembles the core: registry, analysis scheduler, eject
// pipeline and stats store, fed by the OS mount event stream. Its exported
// methods are the only mutation entry points for the presentation layer.
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/DriveDockProject/drivedock-core/pkg/api/models"
	"github.com/DriveDockProject/drivedock-core/pkg/audio"
	"github.com/DriveDockProject/drivedock-core/pkg/config"
	"github.com/DriveDockProject/drivedock-core/pkg/database/statsdb"
	"github.com/DriveDockProject/drivedock-core/pkg/helpers/command"
	"github.com/DriveDockProject/drivedock-core/pkg/mounts"
	"github.com/DriveDockProject/drivedock-core/pkg/platforms"
	"github.com/DriveDockProject/drivedock-core/pkg/service/analysis"
	"github.com/DriveDockProject/drivedock-core/pkg/service/eject"
	"github.com/DriveDockProject/drivedock-core/pkg/service/procs"
	"github.com/DriveDockProject/drivedock-core/pkg/service/state"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// mountSettleDelay is the pause after an OS mount event before the second
// refresh that captures settled capacity figures.
const mountSettleDelay = 1500 * time.Millisecond

// Options override service collaborators, mainly for tests.
type Options struct {
	// Detector supplies mount events. Nil means no event stream; the
	// service still refreshes once at startup.
	Detector mounts.Detector
	// Clock defaults to the real clock.
	Clock clockwork.Clock
	// Player defaults to real audio output.
	Player audio.Player
	// Executor defaults to real command execution.
	Executor command.Executor
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
}

// Service is the running core.
type Service struct {
	platform  platforms.Platform
	cfg       *config.Instance
	registry  *state.Registry
	scheduler *analysis.Scheduler
	pipeline  *eject.Pipeline
	stats     *statsdb.Store
	detector  mounts.Detector
	ctx       context.Context
	cancel    context.CancelFunc
	// Notifications delivers one message per state change to consumers.
	Notifications <-chan models.Notification
	wg            sync.WaitGroup
}

// Start assembles and starts the core service.
func Start(pl platforms.Platform, cfg *config.Instance, opts Options) (*Service, error) {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Player == nil {
		opts.Player = audio.NewMalgoPlayer()
	}
	if opts.Executor == nil {
		opts.Executor = &command.RealExecutor{}
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	dataDir := pl.Settings().DataDir
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	stats, err := statsdb.Open(filepath.Join(dataDir, config.StatsFile))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	registry, ns := state.NewRegistry(pl)
	scanner := analysis.NewScanner(opts.Clock, cfg.ScanBudget(), cfg.ScanMinFileSize())
	scheduler := analysis.NewScheduler(scanner, registry)
	probe := procs.NewProbe(opts.Executor)
	cleaner := eject.NewCleaner(opts.Fs)
	pipeline := eject.NewPipeline(registry, stats, probe, pl, cleaner, cfg,
		opts.Player, opts.Clock, registry.Notifications)

	registry.SetHooks(
		func(id, mountPath string) { scheduler.Schedule(ctx, id, mountPath) },
		scheduler.Cancel,
	)

	svc := &Service{
		platform:      pl,
		cfg:           cfg,
		registry:      registry,
		scheduler:     scheduler,
		pipeline:      pipeline,
		stats:         stats,
		detector:      opts.Detector,
		ctx:           ctx,
		cancel:        cancel,
		Notifications: ns,
	}

	registry.Refresh(ctx)

	if svc.detector != nil {
		if err := svc.detector.Start(); err != nil {
			cancel()
			_ = stats.Close()
			return nil, fmt.Errorf("failed to start mount detector: %w", err)
		}
		svc.wg.Add(1)
		go svc.watchMounts(opts.Clock)
	}

	log.Info().Str("platform", pl.ID()).Msg("core service started")
	return svc, nil
}

// watchMounts feeds OS mount events into registry refreshes, each followed
// by one settle-delayed re-refresh.
func (s *Service) watchMounts(clock clockwork.Clock) {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case ev, ok := <-s.detector.Events():
			if !ok {
				return
			}
			log.Debug().Str("path", ev.MountPath).Bool("mounted", ev.Mounted).
				Msg("refreshing after mount event")
			s.registry.Refresh(s.ctx)
			clock.AfterFunc(mountSettleDelay, func() {
				select {
				case <-s.ctx.Done():
				default:
					s.registry.Refresh(s.ctx)
				}
			})
		}
	}
}

// Stop shuts the service down: detector first, then in-flight work.
func (s *Service) Stop() error {
	if s.detector != nil {
		s.detector.Stop()
	}
	s.cancel()
	s.scheduler.Stop()
	s.wg.Wait()
	if err := s.stats.Close(); err != nil {
		return err
	}
	log.Info().Msg("core service stopped")
	return nil
}

// Volumes returns a read snapshot of all tracked volumes.
func (s *Service) Volumes() []state.Volume {
	return s.registry.Snapshot()
}

// TotalCleanedBytes returns the persisted cumulative cleaned-bytes counter.
func (s *Service) TotalCleanedBytes() uint64 {
	return s.stats.TotalCleanedBytes()
}

// Refresh forces a volume discovery pass.
func (s *Service) Refresh() {
	s.registry.Refresh(s.ctx)
}

// Eject starts the eject pipeline for the volume at mountPath.
func (s *Service) Eject(mountPath string) {
	s.run(func() { s.pipeline.Eject(s.ctx, mountPath, false) })
}

// Retry re-enters the pipeline for a rested (busy/error) volume.
func (s *Service) Retry(mountPath string) {
	s.run(func() { s.pipeline.Retry(s.ctx, mountPath) })
}

// ForceEject re-enters the pipeline with a forced unmount.
func (s *Service) ForceEject(mountPath string) {
	s.run(func() { s.pipeline.ForceEject(s.ctx, mountPath) })
}

// EjectAll ejects every idle volume.
func (s *Service) EjectAll() {
	s.run(func() { s.pipeline.EjectAll(s.ctx) })
}

// Open opens the volume in the platform file manager.
func (s *Service) Open(mountPath string) {
	s.run(func() {
		if err := s.platform.Open(s.ctx, mountPath); err != nil {
			log.Warn().Err(err).Str("path", mountPath).Msg("failed to open volume")
		}
	})
}

// Reveal shows the path selected in the platform file manager.
func (s *Service) Reveal(path string) {
	s.run(func() {
		if err := s.platform.Reveal(s.ctx, path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to reveal path")
		}
	})
}

// run executes fn on a tracked goroutine so Stop can wait for it.
func (s *Service) run(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}
