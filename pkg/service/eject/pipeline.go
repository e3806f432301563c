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

// Package eject drives the clean → unmount → verify → report state machine
// for one volume at a time. Distinct mount paths never contend, so multiple
// pipelines may run concurrently.
package eject

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/DriveDockProject/drivedock-core/pkg/api/models"
	"github.com/DriveDockProject/drivedock-core/pkg/api/notifications"
	"github.com/DriveDockProject/drivedock-core/pkg/assets"
	"github.com/DriveDockProject/drivedock-core/pkg/audio"
	"github.com/DriveDockProject/drivedock-core/pkg/config"
	"github.com/DriveDockProject/drivedock-core/pkg/database/statsdb"
	"github.com/DriveDockProject/drivedock-core/pkg/helpers"
	"github.com/DriveDockProject/drivedock-core/pkg/platforms"
	"github.com/DriveDockProject/drivedock-core/pkg/service/state"
	"github.com/dustin/go-humanize"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// settleDelay is the pause after a successful unmount before re-querying the
// mount table, so the detached volume drops out of the list.
const settleDelay = 1200 * time.Millisecond

// Prober resolves which processes hold open handles under a mount path.
// Satisfied by procs.Probe.
type Prober interface {
	BusyProcesses(ctx context.Context, mountPath string) []string
}

// Pipeline coordinates cleanup, unmount and failure diagnosis for volumes.
type Pipeline struct {
	registry *state.Registry
	stats    *statsdb.Store
	probe    Prober
	platform platforms.Platform
	cleaner  *Cleaner
	cfg      *config.Instance
	player   audio.Player
	clock    clockwork.Clock
	ns       chan<- models.Notification
	wg       sync.WaitGroup
}

// NewPipeline wires an eject pipeline. ns receives one notification per
// terminal outcome.
func NewPipeline(
	registry *state.Registry,
	stats *statsdb.Store,
	probe Prober,
	platform platforms.Platform,
	cleaner *Cleaner,
	cfg *config.Instance,
	player audio.Player,
	clock clockwork.Clock,
	ns chan<- models.Notification,
) *Pipeline {
	return &Pipeline{
		registry: registry,
		stats:    stats,
		probe:    probe,
		platform: platform,
		cleaner:  cleaner,
		cfg:      cfg,
		player:   player,
		clock:    clock,
		ns:       ns,
	}
}

// Eject runs the full pipeline for the volume at mountPath. A volume already
// mid-pipeline (or rested in busy/error) is left alone; Retry and ForceEject
// are the sanctioned re-entry points because they reset status first.
func (p *Pipeline) Eject(ctx context.Context, mountPath string, force bool) {
	vol, ok := p.registry.Get(mountPath)
	if !ok {
		log.Warn().Str("path", mountPath).Msg("eject requested for unknown volume")
		return
	}

	if !p.registry.BeginEject(mountPath) {
		log.Info().Str("path", mountPath).Str("status", string(vol.Status)).
			Msg("eject ignored, volume not idle")
		return
	}

	// Cleaning. Freed bytes are persisted immediately, even if the unmount
	// below fails.
	freed := p.cleaner.Clean(ctx, mountPath, p.cfg.JunkNames(), p.cfg.JunkPrefix())
	if freed > 0 {
		if err := p.stats.AddCleanedBytes(uint64(freed)); err != nil {
			log.Warn().Err(err).Msg("failed to persist cleaned bytes")
		}
	}
	log.Info().Str("path", mountPath).Int64("bytes", freed).Msg("cleanup finished")

	p.registry.SetEjecting(mountPath)

	if err := p.platform.Unmount(ctx, mountPath, force); err != nil {
		p.reportFailure(ctx, &vol, freed, err)
		return
	}

	p.reportSuccess(ctx, &vol, freed)
}

// Retry resets a rested volume to idle, clears its blocking process list and
// re-enters the pipeline with a graceful unmount.
func (p *Pipeline) Retry(ctx context.Context, mountPath string) {
	p.registry.ResetForRetry(mountPath)
	p.Eject(ctx, mountPath, false)
}

// ForceEject resets a rested volume to idle, clears its blocking process
// list and re-enters the pipeline with a forced unmount.
func (p *Pipeline) ForceEject(ctx context.Context, mountPath string) {
	p.registry.ResetForRetry(mountPath)
	p.Eject(ctx, mountPath, true)
}

// EjectAll ejects every currently idle volume, each on its own goroutine.
// Non-idle volumes are untouched. Returns when all pipelines finished.
func (p *Pipeline) EjectAll(ctx context.Context) {
	for _, vol := range p.registry.Snapshot() {
		if vol.Status != state.StatusIdle {
			continue
		}
		p.wg.Add(1)
		go func(path string) {
			defer p.wg.Done()
			p.Eject(ctx, path, false)
		}(vol.MountPath)
	}
	p.wg.Wait()
}

func (p *Pipeline) reportSuccess(ctx context.Context, vol *state.Volume, freed int64) {
	p.registry.SetEjected(vol.MountPath)

	helpers.PlayConfiguredSound(p.player, p.cfg.EjectSound(), p.cfg.AudioFeedback(),
		assets.EjectSound, "eject")

	body := "Safe to unplug."
	if freed > 0 {
		body = fmt.Sprintf("Safe to unplug. Cleaned %s of junk.", humanize.IBytes(uint64(freed)))
	}
	p.platform.Notify(ctx, fmt.Sprintf("Ejected %s", vol.Name), body)

	notifications.VolumeEjected(p.ns, models.EjectResult{
		MountPath:    vol.MountPath,
		Name:         vol.Name,
		CleanedBytes: freed,
	})

	// Let the mount table settle before the refresh that drops the volume
	p.clock.AfterFunc(settleDelay, func() {
		p.registry.Refresh(context.Background())
	})

	log.Info().Str("path", vol.MountPath).Msg("volume ejected")
}

func (p *Pipeline) reportFailure(ctx context.Context, vol *state.Volume, freed int64, unmountErr error) {
	holders := p.probe.BusyProcesses(ctx, vol.MountPath)

	var body string
	if len(holders) > 0 {
		p.registry.SetBusy(vol.MountPath, holders)
		body = fmt.Sprintf("In use by %s.", summarizeHolders(holders))
	} else {
		p.registry.SetError(vol.MountPath, fmt.Sprintf("eject failed: %v", unmountErr))
		body = "The volume could not be ejected."
	}

	helpers.PlayConfiguredSound(p.player, p.cfg.FailSound(), p.cfg.AudioFeedback(),
		assets.FailSound, "fail")

	p.platform.Notify(ctx, fmt.Sprintf("Could not eject %s", vol.Name), body)

	notifications.VolumeEjectFailed(p.ns, models.EjectResult{
		MountPath:         vol.MountPath,
		Name:              vol.Name,
		Error:             unmountErr.Error(),
		BlockingProcesses: holders,
		CleanedBytes:      freed,
	})

	log.Warn().Err(unmountErr).Str("path", vol.MountPath).
		Strs("holders", holders).Msg("eject failed")
}

// summarizeHolders renders at most three process names for notification text.
func summarizeHolders(holders []string) string {
	if len(holders) <= 3 {
		return strings.Join(holders, ", ")
	}
	return strings.Join(holders[:3], ", ") + ", …"
}
