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

//go:build darwin

package mounts

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// darwinDetector implements Detector for macOS by watching the mount
// namespace directory with fsnotify.
type darwinDetector struct {
	watcher   *fsnotify.Watcher
	events    chan Event
	stopChan  chan struct{}
	mountRoot string
	wg        sync.WaitGroup
	stopOnce  sync.Once
}

// NewDetector creates a macOS mount detector watching mountRoot (normally /Volumes).
func NewDetector(mountRoot string) (Detector, error) {
	return &darwinDetector{
		events:    make(chan Event, 10),
		stopChan:  make(chan struct{}),
		mountRoot: mountRoot,
	}, nil
}

func (d *darwinDetector) Events() <-chan Event {
	return d.events
}

func (d *darwinDetector) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	d.watcher = watcher

	if err := d.watcher.Add(d.mountRoot); err != nil {
		_ = d.watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", d.mountRoot, err)
	}

	d.wg.Add(1)
	go d.watchFileSystemEvents()

	log.Debug().Str("root", d.mountRoot).Msg("started watching for mount events")

	return nil
}

func (d *darwinDetector) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopChan)
		if d.watcher != nil {
			_ = d.watcher.Close()
		}
		d.wg.Wait()
		close(d.events)
	})
}

func (d *darwinDetector) watchFileSystemEvents() {
	defer d.wg.Done()

	// Debounce timer to coalesce the burst of events a single mount produces
	debounceTimer := time.NewTimer(0)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}
	pendingChecks := make(map[string]bool)

	for {
		select {
		case <-d.stopChan:
			debounceTimer.Stop()
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}

			// Only direct children of the mount root are mount points
			if filepath.Dir(event.Name) != d.mountRoot {
				continue
			}

			pendingChecks[event.Name] = true
			debounceTimer.Reset(100 * time.Millisecond)

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("fsnotify error")

		case <-debounceTimer.C:
			for path := range pendingChecks {
				d.checkVolume(path)
			}
			pendingChecks = make(map[string]bool)
		}
	}
}

func (d *darwinDetector) checkVolume(mountPath string) {
	info, err := os.Stat(mountPath)
	mounted := err == nil && info.IsDir()
	if err != nil && !os.IsNotExist(err) {
		return
	}

	select {
	case d.events <- Event{MountPath: mountPath, Mounted: mounted}:
		log.Debug().
			Str("mount_path", mountPath).
			Bool("mounted", mounted).
			Msg("mount table change detected")
	case <-d.stopChan:
	}
}
