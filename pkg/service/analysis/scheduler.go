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

package analysis

import (
	"context"
	"sync"

	"github.com/DriveDockProject/drivedock-core/pkg/api/models"
	"github.com/DriveDockProject/drivedock-core/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
)

// VolumeSink receives scan lifecycle updates. Implemented by the volume
// registry. The scheduler holds only id→task-handle associations, never
// volume data.
type VolumeSink interface {
	SetAnalyzing(mountPath string, analyzing bool)
	SetTopFiles(mountPath string, files []models.FileInfo)
}

// scanTask is the handle for one running scan. The pointer identity is the
// ownership token: a task may only drop its own map entry on exit.
type scanTask struct {
	cancel context.CancelFunc
}

// Scheduler owns one cancellable deep scan task per volume id.
type Scheduler struct {
	scanner *Scanner
	sink    VolumeSink
	tasks   map[string]*scanTask
	wg      sync.WaitGroup
	mu      syncutil.Mutex
}

// NewScheduler creates a Scheduler merging results into sink.
func NewScheduler(scanner *Scanner, sink VolumeSink) *Scheduler {
	return &Scheduler{
		scanner: scanner,
		sink:    sink,
		tasks:   make(map[string]*scanTask),
	}
}

// Schedule starts a deep scan for the volume with the given id, mounted at
// mountPath. Exactly one task runs per id: scheduling while one is in
// flight is a no-op. A cancelled task merges nothing.
func (s *Scheduler) Schedule(ctx context.Context, id, mountPath string) {
	s.mu.Lock()
	if _, running := s.tasks[id]; running {
		s.mu.Unlock()
		return
	}
	taskCtx, cancel := context.WithCancel(ctx)
	task := &scanTask{cancel: cancel}
	s.tasks[id] = task
	s.wg.Add(1)
	s.mu.Unlock()

	s.sink.SetAnalyzing(mountPath, true)
	log.Debug().Str("id", id).Str("path", mountPath).Msg("scheduled deep scan")

	go func() {
		defer s.wg.Done()
		defer cancel()

		files := s.scanner.Scan(taskCtx, mountPath)

		s.release(id, task)

		if taskCtx.Err() != nil {
			// Volume disappeared mid-scan; its state is gone, mutate nothing
			log.Debug().Str("id", id).Msg("deep scan cancelled")
			return
		}

		s.sink.SetTopFiles(mountPath, files)
		log.Debug().Str("id", id).Int("files", len(files)).Msg("deep scan complete")
	}()
}

// release drops the map entry for id, but only while task still owns it.
// A volume can be removed and re-added while the old task is draining; the
// old task's exit must not untrack its replacement.
func (s *Scheduler) release(id string, task *scanTask) {
	s.mu.Lock()
	if s.tasks[id] == task {
		delete(s.tasks, id)
	}
	s.mu.Unlock()
}

// Cancel stops the scan task for id, if any.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	task, ok := s.tasks[id]
	if ok {
		delete(s.tasks, id)
	}
	s.mu.Unlock()

	if ok {
		task.cancel()
	}
}

// CancelAll stops every running scan task.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(s.tasks))
	for id, task := range s.tasks {
		cancels = append(cancels, task.cancel)
		delete(s.tasks, id)
	}
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// Stop cancels all tasks and waits for their goroutines to finish.
func (s *Scheduler) Stop() {
	s.CancelAll()
	s.wg.Wait()
}
