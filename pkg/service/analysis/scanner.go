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

// Package analysis locates the largest files on a volume with a bounded,
// time-boxed, cancellable background scan.
package analysis

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"time"

	"github.com/DriveDockProject/drivedock-core/pkg/api/models"
	"github.com/charlievieth/fastwalk"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// TopFileCount is the bounded size of the heavy-file list.
const TopFileCount = 5

// reservedSubtrees are never descended into. They hold system metadata whose
// sizes are meaningless to the user and whose traversal can be very slow.
var reservedSubtrees = map[string]bool{
	".Trashes":                  true,
	".Spotlight-V100":           true,
	".fseventsd":                true,
	".DocumentRevisions-V100":   true,
	".TemporaryItems":           true,
	"System Volume Information": true,
}

// Scanner finds the largest regular files under a volume root.
type Scanner struct {
	clock       clockwork.Clock
	budget      time.Duration
	minFileSize int64
}

// NewScanner creates a Scanner. budget is the wall-clock traversal limit;
// minFileSize is the smallest file size kept (1 MiB by default).
func NewScanner(clock clockwork.Clock, budget time.Duration, minFileSize int64) *Scanner {
	return &Scanner{
		clock:       clock,
		budget:      budget,
		minFileSize: minFileSize,
	}
}

// Scan traverses the tree rooted at root and returns up to TopFileCount
// files in descending size order. The scan is time-boxed: on budget expiry
// it stops and returns whatever accumulated so far. It never returns an
// error; unreadable entries are skipped. Cancellation via ctx is observed
// at traversal checkpoints and also yields the partial result (the caller
// decides whether to discard it).
func (s *Scanner) Scan(ctx context.Context, root string) []models.FileInfo {
	deadline := s.clock.Now().Add(s.budget)
	top := make([]models.FileInfo, 0, TopFileCount)

	conf := fastwalk.Config{
		// One worker keeps enumeration order stable so size ties resolve
		// first-seen
		NumWorkers: 1,
		Sort:       fastwalk.SortLexical,
	}

	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("scan entry error, skipping")
			return nil
		}

		// Traversal checkpoint: cancellation and budget are only observed here
		if ctx.Err() != nil {
			return filepath.SkipAll
		}
		if s.clock.Now().After(deadline) {
			log.Debug().Str("root", root).Msg("scan budget expired, returning partial result")
			return filepath.SkipAll
		}

		if d.IsDir() {
			if reservedSubtrees[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		size := info.Size()
		if size < s.minFileSize {
			return nil
		}

		// Bounded top-K admission: admit when the list has room or the
		// candidate beats the smallest kept entry. Equal sizes lose, which
		// keeps the earliest-seen file on ties.
		if len(top) < TopFileCount || size > top[len(top)-1].SizeBytes {
			top = append(top, models.NewFileInfo(path, d.Name(), size))
			sort.SliceStable(top, func(i, j int) bool {
				return top[i].SizeBytes > top[j].SizeBytes
			})
			if len(top) > TopFileCount {
				top = top[:TopFileCount]
			}
		}

		return nil
	})
	// SkipAll is how the checkpoints stop the walk, not an anomaly
	if err != nil && !errors.Is(err, filepath.SkipAll) {
		log.Debug().Err(err).Str("root", root).Msg("scan terminated early")
	}

	return top
}
