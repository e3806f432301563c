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

package eject

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Cleaner deletes known transient metadata from a volume before eject.
// Deletion is best-effort: per-item failures are logged and skipped, and a
// partially-cleaned volume is still ejectable.
type Cleaner struct {
	fs afero.Fs
}

// NewCleaner creates a Cleaner operating on the given filesystem.
func NewCleaner(fs afero.Fs) *Cleaner {
	return &Cleaner{fs: fs}
}

// Clean recursively deletes entries under root whose base name matches one
// of junkNames exactly or carries junkPrefix, and returns the total bytes
// freed. Matching directories are removed whole, their contents counted.
func (c *Cleaner) Clean(ctx context.Context, root string, junkNames []string, junkPrefix string) int64 {
	exact := make(map[string]bool, len(junkNames))
	for _, name := range junkNames {
		exact[name] = true
	}

	var freed int64

	err := afero.Walk(c.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("cleanup walk error, skipping")
			return nil
		}
		if ctx.Err() != nil {
			return filepath.SkipAll
		}
		if path == root {
			return nil
		}

		name := info.Name()
		junk := exact[name] || (junkPrefix != "" && strings.HasPrefix(name, junkPrefix))
		if !junk {
			return nil
		}

		if info.IsDir() {
			size := c.subtreeSize(path)
			if err := c.fs.RemoveAll(path); err != nil {
				log.Warn().Err(err).Str("path", path).Msg("failed to delete junk directory")
				return filepath.SkipDir
			}
			freed += size
			log.Debug().Str("path", path).Int64("bytes", size).Msg("deleted junk directory")
			return filepath.SkipDir
		}

		size := info.Size()
		if err := c.fs.Remove(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to delete junk file")
			return nil
		}
		freed += size
		log.Debug().Str("path", path).Int64("bytes", size).Msg("deleted junk file")
		return nil
	})
	// SkipAll is the cancellation checkpoint stopping the walk, not an anomaly
	if err != nil && !errors.Is(err, filepath.SkipAll) {
		log.Debug().Err(err).Str("root", root).Msg("cleanup walk terminated early")
	}

	return freed
}

// subtreeSize sums regular file sizes under path. Errors are ignored; a
// partially-measured directory still gets deleted.
func (c *Cleaner) subtreeSize(path string) int64 {
	var total int64
	_ = afero.Walk(c.fs, path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil //nolint:nilerr // best-effort sizing
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total
}
