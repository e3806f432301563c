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

package mac

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/DriveDockProject/drivedock-core/pkg/platforms"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/disk"
)

// macOS statfs mount flags.
const (
	mntLocal      = 0x00001000 // local filesystem
	mntDontBrowse = 0x00100000 // don't show in GUI
	mntRemovable  = 0x00000200 // removable media
)

// ListMounts enumerates volumes mounted under /Volumes. Volumes the Finder
// would hide (MNT_DONTBROWSE) and network mounts are dropped here; the
// volume registry applies the remaining filter rules.
func (*Platform) ListMounts(ctx context.Context) ([]platforms.MountInfo, error) {
	entries, err := os.ReadDir(volumesRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", volumesRoot, err)
	}

	mounts := make([]platforms.MountInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && entry.Type()&os.ModeSymlink == 0 {
			continue
		}

		mountPath := filepath.Join(volumesRoot, entry.Name())

		var stat syscall.Statfs_t
		if err := syscall.Statfs(mountPath, &stat); err != nil {
			log.Debug().Err(err).Str("path", mountPath).Msg("statfs failed, skipping volume")
			continue
		}

		// Symlinked entries (e.g. "Macintosh HD" -> "/") resolve to a
		// mount point outside /Volumes.
		mountedOn := cString(stat.Mntonname[:])
		if mountedOn != mountPath {
			continue
		}

		if stat.Flags&mntLocal == 0 || stat.Flags&mntDontBrowse != 0 {
			continue
		}

		removable := stat.Flags&mntRemovable != 0

		usage, err := disk.UsageWithContext(ctx, mountPath)
		if err != nil {
			log.Debug().Err(err).Str("path", mountPath).Msg("usage query failed, skipping volume")
			continue
		}

		mounts = append(mounts, platforms.MountInfo{
			ID:         fmt.Sprintf("%x-%x", stat.Fsid.Val[0], stat.Fsid.Val[1]),
			Path:       mountPath,
			Name:       entry.Name(),
			Device:     cString(stat.Mntfromname[:]),
			TotalBytes: usage.Total,
			FreeBytes:  usage.Free,
			Internal:   !removable,
			Removable:  removable,
			// Anything the Finder shows under /Volumes carries an eject
			// affordance; diskutil decides the rest at unmount time.
			Ejectable: true,
		})
	}

	return mounts, nil
}

const volumesRoot = "/Volumes"

func cString(b []int8) string {
	buf := make([]byte, len(b))
	for i, c := range b {
		buf[i] = byte(c)
	}
	return strings.TrimRight(string(buf), "\x00")
}
