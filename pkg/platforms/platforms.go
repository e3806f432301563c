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

// Package platforms defines the OS boundary of the core: the mount table,
// unmount primitives, file manager passthroughs and the user notification
// sink. Implementations live in subpackages; tests use a mock.
package platforms

import "context"

// Settings are static per-platform paths and conventions.
type Settings struct {
	// DataDir holds persistent state (stats database, config).
	DataDir string
	// TempDir holds logs and other disposable files.
	TempDir string
	// MountRoot is the namespace under which external volumes appear,
	// e.g. "/Volumes". Paths outside it are never managed.
	MountRoot string
}

// MountInfo is one row of the mount-table query.
type MountInfo struct {
	// ID is an opaque identifier stable for the volume's mounted lifetime.
	ID string
	// Path is the filesystem path at which the volume is attached.
	Path string
	// Name is the user-facing volume label.
	Name string
	// Device is the block device node, if known.
	Device     string
	TotalBytes uint64
	FreeBytes  uint64
	Internal   bool
	Removable  bool
	Ejectable  bool
}

// Platform is the injectable OS boundary.
type Platform interface {
	// ID returns the unique ID of this platform.
	ID() string

	// Settings returns static platform settings.
	Settings() Settings

	// ListMounts enumerates currently mounted external volume candidates.
	// Semantic filtering (internal vs removable, reserved names) is applied
	// by the volume registry, not here.
	ListMounts(ctx context.Context) ([]MountInfo, error)

	// Unmount detaches the volume mounted at path. With force set, a forced
	// unmount command is used. Success is judged by the command exit status;
	// no structured error code is retained.
	Unmount(ctx context.Context, path string, force bool) error

	// Open opens the path in the platform file manager.
	Open(ctx context.Context, path string) error

	// Reveal shows the path selected in the platform file manager.
	Reveal(ctx context.Context, path string) error

	// Notify sends a fire-and-forget user notification.
	Notify(ctx context.Context, title, body string)
}
