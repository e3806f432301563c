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

// Package mounts provides OS mount/unmount event detection for external volumes.
package mounts

// Event is a filesystem mount table change under the external mount namespace.
type Event struct {
	// MountPath is the filesystem path where the volume appeared or disappeared.
	MountPath string
	// Mounted is true when the volume appeared, false when it disappeared.
	Mounted bool
}

// Detector provides platform-specific mount event detection for external volumes.
// Implementations are event-driven, not polling-based. Events only trigger a
// registry refresh; the registry re-reads the full mount table itself, so a
// missed attribute here is harmless.
type Detector interface {
	// Events returns a channel that emits an Event for every observed mount
	// table change. The channel is closed when Stop() is called.
	Events() <-chan Event

	// Start begins monitoring for mount/unmount events.
	// Returns an error if the underlying watcher cannot be initialized.
	Start() error

	// Stop terminates the detector and releases all resources.
	// After Stop() is called, the Events() channel is closed.
	Stop()
}
