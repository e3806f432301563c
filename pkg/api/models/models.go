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

// Package models defines the notification model and payloads shared between
// the core service and the presentation layer.
package models

import "github.com/dustin/go-humanize"

// Notification method names sent to the presentation layer.
const (
	// NotificationVolumesChanged fires when the volume set or volume metadata changed.
	NotificationVolumesChanged = "volumes.changed"
	// NotificationVolumeEjected fires once per successful eject.
	NotificationVolumeEjected = "volumes.ejected"
	// NotificationVolumeEjectFailed fires once per failed eject.
	NotificationVolumeEjectFailed = "volumes.ejectFailed"
	// NotificationVolumeAnalyzed fires when a deep scan completes and its
	// results were merged into the volume.
	NotificationVolumeAnalyzed = "volumes.analyzed"
)

// Notification is a fire-and-forget message from the core to its consumers.
type Notification struct {
	Params any    `json:"params,omitempty"`
	Method string `json:"method"`
}

// FileInfo describes one file found by a deep scan. Immutable once produced.
type FileInfo struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	SizeLabel string `json:"sizeLabel"`
	SizeBytes int64  `json:"sizeBytes"`
}

// NewFileInfo builds a FileInfo with a human-readable size label.
func NewFileInfo(path, name string, sizeBytes int64) FileInfo {
	return FileInfo{
		Path:      path,
		Name:      name,
		SizeBytes: sizeBytes,
		SizeLabel: humanize.IBytes(uint64(sizeBytes)), //nolint:gosec // scanner rejects negative sizes
	}
}

// EjectResult is the payload for eject outcome notifications.
type EjectResult struct {
	MountPath         string   `json:"mountPath"`
	Name              string   `json:"name"`
	Error             string   `json:"error,omitempty"`
	BlockingProcesses []string `json:"blockingProcesses,omitempty"`
	CleanedBytes      int64    `json:"cleanedBytes"`
}

// VolumeAnalyzed is the payload for scan completion notifications.
type VolumeAnalyzed struct {
	MountPath string     `json:"mountPath"`
	TopFiles  []FileInfo `json:"topFiles"`
}
