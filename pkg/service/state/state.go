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

// Package state owns all mutable volume state. The Registry is the single
// writer: background workers hand results back through its narrow mutation
// API and consumers only ever see copies.
//
// LOCKING RULES: The mu mutex protects the volume map. To prevent deadlocks:
//   - Never send to the notifications channel while holding the lock
//   - Never call hooks (analysis schedule/cancel) while holding the lock
//   - Pattern: lock → modify state → copy needed data → unlock → notify
package state

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/DriveDockProject/drivedock-core/pkg/api/models"
	"github.com/DriveDockProject/drivedock-core/pkg/api/notifications"
	"github.com/DriveDockProject/drivedock-core/pkg/helpers/syncutil"
	"github.com/DriveDockProject/drivedock-core/pkg/platforms"
	"github.com/rs/zerolog/log"
)

// Status is the eject pipeline state of a volume.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusCleaning Status = "cleaning"
	StatusEjecting Status = "ejecting"
	StatusBusy     Status = "busy"
	StatusError    Status = "error"
	StatusEjected  Status = "ejected"
)

// Volume is the tracked state of one externally-mounted volume. Identity is
// keyed by mount path; ID stays stable for the volume's mounted lifetime.
type Volume struct {
	ID                string
	MountPath         string
	Name              string
	StatusMessage     string
	Status            Status
	BlockingProcesses []string
	TopFiles          []models.FileInfo
	CapacityBytes     uint64
	FreeBytes         uint64
	Analyzing         bool
}

// reservedNames are system volumes never managed, matched exactly or as a
// "name " prefix (APFS snapshot mounts like "Macintosh HD 1").
var reservedNames = []string{
	"Macintosh HD",
	"Preboot",
	"Recovery",
	"VM",
	"Data",
	"System",
	"Update",
}

// Registry discovers mounted volumes and is the sole writer of their state.
type Registry struct {
	platform      platforms.Platform
	volumes       map[string]*Volume
	onAdded       func(id, mountPath string)
	onRemoved     func(id string)
	Notifications chan<- models.Notification
	ns            chan models.Notification
	mu            syncutil.RWMutex
}

// NewRegistry creates a Registry reading the mount table from pl.
// The returned channel carries change notifications for consumers.
func NewRegistry(pl platforms.Platform) (registry *Registry, notificationCh <-chan models.Notification) {
	// Buffered so pipeline goroutines never block on a slow consumer
	ns := make(chan models.Notification, 100)
	r := &Registry{
		platform:      pl,
		volumes:       make(map[string]*Volume),
		Notifications: ns,
		ns:            ns,
	}
	return r, ns
}

// SetHooks wires analysis scheduling callbacks. Must be called before the
// first Refresh. Hooks are invoked outside the registry lock.
func (r *Registry) SetHooks(onAdded func(id, mountPath string), onRemoved func(id string)) {
	r.onAdded = onAdded
	r.onRemoved = onRemoved
}

// managed reports whether a mount-table row passes the volume filter rules.
func (r *Registry) managed(m *platforms.MountInfo) bool {
	root := r.platform.Settings().MountRoot
	if m.Path == "/" || m.Path == root {
		return false
	}
	if !strings.HasPrefix(m.Path, root+string(filepath.Separator)) {
		return false
	}
	if m.Internal && !m.Removable && !m.Ejectable {
		return false
	}
	name := filepath.Base(m.Path)
	for _, reserved := range reservedNames {
		if name == reserved || strings.HasPrefix(name, reserved+" ") {
			return false
		}
	}
	return true
}

// Refresh re-reads the mount table and diffs it against the tracked set.
// New volumes start idle and are handed to the analysis scheduler; removed
// volumes have their analysis cancelled and are dropped; surviving volumes
// get capacity and name updates in place, everything else untouched.
func (r *Registry) Refresh(ctx context.Context) {
	mounts, err := r.platform.ListMounts(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("mount table query failed, keeping previous volume set")
		return
	}

	current := make(map[string]platforms.MountInfo, len(mounts))
	for i := range mounts {
		if r.managed(&mounts[i]) {
			current[mounts[i].Path] = mounts[i]
		}
	}

	type added struct{ id, path string }
	var addedVols []added
	var removedIDs []string
	changed := false

	r.mu.Lock()

	for path, vol := range r.volumes {
		if _, ok := current[path]; !ok {
			removedIDs = append(removedIDs, vol.ID)
			delete(r.volumes, path)
			changed = true
		}
	}

	for path, m := range current {
		if vol, ok := r.volumes[path]; ok {
			if vol.Name != m.Name || vol.CapacityBytes != m.TotalBytes || vol.FreeBytes != m.FreeBytes {
				vol.Name = m.Name
				vol.CapacityBytes = m.TotalBytes
				vol.FreeBytes = m.FreeBytes
				changed = true
			}
			continue
		}

		id := m.ID
		if id == "" {
			id = filepath.Base(path)
		}
		r.volumes[path] = &Volume{
			ID:            id,
			MountPath:     path,
			Name:          m.Name,
			CapacityBytes: m.TotalBytes,
			FreeBytes:     m.FreeBytes,
			Status:        StatusIdle,
		}
		addedVols = append(addedVols, added{id: id, path: path})
		changed = true
	}

	r.mu.Unlock()

	for _, id := range removedIDs {
		if r.onRemoved != nil {
			r.onRemoved(id)
		}
	}
	for _, a := range addedVols {
		if r.onAdded != nil {
			r.onAdded(a.id, a.path)
		}
	}

	if changed {
		notifications.VolumesChanged(r.ns)
	}
}

// Snapshot returns a deep copy of all tracked volumes, ordered by mount path.
func (r *Registry) Snapshot() []Volume {
	r.mu.RLock()
	defer r.mu.RUnlock()

	vols := make([]Volume, 0, len(r.volumes))
	for _, vol := range r.volumes {
		vols = append(vols, copyVolume(vol))
	}
	sort.Slice(vols, func(i, j int) bool { return vols[i].MountPath < vols[j].MountPath })
	return vols
}

// Get returns a copy of the volume at mountPath.
func (r *Registry) Get(mountPath string) (Volume, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	vol, ok := r.volumes[mountPath]
	if !ok {
		return Volume{}, false
	}
	return copyVolume(vol), true
}

// BeginEject transitions a volume from idle to cleaning. Returns false if
// the volume is unknown or a pipeline is already mid-flight for it; a second
// eject on a non-idle volume is a no-op.
func (r *Registry) BeginEject(mountPath string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	vol, ok := r.volumes[mountPath]
	if !ok || vol.Status != StatusIdle {
		return false
	}
	vol.Status = StatusCleaning
	return true
}

// SetEjecting marks the cleanup step done and the unmount attempt started.
func (r *Registry) SetEjecting(mountPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if vol, ok := r.volumes[mountPath]; ok {
		vol.Status = StatusEjecting
	}
}

// SetEjected marks a successful unmount.
func (r *Registry) SetEjected(mountPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if vol, ok := r.volumes[mountPath]; ok {
		vol.Status = StatusEjected
		vol.StatusMessage = ""
		vol.BlockingProcesses = nil
	}
}

// SetBusy records an unmount blocked by the given processes. The list
// replaces any previous one.
func (r *Registry) SetBusy(mountPath string, procs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if vol, ok := r.volumes[mountPath]; ok {
		vol.Status = StatusBusy
		vol.StatusMessage = ""
		vol.BlockingProcesses = procs
	}
}

// SetError records an unmount failure with no identified holder.
func (r *Registry) SetError(mountPath, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if vol, ok := r.volumes[mountPath]; ok {
		vol.Status = StatusError
		vol.StatusMessage = msg
		vol.BlockingProcesses = nil
	}
}

// ResetForRetry returns a rested volume (busy or error) to idle and clears
// its blocking process list, sanctioning pipeline re-entry.
func (r *Registry) ResetForRetry(mountPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if vol, ok := r.volumes[mountPath]; ok {
		vol.Status = StatusIdle
		vol.StatusMessage = ""
		vol.BlockingProcesses = nil
	}
}

// SetAnalyzing flags a volume as having a deep scan in flight.
func (r *Registry) SetAnalyzing(mountPath string, analyzing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if vol, ok := r.volumes[mountPath]; ok {
		vol.Analyzing = analyzing
	}
}

// SetTopFiles merges deep scan results into a volume and clears the
// analyzing flag. No-op if the volume disappeared while scanning.
func (r *Registry) SetTopFiles(mountPath string, files []models.FileInfo) {
	r.mu.Lock()
	vol, ok := r.volumes[mountPath]
	if !ok {
		r.mu.Unlock()
		return
	}
	vol.TopFiles = files
	vol.Analyzing = false
	r.mu.Unlock()

	notifications.VolumeAnalyzed(r.ns, models.VolumeAnalyzed{
		MountPath: mountPath,
		TopFiles:  files,
	})
}

func copyVolume(vol *Volume) Volume {
	cp := *vol
	if vol.BlockingProcesses != nil {
		cp.BlockingProcesses = make([]string, len(vol.BlockingProcesses))
		copy(cp.BlockingProcesses, vol.BlockingProcesses)
	}
	if vol.TopFiles != nil {
		cp.TopFiles = make([]models.FileInfo, len(vol.TopFiles))
		copy(cp.TopFiles, vol.TopFiles)
	}
	return cp
}
