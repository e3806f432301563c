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

package state

import (
	"context"
	"testing"

	"github.com/DriveDockProject/drivedock-core/pkg/api/models"
	"github.com/DriveDockProject/drivedock-core/pkg/platforms"
	"github.com/DriveDockProject/drivedock-core/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, mountTables ...[]platforms.MountInfo) (*Registry, <-chan models.Notification) {
	t.Helper()

	pl := &mocks.MockPlatform{}
	pl.On("Settings").Return(platforms.Settings{MountRoot: "/Volumes"})
	for _, table := range mountTables {
		pl.On("ListMounts", mock.Anything).Return(table, nil).Once()
	}

	return NewRegistry(pl)
}

func externalMount(path, name string, total, free uint64) platforms.MountInfo {
	return platforms.MountInfo{
		ID:         "fsid-" + name,
		Path:       path,
		Name:       name,
		TotalBytes: total,
		FreeBytes:  free,
		Removable:  true,
		Ejectable:  true,
	}
}

func TestRefresh_AddsNewVolumesAsIdle(t *testing.T) {
	t.Parallel()

	registry, _ := newTestRegistry(t, []platforms.MountInfo{
		externalMount("/Volumes/BACKUP", "BACKUP", 1_000_000_000, 200_000_000),
	})

	var scheduled []string
	registry.SetHooks(func(id, path string) { scheduled = append(scheduled, path) }, nil)

	registry.Refresh(context.Background())

	vols := registry.Snapshot()
	require.Len(t, vols, 1)
	assert.Equal(t, "/Volumes/BACKUP", vols[0].MountPath)
	assert.Equal(t, "fsid-BACKUP", vols[0].ID)
	assert.Equal(t, StatusIdle, vols[0].Status)
	assert.Equal(t, uint64(1_000_000_000), vols[0].CapacityBytes)
	assert.Equal(t, []string{"/Volumes/BACKUP"}, scheduled)
}

func TestRefresh_PreservesStateAcrossMetadataUpdates(t *testing.T) {
	t.Parallel()

	registry, _ := newTestRegistry(t,
		[]platforms.MountInfo{externalMount("/Volumes/USB", "USB", 100, 50)},
		[]platforms.MountInfo{externalMount("/Volumes/USB", "USB Drive", 100, 10)},
	)

	registry.Refresh(context.Background())

	// Mutate pipeline/scan state between refreshes
	registry.SetBusy("/Volumes/USB", []string{"mds", "Finder"})
	registry.SetTopFiles("/Volumes/USB", []models.FileInfo{
		models.NewFileInfo("/Volumes/USB/big.iso", "big.iso", 5<<20),
	})

	registry.Refresh(context.Background())

	vol, ok := registry.Get("/Volumes/USB")
	require.True(t, ok)
	assert.Equal(t, "fsid-USB", vol.ID, "id survives refresh")
	assert.Equal(t, StatusBusy, vol.Status, "status survives refresh")
	assert.Equal(t, []string{"mds", "Finder"}, vol.BlockingProcesses)
	require.Len(t, vol.TopFiles, 1)
	assert.Equal(t, "big.iso", vol.TopFiles[0].Name)
	// Metadata updated in place
	assert.Equal(t, "USB Drive", vol.Name)
	assert.Equal(t, uint64(10), vol.FreeBytes)
}

func TestRefresh_RemovedVolumeCancelsAnalysis(t *testing.T) {
	t.Parallel()

	registry, _ := newTestRegistry(t,
		[]platforms.MountInfo{externalMount("/Volumes/USB", "USB", 100, 50)},
		nil,
	)

	var cancelled []string
	registry.SetHooks(nil, func(id string) { cancelled = append(cancelled, id) })

	registry.Refresh(context.Background())
	registry.Refresh(context.Background())

	assert.Empty(t, registry.Snapshot())
	assert.Equal(t, []string{"fsid-USB"}, cancelled)
}

func TestRefresh_FilterRules(t *testing.T) {
	t.Parallel()

	table := []platforms.MountInfo{
		{ID: "root", Path: "/", Name: "Root"},
		{ID: "net", Path: "/private/var/mnt", Name: "outside namespace", Removable: true},
		{ID: "sys", Path: "/Volumes/Macintosh HD", Name: "Macintosh HD", Removable: true},
		{ID: "snap", Path: "/Volumes/Update 1", Name: "Update 1", Removable: true},
		{ID: "int", Path: "/Volumes/Internal", Name: "Internal", Internal: true},
		{ID: "intrm", Path: "/Volumes/Card", Name: "Card", Internal: true, Removable: true},
		externalMount("/Volumes/USB", "USB", 100, 50),
	}
	registry, _ := newTestRegistry(t, table)

	registry.Refresh(context.Background())

	vols := registry.Snapshot()
	require.Len(t, vols, 2)
	assert.Equal(t, "/Volumes/Card", vols[0].MountPath, "internal but removable is included")
	assert.Equal(t, "/Volumes/USB", vols[1].MountPath)
}

func TestRefresh_MountTableErrorKeepsPreviousSet(t *testing.T) {
	t.Parallel()

	pl := &mocks.MockPlatform{}
	pl.On("Settings").Return(platforms.Settings{MountRoot: "/Volumes"})
	pl.On("ListMounts", mock.Anything).
		Return([]platforms.MountInfo{externalMount("/Volumes/USB", "USB", 100, 50)}, nil).Once()
	pl.On("ListMounts", mock.Anything).
		Return(nil, assert.AnError).Once()

	registry, _ := NewRegistry(pl)
	registry.Refresh(context.Background())
	registry.Refresh(context.Background())

	assert.Len(t, registry.Snapshot(), 1)
}

func TestRefresh_EmitsVolumesChangedNotification(t *testing.T) {
	t.Parallel()

	registry, ns := newTestRegistry(t,
		[]platforms.MountInfo{externalMount("/Volumes/USB", "USB", 100, 50)},
		[]platforms.MountInfo{externalMount("/Volumes/USB", "USB", 100, 50)},
	)

	registry.Refresh(context.Background())
	require.Len(t, ns, 1)
	n := <-ns
	assert.Equal(t, models.NotificationVolumesChanged, n.Method)

	// Identical table: no notification
	registry.Refresh(context.Background())
	assert.Empty(t, ns)
}

func TestBeginEject_OnlyFromIdle(t *testing.T) {
	t.Parallel()

	registry, _ := newTestRegistry(t, []platforms.MountInfo{
		externalMount("/Volumes/USB", "USB", 100, 50),
	})
	registry.Refresh(context.Background())

	assert.True(t, registry.BeginEject("/Volumes/USB"))
	assert.False(t, registry.BeginEject("/Volumes/USB"), "second eject mid-pipeline is rejected")
	assert.False(t, registry.BeginEject("/Volumes/NOPE"), "unknown volume is rejected")

	vol, _ := registry.Get("/Volumes/USB")
	assert.Equal(t, StatusCleaning, vol.Status)
}

func TestSetBusy_ReplacesBlockingProcessList(t *testing.T) {
	t.Parallel()

	registry, _ := newTestRegistry(t, []platforms.MountInfo{
		externalMount("/Volumes/USB", "USB", 100, 50),
	})
	registry.Refresh(context.Background())

	registry.SetBusy("/Volumes/USB", []string{"mds"})
	registry.SetBusy("/Volumes/USB", []string{"Finder", "bash"})

	vol, _ := registry.Get("/Volumes/USB")
	assert.Equal(t, []string{"Finder", "bash"}, vol.BlockingProcesses,
		"second holder set replaces, not appends")
}

func TestResetForRetry_ClearsRestState(t *testing.T) {
	t.Parallel()

	registry, _ := newTestRegistry(t, []platforms.MountInfo{
		externalMount("/Volumes/USB", "USB", 100, 50),
	})
	registry.Refresh(context.Background())

	registry.SetError("/Volumes/USB", "eject failed: exit status 1")
	registry.ResetForRetry("/Volumes/USB")

	vol, _ := registry.Get("/Volumes/USB")
	assert.Equal(t, StatusIdle, vol.Status)
	assert.Empty(t, vol.StatusMessage)
	assert.Empty(t, vol.BlockingProcesses)
}

func TestSetTopFiles_NoOpForRemovedVolume(t *testing.T) {
	t.Parallel()

	registry, ns := newTestRegistry(t)

	registry.SetTopFiles("/Volumes/GONE", []models.FileInfo{
		models.NewFileInfo("/Volumes/GONE/a", "a", 2<<20),
	})

	assert.Empty(t, registry.Snapshot())
	assert.Empty(t, ns, "no notification for a volume that disappeared")
}

func TestSnapshot_ReturnsIsolatedCopies(t *testing.T) {
	t.Parallel()

	registry, _ := newTestRegistry(t, []platforms.MountInfo{
		externalMount("/Volumes/USB", "USB", 100, 50),
	})
	registry.Refresh(context.Background())
	registry.SetBusy("/Volumes/USB", []string{"mds"})

	vols := registry.Snapshot()
	vols[0].BlockingProcesses[0] = "tampered"
	vols[0].Status = StatusEjected

	vol, _ := registry.Get("/Volumes/USB")
	assert.Equal(t, []string{"mds"}, vol.BlockingProcesses)
	assert.Equal(t, StatusBusy, vol.Status)
}
