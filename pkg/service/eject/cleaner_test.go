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
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJunkNames = []string{".DS_Store", "desktop.ini", "Thumbs.db"}

func writeJunkFixture(t *testing.T, fs afero.Fs, path string, size int) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, make([]byte, size), 0o644))
}

func TestClean_DeletesExactNamesRecursively(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeJunkFixture(t, fs, "/Volumes/BACKUP/.DS_Store", 4096)
	writeJunkFixture(t, fs, "/Volumes/BACKUP/photos/.DS_Store", 2048)
	writeJunkFixture(t, fs, "/Volumes/BACKUP/photos/holiday.jpg", 1000)

	cleaner := NewCleaner(fs)
	freed := cleaner.Clean(context.Background(), "/Volumes/BACKUP", testJunkNames, "._")

	assert.Equal(t, int64(6144), freed)

	exists, _ := afero.Exists(fs, "/Volumes/BACKUP/photos/holiday.jpg")
	assert.True(t, exists, "non-junk files untouched")
	exists, _ = afero.Exists(fs, "/Volumes/BACKUP/photos/.DS_Store")
	assert.False(t, exists)
}

func TestClean_DeletesPrefixMatches(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeJunkFixture(t, fs, "/Volumes/USB/._movie.mkv", 512)
	writeJunkFixture(t, fs, "/Volumes/USB/movie.mkv", 9000)

	cleaner := NewCleaner(fs)
	freed := cleaner.Clean(context.Background(), "/Volumes/USB", testJunkNames, "._")

	assert.Equal(t, int64(512), freed)
	exists, _ := afero.Exists(fs, "/Volumes/USB/movie.mkv")
	assert.True(t, exists)
}

func TestClean_RemovesJunkDirectoriesWhole(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeJunkFixture(t, fs, "/Volumes/USB/Thumbs.db/a.tmp", 100)
	writeJunkFixture(t, fs, "/Volumes/USB/Thumbs.db/b.tmp", 200)
	writeJunkFixture(t, fs, "/Volumes/USB/data.txt", 50)

	cleaner := NewCleaner(fs)
	freed := cleaner.Clean(context.Background(), "/Volumes/USB", testJunkNames, "._")

	assert.Equal(t, int64(300), freed)
	exists, _ := afero.DirExists(fs, "/Volumes/USB/Thumbs.db")
	assert.False(t, exists)
}

func TestClean_CancelledContextStopsWalk(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeJunkFixture(t, fs, "/Volumes/USB/.DS_Store", 4096)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cleaner := NewCleaner(fs)
	freed := cleaner.Clean(ctx, "/Volumes/USB", testJunkNames, "._")

	assert.Zero(t, freed)
	exists, _ := afero.Exists(fs, "/Volumes/USB/.DS_Store")
	assert.True(t, exists, "nothing deleted after cancellation")
}

func TestClean_EmptyVolumeFreesNothing(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/Volumes/EMPTY", 0o755))

	cleaner := NewCleaner(fs)
	freed := cleaner.Clean(context.Background(), "/Volumes/EMPTY", testJunkNames, "._")

	assert.Zero(t, freed)
}

// The cleanup result is independent of any scan outcome: 4096 bytes of
// .DS_Store freed regardless of what else lives on the volume.
func TestClean_ReportsExactBytesIndependentOfOtherContent(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeJunkFixture(t, fs, "/Volumes/BACKUP/.DS_Store", 4096)
	for i := 0; i < 6; i++ {
		writeJunkFixture(t, fs, "/Volumes/BACKUP/media/clip"+string(rune('0'+i))+".mov", (6-i)*2<<20)
	}

	cleaner := NewCleaner(fs)
	freed := cleaner.Clean(context.Background(), "/Volumes/BACKUP", testJunkNames, "._")

	assert.Equal(t, int64(4096), freed)
}
