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

package statsdb

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_FreshDatabaseStartsAtZero(t *testing.T) {
	t.Parallel()

	store, err := Open(filepath.Join(t.TempDir(), "stats.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	assert.Zero(t, store.TotalCleanedBytes())
}

func TestAddCleanedBytes_AccumulatesMonotonically(t *testing.T) {
	t.Parallel()

	store, err := Open(filepath.Join(t.TempDir(), "stats.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.AddCleanedBytes(4096))
	require.NoError(t, store.AddCleanedBytes(0))
	require.NoError(t, store.AddCleanedBytes(1024))

	assert.Equal(t, uint64(5120), store.TotalCleanedBytes())
}

func TestCounter_SurvivesReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stats.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.AddCleanedBytes(123456))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	assert.Equal(t, uint64(123456), reopened.TotalCleanedBytes())
}

func TestAddCleanedBytes_ConcurrentWritersLoseNothing(t *testing.T) {
	t.Parallel()

	store, err := Open(filepath.Join(t.TempDir(), "stats.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	const writers = 8
	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.AddCleanedBytes(100)
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(writers*100), store.TotalCleanedBytes())
}
