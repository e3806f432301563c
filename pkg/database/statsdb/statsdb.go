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

// Package statsdb persists the cumulative cleaned-bytes counter in a bolt
// database. The counter is monotonic for the lifetime of the installation:
// there is no decrement and no reset.
package statsdb

import (
	"encoding/binary"
	"fmt"

	"github.com/DriveDockProject/drivedock-core/pkg/helpers/syncutil"
	bolt "go.etcd.io/bbolt"
)

const (
	bucketStats     = "stats"
	keyCleanedBytes = "total_cleaned_bytes"
)

// Store holds the persisted stats counter. The in-memory value mirrors the
// persisted one; reads never touch disk.
type Store struct {
	bdb   *bolt.DB
	total uint64
	mu    syncutil.RWMutex
}

// Open opens (creating if needed) the stats database at path and loads the
// persisted counter, defaulting to 0 if absent.
func Open(path string) (*Store, error) {
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open stats database: %w", err)
	}

	s := &Store{bdb: bdb}

	err = bdb.Update(func(txn *bolt.Tx) error {
		b, err := txn.CreateBucketIfNotExists([]byte(bucketStats))
		if err != nil {
			return fmt.Errorf("failed to create stats bucket: %w", err)
		}
		if v := b.Get([]byte(keyCleanedBytes)); len(v) == 8 {
			s.total = binary.BigEndian.Uint64(v)
		}
		return nil
	})
	if err != nil {
		_ = bdb.Close()
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if err := s.bdb.Close(); err != nil {
		return fmt.Errorf("failed to close stats database: %w", err)
	}
	return nil
}

// TotalCleanedBytes returns the cumulative number of bytes cleaned.
func (s *Store) TotalCleanedBytes() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// AddCleanedBytes increments the counter and persists it immediately.
// The write happens even if a subsequent unmount fails.
func (s *Store) AddCleanedBytes(n uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := s.total + n
	err := s.bdb.Update(func(txn *bolt.Tx) error {
		b := txn.Bucket([]byte(bucketStats))
		if b == nil {
			return fmt.Errorf("bucket %q does not exist", bucketStats)
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, updated)
		if err := b.Put([]byte(keyCleanedBytes), buf); err != nil {
			return fmt.Errorf("failed to write counter: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to persist stats: %w", err)
	}

	s.total = updated
	return nil
}
