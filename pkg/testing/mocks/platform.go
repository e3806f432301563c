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

package mocks

import (
	"context"
	"fmt"

	"github.com/DriveDockProject/drivedock-core/pkg/platforms"
	"github.com/stretchr/testify/mock"
)

// MockPlatform is a mock implementation of platforms.Platform using testify/mock.
type MockPlatform struct {
	mock.Mock
}

func (m *MockPlatform) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPlatform) Settings() platforms.Settings {
	args := m.Called()
	if s, ok := args.Get(0).(platforms.Settings); ok {
		return s
	}
	return platforms.Settings{MountRoot: "/Volumes"}
}

// ListMounts returns the configured mount table.
func (m *MockPlatform) ListMounts(ctx context.Context) ([]platforms.MountInfo, error) {
	args := m.Called(ctx)
	var mounts []platforms.MountInfo
	if v, ok := args.Get(0).([]platforms.MountInfo); ok {
		mounts = v
	}
	if err := args.Error(1); err != nil {
		return mounts, fmt.Errorf("mock list mounts failed: %w", err)
	}
	return mounts, nil
}

func (m *MockPlatform) Unmount(ctx context.Context, path string, force bool) error {
	args := m.Called(ctx, path, force)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock unmount failed: %w", err)
	}
	return nil
}

func (m *MockPlatform) Open(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock open failed: %w", err)
	}
	return nil
}

func (m *MockPlatform) Reveal(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock reveal failed: %w", err)
	}
	return nil
}

func (m *MockPlatform) Notify(ctx context.Context, title, body string) {
	m.Called(ctx, title, body)
}
