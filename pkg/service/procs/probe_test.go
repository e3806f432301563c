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

package procs

import (
	"context"
	"errors"
	"testing"

	"github.com/DriveDockProject/drivedock-core/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func staticResolver(names map[int32]string) func(context.Context, int32) (string, error) {
	return func(_ context.Context, pid int32) (string, error) {
		name, ok := names[pid]
		if !ok {
			return "", errors.New("no such process")
		}
		return name, nil
	}
}

func TestBusyProcesses_ResolvesDedupesAndSorts(t *testing.T) {
	t.Parallel()

	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Output", mock.Anything, "lsof", []string{"-t", "--", "/Volumes/USB"}).
		Return([]byte("120\n121\n122\n123\n"), nil)

	probe := NewProbeWithResolver(cmd, staticResolver(map[int32]string{
		120: "/System/Library/CoreServices/Finder.app/Contents/MacOS/Finder",
		121: "mds",
		122: "Finder", // same base name as 120
		123: "bash",
	}))

	names := probe.BusyProcesses(context.Background(), "/Volumes/USB")
	assert.Equal(t, []string{"Finder", "bash", "mds"}, names)
}

func TestBusyProcesses_SkipsUnresolvablePids(t *testing.T) {
	t.Parallel()

	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Output", mock.Anything, "lsof", mock.Anything).
		Return([]byte("55\n56\nnot-a-pid\n"), nil)

	probe := NewProbeWithResolver(cmd, staticResolver(map[int32]string{
		56: "mds",
	}))

	names := probe.BusyProcesses(context.Background(), "/Volumes/USB")
	assert.Equal(t, []string{"mds"}, names)
}

func TestBusyProcesses_LsofFailureMeansNoHolders(t *testing.T) {
	t.Parallel()

	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Output", mock.Anything, "lsof", mock.Anything).
		Return(nil, errors.New("exit status 1"))

	probe := NewProbeWithResolver(cmd, staticResolver(nil))

	names := probe.BusyProcesses(context.Background(), "/Volumes/USB")
	assert.Empty(t, names)
}

func TestBusyProcesses_EmptyOutputMeansNoHolders(t *testing.T) {
	t.Parallel()

	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Output", mock.Anything, "lsof", mock.Anything).
		Return([]byte("\n"), nil)

	probe := NewProbeWithResolver(cmd, staticResolver(nil))

	names := probe.BusyProcesses(context.Background(), "/Volumes/USB")
	assert.Empty(t, names)
}
