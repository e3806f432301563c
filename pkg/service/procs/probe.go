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

// Package procs resolves which processes hold open handles under a mount
// path. Best-effort by design: without elevated filesystem access lsof often
// sees nothing, and an empty result is a valid outcome, not an error.
package procs

import (
	"context"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/DriveDockProject/drivedock-core/pkg/helpers/command"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"
)

// Probe enumerates busy processes via lsof and resolves names via the
// process table.
type Probe struct {
	cmd command.Executor
	// resolveName maps a pid to a command name. Overridable in tests;
	// defaults to the process table lookup.
	resolveName func(ctx context.Context, pid int32) (string, error)
}

// NewProbe creates a Probe using the given command executor.
func NewProbe(cmd command.Executor) *Probe {
	return &Probe{
		cmd:         cmd,
		resolveName: resolveProcessName,
	}
}

// NewProbeWithResolver creates a Probe with a custom pid-to-name resolver.
// Used by tests to avoid depending on the live process table.
func NewProbeWithResolver(
	cmd command.Executor,
	resolve func(ctx context.Context, pid int32) (string, error),
) *Probe {
	return &Probe{
		cmd:         cmd,
		resolveName: resolve,
	}
}

// BusyProcesses returns the sorted, deduplicated base names of commands
// holding any open handle under mountPath. Per-pid resolution failures are
// skipped silently. lsof exits non-zero when nothing matches, so command
// failure also yields an empty list.
func (p *Probe) BusyProcesses(ctx context.Context, mountPath string) []string {
	out, err := p.cmd.Output(ctx, "lsof", "-t", "--", mountPath)
	if err != nil {
		log.Debug().Err(err).Str("path", mountPath).Msg("lsof returned no holders")
		return nil
	}

	seen := make(map[string]bool)
	var names []string

	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		pid, err := strconv.ParseInt(line, 10, 32)
		if err != nil {
			continue
		}

		name, err := p.resolveName(ctx, int32(pid))
		if err != nil || name == "" {
			continue
		}
		name = filepath.Base(name)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	sort.Strings(names)
	return names
}

func resolveProcessName(ctx context.Context, pid int32) (string, error) {
	proc, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return "", err //nolint:wrapcheck // best-effort lookup, caller skips failures
	}
	name, err := proc.NameWithContext(ctx)
	if err != nil {
		return "", err //nolint:wrapcheck // best-effort lookup, caller skips failures
	}
	return name, nil
}
