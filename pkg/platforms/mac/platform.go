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

//go:build darwin

// Package mac implements the platform boundary for macOS using diskutil,
// osascript and open, all invoked through the injectable command executor.
package mac

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DriveDockProject/drivedock-core/pkg/helpers/command"
	"github.com/DriveDockProject/drivedock-core/pkg/platforms"
	"github.com/rs/zerolog/log"
)

// Platform implements platforms.Platform for macOS.
type Platform struct {
	// Cmd executes external commands. Defaults to the real executor.
	Cmd command.Executor
}

// NewPlatform creates a macOS platform using real command execution.
func NewPlatform() *Platform {
	return &Platform{Cmd: &command.RealExecutor{}}
}

func (*Platform) ID() string {
	return "mac"
}

func (*Platform) Settings() platforms.Settings {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return platforms.Settings{
		DataDir:   filepath.Join(home, "Library", "Application Support", "DriveDock"),
		TempDir:   filepath.Join(os.TempDir(), "drivedock"),
		MountRoot: "/Volumes",
	}
}

// Unmount detaches the volume at path with diskutil. Success is judged by
// the command exit status only.
func (p *Platform) Unmount(ctx context.Context, path string, force bool) error {
	args := []string{"unmount"}
	if force {
		args = append(args, "force")
	}
	args = append(args, path)

	if err := p.Cmd.Run(ctx, "diskutil", args...); err != nil {
		return fmt.Errorf("diskutil unmount failed: %w", err)
	}
	return nil
}

func (p *Platform) Open(ctx context.Context, path string) error {
	if err := p.Cmd.Run(ctx, "open", path); err != nil {
		return fmt.Errorf("failed to open path: %w", err)
	}
	return nil
}

func (p *Platform) Reveal(ctx context.Context, path string) error {
	if err := p.Cmd.Run(ctx, "open", "-R", path); err != nil {
		return fmt.Errorf("failed to reveal path: %w", err)
	}
	return nil
}

// Notify posts a user notification via osascript. Fire-and-forget: failures
// are logged, never surfaced.
func (p *Platform) Notify(ctx context.Context, title, body string) {
	// %q escaping matches AppleScript string literal escaping closely enough
	// for notification text.
	script := fmt.Sprintf("display notification %q with title %q", body, title)
	if err := p.Cmd.Start(ctx, "osascript", "-e", script); err != nil {
		log.Warn().Err(err).Msg("failed to post notification")
	}
}
