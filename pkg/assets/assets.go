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

// Package assets embeds the default audio cues.
package assets

import _ "embed"

// EjectSound is the default cue played after a successful eject.
//
//go:embed sounds/eject.wav
var EjectSound []byte

// FailSound is the default cue played when an eject fails.
//
//go:embed sounds/fail.wav
var FailSound []byte
