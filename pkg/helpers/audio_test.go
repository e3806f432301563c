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

package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingPlayer struct {
	playedBytes [][]byte
	playedFiles []string
}

func (p *recordingPlayer) PlayWAVBytes(data []byte) error {
	p.playedBytes = append(p.playedBytes, data)
	return nil
}

func (p *recordingPlayer) PlayFile(path string) error {
	p.playedFiles = append(p.playedFiles, path)
	return nil
}

func TestPlayConfiguredSound_DisabledPlaysNothing(t *testing.T) {
	t.Parallel()

	player := &recordingPlayer{}
	PlayConfiguredSound(player, "", false, []byte{1, 2, 3}, "eject")

	assert.Empty(t, player.playedBytes)
	assert.Empty(t, player.playedFiles)
}

func TestPlayConfiguredSound_EmptyPathUsesEmbeddedDefault(t *testing.T) {
	t.Parallel()

	player := &recordingPlayer{}
	PlayConfiguredSound(player, "", true, []byte{1, 2, 3}, "eject")

	assert.Len(t, player.playedBytes, 1)
	assert.Empty(t, player.playedFiles)
}

func TestPlayConfiguredSound_CustomPathPlaysFile(t *testing.T) {
	t.Parallel()

	player := &recordingPlayer{}
	PlayConfiguredSound(player, "/tmp/custom.wav", true, []byte{1, 2, 3}, "fail")

	assert.Empty(t, player.playedBytes)
	assert.Equal(t, []string{"/tmp/custom.wav"}, player.playedFiles)
}
