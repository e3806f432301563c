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

// Package config holds the user configuration for DriveDock Core, stored as
// a TOML file. An Instance guards the loaded values behind a mutex so the
// service and presentation layer can read concurrently.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/DriveDockProject/drivedock-core/pkg/helpers/syncutil"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	SchemaVersion = 1
	CfgEnv        = "DRIVEDOCK_CFG"
)

type Values struct {
	Audio        Audio   `toml:"audio"`
	Cleaner      Cleaner `toml:"cleaner,omitempty"`
	Scanner      Scanner `toml:"scanner,omitempty"`
	ConfigSchema int     `toml:"config_schema"`
	DebugLogging bool    `toml:"debug_logging"`
}

type Audio struct {
	EjectSound *string `toml:"eject_sound,omitempty"`
	FailSound  *string `toml:"fail_sound,omitempty"`
	Feedback   bool    `toml:"feedback"`
}

type Cleaner struct {
	JunkNames  []string `toml:"junk_names,omitempty,multiline"`
	JunkPrefix string   `toml:"junk_prefix,omitempty"`
}

type Scanner struct {
	BudgetSeconds    int   `toml:"budget_seconds,omitempty"`
	MinFileSizeBytes int64 `toml:"min_file_size_bytes,omitempty"`
}

// BaseDefaults are the values written on first run and merged under any
// partially-written config file.
var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Audio: Audio{
		Feedback: true,
	},
	Cleaner: Cleaner{
		JunkNames: []string{
			".DS_Store",
			".apdisk",
			"desktop.ini",
			"Thumbs.db",
		},
		JunkPrefix: "._",
	},
	Scanner: Scanner{
		BudgetSeconds:    20,
		MinFileSizeBytes: 1 << 20,
	},
}

type Instance struct {
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

//nolint:gocritic // config struct copied for immutability
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := Instance{
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Msg("saving new default config to disk")
		if err := os.MkdirAll(filepath.Dir(cfgPath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := cfg.Save(); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	if err := cfg.Load(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	vals := c.defaults
	if err := toml.Unmarshal(data, &vals); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	c.vals = vals

	if c.vals.DebugLogging {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	return nil
}

func (c *Instance) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Instance) Path() string {
	return c.cfgPath
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func (c *Instance) AudioFeedback() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Audio.Feedback
}

// EjectSound returns the custom eject sound path, or empty for the embedded default.
func (c *Instance) EjectSound() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Audio.EjectSound == nil {
		return ""
	}
	return *c.vals.Audio.EjectSound
}

// FailSound returns the custom failure sound path, or empty for the embedded default.
func (c *Instance) FailSound() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Audio.FailSound == nil {
		return ""
	}
	return *c.vals.Audio.FailSound
}

// JunkNames returns the exact file names considered junk, safe to delete pre-eject.
func (c *Instance) JunkNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.vals.Cleaner.JunkNames))
	copy(names, c.vals.Cleaner.JunkNames)
	return names
}

// JunkPrefix returns the file name prefix considered junk (AppleDouble "._").
func (c *Instance) JunkPrefix() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Cleaner.JunkPrefix
}

// ScanBudget returns the deep scan wall-clock budget.
func (c *Instance) ScanBudget() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Scanner.BudgetSeconds <= 0 {
		return time.Duration(BaseDefaults.Scanner.BudgetSeconds) * time.Second
	}
	return time.Duration(c.vals.Scanner.BudgetSeconds) * time.Second
}

// ScanMinFileSize returns the smallest file size a deep scan will keep.
func (c *Instance) ScanMinFileSize() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Scanner.MinFileSizeBytes <= 0 {
		return BaseDefaults.Scanner.MinFileSizeBytes
	}
	return c.vals.Scanner.MinFileSizeBytes
}
