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

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/DriveDockProject/drivedock-core/pkg/config"
	"github.com/DriveDockProject/drivedock-core/pkg/helpers"
	"github.com/DriveDockProject/drivedock-core/pkg/mounts"
	"github.com/DriveDockProject/drivedock-core/pkg/platforms/mac"
	"github.com/DriveDockProject/drivedock-core/pkg/service"
	"github.com/rs/zerolog/log"
)

func main() {
	if os.Geteuid() == 0 {
		_, _ = fmt.Fprintf(os.Stderr, "DriveDock cannot be run as root\n")
		os.Exit(1)
	}

	pl := mac.NewPlatform()

	daemonMode := flag.Bool(
		"daemon",
		false,
		"run service in foreground, logging to stderr",
	)
	flag.Parse()

	var logWriters []io.Writer
	if *daemonMode {
		logWriters = []io.Writer{os.Stderr}
	}

	if err := helpers.InitLogging(pl, logWriters); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error initializing logging: %s\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(pl.Settings().DataDir, config.BaseDefaults)
	if err != nil {
		log.Error().Err(err).Msg("error loading config")
		_, _ = fmt.Fprintf(os.Stderr, "Error loading config: %s\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	detector, err := mounts.NewDetector(pl.Settings().MountRoot)
	if err != nil {
		log.Error().Err(err).Msg("error creating mount detector")
		_, _ = fmt.Fprintf(os.Stderr, "Error creating mount detector: %s\n", err)
		os.Exit(1)
	}

	svc, err := service.Start(pl, cfg, service.Options{Detector: detector})
	if err != nil {
		log.Error().Err(err).Msg("error starting service")
		_, _ = fmt.Fprintf(os.Stderr, "Error starting service: %s\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := svc.Stop(); err != nil {
			log.Error().Err(err).Msg("error stopping service")
		}
	}()

	sigs := make(chan os.Signal, 1)
	defer close(sigs)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	log.Info().Msg("started, waiting for signals")
	<-sigs
}
