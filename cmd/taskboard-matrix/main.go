// Copyright 2026 Aiku AI
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Command taskboard-matrix is a one-way notification bridge: it receives
// task and comment events from a project-management board over HTTP
// webhooks, renders them into rich-text chat messages and delivers them
// best-effort to a Matrix room.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/aiku/taskboard-matrix/pkg/bridge"
	"github.com/aiku/taskboard-matrix/pkg/webhook"
)

// These are filled at build time with -ldflags.
var (
	Tag       = "unknown"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var (
	configPath     = pflag.StringP("config", "c", "config.yaml", "path to the config file")
	logLevel       = pflag.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	exampleConfig  = pflag.Bool("example-config", false, "print the example config and exit")
	versionRequest = pflag.BoolP("version", "v", false, "print the version and exit")
)

func main() {
	pflag.Parse()

	if *versionRequest {
		fmt.Printf("taskboard-matrix %s (%s, built %s)\n", Tag, Commit, BuildTime)
		return
	}
	if *exampleConfig {
		fmt.Print(bridge.ExampleConfig)
		return
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENVIRONMENT") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if level, err := zerolog.ParseLevel(*logLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	cfg, err := bridge.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Info().
		Str("homeserver_url", cfg.HomeserverURL).
		Str("listen_addr", cfg.ListenAddr).
		Int("projects", len(cfg.Projects)).
		Bool("enabled", cfg.HomeserverURL != "").
		Msg("Starting taskboard-matrix")

	dispatcher := bridge.NewDispatcher(cfg, cfg, cfg, bridge.AppLinkBuilder{BaseURL: cfg.ApplicationURL}, logger)
	server := webhook.NewServer(cfg.ListenAddr, cfg.WebhookToken, dispatcher, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("Shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("Webhook server failed")
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Shutdown failed")
	}
}
