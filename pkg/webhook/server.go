// Copyright 2026 Aiku AI
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package webhook exposes the HTTP intake that turns upstream board webhook
// calls into Matrix notifications.
package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/aiku/taskboard-matrix/pkg/bridge"
)

// maxBodySize is the maximum allowed webhook request body (1 MB).
const maxBodySize = 1 << 20

// Notifier receives decoded board events. Satisfied by *bridge.Dispatcher.
type Notifier interface {
	NotifyProject(ctx context.Context, project bridge.Project, eventName string, payload *bridge.EventPayload)
}

// envelope is the upstream webhook wire format.
type envelope struct {
	EventName string               `json:"event_name"`
	EventData *bridge.EventPayload `json:"event_data"`
}

// Server handles webhook intake plus the health and metrics endpoints.
type Server struct {
	notifier Notifier
	token    string
	log      zerolog.Logger
	srv      *http.Server
}

// NewServer builds a server listening on addr. token, when non-empty, must
// match the ?token= query parameter of webhook requests.
func NewServer(addr, token string, notifier Notifier, log zerolog.Logger) *Server {
	s := &Server{
		notifier: notifier,
		token:    token,
		log:      log.With().Str("component", "webhook").Logger(),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", s.HandleWebhook)
	mux.HandleFunc("/healthz", s.HandleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving requests until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("Starting webhook server")
	err := s.srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// HandleWebhook accepts one board event per POST and dispatches it
// synchronously. Delivery failures never surface here; the upstream board
// must not fail or retry because a chat notification could not be sent.
func (s *Server) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.token != "" && subtle.ConstantTimeCompare([]byte(r.URL.Query().Get("token")), []byte(s.token)) != 1 {
		http.Error(w, "invalid token", http.StatusForbidden)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if env.EventName == "" || env.EventData == nil {
		http.Error(w, "missing event_name or event_data", http.StatusBadRequest)
		return
	}

	projectID := env.EventData.Task.ProjectID
	if projectID == 0 {
		s.log.Warn().Str("event", env.EventName).Msg("Webhook event without project ID, ignoring")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	s.log.Debug().
		Str("event", env.EventName).
		Int64("project_id", projectID).
		Int64("task_id", env.EventData.Task.ID).
		Msg("Dispatching webhook event")

	s.notifier.NotifyProject(r.Context(), bridge.Project{ID: projectID}, env.EventName, env.EventData)
	w.WriteHeader(http.StatusNoContent)
}

// HandleHealth reports liveness.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
		s.log.Warn().Err(err).Msg("Failed to write health response")
	}
}
