// Copyright 2026 Aiku AI
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bridge

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"
)

// matrixSession is the subset of Client the send pipeline uses. It exists so
// tests can inject a recording fake without a homeserver.
type matrixSession interface {
	IsLoggedIn() bool
	JoinRoom(ctx context.Context, roomAliasOrID string) (id.RoomID, error)
	SendMessage(ctx context.Context, roomID id.RoomID, textBody, htmlBody string, msgType event.MessageType) error
}

// Dispatcher orchestrates notification delivery: enablement checks, room
// resolution, rendering and the Matrix session.
//
// The session is created lazily on the first send and cached for the
// lifetime of the Dispatcher. Once a session exists it is never rebuilt or
// re-authenticated, even if the configuration would now yield different
// credentials. A failed login still caches the (unauthenticated) session;
// a skipped construction does not, so it is re-evaluated on the next event.
type Dispatcher struct {
	config   ConfigSource
	projects ProjectMetadataSource
	renderer *Renderer
	log      zerolog.Logger

	mu      sync.Mutex
	session matrixSession

	// newSession constructs the real client; replaced in tests.
	newSession func(homeserverURL, accessToken string) (matrixSession, error)
}

// NewDispatcher wires a dispatcher from its read-only lookups.
func NewDispatcher(config ConfigSource, projects ProjectMetadataSource, actor ActorSource, links LinkBuilder, log zerolog.Logger) *Dispatcher {
	d := &Dispatcher{
		config:   config,
		projects: projects,
		renderer: NewRenderer(config, projects, actor, links),
		log:      log.With().Str("component", "dispatcher").Logger(),
	}
	d.newSession = func(homeserverURL, accessToken string) (matrixSession, error) {
		return NewClient(homeserverURL, accessToken, log.With().Str("component", "matrix_client").Logger())
	}
	return d
}

// NotifyProject delivers a notification for a project event. It returns
// without side effects when the homeserver URL is unset (global kill switch)
// or the project has no target room. All delivery failures are logged and
// swallowed; nothing propagates to the caller.
func (d *Dispatcher) NotifyProject(ctx context.Context, project Project, eventName string, payload *EventPayload) {
	if d.config.Get(KeyHomeserverURL) == "" {
		return
	}
	room, ok := d.projects.ProjectMeta(project.ID, KeyRoom)
	if !ok || room == "" {
		return
	}
	d.sendMessage(ctx, room, project, eventName, payload)
}

// NotifyUser is part of the notification contract but direct-message
// notification is out of scope for this bridge.
func (d *Dispatcher) NotifyUser(_ context.Context, _ User, _ string, _ *EventPayload) {
}

// sendMessage runs the send pipeline for one event: ensure session, render,
// resolve message kind, join, send.
func (d *Dispatcher) sendMessage(ctx context.Context, room string, project Project, eventName string, payload *EventPayload) {
	session := d.ensureSession(ctx)
	if session == nil {
		return
	}
	if !session.IsLoggedIn() {
		d.log.Warn().Str("event", eventName).Msg("No authenticated Matrix session, dropping notification")
		notificationFailures.WithLabelValues(failReasonLogin).Inc()
		return
	}

	msg := d.renderer.Render(project.ID, eventName, payload)

	msgType := event.MsgText
	if projectFlag(d.projects, project.ID, KeySendNotices) {
		msgType = event.MsgNotice
	}

	roomID, err := session.JoinRoom(ctx, room)
	if err != nil {
		d.log.Error().Err(err).Str("room", room).Msg("Failed to join Matrix room")
		notificationFailures.WithLabelValues(failReasonJoin).Inc()
		return
	}

	if err := session.SendMessage(ctx, roomID, msg.Text, msg.HTML, msgType); err != nil {
		d.log.Warn().Err(err).Str("room", room).Str("event", eventName).Msg("Failed to send Matrix message")
		notificationFailures.WithLabelValues(failReasonSend).Inc()
		return
	}
	notificationsSent.WithLabelValues(eventName).Inc()
}

// ensureSession returns the cached session, constructing it on first use.
// Returns nil when construction is skipped or fails; a skipped or failed
// construction is not cached and will be re-evaluated on the next event.
func (d *Dispatcher) ensureSession(ctx context.Context) matrixSession {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session != nil {
		return d.session
	}

	homeserverURL := d.config.Get(KeyHomeserverURL)
	token := d.config.Get(KeyToken)
	if token != "" {
		session, err := d.newSession(homeserverURL, token)
		if err != nil {
			d.log.Error().Err(err).Msg("Failed to create Matrix client")
			notificationFailures.WithLabelValues(failReasonClient).Inc()
			return nil
		}
		d.session = session
		return d.session
	}

	username := d.config.Get(KeyUsername)
	password := d.config.Get(KeyPassword)
	// TODO: confirm whether password login should instead require the
	// credentials to be set; today login is only attempted when username and
	// password are both empty, and configured credentials without a token
	// disable sending entirely.
	if username != "" || password != "" {
		return nil
	}

	session, err := d.newSession(homeserverURL, "")
	if err != nil {
		d.log.Error().Err(err).Msg("Failed to create Matrix client")
		notificationFailures.WithLabelValues(failReasonClient).Inc()
		return nil
	}
	if err := session.(loginSession).Login(ctx, username, password); err != nil {
		d.log.Warn().Err(err).Msg("Matrix login failed")
	}
	d.session = session
	return d.session
}

// loginSession is implemented by sessions that support password login.
type loginSession interface {
	Login(ctx context.Context, username, password string) error
}
