// Copyright 2026 Aiku AI
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package bridge renders project-management events (task and comment
// create/update) into Matrix messages and delivers them to a configured
// room. Delivery is fire-and-forget: every failure is logged and swallowed
// so the upstream event source is never affected by a chat outage.
//
// # Core Types
//
// [Dispatcher] is the entry point. It decides whether a notification should
// be sent at all (homeserver configured, project has a target room), renders
// the message and drives the Matrix client. One Dispatcher owns at most one
// Matrix session, created lazily on the first send and reused for the rest
// of the instance's lifetime.
//
// [Renderer] maps (project, event name, payload) to an HTML body and its
// plain-text derivation. It is pure apart from the read-only settings
// lookups it is constructed with.
//
// [Client] wraps a mautrix client with the three operations this bridge
// needs: login, room join and message send.
//
// All host-side lookups (global config, per-project settings, the acting
// user's name, deep links into the task board) are injected through the
// ConfigSource, ProjectMetadataSource, ActorSource and LinkBuilder
// interfaces.
//
// # Sub-packages
//
//   - htmlfmt derives the plain-text fallback body from the HTML body.
package bridge
