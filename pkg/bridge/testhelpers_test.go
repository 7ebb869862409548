// Copyright 2026 Aiku AI
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"
)

// homeserverCall records one request the fake homeserver received.
type homeserverCall struct {
	Method string
	Path   string
	Body   string
}

// fakeHomeserver simulates the small slice of the Matrix client-server API
// this bridge talks to: login, join and send. It records calls for
// assertions and can be told to reject logins or joins.
type fakeHomeserver struct {
	Server *httptest.Server

	mu    sync.Mutex
	calls []homeserverCall

	RejectLogin bool
	RejectJoin  bool

	// RoomID is returned from join. Defaults to !room:example.org.
	RoomID string
}

func newFakeHomeserver(t *testing.T) *fakeHomeserver {
	t.Helper()
	hs := &fakeHomeserver{RoomID: "!room:example.org"}
	hs.Server = httptest.NewServer(http.HandlerFunc(hs.handle))
	t.Cleanup(hs.Server.Close)
	return hs
}

func (hs *fakeHomeserver) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	hs.mu.Lock()
	hs.calls = append(hs.calls, homeserverCall{Method: r.Method, Path: r.URL.Path, Body: string(body)})
	hs.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/login") && r.Method == http.MethodPost:
		if hs.RejectLogin {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"errcode":"M_FORBIDDEN","error":"Invalid password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"user_id":"@bot:example.org","access_token":"syt_test_token","device_id":"TESTDEV"}`))
	case strings.Contains(r.URL.Path, "/join/") && r.Method == http.MethodPost:
		if hs.RejectJoin {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"errcode":"M_FORBIDDEN","error":"You are not invited to this room"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"room_id": hs.RoomID})
	case strings.Contains(r.URL.Path, "/send/") && r.Method == http.MethodPut:
		_, _ = w.Write([]byte(`{"event_id":"$evt1"}`))
	default:
		_, _ = w.Write([]byte(`{}`))
	}
}

// Calls returns a copy of the recorded requests.
func (hs *fakeHomeserver) Calls() []homeserverCall {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	cp := make([]homeserverCall, len(hs.calls))
	copy(cp, hs.calls)
	return cp
}

// CallsMatching returns the recorded requests whose path contains substr.
func (hs *fakeHomeserver) CallsMatching(substr string) []homeserverCall {
	var out []homeserverCall
	for _, call := range hs.Calls() {
		if strings.Contains(call.Path, substr) {
			out = append(out, call)
		}
	}
	return out
}

// sentMessage is the decoded body of a recorded send call.
type sentMessage struct {
	MsgType       string `json:"msgtype"`
	Body          string `json:"body"`
	Format        string `json:"format"`
	FormattedBody string `json:"formatted_body"`
}

// SentMessages decodes all recorded send call bodies.
func (hs *fakeHomeserver) SentMessages(t *testing.T) []sentMessage {
	t.Helper()
	var out []sentMessage
	for _, call := range hs.CallsMatching("/send/") {
		var msg sentMessage
		if err := json.Unmarshal([]byte(call.Body), &msg); err != nil {
			t.Fatalf("failed to decode sent message %q: %v", call.Body, err)
		}
		out = append(out, msg)
	}
	return out
}

// fakeSessionCall records one operation on a fakeSession.
type fakeSessionCall struct {
	Op      string
	Room    string
	RoomID  id.RoomID
	Text    string
	HTML    string
	MsgType event.MessageType
}

// fakeSession is an in-memory matrixSession for dispatcher tests.
type fakeSession struct {
	loggedIn    bool
	loginErr    error
	joinErr     error
	sendErr     error
	loginLogsIn bool

	calls []fakeSessionCall
}

func (s *fakeSession) IsLoggedIn() bool {
	return s.loggedIn
}

func (s *fakeSession) Login(_ context.Context, username, password string) error {
	s.calls = append(s.calls, fakeSessionCall{Op: "login", Room: username + ":" + password})
	if s.loginErr != nil {
		return s.loginErr
	}
	if s.loginLogsIn {
		s.loggedIn = true
	}
	return nil
}

func (s *fakeSession) JoinRoom(_ context.Context, roomAliasOrID string) (id.RoomID, error) {
	s.calls = append(s.calls, fakeSessionCall{Op: "join", Room: roomAliasOrID})
	if s.joinErr != nil {
		return "", s.joinErr
	}
	return "!room:example.org", nil
}

func (s *fakeSession) SendMessage(_ context.Context, roomID id.RoomID, textBody, htmlBody string, msgType event.MessageType) error {
	s.calls = append(s.calls, fakeSessionCall{Op: "send", RoomID: roomID, Text: textBody, HTML: htmlBody, MsgType: msgType})
	return s.sendErr
}

func (s *fakeSession) ops() []string {
	out := make([]string, len(s.calls))
	for i, call := range s.calls {
		out[i] = call.Op
	}
	return out
}

// sessionFactory counts constructions and hands out a prepared fakeSession.
type sessionFactory struct {
	session   *fakeSession
	createErr error

	constructed int
	tokens      []string
}

func (f *sessionFactory) new(_, accessToken string) (matrixSession, error) {
	f.constructed++
	f.tokens = append(f.tokens, accessToken)
	if f.createErr != nil {
		return nil, f.createErr
	}
	if accessToken != "" {
		f.session.loggedIn = true
	}
	return f.session, nil
}

var errFake = errors.New("fake failure")
