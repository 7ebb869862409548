// Copyright 2026 Aiku AI
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bridge

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"
)

// Client owns one outbound session to a single Matrix homeserver. It is
// created either with a static access token or unauthenticated, in which
// case Login must be called before messages can be sent.
type Client struct {
	mx  *mautrix.Client
	log zerolog.Logger
}

// NewClient creates a client for the given homeserver. accessToken may be
// empty for a client that will authenticate via Login.
func NewClient(homeserverURL, accessToken string, log zerolog.Logger) (*Client, error) {
	mx, err := mautrix.NewClient(homeserverURL, "", accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Matrix client: %w", err)
	}
	mx.Log = log
	return &Client{
		mx:  mx,
		log: log,
	}, nil
}

// Login performs a password login and stores the resulting credentials on
// the underlying client for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) error {
	_, err := c.mx.Login(ctx, &mautrix.ReqLogin{
		Type: mautrix.AuthTypePassword,
		Identifier: mautrix.UserIdentifier{
			Type: mautrix.IdentifierTypeUser,
			User: username,
		},
		Password:                 password,
		InitialDeviceDisplayName: "taskboard-matrix",
		StoreCredentials:         true,
	})
	if err != nil {
		return fmt.Errorf("matrix login failed: %w", err)
	}
	c.log.Info().Str("user_id", c.mx.UserID.String()).Msg("Logged in to Matrix")
	return nil
}

// IsLoggedIn reports whether the client holds an access token.
func (c *Client) IsLoggedIn() bool {
	return c.mx.AccessToken != ""
}

// JoinRoom joins (or confirms membership in) the given room alias or ID and
// returns the canonical room ID.
func (c *Client) JoinRoom(ctx context.Context, roomAliasOrID string) (id.RoomID, error) {
	resp, err := c.mx.JoinRoom(ctx, roomAliasOrID, nil)
	if err != nil {
		return "", fmt.Errorf("failed to join room %s: %w", roomAliasOrID, err)
	}
	return resp.RoomID, nil
}

// SendMessage sends one m.room.message event carrying both the plain-text
// body and the HTML body. msgType selects between a low-visibility notice
// and a normal text message.
func (c *Client) SendMessage(ctx context.Context, roomID id.RoomID, textBody, htmlBody string, msgType event.MessageType) error {
	content := &event.MessageEventContent{
		MsgType:       msgType,
		Body:          textBody,
		Format:        event.FormatHTML,
		FormattedBody: htmlBody,
	}
	_, err := c.mx.SendMessageEvent(ctx, roomID, event.EventMessage, content)
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", roomID, err)
	}
	return nil
}
