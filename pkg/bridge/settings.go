// Copyright 2026 Aiku AI
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bridge

import "strconv"

// Global configuration keys. All string-valued; empty means unset.
const (
	KeyHomeserverURL  = "matrix_homeserver_url"
	KeyToken          = "matrix_token"
	KeyUsername       = "matrix_username"
	KeyPassword       = "matrix_password"
	KeyApplicationURL = "application_url"
)

// Per-project metadata keys. Room is a string room alias or ID; the rest are
// booleans that default to true when absent.
const (
	KeyRoom             = "matrix_room"
	KeyUseColours       = "matrix_use_colours"
	KeyEmbedComments    = "matrix_embed_comments"
	KeyEmbedDescription = "matrix_embed_description"
	KeySendNotices      = "matrix_send_notices"
)

// ConfigSource provides global, string-valued settings. An empty string
// means the key is unset.
type ConfigSource interface {
	Get(key string) string
}

// ProjectMetadataSource provides per-project settings. ok is false when the
// key is not set for the project.
type ProjectMetadataSource interface {
	ProjectMeta(projectID int64, key string) (value string, ok bool)
}

// ActorSource reports the user on whose behalf the current event fired.
// ok is false when there is no authenticated actor.
type ActorSource interface {
	Actor() (displayName string, ok bool)
}

// LinkBuilder renders absolute deep links into the upstream task board.
type LinkBuilder interface {
	TaskURL(taskID, projectID int64) string
}

// projectFlag resolves a per-project boolean setting. Absent or unparseable
// values default to true.
func projectFlag(src ProjectMetadataSource, projectID int64, key string) bool {
	raw, ok := src.ProjectMeta(projectID, key)
	if !ok {
		return true
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return value
}
