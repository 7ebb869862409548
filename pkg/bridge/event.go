// Copyright 2026 Aiku AI
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bridge

// Event names recognized by the renderer. Any other name still produces a
// title line, but no embedded body.
const (
	EventCommentCreate = "comment.create"
	EventCommentUpdate = "comment.update"
	EventTaskCreate    = "task.create"
	EventTaskUpdate    = "task.update"
)

// Project identifies the project an event belongs to.
type Project struct {
	ID int64 `json:"id"`
}

// User identifies a board user. Only used by the (no-op) user notification
// path.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// EventPayload is the structured event data delivered by the upstream
// webhook. Task is present for every recognized event; Comment only for
// comment events.
type EventPayload struct {
	Task    TaskPayload     `json:"task"`
	Comment *CommentPayload `json:"comment,omitempty"`
}

// TaskPayload describes the task an event refers to.
type TaskPayload struct {
	ID          int64  `json:"id"`
	ProjectID   int64  `json:"project_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CommentPayload carries the comment text for comment events.
type CommentPayload struct {
	Comment string `json:"comment"`
}
