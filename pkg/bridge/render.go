// Copyright 2026 Aiku AI
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bridge

import (
	"fmt"
	"html"
	"strings"

	"github.com/aiku/taskboard-matrix/pkg/bridge/htmlfmt"
)

// RenderedMessage is a message body in both representations sent to Matrix.
// Text is always derived from HTML by stripping tags and decoding entities,
// never built independently.
type RenderedMessage struct {
	HTML string
	Text string
}

// eventTitles maps event names to title templates, with and without an
// acting user. Unrecognized events fall back to a generic line.
var eventTitles = map[string][2]string{
	EventCommentCreate: {"%s commented on a task", "New comment"},
	EventCommentUpdate: {"%s updated a comment", "Comment updated"},
	EventTaskCreate:    {"%s created a new task", "New task"},
	EventTaskUpdate:    {"%s updated a task", "Task updated"},
}

// Renderer builds message bodies from events. It only reads from the
// injected sources and keeps no state of its own.
type Renderer struct {
	config   ConfigSource
	projects ProjectMetadataSource
	actor    ActorSource
	links    LinkBuilder
}

// NewRenderer creates a renderer on top of the given read-only lookups.
func NewRenderer(config ConfigSource, projects ProjectMetadataSource, actor ActorSource, links LinkBuilder) *Renderer {
	return &Renderer{
		config:   config,
		projects: projects,
		actor:    actor,
		links:    links,
	}
}

// Render builds the HTML message body for an event and derives the
// plain-text fallback from it.
func (r *Renderer) Render(projectID int64, eventName string, payload *EventPayload) RenderedMessage {
	useColours := projectFlag(r.projects, projectID, KeyUseColours)

	var b strings.Builder
	if useColours {
		b.WriteString(`<font color="green">`)
	}
	b.WriteString(html.EscapeString(r.title(eventName)))
	if useColours {
		b.WriteString("</font>")
	}
	b.WriteString(" (<b>")
	b.WriteString(html.EscapeString(payload.Task.Title))
	b.WriteString("</b>) ")

	if r.config.Get(KeyApplicationURL) != "" {
		url := r.links.TaskURL(payload.Task.ID, projectID)
		if useColours {
			b.WriteString(`<font color="teal">`)
		}
		b.WriteString(html.EscapeString(url))
		if useColours {
			b.WriteString("</font>")
		}
	}

	b.WriteString(r.eventBody(projectID, eventName, payload))

	htmlBody := b.String()
	return RenderedMessage{
		HTML: htmlBody,
		Text: htmlfmt.ToPlainText(htmlBody),
	}
}

// title resolves the message title, including the acting user's name when a
// session user triggered the event.
func (r *Renderer) title(eventName string) string {
	author, logged := r.actor.Actor()
	titles, known := eventTitles[eventName]
	if !known {
		if logged {
			return fmt.Sprintf("%s triggered %s", author, eventName)
		}
		return eventName
	}
	if logged {
		return fmt.Sprintf(titles[0], author)
	}
	return titles[1]
}

// eventBody returns the event-specific supplemental body: the comment text
// for comment events, the task description for task events, empty for
// everything else. Each is gated by its own per-project flag.
func (r *Renderer) eventBody(projectID int64, eventName string, payload *EventPayload) string {
	switch eventName {
	case EventCommentCreate, EventCommentUpdate:
		if !projectFlag(r.projects, projectID, KeyEmbedComments) || payload.Comment == nil {
			return ""
		}
		return "<p>" + html.EscapeString(payload.Comment.Comment) + "</p>"
	case EventTaskCreate, EventTaskUpdate:
		if !projectFlag(r.projects, projectID, KeyEmbedDescription) {
			return ""
		}
		return "<p>" + html.EscapeString(payload.Task.Description) + "</p>"
	default:
		return ""
	}
}
