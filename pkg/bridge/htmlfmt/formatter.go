// Copyright 2026 Aiku AI
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package htmlfmt derives the plain-text fallback body from a rendered HTML
// message body.
package htmlfmt

import (
	"html"
	"regexp"
)

var tagRe = regexp.MustCompile(`<[^>]+>`)

// ToPlainText strips all HTML tags, then decodes HTML entities back to
// literal characters. Tags are removed before decoding so that escaped
// markup inside the message text survives as text.
func ToPlainText(htmlBody string) string {
	return html.UnescapeString(tagRe.ReplaceAllString(htmlBody, ""))
}
