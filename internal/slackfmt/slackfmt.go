// Package slackfmt adapts model-generated text for Slack's message surface.
package slackfmt

import (
	"regexp"
	"strings"
)

// Slack renders markdown only partially: **bold**, headings and -/*/+ list
// markers show up as literal characters. Generated completions routinely
// contain them, so they are stripped before posting.
var (
	boldStars       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	boldUnderscores = regexp.MustCompile(`__(.+?)__`)
	headingPrefix   = regexp.MustCompile(`(?m)^[ \t]{0,3}#{1,6}[ \t]+`)
	bulletPrefix    = regexp.MustCompile(`(?m)^([ \t]*)[-*+][ \t]+`)
)

// StripMarkdown removes markdown constructs that Slack does not render.
// Bold and underscore emphasis markers are dropped, heading prefixes are
// removed and list bullets are replaced with "•". The function is pure and
// idempotent: text that is already plain passes through unchanged.
func StripMarkdown(text string) string {
	text = boldStars.ReplaceAllString(text, "$1")
	text = boldUnderscores.ReplaceAllString(text, "$1")
	text = headingPrefix.ReplaceAllString(text, "")
	text = bulletPrefix.ReplaceAllString(text, "$1• ")
	return strings.TrimSpace(text)
}
