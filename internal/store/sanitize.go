// ABOUTME: Sanitization applied by the gateway before anything reaches disk
// ABOUTME: Strips bracketed control markers, normalizes whitespace, applies NFC
package store

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// controlMarker matches the double-bracketed control tokens the chat
// pipeline uses for routing, e.g. [[memory]] or [[state:focus]]. They
// must never survive into canonical storage.
var controlMarker = regexp.MustCompile(`\[\[[A-Za-z0-9_:\-./ ]{1,48}\]\]`)

// rolePrefix matches conversational role labels at the start of a line.
// Stripped from retrieval output, never from stored records.
var rolePrefix = regexp.MustCompile(`(?i)^(user|assistant|system|ai)\s*:\s*`)

// StripMarkers removes control markers and applies NFC so that the stored
// form of a string does not depend on the Unicode form the caller used.
func StripMarkers(s string) string {
	return norm.NFC.String(controlMarker.ReplaceAllString(s, ""))
}

// StripRolePrefix removes a leading conversational role label from a line.
func StripRolePrefix(line string) string {
	return rolePrefix.ReplaceAllString(line, "")
}

// Line collapses a string to a single trimmed line: markers stripped,
// internal line breaks and tab runs become single spaces.
func Line(s string) string {
	s = StripMarkers(s)
	s = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ", "\t", " ").Replace(s)
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.TrimSpace(s)
}

// Text normalizes a narrative document: markers stripped, trailing spaces
// trimmed per line, runs of more than two blank lines collapsed to two,
// and the whole document trimmed.
func Text(s string) string {
	s = StripMarkers(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blanks := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blanks++
			if blanks > 2 {
				continue
			}
		} else {
			blanks = 0
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
