// Package ical reads subscribe-format calendar feeds published by booking
// platforms and writes the unit calendars they import back.
package ical

import (
	"bufio"
	"strings"

	"maisonette/models"
)

// maxLineSize bounds a single unfolded content line.
const maxLineSize = 1 << 20

// Parse extracts every VEVENT carrying both a start and an end date.
// Anything it cannot read is skipped, so garbage input yields no events
// instead of an error.
func Parse(content, feedID string) []models.FeedEvent {
	var (
		events  []models.FeedEvent
		current *models.FeedEvent
	)

	scanner := bufio.NewScanner(strings.NewReader(unfold(content)))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "BEGIN:VEVENT":
			current = &models.FeedEvent{FeedID: feedID}
		case line == "END:VEVENT":
			if current != nil && current.Start != "" && current.End != "" {
				events = append(events, *current)
			}
			current = nil
		case current == nil:
		case hasProperty(line, "DTSTART"):
			current.Start = NormalizeDate(value(line))
		case hasProperty(line, "DTEND"):
			current.End = NormalizeDate(value(line))
		case hasProperty(line, "SUMMARY"):
			current.Label = unescape(value(line))
		case hasProperty(line, "UID"):
			current.UID = value(line)
		}
	}
	return events
}

// NormalizeDate turns 20250901, 20250901T140000Z, 2025-09-01 or
// TZID=Europe/Rome:20250901T140000 into 2025-09-01. It returns "" when no
// valid calendar date can be read.
func NormalizeDate(token string) string {
	token = strings.TrimSpace(token)
	if i := strings.LastIndex(token, ":"); i >= 0 {
		token = token[i+1:]
	}
	token = strings.NewReplacer("T", "", "Z", "", "-", "").Replace(token)
	if len(token) < 8 {
		return ""
	}
	digits := token[:8]
	date := digits[:4] + "-" + digits[4:6] + "-" + digits[6:8]
	if _, err := models.ParseDate(date); err != nil {
		return ""
	}
	return date
}

// unfold joins continuation lines (CRLF or LF followed by a space or tab)
// and normalizes line endings.
func unfold(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\n ", "")
	content = strings.ReplaceAll(content, "\n\t", "")
	return content
}

// hasProperty matches NAME:value and NAME;PARAM=...:value.
func hasProperty(line, name string) bool {
	if !strings.HasPrefix(line, name) {
		return false
	}
	rest := line[len(name):]
	return strings.HasPrefix(rest, ":") || strings.HasPrefix(rest, ";")
}

func value(line string) string {
	_, v, ok := strings.Cut(line, ":")
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

var textUnescaper = strings.NewReplacer(`\n`, " ", `\N`, " ", `\,`, ",", `\;`, ";", `\\`, `\`)

func unescape(s string) string {
	return textUnescaper.Replace(s)
}
