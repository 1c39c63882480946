package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"mxshs/livescores/src/domain"
)

var fullTimeMarkers = []string{"FT:", "Full-time:", "Full time:", "Full-time", "FT"}

var halftimeMarkers = []string{"Half-time", "Half time", "HT:", "HT"}

// Matches "67 mins: Kilkenny 2-20 Galway 1-18" and "70+2 mins: ...".
var scoreLine = regexp.MustCompile(
	`(\d+)(?:\+(\d+))?\s+mins:\s+(.+?)\s+(\d+-\d+)\s+(.+?)\s+(\d+-\d+)`,
)

// Whole-word full-time announcement, so "left" or "after" do not count.
var fullTimeWord = regexp.MustCompile(`(?i)\b(ft|full[- ]?time)\b`)

// Parse extracts a score update from one live-blog text block. It reports
// false when the block has no score line, even if it announces half or full
// time.
func Parse(text string) (domain.UpdateRecord, bool) {
	return ParseAt(text, time.Now())
}

func ParseAt(text string, ts time.Time) (domain.UpdateRecord, bool) {
	m := scoreLine.FindStringSubmatch(text)
	if m == nil {
		return domain.UpdateRecord{}, false
	}

	base, err := strconv.Atoi(m[1])
	if err != nil {
		return domain.UpdateRecord{}, false
	}

	extra := 0
	if m[2] != "" {
		extra, err = strconv.Atoi(m[2])
		if err != nil {
			return domain.UpdateRecord{}, false
		}
	}

	minute := base + extra
	if minute < base {
		return domain.UpdateRecord{}, false
	}

	return domain.UpdateRecord{
		Minute:     &minute,
		HomeTeam:   strings.TrimSpace(m[3]),
		HomeScore:  m[4],
		AwayTeam:   strings.TrimSpace(m[5]),
		AwayScore:  m[6],
		IsFinal:    IsFinal(text),
		IsHalftime: IsHalftime(text),
		RawText:    text,
		Timestamp:  ts,
	}, true
}

// IsFinal reports whether text contains a full-time marker.
func IsFinal(text string) bool {
	return containsAny(text, fullTimeMarkers)
}

// AnnouncesFullTime reports whether text declares the final whistle as a
// word of its own. IsFinal is looser and also fires inside other words.
func AnnouncesFullTime(text string) bool {
	return fullTimeWord.MatchString(text)
}

// IsHalftime reports whether text contains a half-time marker.
func IsHalftime(text string) bool {
	return containsAny(text, halftimeMarkers)
}

func containsAny(text string, markers []string) bool {
	lower := strings.ToLower(text)
	for _, m := range markers {
		if strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}
