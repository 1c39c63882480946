package parser

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		minute    int
		homeTeam  string
		homeScore string
		awayTeam  string
		awayScore string
	}{
		{"plain", "67 mins: Kilkenny 2-20 Galway 1-18", 67, "Kilkenny", "2-20", "Galway", "1-18"},
		{"injury time", "70+2 mins: Kilkenny 2-20 Galway 1-18", 72, "Kilkenny", "2-20", "Galway", "1-18"},
		{"zero minute", "0 mins: Cork 0-00 Clare 0-00", 0, "Cork", "0-00", "Clare", "0-00"},
		{"multi word teams", "45 mins: St Martin's 1-09 Mount Leinster Rangers 0-12", 45, "St Martin's", "1-09", "Mount Leinster Rangers", "0-12"},
		{"extra whitespace", "\n  51 mins:   Dublin   0-14  Kerry 1-10 \n", 51, "Dublin", "0-14", "Kerry", "1-10"},
		{"trailing commentary", "33 mins: Limerick 0-15 Cork 0-11 Point from play for Limerick.", 33, "Limerick", "0-15", "Cork", "0-11"},
		{"leading text", "Goal! 22 mins: Wexford 1-05 Laois 0-06", 22, "Wexford", "1-05", "Laois", "0-06"},
	}

	ts := time.Date(2025, 7, 20, 15, 30, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, ok := ParseAt(tt.text, ts)
			if !ok {
				t.Fatalf("ParseAt(%q) reported no match", tt.text)
			}
			m, hasMinute := u.MinuteValue()
			if !hasMinute || m != tt.minute {
				t.Errorf("minute = %d (present %v), want %d", m, hasMinute, tt.minute)
			}
			if u.HomeTeam != tt.homeTeam {
				t.Errorf("home team = %q, want %q", u.HomeTeam, tt.homeTeam)
			}
			if u.HomeScore != tt.homeScore {
				t.Errorf("home score = %q, want %q", u.HomeScore, tt.homeScore)
			}
			if u.AwayTeam != tt.awayTeam {
				t.Errorf("away team = %q, want %q", u.AwayTeam, tt.awayTeam)
			}
			if u.AwayScore != tt.awayScore {
				t.Errorf("away score = %q, want %q", u.AwayScore, tt.awayScore)
			}
			if u.RawText != tt.text {
				t.Errorf("raw text = %q, want %q", u.RawText, tt.text)
			}
			if !u.Timestamp.Equal(ts) {
				t.Errorf("timestamp = %v, want %v", u.Timestamp, ts)
			}
		})
	}
}

func TestParse_NoMatch(t *testing.T) {
	for _, text := range []string{
		"no score info here",
		"",
		"Half-time",
		"FT: Kilkenny 2-20 Galway 1-18",
		"67 mins: Kilkenny 2-20",
		"67 minutes: Kilkenny 2-20 Galway 1-18",
		"99999999999999999999 mins: Kilkenny 2-20 Galway 1-18",
	} {
		if u, ok := Parse(text); ok {
			t.Errorf("Parse(%q) = %+v, want no match", text, u)
		}
	}
}

func TestParse_Markers(t *testing.T) {
	tests := []struct {
		text     string
		final    bool
		halftime bool
	}{
		{"67 mins: Kilkenny 2-20 Galway 1-18", false, false},
		{"FT: 70+4 mins: Kilkenny 2-22 Galway 1-19", true, false},
		{"Full-time 70+4 mins: Kilkenny 2-22 Galway 1-19", true, false},
		{"full time: 70 mins: Kilkenny 2-22 Galway 1-19", true, false},
		{"Half-time: 35+2 mins: Dublin 0-10 Kerry 0-08", false, true},
		{"HT HT half time 35 mins: Dublin 0-10 Kerry 0-08", false, true},
	}

	for _, tt := range tests {
		u, ok := Parse(tt.text)
		if !ok {
			t.Fatalf("Parse(%q) reported no match", tt.text)
		}
		if u.IsFinal != tt.final {
			t.Errorf("Parse(%q).IsFinal = %v, want %v", tt.text, u.IsFinal, tt.final)
		}
		if u.IsHalftime != tt.halftime {
			t.Errorf("Parse(%q).IsHalftime = %v, want %v", tt.text, u.IsHalftime, tt.halftime)
		}
	}
}

// Markers are plain substrings, so "after" carries "ft".
func TestParse_MarkerSubstring(t *testing.T) {
	u, ok := Parse("12 mins: Cork 0-03 Clare 0-02 after a stoppage")
	if !ok {
		t.Fatalf("expected a match")
	}
	if !u.IsFinal {
		t.Errorf("expected IsFinal from substring match")
	}
}

func TestMarkersWithoutScoreLine(t *testing.T) {
	if !IsHalftime("Half-time in Croke Park") {
		t.Errorf("IsHalftime should see the marker")
	}
	if !IsFinal("Full-time: what a game") {
		t.Errorf("IsFinal should see the marker")
	}
	if _, ok := Parse("Half-time in Croke Park"); ok {
		t.Errorf("half-time without a score line should not parse")
	}
}

func TestAnnouncesFullTime(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"FT: Kilkenny 2-22 Galway 1-19", true},
		{"Full-time: what a game", true},
		{"full time in Thurles", true},
		{"Fulltime whistle", true},
		{"64 mins: Kilkenny 2-18 Galway 1-17 with six minutes left", false},
		{"12 mins: Cork 0-03 Clare 0-02 after a stoppage", false},
		{"a soft free and a shift in momentum", false},
		{"Half-time", false},
	}

	for _, tt := range tests {
		if got := AnnouncesFullTime(tt.text); got != tt.want {
			t.Errorf("AnnouncesFullTime(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
