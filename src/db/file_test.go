package db

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mxshs/livescores/src/domain"
)

func record(minute int, home, away string) domain.UpdateRecord {
	return domain.UpdateRecord{
		Minute:    domain.IntPtr(minute),
		HomeTeam:  "Kilkenny",
		HomeScore: home,
		AwayTeam:  "Galway",
		AwayScore: away,
		RawText:   "scraped",
		Timestamp: time.Date(2025, 7, 20, 15, minute%60, 0, 0, time.UTC),
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "live_updates.json"))
	got, err := fs.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty store, got %v", got)
	}
}

func TestFileStoreMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live_updates.json")
	fs := NewFileStore(path)
	key := domain.MatchKey("Kilkenny vs Galway")

	first := map[domain.MatchKey][]domain.UpdateRecord{
		key: {record(10, "0-03", "0-02"), record(15, "0-05", "0-02")},
	}
	added, total, err := fs.Merge(first)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if added != 2 || total != 2 {
		t.Fatalf("added, total = %d, %d, want 2, 2", added, total)
	}

	again := record(15, "0-05", "0-02")
	again.RawText = "15 mins: Kilkenny 0-05 Galway 0-02 (re-scraped)"
	second := map[domain.MatchKey][]domain.UpdateRecord{
		key: {again, record(20, "1-05", "0-04")},
	}
	added, total, err = fs.Merge(second)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if added != 1 || total != 3 {
		t.Fatalf("added, total = %d, %d, want 1, 3", added, total)
	}

	stored, err := fs.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(stored[key]) != 3 {
		t.Fatalf("stored = %d updates, want 3", len(stored[key]))
	}
	if stored[key][1].RawText != "scraped" {
		t.Errorf("existing update was replaced: %q", stored[key][1].RawText)
	}
	if m, _ := stored[key][2].MinuteValue(); m != 20 {
		t.Errorf("last minute = %d, want 20", m)
	}
}

func TestFileStoreMergeIdempotent(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "live_updates.json"))
	run := map[domain.MatchKey][]domain.UpdateRecord{
		"Kilkenny vs Galway": {record(10, "0-03", "0-02"), record(15, "0-05", "0-02")},
	}

	if _, _, err := fs.Merge(run); err != nil {
		t.Fatalf("merge: %v", err)
	}
	added, total, err := fs.Merge(run)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if added != 0 || total != 2 {
		t.Fatalf("added, total = %d, %d, want 0, 2", added, total)
	}
}

func TestFileStoreFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live_updates.json")
	fs := NewFileStore(path)

	halftime := domain.UpdateRecord{HomeTeam: "Dublin", AwayTeam: "Kerry", HomeScore: "0-10", AwayScore: "0-08", IsHalftime: true}
	run := map[domain.MatchKey][]domain.UpdateRecord{
		"Dublin vs Kerry": {halftime},
	}
	if _, _, err := fs.Merge(run); err != nil {
		t.Fatalf("merge: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var raw map[string][]map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	entry := raw["Dublin vs Kerry"][0]
	if v, ok := entry["minute"]; !ok || v != nil {
		t.Errorf("minute = %v (present %v), want null", v, ok)
	}
	for _, field := range []string{"home_team", "home_score", "away_team", "away_score", "is_final", "is_halftime", "raw_text", "timestamp"} {
		if _, ok := entry[field]; !ok {
			t.Errorf("missing field %q in %s", field, data)
		}
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live_updates.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, _, err := NewFileStore(path).Merge(nil); err == nil {
		t.Fatalf("expected error for corrupt file")
	}
}

// Files written by earlier scrapers carry local timestamps without an offset.
func TestFileStoreLoadZonelessTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live_updates.json")
	data := `{
  "Kilkenny vs Galway": [
    {
      "minute": 65,
      "home_team": "Kilkenny",
      "home_score": "2-16",
      "away_team": "Galway",
      "away_score": "1-15",
      "is_final": false,
      "is_halftime": false,
      "raw_text": "65 mins: Kilkenny 2-16 Galway 1-15",
      "timestamp": "2025-07-20T15:30:00.123456"
    },
    {
      "minute": null,
      "home_team": "Kilkenny",
      "home_score": "1-08",
      "away_team": "Galway",
      "away_score": "0-10",
      "is_final": false,
      "is_halftime": true,
      "raw_text": "Half-time",
      "timestamp": "2025-07-20T14:40:00"
    }
  ]
}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	dublin := time.FixedZone("IST", 60*60)
	fs := NewFileStore(path).InLocation(dublin)

	stored, err := fs.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := stored["Kilkenny vs Galway"]
	if len(got) != 2 {
		t.Fatalf("updates = %d, want 2", len(got))
	}

	want := time.Date(2025, 7, 20, 15, 30, 0, 123456000, dublin)
	if !got[0].Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", got[0].Timestamp, want)
	}
	if m, _ := got[0].MinuteValue(); m != 65 || got[0].HomeScore != "2-16" {
		t.Errorf("first update = %+v", got[0])
	}
	if got[1].Minute != nil || !got[1].IsHalftime {
		t.Errorf("second update = %+v", got[1])
	}

	added, total, err := fs.Merge(map[domain.MatchKey][]domain.UpdateRecord{
		"Kilkenny vs Galway": {record(65, "2-16", "1-15"), record(70, "2-18", "1-16")},
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if added != 1 || total != 3 {
		t.Errorf("added, total = %d, %d, want 1, 3", added, total)
	}
}

func TestFileStoreWritesReadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live_updates.json")
	run := map[domain.MatchKey][]domain.UpdateRecord{
		"Kilkenny vs Galway": {record(10, "0-03", "0-02")},
	}
	if _, _, err := NewFileStore(path).Merge(run); err != nil {
		t.Fatalf("merge: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o644 {
		t.Errorf("mode = %v, want 0644", perm)
	}
}
