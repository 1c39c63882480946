package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"mxshs/livescores/src/domain"
	"mxshs/livescores/src/merge"
)

// FileStore keeps every fixture's updates in one JSON object keyed by
// "{home} vs {away}".
type FileStore struct {
	path string
	loc  *time.Location
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, loc: time.UTC}
}

// InLocation sets the zone used for stored timestamps written without an
// offset, as "2025-07-20T15:30:00.123456".
func (f *FileStore) InLocation(loc *time.Location) *FileStore {
	if loc != nil {
		f.loc = loc
	}
	return f
}

// fileRecord reads the timestamp as text so both RFC 3339 and zone-less
// values decode.
type fileRecord struct {
	domain.UpdateRecord
	Timestamp string `json:"timestamp"`
}

const localTimestamp = "2006-01-02T15:04:05"

func (f *FileStore) parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	// Fractional seconds after the layout's seconds are accepted when parsing
	return time.ParseInLocation(localTimestamp, s, f.loc)
}

func (f *FileStore) Path() string {
	return f.path
}

// Load reads the stored updates. A missing file is an empty store.
func (f *FileStore) Load() (map[domain.MatchKey][]domain.UpdateRecord, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[domain.MatchKey][]domain.UpdateRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	raw := map[domain.MatchKey][]fileRecord{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}

	existing := make(map[domain.MatchKey][]domain.UpdateRecord, len(raw))
	for key, records := range raw {
		updates := make([]domain.UpdateRecord, 0, len(records))
		for _, r := range records {
			ts, err := f.parseTimestamp(r.Timestamp)
			if err != nil {
				return nil, fmt.Errorf("decode %s: %s: %w", f.path, key, err)
			}
			u := r.UpdateRecord
			u.Timestamp = ts
			updates = append(updates, u)
		}
		existing[key] = updates
	}
	return existing, nil
}

// Merge adds the run's updates to the file, skipping ones already stored
// under the same (minute, scores). It returns the number added and the
// total now stored.
func (f *FileStore) Merge(run map[domain.MatchKey][]domain.UpdateRecord) (int, int, error) {
	existing, err := f.Load()
	if err != nil {
		return 0, 0, err
	}

	added := merge.MergePersisted(existing, run)

	total := 0
	for _, updates := range existing {
		total += len(updates)
	}

	if err := f.write(existing); err != nil {
		return 0, 0, err
	}
	return added, total, nil
}

func (f *FileStore) write(updates map[domain.MatchKey][]domain.UpdateRecord) error {
	data, err := json.MarshalIndent(updates, "", "  ")
	if err != nil {
		return fmt.Errorf("encode updates: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}
