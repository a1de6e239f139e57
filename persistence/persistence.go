// Package persistence handles the one artifact the judge writes to
// disk: a scoreboard dump, taken whenever an admin installs a new
// level and reloaded into the global scoreboard at startup.
package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"pacjudge/scoreboard"
)

// dumpRecord is the on-disk shape of a scoreboard dump: the per-user map
// keyed by username, flattened to a slice for stable JSON ordering.
type dumpRecord struct {
	Users []userRecord `json:"users"`
}

type userRecord struct {
	User         string `json:"user"`
	Solved       uint64 `json:"solved"`
	TimePenalty  int64  `json:"timePenalty"`
	SizePenalty  uint64 `json:"sizePenalty"`
	SpeedPenalty uint64 `json:"speedPenalty"`
}

// DumpFileName returns the filename a dump taken at t should be written
// to: a UTC timestamp with ":" replaced by "-", plus a .json extension.
func DumpFileName(t time.Time) string {
	stamp := strings.ReplaceAll(t.UTC().Format(time.RFC3339), ":", "-")
	return stamp + ".json"
}

// Dump serializes board's entries to dir/DumpFileName(at) and returns
// the full path written.
func Dump(dir string, board *scoreboard.Scoreboard, at time.Time) (string, error) {
	snapshot := board.Snapshot()
	record := dumpRecord{Users: make([]userRecord, len(snapshot))}
	for i, e := range snapshot {
		record.Users[i] = userRecord{
			User:         e.User,
			Solved:       e.Solved,
			TimePenalty:  e.TimePenalty,
			SizePenalty:  e.SizePenalty,
			SpeedPenalty: e.SpeedPenalty,
		}
	}
	sort.Slice(record.Users, func(i, j int) bool { return record.Users[i].User < record.Users[j].User })

	raw, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("persistence: marshaling scoreboard dump: %w", err)
	}

	path := filepath.Join(dir, DumpFileName(at))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("persistence: writing %s: %w", path, err)
	}
	return path, nil
}

// Load deserializes a scoreboard dump from path into a fresh Scoreboard.
// Deserialization failure here is fatal to process startup; the caller
// is expected to treat it as such (the operator can point at a
// different file or omit the option and retry).
func Load(path string) (*scoreboard.Scoreboard, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("persistence: reading %s: %w", path, err)
	}

	var record dumpRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("persistence: decoding %s: %w", path, err)
	}

	board := scoreboard.New()
	for _, u := range record.Users {
		board.Restore(u.User, scoreboard.UserScore{
			Solved:       u.Solved,
			TimePenalty:  u.TimePenalty,
			SizePenalty:  u.SizePenalty,
			SpeedPenalty: u.SpeedPenalty,
		})
	}
	return board, nil
}
