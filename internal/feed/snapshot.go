package feed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wonny/newslens/internal/contracts"
)

// snapshotEntry is the JSON shape of one feed entry in a snapshot file.
type snapshotEntry struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Content   string `json:"content"`
}

// snapshotFile is the JSON shape of a full feed snapshot.
type snapshotFile struct {
	FetchedAt string          `json:"fetched_at"`
	Entries   []snapshotEntry `json:"entries"`
}

// WriteSnapshot dumps normalized feed entries to a JSON file for inspection.
// 스냅샷은 디버깅용이며 파이프라인 산출물이 아니다.
func WriteSnapshot(path string, entries []contracts.FeedEntry) error {
	snap := snapshotFile{
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:   make([]snapshotEntry, 0, len(entries)),
	}

	for _, e := range entries {
		se := snapshotEntry{
			Title:   e.Title,
			Link:    e.Link,
			Content: e.Content,
		}
		if !e.Published.IsZero() {
			se.Published = e.Published.Format(time.RFC3339)
		}
		if !e.EndDate.IsZero() {
			se.EndDate = e.EndDate.Format(contracts.DateLayout)
		}
		snap.Entries = append(snap.Entries, se)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	return nil
}
