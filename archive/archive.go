// Package archive persists ended sessions as one JSON file per category and
// calendar day under a root directory.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vainnor/vatsim-scraper/models"
)

// DayLayout is the compact date key used for archive and log file names.
const DayLayout = "060102"

// DayKey formats t as an archive day key.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

type Store struct {
	root string
}

// New creates the root directory and one directory per category.
func New(root string) (*Store, error) {
	for _, c := range models.Categories {
		if err := os.MkdirAll(filepath.Join(root, c.Dir()), 0o755); err != nil {
			return nil, fmt.Errorf("create archive directory: %w", err)
		}
	}
	return &Store{root: root}, nil
}

func (s *Store) path(category models.Category, dayKey string) string {
	return filepath.Join(s.root, category.Dir(), dayKey+".json")
}

// Load returns the archived sessions of a day, or nil when no archive exists.
func (s *Store) Load(category models.Category, dayKey string) ([]*models.Session, error) {
	data, err := os.ReadFile(s.path(category, dayKey))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	var records []*models.Session
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode archive %s/%s: %w", category.Dir(), dayKey, err)
	}
	return records, nil
}

// Result describes one flush.
type Result struct {
	// Written is the number of records appended, not the merged total.
	Written int
	// Merged is set when the day already had archived records.
	Merged bool
}

// Flush appends records to the day's archive, creating it if needed. An empty
// batch leaves the archive untouched.
func (s *Store) Flush(category models.Category, records []*models.Session, dayKey string) (Result, error) {
	if len(records) == 0 {
		return Result{}, nil
	}

	existing, err := s.Load(category, dayKey)
	if err != nil {
		return Result{}, err
	}
	merged := make([]*models.Session, 0, len(existing)+len(records))
	merged = append(merged, existing...)
	merged = append(merged, records...)

	if err := s.write(s.path(category, dayKey), merged); err != nil {
		return Result{}, err
	}
	return Result{Written: len(records), Merged: existing != nil}, nil
}

// write replaces path through a temp file so readers never see a partial archive.
func (s *Store) write(path string, records []*models.Session) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode archive: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".flush-*")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace archive: %w", err)
	}
	return nil
}

// Days lists the archived day keys of a category, oldest first.
func (s *Store) Days(category models.Category) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, category.Dir()))
	if err != nil {
		return nil, fmt.Errorf("list archive: %w", err)
	}
	var days []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		days = append(days, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(days)
	return days, nil
}
