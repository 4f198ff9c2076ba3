package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vainnor/vatsim-scraper/types"
)

// Category separates pilot sessions from controller sessions.
type Category string

const (
	CategoryPilot      Category = "pilot"
	CategoryController Category = "controller"
)

// Categories lists every category in flush order.
var Categories = []Category{CategoryPilot, CategoryController}

// Dir is the archive directory name for the category.
func (c Category) Dir() string {
	return string(c) + "s"
}

// ParseCategory accepts both the singular and the directory form.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "pilot", "pilots":
		return CategoryPilot, nil
	case "controller", "controllers":
		return CategoryController, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// EndStatus records why a session was closed.
type EndStatus string

const (
	EndNormal         EndStatus = "normal"
	EndScraperStopped EndStatus = "scraper_stopped"
)

var (
	ErrNilRecord       = errors.New("nil session record")
	ErrMissingCallsign = errors.New("missing callsign")
	ErrMissingCID      = errors.New("missing cid")
)

// Session is one continuous presence of a pilot or controller under a callsign.
type Session struct {
	ID          string            `json:"session_id"`
	Category    Category          `json:"category"`
	CID         int               `json:"cid"`
	Callsign    string            `json:"callsign"`
	Name        string            `json:"name"`
	Server      string            `json:"server"`
	Rating      int               `json:"rating"`
	FlightPlan  *types.FlightPlan `json:"flight_plan,omitempty"`
	LogonTime   time.Time         `json:"logon_time"`
	FirstSeen   time.Time         `json:"first_seen"`
	LastUpdated time.Time         `json:"last_updated"`
	EndStatus   EndStatus         `json:"end_status"`
	EndedAt     *time.Time        `json:"ended_at,omitempty"`
	// Details is the feed record as first observed.
	Details json.RawMessage `json:"details,omitempty"`
}

// Validate reports the first missing required field.
func (s *Session) Validate() error {
	if s == nil {
		return ErrNilRecord
	}
	if s.Callsign == "" {
		return ErrMissingCallsign
	}
	if s.CID == 0 {
		return fmt.Errorf("%s: %w", s.Callsign, ErrMissingCID)
	}
	return nil
}

// Open marks the session as a fresh connection first seen at now.
func (s *Session) Open(now time.Time) {
	s.ID = uuid.New().String()
	s.FirstSeen = now
	s.EndStatus = EndNormal
	s.EndedAt = nil
}

// Close stamps the end of the session.
func (s *Session) Close(status EndStatus, now time.Time) {
	s.EndStatus = status
	ended := now
	s.EndedAt = &ended
}

// HasFlightPlan reports whether a flight plan was filed.
func (s *Session) HasFlightPlan() bool {
	return s.FlightPlan != nil
}

// Table holds the active sessions of one category keyed by callsign.
type Table map[string]*Session

// Clone returns a shallow copy of the table; sessions are shared.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Callsigns returns the table keys in sorted order.
func (t Table) Callsigns() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
