package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vainnor/vatsim-scraper/types"
)

func TestValidate(t *testing.T) {
	var nilSession *Session
	if err := nilSession.Validate(); !errors.Is(err, ErrNilRecord) {
		t.Fatalf("nil session err = %v, want %v", err, ErrNilRecord)
	}
	if err := (&Session{CID: 1}).Validate(); !errors.Is(err, ErrMissingCallsign) {
		t.Fatalf("missing callsign err = %v", err)
	}
	if err := (&Session{Callsign: "UAL123"}).Validate(); !errors.Is(err, ErrMissingCID) {
		t.Fatalf("missing cid err = %v", err)
	}
	if err := (&Session{Callsign: "UAL123", CID: 111}).Validate(); err != nil {
		t.Fatalf("valid session err = %v", err)
	}
}

func TestParseCategory(t *testing.T) {
	for in, want := range map[string]Category{
		"pilot":       CategoryPilot,
		"pilots":      CategoryPilot,
		"controller":  CategoryController,
		"controllers": CategoryController,
	} {
		got, err := ParseCategory(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseCategory("atis"); err == nil {
		t.Fatal("expected error for unknown category")
	}
	if CategoryController.Dir() != "controllers" {
		t.Fatalf("dir = %q, want controllers", CategoryController.Dir())
	}
}

func TestFromPilotKeepsFeedRecord(t *testing.T) {
	if s, err := FromPilot(nil); s != nil || err != nil {
		t.Fatalf("FromPilot(nil) = %+v, %v; want nil, nil", s, err)
	}

	updated := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	p := &types.Pilot{
		CID:         111,
		Callsign:    "UAL123",
		PilotRating: 3,
		Altitude:    35000,
		FlightPlan:  &types.FlightPlan{RevisionID: 1, Departure: "KSFO"},
		LastUpdated: updated,
	}
	s, err := FromPilot(p)
	if err != nil {
		t.Fatalf("from pilot: %v", err)
	}
	if s.Category != CategoryPilot || s.Rating != 3 || !s.LastUpdated.Equal(updated) {
		t.Fatalf("unexpected session %+v", s)
	}
	if !s.HasFlightPlan() {
		t.Fatal("expected flight plan")
	}

	var details types.Pilot
	if err := json.Unmarshal(s.Details, &details); err != nil {
		t.Fatalf("unmarshal details: %v", err)
	}
	if details.Altitude != 35000 {
		t.Fatalf("details altitude = %d, want 35000", details.Altitude)
	}
}

func TestFromControllersKeepsNilEntries(t *testing.T) {
	got, err := FromControllers([]*types.Controller{{CID: 1, Callsign: "EGLL_TWR"}, nil})
	if err != nil {
		t.Fatalf("from controllers: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[1] != nil {
		t.Fatal("expected nil entry to be preserved")
	}
	if got[0].Category != CategoryController || got[0].HasFlightPlan() {
		t.Fatalf("unexpected controller session %+v", got[0])
	}
}

func TestFromPilotsRejectsUnencodableRecord(t *testing.T) {
	bad := &types.Pilot{CID: 111, Callsign: "UAL123", LastUpdated: time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC)}
	got, err := FromPilots([]*types.Pilot{{CID: 222, Callsign: "DLH4"}, bad})
	if err == nil || got != nil {
		t.Fatalf("FromPilots = %v, %v; want encode error", got, err)
	}
	if !strings.Contains(err.Error(), "UAL123") {
		t.Fatalf("err = %v, want callsign in message", err)
	}
	if _, err := FromController(&types.Controller{CID: 9, Callsign: "EGLL_TWR", LogonTime: time.Date(-1, 1, 1, 0, 0, 0, 0, time.UTC)}); err == nil {
		t.Fatal("expected encode error for out of range logon time")
	}
}

func TestOpenAndClose(t *testing.T) {
	now := time.Now()
	s := &Session{Callsign: "EDDF_APP", CID: 2}
	s.Open(now)
	if s.ID == "" || s.EndStatus != EndNormal || !s.FirstSeen.Equal(now) {
		t.Fatalf("unexpected opened session %+v", s)
	}
	s.Close(EndScraperStopped, now.Add(time.Minute))
	if s.EndStatus != EndScraperStopped || s.EndedAt == nil {
		t.Fatalf("unexpected closed session %+v", s)
	}
}

func TestTableCallsignsSorted(t *testing.T) {
	table := Table{"C": {}, "A": {}, "B": {}}
	got := table.Callsigns()
	want := []string{"A", "B", "C"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("callsigns = %v, want %v", got, want)
		}
	}
	clone := table.Clone()
	delete(clone, "A")
	if _, ok := table["A"]; !ok {
		t.Fatal("clone must not share the map")
	}
}
