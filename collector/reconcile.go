package collector

import (
	"time"

	"github.com/vainnor/vatsim-scraper/models"
)

// EventKind is the classification of a single reconciled callsign.
type EventKind string

const (
	EventNew       EventKind = "new"
	EventContinued EventKind = "continued"
	EventChanged   EventKind = "changed"
	EventEnded     EventKind = "ended"
)

type Event struct {
	Kind     EventKind
	Callsign string
}

// Reconciliation is the outcome of comparing one category's active table
// with a fresh fetch.
type Reconciliation struct {
	Table     models.Table
	Ended     []*models.Session
	Processed int
	Events    []Event
}

// Count returns how many events of kind were recorded.
func (r Reconciliation) Count(kind EventKind) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// IsSameConnection reports whether two records describe the same connection:
// equal cid and callsign, and either no flight plan on both sides or flight
// plans with the same revision.
func IsSameConnection(a, b *models.Session) bool {
	if a == nil || b == nil {
		return false
	}
	if a.CID != b.CID || a.Callsign != b.Callsign {
		return false
	}
	if a.HasFlightPlan() != b.HasFlightPlan() {
		return false
	}
	if a.HasFlightPlan() {
		return a.FlightPlan.RevisionID == b.FlightPlan.RevisionID
	}
	return true
}

// Reconcile classifies every fetched record against previous and returns the
// updated table plus the sessions closed along the way, in close order.
// previous is never modified; on error nothing should be committed.
func Reconcile(category models.Category, previous models.Table, fetched []*models.Session, now time.Time) (Reconciliation, error) {
	for _, rec := range fetched {
		if err := rec.Validate(); err != nil {
			return Reconciliation{}, &Failure{Kind: KindReconcile, Category: category, Err: err}
		}
	}

	r := Reconciliation{Table: previous.Clone()}
	seen := make(map[string]bool, len(fetched))

	for _, rec := range fetched {
		seen[rec.Callsign] = true
		stored, ok := r.Table[rec.Callsign]
		switch {
		case !ok:
			r.open(category, rec, now)
			r.Events = append(r.Events, Event{Kind: EventNew, Callsign: rec.Callsign})
		case IsSameConnection(rec, stored):
			refreshed := *stored
			refreshed.LastUpdated = rec.LastUpdated
			r.Table[rec.Callsign] = &refreshed
			r.Events = append(r.Events, Event{Kind: EventContinued, Callsign: rec.Callsign})
		default:
			r.close(rec.Callsign, models.EndNormal, now)
			r.open(category, rec, now)
			r.Events = append(r.Events, Event{Kind: EventChanged, Callsign: rec.Callsign})
		}
		r.Processed++
	}

	for _, callsign := range previous.Callsigns() {
		if seen[callsign] {
			continue
		}
		r.close(callsign, models.EndNormal, now)
		r.Events = append(r.Events, Event{Kind: EventEnded, Callsign: callsign})
		r.Processed++
	}

	return r, nil
}

// CloseAll ends every session in table with status, in callsign order.
func CloseAll(table models.Table, status models.EndStatus, now time.Time) []*models.Session {
	r := Reconciliation{Table: table.Clone()}
	for _, callsign := range table.Callsigns() {
		r.close(callsign, status, now)
	}
	return r.Ended
}

func (r *Reconciliation) open(category models.Category, rec *models.Session, now time.Time) {
	s := *rec
	s.Category = category
	s.Open(now)
	r.Table[s.Callsign] = &s
}

// close copies the stored record before stamping it so sessions shared with
// the previous table stay untouched.
func (r *Reconciliation) close(callsign string, status models.EndStatus, now time.Time) {
	ended := *r.Table[callsign]
	ended.Close(status, now)
	r.Ended = append(r.Ended, &ended)
	delete(r.Table, callsign)
}
