package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vainnor/vatsim-scraper/archive"
	"github.com/vainnor/vatsim-scraper/models"
)

// Flush inserts records for the given day. Sessions already mirrored are
// skipped, so retrying a batch is safe. Written counts the records handed in.
func (s *Store) Flush(category models.Category, records []*models.Session, dayKey string) (archive.Result, error) {
	if len(records) == 0 {
		return archive.Result{}, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return archive.Result{}, err
	}
	defer tx.Rollback()

	var existing int
	err = tx.QueryRow(s.rebind(`
		SELECT COUNT(*) FROM archived_sessions
		WHERE category = ? AND day_key = ?
	`), string(category), dayKey).Scan(&existing)
	if err != nil {
		return archive.Result{}, err
	}

	stmt, err := tx.Prepare(s.rebind(`
		INSERT INTO archived_sessions (
			session_id, category, day_key, cid, callsign,
			server, rating, has_flight_plan, revision_id,
			logon_time, first_seen, last_updated, end_status, record
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id) DO NOTHING
	`))
	if err != nil {
		return archive.Result{}, err
	}
	defer stmt.Close()

	for _, rec := range records {
		record, err := json.Marshal(rec)
		if err != nil {
			return archive.Result{}, fmt.Errorf("encode session %s: %w", rec.Callsign, err)
		}
		var revision sql.NullInt64
		if rec.FlightPlan != nil {
			revision = sql.NullInt64{Int64: int64(rec.FlightPlan.RevisionID), Valid: true}
		}
		_, err = stmt.Exec(
			rec.ID, string(category), dayKey, rec.CID, rec.Callsign,
			rec.Server, rec.Rating, rec.HasFlightPlan(), revision,
			formatTime(rec.LogonTime), formatTime(rec.FirstSeen), formatTime(rec.LastUpdated),
			string(rec.EndStatus), string(record),
		)
		if err != nil {
			return archive.Result{}, fmt.Errorf("insert session %s: %w", rec.Callsign, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return archive.Result{}, err
	}
	return archive.Result{Written: len(records), Merged: existing > 0}, nil
}

// CountByDay returns how many sessions of a category are mirrored for a day.
func (s *Store) CountByDay(category models.Category, dayKey string) (int, error) {
	var count int
	err := s.db.QueryRow(s.rebind(`
		SELECT COUNT(*) FROM archived_sessions
		WHERE category = ? AND day_key = ?
	`), string(category), dayKey).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// EndStatusCounts groups a day's mirrored sessions by end status.
func (s *Store) EndStatusCounts(category models.Category, dayKey string) (map[models.EndStatus]int, error) {
	rows, err := s.db.Query(s.rebind(`
		SELECT end_status, COUNT(*) FROM archived_sessions
		WHERE category = ? AND day_key = ?
		GROUP BY end_status
	`), string(category), dayKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.EndStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[models.EndStatus(status)] = count
	}
	return counts, rows.Err()
}

// SessionsByCID returns every mirrored session of a member in a category,
// newest day first.
func (s *Store) SessionsByCID(cid int, category models.Category) ([]models.Session, error) {
	rows, err := s.db.Query(s.rebind(`
		SELECT record FROM archived_sessions
		WHERE cid = ? AND category = ?
		ORDER BY day_key DESC, first_seen DESC
	`), cid, string(category))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, err
		}
		var session models.Session
		if err := json.Unmarshal([]byte(record), &session); err != nil {
			return nil, fmt.Errorf("decode session record: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
