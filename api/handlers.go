package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/vainnor/vatsim-scraper/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func categoryVar(w http.ResponseWriter, r *http.Request) (models.Category, bool) {
	category, err := models.ParseCategory(mux.Vars(r)["category"])
	if err != nil {
		http.Error(w, "Invalid category. Must be 'pilots' or 'controllers'", http.StatusBadRequest)
		return "", false
	}
	return category, true
}

func GetCollectorStats(c Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c.GetStats())
	}
}

// GetActiveSessions lists the sessions currently open for a category.
func GetActiveSessions(c Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, ok := categoryVar(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, SessionsResponse{
			Category: category,
			Sessions: c.ActiveSessions(category),
		})
	}
}

func ListArchiveDays(a Archive) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, ok := categoryVar(w, r)
		if !ok {
			return
		}
		days, err := a.Days(category)
		if err != nil {
			log.Printf("Error listing archive: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if days == nil {
			days = []string{}
		}
		writeJSON(w, http.StatusOK, ArchiveDaysResponse{Category: category, Days: days})
	}
}

func GetArchiveDay(a Archive) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, ok := categoryVar(w, r)
		if !ok {
			return
		}
		day := mux.Vars(r)["day"]
		records, err := a.Load(category, day)
		if err != nil {
			log.Printf("Error loading archive %s/%s: %v", category, day, err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if records == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "No data found"})
			return
		}
		writeJSON(w, http.StatusOK, ArchiveResponse{Category: category, Day: day, Sessions: records})
	}
}

func mirrorUnavailable(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Session database not configured"})
}

// GetArchiveSummary reports how many sessions the mirror holds for a day,
// grouped by end status.
func GetArchiveSummary(m Mirror) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			mirrorUnavailable(w)
			return
		}
		category, ok := categoryVar(w, r)
		if !ok {
			return
		}
		day := mux.Vars(r)["day"]

		total, err := m.CountByDay(category, day)
		if err != nil {
			log.Printf("Error counting sessions %s/%s: %v", category, day, err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if total == 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "No data found"})
			return
		}
		statuses, err := m.EndStatusCounts(category, day)
		if err != nil {
			log.Printf("Error grouping sessions %s/%s: %v", category, day, err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, ArchiveSummaryResponse{
			Category:  category,
			Day:       day,
			Total:     total,
			EndStatus: statuses,
		})
	}
}

// GetMembership lists every archived session of a member in a category.
func GetMembership(m Mirror) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			mirrorUnavailable(w)
			return
		}
		cid, err := strconv.Atoi(mux.Vars(r)["cid"])
		if err != nil {
			http.Error(w, "Invalid CID", http.StatusBadRequest)
			return
		}
		category, ok := categoryVar(w, r)
		if !ok {
			return
		}

		items, err := m.SessionsByCID(cid, category)
		if err != nil {
			log.Printf("Error loading sessions for %d: %v", cid, err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if len(items) == 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "No data found"})
			return
		}
		writeJSON(w, http.StatusOK, MembershipResponse{CID: cid, Category: category, Items: items})
	}
}
