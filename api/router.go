package api

import (
	"github.com/gorilla/mux"
	"github.com/vainnor/vatsim-scraper/models"
	"github.com/vainnor/vatsim-scraper/types"
)

type Collector interface {
	GetStats() types.CollectionStats
	ActiveSessions(category models.Category) []models.Session
}

// Archive is the read side of the daily archive store.
type Archive interface {
	Load(category models.Category, dayKey string) ([]*models.Session, error)
	Days(category models.Category) ([]string, error)
}

// Mirror is the query side of the SQL session mirror.
type Mirror interface {
	SessionsByCID(cid int, category models.Category) ([]models.Session, error)
	CountByDay(category models.Category, dayKey string) (int, error)
	EndStatusCounts(category models.Category, dayKey string) (map[models.EndStatus]int, error)
}

// NewRouter creates and configures a new router with all API endpoints.
// mirror may be nil, in which case the membership and summary endpoints
// answer 503. apiKey, when set, lets callers bypass rate limiting.
func NewRouter(collector Collector, archive Archive, mirror Mirror, apiKey string) *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.Use(NewRateLimiter(apiKey).Middleware)

	api.HandleFunc("/collector/stats", GetCollectorStats(collector)).Methods("GET")
	api.HandleFunc("/sessions/{category}", GetActiveSessions(collector)).Methods("GET")

	// Archive endpoints
	api.HandleFunc("/archive/{category}", ListArchiveDays(archive)).Methods("GET")
	api.HandleFunc("/archive/{category}/{day:[0-9]{6}}", GetArchiveDay(archive)).Methods("GET")
	api.HandleFunc("/archive/{category}/{day:[0-9]{6}}/summary", GetArchiveSummary(mirror)).Methods("GET")

	// Membership endpoints
	api.HandleFunc("/membership/{cid:[0-9]+}/{category}", GetMembership(mirror)).Methods("GET")

	return r
}
