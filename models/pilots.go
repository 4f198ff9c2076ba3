package models

import (
	"encoding/json"
	"fmt"

	"github.com/vainnor/vatsim-scraper/types"
)

// FromPilot converts a feed pilot into a Session. A nil pilot yields nil so
// the reconciler can reject the whole cycle.
func FromPilot(p *types.Pilot) (*Session, error) {
	if p == nil {
		return nil, nil
	}
	details, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode pilot %s: %w", p.Callsign, err)
	}
	return &Session{
		Category:    CategoryPilot,
		CID:         p.CID,
		Callsign:    p.Callsign,
		Name:        p.Name,
		Server:      p.Server,
		Rating:      p.PilotRating,
		FlightPlan:  p.FlightPlan,
		LogonTime:   p.LogonTime,
		LastUpdated: p.LastUpdated,
		Details:     details,
	}, nil
}

// FromPilots converts a feed pilot list, keeping nil entries in place.
func FromPilots(pilots []*types.Pilot) ([]*Session, error) {
	out := make([]*Session, 0, len(pilots))
	for _, p := range pilots {
		s, err := FromPilot(p)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
