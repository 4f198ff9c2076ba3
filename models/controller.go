package models

import (
	"encoding/json"
	"fmt"

	"github.com/vainnor/vatsim-scraper/types"
)

// FromController converts a feed controller into a Session.
func FromController(c *types.Controller) (*Session, error) {
	if c == nil {
		return nil, nil
	}
	details, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode controller %s: %w", c.Callsign, err)
	}
	return &Session{
		Category:    CategoryController,
		CID:         c.CID,
		Callsign:    c.Callsign,
		Name:        c.Name,
		Server:      c.Server,
		Rating:      c.Rating,
		LogonTime:   c.LogonTime,
		LastUpdated: c.LastUpdated,
		Details:     details,
	}, nil
}

func FromControllers(controllers []*types.Controller) ([]*Session, error) {
	out := make([]*Session, 0, len(controllers))
	for _, c := range controllers {
		s, err := FromController(c)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
