package api

import "github.com/vainnor/vatsim-scraper/models"

type SessionsResponse struct {
	Category models.Category  `json:"category"`
	Sessions []models.Session `json:"sessions"`
}

type ArchiveDaysResponse struct {
	Category models.Category `json:"category"`
	Days     []string        `json:"days"`
}

type ArchiveResponse struct {
	Category models.Category   `json:"category"`
	Day      string            `json:"day"`
	Sessions []*models.Session `json:"sessions"`
}

type ArchiveSummaryResponse struct {
	Category  models.Category          `json:"category"`
	Day       string                   `json:"day"`
	Total     int                      `json:"total"`
	EndStatus map[models.EndStatus]int `json:"end_status"`
}

type MembershipResponse struct {
	CID      int              `json:"cid"`
	Category models.Category  `json:"category"`
	Items    []models.Session `json:"items"`
}
