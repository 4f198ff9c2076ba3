package types

import "time"

type CollectionStats struct {
	StartTime          time.Time `json:"start_time"`
	LastUpdate         time.Time `json:"last_update"`
	LastFlush          time.Time `json:"last_flush"`
	DayKey             string    `json:"day_key"`
	TotalCycles        int64     `json:"total_cycles"`
	FailedCycles       int64     `json:"failed_cycles"`
	ActivePilots       int       `json:"active_pilots"`
	ActiveControllers  int       `json:"active_controllers"`
	PendingPilots      int       `json:"pending_pilots"`
	PendingControllers int       `json:"pending_controllers"`
	NewConnections     int64     `json:"new_connections"`
	EndedConnections   int64     `json:"ended_connections"`
	ArchivedRecords    int64     `json:"archived_records"`
}
