package models

// PlayerHistoryRecord is one completed event from a player's point of view.
// Placement 0 means the player did not finish in the top three.
type PlayerHistoryRecord struct {
	EventID   string `json:"event_id"`
	TypeID    string `json:"type_id"`
	Placement int    `json:"placement"`
	Prize     int64  `json:"prize"`
	XP        int64  `json:"xp"`
	Tick      int64  `json:"tick"`
}

// PlayerHistory is the append-only per-player event log plus running totals.
// Created lazily on the first completed event involving the player.
type PlayerHistory struct {
	PlayerID   string                `json:"player_id"`
	Records    []PlayerHistoryRecord `json:"records"`
	Wins       int                   `json:"wins"`
	Losses     int                   `json:"losses"`
	TotalPrize int64                 `json:"total_prize"`
	TotalXP    int64                 `json:"total_xp"`
}

// Clone returns a deep copy, safe to hand to callers outside the
// scheduler's lock.
func (h *PlayerHistory) Clone() *PlayerHistory {
	out := *h
	out.Records = append([]PlayerHistoryRecord(nil), h.Records...)
	return &out
}
