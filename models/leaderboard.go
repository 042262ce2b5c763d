package models

import "sort"

// LeaderboardEntry aggregates one player's results for a single event type.
type LeaderboardEntry struct {
	PlayerID   string `json:"player_id"`
	Wins       int    `json:"wins"`
	Top3       int    `json:"top3_finishes"`
	TotalPrize int64  `json:"total_prize"`
	EventCount int    `json:"event_count"`
}

// Leaderboard is the per-event-type standing, kept sorted by
// (wins desc, total prize desc) after every update.
type Leaderboard struct {
	TypeID  string              `json:"type_id"`
	Entries []*LeaderboardEntry `json:"entries"`
}

// Entry returns the entry for playerID, creating it if absent.
func (l *Leaderboard) Entry(playerID string) *LeaderboardEntry {
	for _, e := range l.Entries {
		if e.PlayerID == playerID {
			return e
		}
	}
	e := &LeaderboardEntry{PlayerID: playerID}
	l.Entries = append(l.Entries, e)
	return e
}

// Clone returns a deep copy, safe to hand to callers outside the
// scheduler's lock.
func (l *Leaderboard) Clone() *Leaderboard {
	out := &Leaderboard{TypeID: l.TypeID, Entries: make([]*LeaderboardEntry, len(l.Entries))}
	for i, e := range l.Entries {
		c := *e
		out.Entries[i] = &c
	}
	return out
}

func (l *Leaderboard) Sort() {
	sort.SliceStable(l.Entries, func(i, j int) bool {
		if l.Entries[i].Wins != l.Entries[j].Wins {
			return l.Entries[i].Wins > l.Entries[j].Wins
		}
		return l.Entries[i].TotalPrize > l.Entries[j].TotalPrize
	})
}
