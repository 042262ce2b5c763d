package services

import (
	"fmt"
	"sync"

	"arena-scheduler/models"
)

// ArenaState owns the in-memory entity graph: events, brackets, player
// histories and leaderboards. A single mutex guards it all; every top-level
// operation is one critical section, which also makes the debit-then-append
// and credit-then-complete sequences atomic with respect to each other.
//
// The event-id sequence lives here rather than in a package-level counter so
// multiple independent worlds can coexist in one process (and in tests).
type ArenaState struct {
	mu sync.Mutex

	Catalog *models.Catalog
	Ledger  Ledger

	tick     int64
	eventSeq int64

	events     map[string]*models.EventInstance
	eventOrder []string
	brackets   map[string]*models.Bracket
	histories  map[string]*models.PlayerHistory
	boards     map[string]*models.Leaderboard
}

func NewArenaState(catalog *models.Catalog, ledger Ledger) *ArenaState {
	return &ArenaState{
		Catalog:   catalog,
		Ledger:    ledger,
		events:    make(map[string]*models.EventInstance),
		brackets:  make(map[string]*models.Bracket),
		histories: make(map[string]*models.PlayerHistory),
		boards:    make(map[string]*models.Leaderboard),
	}
}

// Tick returns the current world tick.
func (st *ArenaState) Tick() int64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.tick
}

// AdvanceTick moves the world clock forward and returns the new tick.
func (st *ArenaState) AdvanceTick(delta int64) int64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	if delta > 0 {
		st.tick += delta
	}
	return st.tick
}

// nextEventID issues the next deterministic event id. Caller holds st.mu.
func (st *ArenaState) nextEventID(typeID string) string {
	st.eventSeq++
	return fmt.Sprintf("%s_%d", typeID, st.eventSeq)
}

// history returns the lazily-created log for a player. Caller holds st.mu.
func (st *ArenaState) history(playerID string) *models.PlayerHistory {
	h, ok := st.histories[playerID]
	if !ok {
		h = &models.PlayerHistory{PlayerID: playerID}
		st.histories[playerID] = h
	}
	return h
}

// board returns the lazily-created leaderboard for an event type. Caller
// holds st.mu.
func (st *ArenaState) board(typeID string) *models.Leaderboard {
	b, ok := st.boards[typeID]
	if !ok {
		b = &models.Leaderboard{TypeID: typeID}
		st.boards[typeID] = b
	}
	return b
}
