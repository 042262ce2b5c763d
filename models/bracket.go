package models

import (
	"encoding/json"
	"fmt"
)

// Wire sentinels for non-player slots. Kept for compatibility with the
// existing client payloads; in-process code uses the Slot kind instead of
// comparing strings.
const (
	ByeSentinel     = "BYE"
	PendingSentinel = "TBD"
)

// SlotKind discriminates what occupies a bracket slot.
type SlotKind uint8

const (
	SlotPending SlotKind = iota // winner-of placeholder, backfilled by advancement
	SlotPlayer
	SlotBye
)

// Slot is one side of a match: a real player, a bye, or a pending backfill.
type Slot struct {
	Kind     SlotKind
	PlayerID string
}

func PlayerSlot(id string) Slot { return Slot{Kind: SlotPlayer, PlayerID: id} }
func ByeSlot() Slot             { return Slot{Kind: SlotBye} }
func PendingSlot() Slot         { return Slot{Kind: SlotPending} }

func (s Slot) IsPlayer() bool  { return s.Kind == SlotPlayer }
func (s Slot) IsBye() bool     { return s.Kind == SlotBye }
func (s Slot) IsPending() bool { return s.Kind == SlotPending }

func (s Slot) String() string {
	switch s.Kind {
	case SlotPlayer:
		return s.PlayerID
	case SlotBye:
		return ByeSentinel
	default:
		return PendingSentinel
	}
}

func (s Slot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Slot) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw {
	case ByeSentinel:
		*s = ByeSlot()
	case PendingSentinel, "":
		*s = PendingSlot()
	default:
		*s = PlayerSlot(raw)
	}
	return nil
}

// BracketSide tags which half of a double elimination bracket a match
// belongs to. Empty for single elimination, round robin and Swiss.
type BracketSide string

const (
	SideWinners BracketSide = "winners"
	SideLosers  BracketSide = "losers"
)

// Match is one pairing inside a round. A bye match is pre-resolved at
// creation time; a regular match has a pending winner until a result lands.
type Match struct {
	ID     string      `json:"id"`
	Round  int         `json:"round"`
	SlotA  Slot        `json:"player_a"`
	SlotB  Slot        `json:"player_b"`
	Winner Slot        `json:"winner"`
	Loser  Slot        `json:"loser"`
	Score  string      `json:"score,omitempty"`
	Bye    bool        `json:"bye"`
	Side   BracketSide `json:"side,omitempty"`
}

// MatchID builds the deterministic match id used everywhere, so replays of
// the same seed produce byte-identical brackets.
func MatchID(round, index int) string {
	return fmt.Sprintf("r%d_m%d", round, index)
}

// Round is an ordered list of matches played concurrently.
type Round struct {
	Index   int      `json:"index"`
	Matches []*Match `json:"matches"`
}

// PlayerScore is the running tally for one participant.
type PlayerScore struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Points int `json:"points"`
}

// Placements holds the final top three. Empty string means unresolved.
type Placements struct {
	First  string `json:"first,omitempty"`
	Second string `json:"second,omitempty"`
	Third  string `json:"third,omitempty"`
}

// MatchResult is a submitted outcome for one match of the current round.
type MatchResult struct {
	MatchID  string `json:"match_id"`
	WinnerID string `json:"winner_id"`
	LoserID  string `json:"loser_id"`
	Score    string `json:"score,omitempty"`
}

// Bracket is the full round structure for one event, keyed by event id.
// Once Status is completed the rounds are frozen.
type Bracket struct {
	EventID          string                  `json:"event_id"`
	Format           BracketFormat           `json:"format"`
	Status           EventStatus             `json:"status"`
	Participants     []string                `json:"participants"` // roster snapshot at generation time
	Rounds           []*Round                `json:"rounds"`
	CurrentRound     int                     `json:"current_round"`
	Scores           map[string]*PlayerScore `json:"scores"`
	Placements       Placements              `json:"placements"`
	PrizeDistributed bool                    `json:"prize_distributed"`
}

func (m *Match) Clone() *Match {
	out := *m
	return &out
}

func (r *Round) Clone() *Round {
	out := &Round{Index: r.Index, Matches: make([]*Match, len(r.Matches))}
	for i, m := range r.Matches {
		out.Matches[i] = m.Clone()
	}
	return out
}

// Clone returns a deep copy of the bracket, safe to hand to callers outside
// the scheduler's lock.
func (b *Bracket) Clone() *Bracket {
	out := *b
	out.Participants = append([]string(nil), b.Participants...)
	out.Rounds = make([]*Round, len(b.Rounds))
	for i, r := range b.Rounds {
		out.Rounds[i] = r.Clone()
	}
	out.Scores = make(map[string]*PlayerScore, len(b.Scores))
	for id, sc := range b.Scores {
		c := *sc
		out.Scores[id] = &c
	}
	return &out
}

// Score returns the tally for a player, zero-valued if the player never
// accrued one.
func (b *Bracket) Score(playerID string) PlayerScore {
	if s, ok := b.Scores[playerID]; ok {
		return *s
	}
	return PlayerScore{}
}
