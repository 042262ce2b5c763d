package models

import (
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// World-clock constants. One tick is the scheduler's discrete time unit;
// the tick driver decides how fast real time maps onto it.
const (
	RegistrationWindow int64 = 120 // ticks before start during which players may join
	TicksPerDay        int64 = 1440
	TicksPerWeek       int64 = 7 * TicksPerDay
)

// BracketFormat is the closed set of supported competition topologies.
type BracketFormat string

const (
	FormatSingleElimination BracketFormat = "single_elimination"
	FormatDoubleElimination BracketFormat = "double_elimination"
	FormatRoundRobin        BracketFormat = "round_robin"
	FormatSwiss             BracketFormat = "swiss"
)

func (f BracketFormat) Valid() bool {
	switch f {
	case FormatSingleElimination, FormatDoubleElimination, FormatRoundRobin, FormatSwiss:
		return true
	}
	return false
}

// Frequency controls how often the tick driver auto-schedules an event type.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
	FrequencyManual Frequency = "manual" // only scheduled through the API
)

type PrizePool struct {
	First  int64 `json:"first"`
	Second int64 `json:"second"`
	Third  int64 `json:"third"`
}

type XPReward struct {
	Winner      int64 `json:"winner"`
	Participant int64 `json:"participant"`
}

// EventTypeDefinition is a catalog entry. Loaded once at startup, never mutated.
type EventTypeDefinition struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Category      string        `json:"category"`
	MinPlayers    int           `json:"min_players"`
	MaxPlayers    int           `json:"max_players"`
	Format        BracketFormat `json:"format"`
	DurationTicks int64         `json:"duration_ticks"`
	EntryFee      int64         `json:"entry_fee"`
	Prizes        PrizePool     `json:"prizes"`
	XP            XPReward      `json:"xp"`
	Frequency     Frequency     `json:"frequency"`
	DayOfWeek     *time.Weekday `json:"day_of_week,omitempty"` // weekly events only
}

// Catalog is the immutable set of event type definitions.
type Catalog struct {
	defs []EventTypeDefinition
	byID map[string]*EventTypeDefinition
}

// NewCatalog builds a catalog from definitions. Entries without an explicit
// id get one derived from their display name.
func NewCatalog(defs []EventTypeDefinition) *Catalog {
	c := &Catalog{
		defs: make([]EventTypeDefinition, len(defs)),
		byID: make(map[string]*EventTypeDefinition, len(defs)),
	}
	copy(c.defs, defs)
	for i := range c.defs {
		if c.defs[i].ID == "" {
			c.defs[i].ID = strings.ReplaceAll(slug.Make(c.defs[i].Name), "-", "_")
		}
		c.byID[c.defs[i].ID] = &c.defs[i]
	}
	return c
}

func (c *Catalog) Get(id string) (*EventTypeDefinition, bool) {
	def, ok := c.byID[id]
	return def, ok
}

func (c *Catalog) List() []EventTypeDefinition {
	out := make([]EventTypeDefinition, len(c.defs))
	copy(out, c.defs)
	return out
}

func weekday(d time.Weekday) *time.Weekday { return &d }

// DefaultCatalog returns the built-in event types.
func DefaultCatalog() *Catalog {
	return NewCatalog([]EventTypeDefinition{
		{
			Name:       "Combat Tournament",
			Category:   "combat",
			MinPlayers: 4, MaxPlayers: 16,
			Format:        FormatSingleElimination,
			DurationTicks: 480,
			EntryFee:      10,
			Prizes:        PrizePool{First: 100, Second: 50, Third: 25},
			XP:            XPReward{Winner: 500, Participant: 100},
			Frequency:     FrequencyWeekly,
			DayOfWeek:     weekday(time.Saturday),
		},
		{
			Name:       "Grand Melee",
			Category:   "combat",
			MinPlayers: 8, MaxPlayers: 32,
			Format:        FormatDoubleElimination,
			DurationTicks: 720,
			EntryFee:      25,
			Prizes:        PrizePool{First: 400, Second: 150, Third: 75},
			XP:            XPReward{Winner: 1200, Participant: 200},
			Frequency:     FrequencyWeekly,
			DayOfWeek:     weekday(time.Sunday),
		},
		{
			Name:       "Arena League",
			Category:   "combat",
			MinPlayers: 3, MaxPlayers: 8,
			Format:        FormatRoundRobin,
			DurationTicks: 600,
			EntryFee:      5,
			Prizes:        PrizePool{First: 60, Second: 30, Third: 15},
			XP:            XPReward{Winner: 300, Participant: 75},
			Frequency:     FrequencyDaily,
		},
		{
			Name:       "Swiss Open",
			Category:   "strategy",
			MinPlayers: 4, MaxPlayers: 24,
			Format:        FormatSwiss,
			DurationTicks: 960,
			EntryFee:      15,
			Prizes:        PrizePool{First: 200, Second: 100, Third: 50},
			XP:            XPReward{Winner: 800, Participant: 150},
			Frequency:     FrequencyWeekly,
			DayOfWeek:     weekday(time.Wednesday),
		},
		{
			Name:       "Sprint Gauntlet",
			Category:   "racing",
			MinPlayers: 2, MaxPlayers: 8,
			Format:        FormatSingleElimination,
			DurationTicks: 240,
			EntryFee:      0,
			Prizes:        PrizePool{First: 40, Second: 20, Third: 10},
			XP:            XPReward{Winner: 250, Participant: 50},
			Frequency:     FrequencyDaily,
		},
	})
}
