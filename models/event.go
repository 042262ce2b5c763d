package models

// EventStatus is the lifecycle state of a scheduled event instance.
type EventStatus string

const (
	StatusRegistration EventStatus = "registration"
	StatusInProgress   EventStatus = "in_progress"
	StatusCompleted    EventStatus = "completed"
	StatusCancelled    EventStatus = "cancelled"
)

// EventInstance is one scheduled occurrence of a catalog event type. Fields
// copied from the type definition are denormalized on purpose: later catalog
// edits must not retroactively alter an already scheduled event.
type EventInstance struct {
	ID       string        `json:"id"`
	TypeID   string        `json:"type_id"`
	Name     string        `json:"name"`
	Category string        `json:"category"`
	Format   BracketFormat `json:"format"`

	MinPlayers int       `json:"min_players"`
	MaxPlayers int       `json:"max_players"`
	EntryFee   int64     `json:"entry_fee"`
	Prizes     PrizePool `json:"prizes"`
	XP         XPReward  `json:"xp"`

	StartTick            int64 `json:"start_tick"`
	EndTick              int64 `json:"end_tick"`
	RegistrationOpenTick int64 `json:"registration_open_tick"`
	CreatedTick          int64 `json:"created_tick"`

	RegistrationOpen bool        `json:"registration_open"`
	Status           EventStatus `json:"status"`
	Seed             uint32      `json:"seed"`

	// Participants in registration order, no duplicates.
	Participants []string `json:"participants"`
}

// Clone returns a deep copy, safe to hand to callers outside the
// scheduler's lock.
func (e *EventInstance) Clone() *EventInstance {
	out := *e
	out.Participants = append([]string(nil), e.Participants...)
	return &out
}

func (e *EventInstance) IsRegistered(playerID string) bool {
	for _, id := range e.Participants {
		if id == playerID {
			return true
		}
	}
	return false
}

// RemoveParticipant drops playerID from the roster, preserving order.
// Reports whether the player was present.
func (e *EventInstance) RemoveParticipant(playerID string) bool {
	for i, id := range e.Participants {
		if id == playerID {
			e.Participants = append(e.Participants[:i], e.Participants[i+1:]...)
			return true
		}
	}
	return false
}
