package workers

import (
	"testing"
	"time"

	"arena-scheduler/models"
	"arena-scheduler/services"

	"github.com/stretchr/testify/require"
)

func newTestDriver(t *testing.T, ticksPerBeat int64) (*TickDriver, *services.EventService, *services.BracketService, *services.MemoryLedger) {
	t.Helper()
	ledger := services.NewMemoryLedger()
	state := services.NewArenaState(models.DefaultCatalog(), ledger)
	events := services.NewEventService(state)
	brackets := services.NewBracketService(state)
	driver := NewTickDriver(state, events, brackets, time.Second, ticksPerBeat)
	return driver, events, brackets, ledger
}

func TestBeatAdvancesClock(t *testing.T) {
	driver, _, _, _ := newTestDriver(t, 10)
	driver.Beat()
	require.Equal(t, int64(10), driver.state.Tick())
	driver.Beat()
	require.Equal(t, int64(20), driver.state.Tick())
}

func TestBeatSchedulesDailyEventOnNewDay(t *testing.T) {
	driver, events, _, _ := newTestDriver(t, models.TicksPerDay)

	// Crossing into day 1 (a Monday: no weekly types) schedules exactly one
	// daily event, with registration opening at the day boundary.
	driver.Beat()
	upcoming := events.UpcomingEvents(0, 0)
	require.Len(t, upcoming, 1)

	ev := upcoming[0]
	require.Contains(t, []string{"arena_league", "sprint_gauntlet"}, ev.TypeID)
	require.Equal(t, models.TicksPerDay+models.RegistrationWindow, ev.StartTick)
	require.Equal(t, models.TicksPerDay, ev.RegistrationOpenTick)
}

func TestBeatSchedulesWeeklyEventOnItsDay(t *testing.T) {
	// Jump straight to day 6, a Saturday: the weekly combat tournament runs
	// alongside the daily pick.
	driver, events, _, _ := newTestDriver(t, 6*models.TicksPerDay)
	driver.Beat()

	var typeIDs []string
	for _, ev := range events.UpcomingEvents(0, 0) {
		typeIDs = append(typeIDs, ev.TypeID)
	}
	require.Len(t, typeIDs, 2)
	require.Contains(t, typeIDs, "combat_tournament")
}

func TestBeatIsIdempotentWithinADay(t *testing.T) {
	driver, events, _, _ := newTestDriver(t, 1)
	driver.Beat()
	first := len(events.UpcomingEvents(0, 0))
	for i := 0; i < 100; i++ {
		driver.Beat()
	}
	require.Equal(t, first, len(events.UpcomingEvents(0, 0)), "recurring events scheduled twice for the same day")
}

func TestBeatGeneratesBracketForViableEvent(t *testing.T) {
	driver, events, brackets, _ := newTestDriver(t, 10)

	ev, err := events.ScheduleEvent("sprint_gauntlet", 5, 1)
	require.NoError(t, err)
	require.NoError(t, events.Register("x", ev.ID))
	require.NoError(t, events.Register("y", ev.ID))

	driver.Beat()

	br, err := brackets.Bracket(ev.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, br.Status)
	got, err := events.EventByID(ev.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, got.Status)
}

func TestBeatCancelsUndersubscribedEvent(t *testing.T) {
	driver, events, _, ledger := newTestDriver(t, 10)
	ledger.Deposit("solo", 50)

	// Combat tournament needs 4 players; one is not enough.
	ev, err := events.ScheduleEvent("combat_tournament", 5, 1)
	require.NoError(t, err)
	require.NoError(t, events.Register("solo", ev.ID))
	require.Equal(t, int64(40), ledger.GetBalance("solo"))

	driver.Beat()

	got, err := events.EventByID(ev.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusCancelled, got.Status)
	require.Equal(t, int64(50), ledger.GetBalance("solo"), "entry fee must come back on auto-cancel")
}
