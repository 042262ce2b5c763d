package services

import (
	"testing"

	"arena-scheduler/models"

	"github.com/stretchr/testify/require"
)

// playAllRounds drives a bracket to the end, resolving every non-bye match
// with pick (winner, loser). Returns the final bracket snapshot.
func playAllRounds(t *testing.T, brackets *BracketService, eventID string, pick func(m *models.Match) (string, string)) *models.Bracket {
	t.Helper()
	br, err := brackets.Bracket(eventID)
	require.NoError(t, err)
	for br.CurrentRound < len(br.Rounds) {
		var results []models.MatchResult
		for _, m := range br.Rounds[br.CurrentRound].Matches {
			if m.Bye {
				continue
			}
			winner, loser := pick(m)
			results = append(results, models.MatchResult{MatchID: m.ID, WinnerID: winner, LoserID: loser})
		}
		out, err := brackets.AdvanceRound(eventID, results)
		require.NoError(t, err)
		require.Equal(t, AdvanceRoundComplete, out.Status)
		br = out.Bracket
	}
	return br
}

func slotAWins(m *models.Match) (string, string) {
	return m.SlotA.PlayerID, m.SlotB.PlayerID
}

func TestCompleteEventErrors(t *testing.T) {
	events, ledger := newTestArena(t)
	settlement := NewSettlementService(events.State)
	fundPlayers(ledger, 50, "a", "b", "c", "d")

	_, err := settlement.CompleteEvent("missing")
	require.ErrorIs(t, err, ErrEventNotFound)

	// Still in registration: there is nothing to settle.
	ev, err := events.ScheduleEvent("combat_tournament", 1000, 7)
	require.NoError(t, err)
	_, err = settlement.CompleteEvent(ev.ID)
	require.ErrorIs(t, err, ErrNoBracket)

	_, err = events.CancelEvent(ev.ID)
	require.NoError(t, err)
	_, err = settlement.CompleteEvent(ev.ID)
	require.ErrorIs(t, err, ErrEventCancelled)
}

func TestCompleteEventSingleElimination(t *testing.T) {
	events, brackets, br := setupBracket(t, "combat_tournament", []string{"p1", "p2", "p3", "p4"}, 7)
	settlement := NewSettlementService(events.State)
	ledger := events.State.Ledger.(*MemoryLedger)

	final := playAllRounds(t, brackets, br.EventID, slotAWins)

	report, err := settlement.CompleteEvent(br.EventID)
	require.NoError(t, err)

	champion := final.Rounds[1].Matches[0].Winner.PlayerID
	runnerUp := final.Rounds[1].Matches[0].Loser.PlayerID
	third := final.Rounds[0].Matches[0].Loser.PlayerID

	require.Equal(t, champion, report.Placements.First)
	require.Equal(t, runnerUp, report.Placements.Second)
	require.Equal(t, third, report.Placements.Third)
	require.Equal(t, int64(100), report.Prizes[champion])
	require.Equal(t, int64(50), report.Prizes[runnerUp])
	require.Equal(t, int64(25), report.Prizes[third])

	// Everyone paid the 10 fee out of 1000; prizes land on top of that.
	require.Equal(t, int64(1090), ledger.GetBalance(champion))
	require.Equal(t, int64(1040), ledger.GetBalance(runnerUp))
	require.Equal(t, int64(1015), ledger.GetBalance(third))

	require.Equal(t, int64(500), report.XP[champion])
	for _, p := range br.Participants {
		if p != champion {
			require.Equal(t, int64(100), report.XP[p])
		}
	}

	settled, err := brackets.Bracket(br.EventID)
	require.NoError(t, err)
	require.Equal(t, models.StatusCompleted, settled.Status)
	require.True(t, settled.PrizeDistributed)
	ev, err := events.EventByID(br.EventID)
	require.NoError(t, err)
	require.Equal(t, models.StatusCompleted, ev.Status)

	// Only the three placers reach the standings.
	board, err := settlement.Leaderboard("combat_tournament")
	require.NoError(t, err)
	require.Len(t, board.Entries, 3)
	require.Equal(t, champion, board.Entries[0].PlayerID)

	// Settlement happens exactly once.
	_, err = settlement.CompleteEvent(br.EventID)
	require.ErrorIs(t, err, ErrEventCompleted)
}

func TestCompleteEventWritesHistory(t *testing.T) {
	events, brackets, br := setupBracket(t, "combat_tournament", []string{"p1", "p2", "p3", "p4"}, 7)
	settlement := NewSettlementService(events.State)

	playAllRounds(t, brackets, br.EventID, slotAWins)
	report, err := settlement.CompleteEvent(br.EventID)
	require.NoError(t, err)

	ev, err := events.EventByID(br.EventID)
	require.NoError(t, err)

	champion := report.Placements.First
	h := settlement.PlayerHistory(champion)
	require.Len(t, h.Records, 1)
	rec := h.Records[0]
	require.Equal(t, br.EventID, rec.EventID)
	require.Equal(t, "combat_tournament", rec.TypeID)
	require.Equal(t, 1, rec.Placement)
	require.Equal(t, int64(100), rec.Prize)
	require.Equal(t, int64(500), rec.XP)
	require.Equal(t, ev.EndTick, rec.Tick)
	require.Equal(t, 2, h.Wins)
	require.Equal(t, 0, h.Losses)
	require.Equal(t, int64(100), h.TotalPrize)
	require.Equal(t, int64(500), h.TotalXP)

	// Every participant gets a record, placed or not.
	for _, p := range br.Participants {
		ph := settlement.PlayerHistory(p)
		require.Len(t, ph.Records, 1, "missing history for %s", p)
		require.Equal(t, ev.EndTick, ph.Records[0].Tick)
	}

	// Unknown players read as an empty history, not an error.
	require.Empty(t, settlement.PlayerHistory("stranger").Records)
}

func TestCompleteEventRoundRobinRanksByPoints(t *testing.T) {
	events, brackets, br := setupBracket(t, "arena_league", []string{"a", "b", "c"}, 7)
	settlement := NewSettlementService(events.State)

	// a beats everyone, b beats c: 6 / 3 / 0 points.
	playAllRounds(t, brackets, br.EventID, func(m *models.Match) (string, string) {
		x, y := m.SlotA.PlayerID, m.SlotB.PlayerID
		if y == "a" || (x == "c" && y == "b") {
			return y, x
		}
		return x, y
	})

	report, err := settlement.CompleteEvent(br.EventID)
	require.NoError(t, err)
	require.Equal(t, "a", report.Placements.First)
	require.Equal(t, "b", report.Placements.Second)
	require.Equal(t, "c", report.Placements.Third)
	require.Equal(t, int64(60), report.Prizes["a"])
	require.Equal(t, int64(30), report.Prizes["b"])
	require.Equal(t, int64(15), report.Prizes["c"])
	require.Equal(t, int64(300), report.XP["a"])
	require.Equal(t, int64(75), report.XP["b"])
}

func TestLeaderboardAggregatesAcrossEvents(t *testing.T) {
	events, ledger := newTestArena(t)
	brackets := NewBracketService(events.State)
	settlement := NewSettlementService(events.State)
	fundPlayers(ledger, 100, "x", "y")

	// x wins two free sprint gauntlets back to back.
	for i := int64(0); i < 2; i++ {
		ev, err := events.ScheduleEvent("sprint_gauntlet", 1000+i*500, 7+i)
		require.NoError(t, err)
		require.NoError(t, events.Register("x", ev.ID))
		require.NoError(t, events.Register("y", ev.ID))
		_, err = brackets.GenerateBracket(ev.ID, nil)
		require.NoError(t, err)
		playAllRounds(t, brackets, ev.ID, func(m *models.Match) (string, string) {
			if m.SlotA.PlayerID == "x" {
				return "x", m.SlotB.PlayerID
			}
			return "x", m.SlotA.PlayerID
		})
		_, err = settlement.CompleteEvent(ev.ID)
		require.NoError(t, err)
	}

	board, err := settlement.Leaderboard("sprint_gauntlet")
	require.NoError(t, err)
	require.Len(t, board.Entries, 2)

	top := board.Entries[0]
	require.Equal(t, "x", top.PlayerID)
	require.Equal(t, 2, top.Wins)
	require.Equal(t, 2, top.Top3)
	require.Equal(t, int64(80), top.TotalPrize)
	require.Equal(t, 2, top.EventCount)

	second := board.Entries[1]
	require.Equal(t, "y", second.PlayerID)
	require.Equal(t, 0, second.Wins)
	require.Equal(t, 2, second.Top3) // runner-up in a field of two
	require.Equal(t, 2, second.EventCount)

	_, err = settlement.Leaderboard("no_such_type")
	require.ErrorIs(t, err, ErrUnknownEventType)
}

func TestLeaderboardSortsByWinsThenPrize(t *testing.T) {
	board := &models.Leaderboard{TypeID: "combat_tournament"}
	a := board.Entry("a")
	a.Wins, a.TotalPrize = 1, 100
	b := board.Entry("b")
	b.Wins, b.TotalPrize = 2, 10
	c := board.Entry("c")
	c.Wins, c.TotalPrize = 1, 200
	board.Sort()

	require.Equal(t, "b", board.Entries[0].PlayerID)
	require.Equal(t, "c", board.Entries[1].PlayerID)
	require.Equal(t, "a", board.Entries[2].PlayerID)
}
