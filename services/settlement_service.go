package services

import (
	"log"
	"sort"

	"arena-scheduler/models"

	"github.com/gofiber/fiber/v2"
)

// SettlementService finalizes finished events: it derives placements from
// the bracket, pays prizes through the ledger, grants XP and updates player
// histories and per-type leaderboards.
type SettlementService struct {
	State *ArenaState
}

func NewSettlementService(state *ArenaState) *SettlementService {
	return &SettlementService{State: state}
}

// SettlementReport is what CompleteEvent returns to the caller.
type SettlementReport struct {
	EventID    string            `json:"event_id"`
	Placements models.Placements `json:"placements"`
	Prizes     map[string]int64  `json:"prizes"`
	XP         map[string]int64  `json:"xp"`
}

// CompleteEvent settles an event exactly once. Placements come from the
// bracket structure (elimination) or the score table (round robin, Swiss);
// prize and XP payouts, history records and leaderboard updates all happen
// in the same critical section, so a settled event is never half-paid.
func (s *SettlementService) CompleteEvent(eventID string) (*SettlementReport, error) {
	st := s.State
	st.mu.Lock()
	defer st.mu.Unlock()

	ev, ok := st.events[eventID]
	if !ok {
		return nil, ErrEventNotFound
	}
	if ev.Status == models.StatusCancelled {
		return nil, ErrEventCancelled
	}
	if ev.Status == models.StatusCompleted {
		return nil, ErrEventCompleted
	}
	br, ok := st.brackets[eventID]
	if !ok {
		return nil, ErrNoBracket
	}

	placements := derivePlacements(br)
	report := &SettlementReport{
		EventID:    eventID,
		Placements: placements,
		Prizes:     make(map[string]int64),
		XP:         make(map[string]int64),
	}

	payouts := map[string]int64{}
	if placements.First != "" && ev.Prizes.First > 0 {
		payouts[placements.First] += ev.Prizes.First
	}
	if placements.Second != "" && ev.Prizes.Second > 0 {
		payouts[placements.Second] += ev.Prizes.Second
	}
	if placements.Third != "" && ev.Prizes.Third > 0 {
		payouts[placements.Third] += ev.Prizes.Third
	}
	for playerID, amount := range payouts {
		st.Ledger.Credit(playerID, amount)
		report.Prizes[playerID] = amount
	}

	board := st.board(ev.TypeID)
	for _, playerID := range br.Participants {
		placement := 0
		switch playerID {
		case placements.First:
			placement = 1
		case placements.Second:
			placement = 2
		case placements.Third:
			placement = 3
		}

		xp := ev.XP.Participant
		if placement == 1 {
			xp = ev.XP.Winner
		}
		report.XP[playerID] = xp

		sc := br.Score(playerID)
		h := st.history(playerID)
		h.Records = append(h.Records, models.PlayerHistoryRecord{
			EventID:   eventID,
			TypeID:    ev.TypeID,
			Placement: placement,
			Prize:     payouts[playerID],
			XP:        xp,
			Tick:      ev.EndTick,
		})
		h.Wins += sc.Wins
		h.Losses += sc.Losses
		h.TotalPrize += payouts[playerID]
		h.TotalXP += xp

		// Standings track placers only; unplaced participants never get a row.
		if placement >= 1 && placement <= 3 {
			entry := board.Entry(playerID)
			entry.EventCount++
			entry.Top3++
			entry.TotalPrize += payouts[playerID]
			if placement == 1 {
				entry.Wins++
			}
		}
	}
	board.Sort()

	br.Placements = placements
	br.PrizeDistributed = true
	br.Status = models.StatusCompleted
	ev.Status = models.StatusCompleted
	ev.RegistrationOpen = false

	log.Printf("[Arena] settled %s: 1st=%s 2nd=%s 3rd=%s, %d payout(s)",
		eventID, placements.First, placements.Second, placements.Third, len(payouts))
	return report, nil
}

// derivePlacements ranks the top three for a finished bracket.
//
// Elimination formats read the structure: the champion is the winner of the
// last winners-side match, the runner-up its loser, and third place the
// first non-bye loser of the penultimate winners round. Round robin and
// Swiss rank the score table by points, then wins.
func derivePlacements(br *models.Bracket) models.Placements {
	switch br.Format {
	case models.FormatSingleElimination, models.FormatDoubleElimination:
		return eliminationPlacements(br)
	default:
		return tablePlacements(br)
	}
}

func eliminationPlacements(br *models.Bracket) models.Placements {
	var p models.Placements

	// Losers-side rounds sit after the winners rounds; skip them.
	last := -1
	for i, round := range br.Rounds {
		if len(round.Matches) == 0 {
			continue
		}
		if round.Matches[0].Side == models.SideLosers {
			continue
		}
		last = i
	}
	if last < 0 {
		return p
	}

	finals := br.Rounds[last]
	final := finals.Matches[len(finals.Matches)-1]
	if final.Winner.IsPlayer() {
		p.First = final.Winner.PlayerID
	}
	if final.Loser.IsPlayer() {
		p.Second = final.Loser.PlayerID
	}

	if last > 0 {
		for _, m := range br.Rounds[last-1].Matches {
			if m.Side == models.SideLosers {
				continue
			}
			if !m.Bye && m.Loser.IsPlayer() {
				p.Third = m.Loser.PlayerID
				break
			}
		}
	}
	return p
}

func tablePlacements(br *models.Bracket) models.Placements {
	ranked := make([]string, len(br.Participants))
	copy(ranked, br.Participants)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := br.Score(ranked[i]), br.Score(ranked[j])
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		return a.Wins > b.Wins
	})

	var p models.Placements
	if len(ranked) > 0 {
		p.First = ranked[0]
	}
	if len(ranked) > 1 {
		p.Second = ranked[1]
	}
	if len(ranked) > 2 {
		p.Third = ranked[2]
	}
	return p
}

// PlayerHistory returns the event log for a player, or an empty history if
// the player never finished an event.
func (s *SettlementService) PlayerHistory(playerID string) *models.PlayerHistory {
	st := s.State
	st.mu.Lock()
	defer st.mu.Unlock()

	if h, ok := st.histories[playerID]; ok {
		return h.Clone()
	}
	return &models.PlayerHistory{PlayerID: playerID}
}

// Leaderboard returns the standings for one event type.
func (s *SettlementService) Leaderboard(typeID string) (*models.Leaderboard, error) {
	st := s.State
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.Catalog.Get(typeID); !ok {
		return nil, ErrUnknownEventType
	}
	return st.board(typeID).Clone(), nil
}

// --- Fiber handlers ---

func (s *SettlementService) CompleteEventHandler(c *fiber.Ctx) error {
	report, err := s.CompleteEvent(c.Params("id"))
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(report)
}

func (s *SettlementService) GetPlayerHistoryHandler(c *fiber.Ctx) error {
	return c.JSON(s.PlayerHistory(c.Params("id")))
}

func (s *SettlementService) GetLeaderboardHandler(c *fiber.Ctx) error {
	board, err := s.Leaderboard(c.Params("type_id"))
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(board)
}
