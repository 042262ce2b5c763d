package services

import (
	"log"

	"arena-scheduler/models"
	"arena-scheduler/utils"

	"github.com/gofiber/fiber/v2"
)

// BracketService builds brackets from finalized rosters and applies round
// results. Advancement outcomes:
const (
	AdvanceAwaiting      = "awaiting_results"
	AdvanceRoundComplete = "round_complete"
)

// AdvanceOutcome is the snapshot returned by AdvanceRound. Partial result
// submissions are legal: the round pointer only moves once every non-bye
// match of the current round has a winner.
type AdvanceOutcome struct {
	Status       string          `json:"status"`
	CurrentRound int             `json:"current_round"`
	Applied      int             `json:"applied"`
	Bracket      *models.Bracket `json:"bracket"`
}

type BracketService struct {
	State *ArenaState
}

func NewBracketService(state *ArenaState) *BracketService {
	return &BracketService{State: state}
}

// GenerateBracket freezes the roster, moves the event to in_progress and
// builds the initial round structure for the event's topology. The RNG is
// seeded from the event's stored seed (or the override), so the same inputs
// always produce an identical bracket.
func (s *BracketService) GenerateBracket(eventID string, seedOverride *int64) (*models.Bracket, error) {
	st := s.State
	st.mu.Lock()
	defer st.mu.Unlock()

	ev, ok := st.events[eventID]
	if !ok {
		return nil, ErrEventNotFound
	}
	switch ev.Status {
	case models.StatusCancelled:
		return nil, ErrEventCancelled
	case models.StatusCompleted:
		return nil, ErrEventCompleted
	case models.StatusInProgress:
		return nil, ErrEventInProgress
	}
	if len(ev.Participants) < ev.MinPlayers {
		return nil, ErrInsufficientParticipants
	}
	engine, ok := engineFor(ev.Format)
	if !ok {
		return nil, ErrUnknownEventType
	}

	seed := ev.Seed
	if seedOverride != nil {
		seed = utils.NormalizeSeed(*seedOverride)
	}

	roster := make([]string, len(ev.Participants))
	copy(roster, ev.Participants)

	br := &models.Bracket{
		EventID:      eventID,
		Format:       ev.Format,
		Status:       models.StatusInProgress,
		Participants: roster,
		Rounds:       engine.Generate(roster, utils.NewRand(seed)),
		Scores:       zeroScores(roster),
	}
	st.brackets[eventID] = br
	ev.Status = models.StatusInProgress
	ev.RegistrationOpen = false
	log.Printf("[Arena] generated %s bracket for %s: %d round(s), %d player(s)",
		br.Format, eventID, len(br.Rounds), len(roster))
	return br.Clone(), nil
}

// AdvanceRound applies submitted results to the current round. Unknown
// match ids reject the whole submission before anything mutates; after
// that, applying is idempotent and may cover only part of the round.
func (s *BracketService) AdvanceRound(eventID string, results []models.MatchResult) (*AdvanceOutcome, error) {
	st := s.State
	st.mu.Lock()
	defer st.mu.Unlock()

	br, ok := st.brackets[eventID]
	if !ok {
		return nil, ErrNoBracket
	}
	if br.Status == models.StatusCancelled {
		return nil, ErrEventCancelled
	}
	if br.Status == models.StatusCompleted {
		return nil, ErrEventCompleted
	}
	if br.CurrentRound >= len(br.Rounds) {
		return nil, ErrNoMoreRounds
	}

	current := br.Rounds[br.CurrentRound]
	byID := make(map[string]*models.Match, len(current.Matches))
	for _, m := range current.Matches {
		byID[m.ID] = m
	}
	for _, r := range results {
		if r.WinnerID == "" {
			return nil, ErrInvalidResult
		}
		m, ok := byID[r.MatchID]
		if !ok {
			return nil, ErrMatchNotFound
		}
		// Bye matches are resolved at creation and never take results.
		if m.Bye {
			return nil, ErrInvalidResult
		}
	}

	for _, r := range results {
		m := byID[r.MatchID]
		m.Winner = models.PlayerSlot(r.WinnerID)
		if r.LoserID != "" {
			m.Loser = models.PlayerSlot(r.LoserID)
		} else {
			m.Loser = models.PendingSlot()
		}
		m.Score = r.Score
	}

	recomputeScores(br)

	for _, m := range current.Matches {
		if !m.Bye && !m.Winner.IsPlayer() {
			return &AdvanceOutcome{
				Status:       AdvanceAwaiting,
				CurrentRound: br.CurrentRound,
				Applied:      len(results),
				Bracket:      br.Clone(),
			}, nil
		}
	}

	engine, _ := engineFor(br.Format)
	if next := engine.NextRound(br); next != nil {
		if next.Index < len(br.Rounds) {
			// Overwrite the pre-seeded placeholder with the real pairings.
			br.Rounds[next.Index] = next
		} else {
			br.Rounds = append(br.Rounds, next)
		}
	}
	br.CurrentRound++

	return &AdvanceOutcome{
		Status:       AdvanceRoundComplete,
		CurrentRound: br.CurrentRound,
		Applied:      len(results),
		Bracket:      br.Clone(),
	}, nil
}

// zeroScores initializes the tally for every roster member.
func zeroScores(roster []string) map[string]*models.PlayerScore {
	scores := make(map[string]*models.PlayerScore, len(roster))
	for _, id := range roster {
		scores[id] = &models.PlayerScore{}
	}
	return scores
}

// recomputeScores rebuilds the full tally from every resolved match. A win
// is 1 win and 3 points, a loss is 1 loss; the bye sentinel never accrues a
// tally entry. Recomputing from scratch keeps repeated submissions
// idempotent.
func recomputeScores(br *models.Bracket) {
	br.Scores = zeroScores(br.Participants)
	for _, round := range br.Rounds {
		for _, m := range round.Matches {
			if m.Winner.IsPlayer() {
				if sc, ok := br.Scores[m.Winner.PlayerID]; ok {
					sc.Wins++
					sc.Points += 3
				}
			}
			if m.Loser.IsPlayer() {
				if sc, ok := br.Scores[m.Loser.PlayerID]; ok {
					sc.Losses++
				}
			}
		}
	}
}

// Bracket returns a snapshot of the event's bracket.
func (s *BracketService) Bracket(eventID string) (*models.Bracket, error) {
	st := s.State
	st.mu.Lock()
	defer st.mu.Unlock()

	br, ok := st.brackets[eventID]
	if !ok {
		return nil, ErrNoBracket
	}
	return br.Clone(), nil
}

// Matchups returns the matches of the bracket's current round, or nothing
// when every round has been played.
func (s *BracketService) Matchups(eventID string) ([]*models.Match, error) {
	st := s.State
	st.mu.Lock()
	defer st.mu.Unlock()

	br, ok := st.brackets[eventID]
	if !ok {
		return nil, ErrNoBracket
	}
	if br.CurrentRound >= len(br.Rounds) {
		return nil, nil
	}
	cur := br.Rounds[br.CurrentRound]
	matches := make([]*models.Match, len(cur.Matches))
	for i, m := range cur.Matches {
		matches[i] = m.Clone()
	}
	return matches, nil
}

func (s *BracketService) Results(eventID string) (map[string]*models.PlayerScore, error) {
	st := s.State
	st.mu.Lock()
	defer st.mu.Unlock()

	br, ok := st.brackets[eventID]
	if !ok {
		return nil, ErrNoBracket
	}
	scores := make(map[string]*models.PlayerScore, len(br.Scores))
	for id, sc := range br.Scores {
		c := *sc
		scores[id] = &c
	}
	return scores, nil
}

// --- Fiber handlers ---

func (s *BracketService) GenerateBracketHandler(c *fiber.Ctx) error {
	var req struct {
		Seed *int64 `json:"seed"`
	}
	_ = c.BodyParser(&req)
	br, err := s.GenerateBracket(c.Params("id"), req.Seed)
	if err != nil {
		return errJSON(c, err)
	}
	return c.Status(201).JSON(br)
}

func (s *BracketService) AdvanceRoundHandler(c *fiber.Ctx) error {
	var req struct {
		Results []models.MatchResult `json:"results"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	outcome, err := s.AdvanceRound(c.Params("id"), req.Results)
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(outcome)
}

func (s *BracketService) GetBracketHandler(c *fiber.Ctx) error {
	br, err := s.Bracket(c.Params("id"))
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(br)
}

func (s *BracketService) GetMatchupsHandler(c *fiber.Ctx) error {
	matches, err := s.Matchups(c.Params("id"))
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(fiber.Map{"event_id": c.Params("id"), "matches": matches})
}

func (s *BracketService) GetCurrentRoundHandler(c *fiber.Ctx) error {
	br, err := s.Bracket(c.Params("id"))
	if err != nil {
		return errJSON(c, err)
	}
	matches, _ := s.Matchups(c.Params("id"))
	return c.JSON(fiber.Map{
		"event_id":      c.Params("id"),
		"current_round": br.CurrentRound,
		"total_rounds":  len(br.Rounds),
		"matches":       matches,
	})
}

func (s *BracketService) GetResultsHandler(c *fiber.Ctx) error {
	scores, err := s.Results(c.Params("id"))
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(fiber.Map{"event_id": c.Params("id"), "scores": scores})
}
