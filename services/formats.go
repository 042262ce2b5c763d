package services

import (
	"arena-scheduler/models"
	"arena-scheduler/utils"
)

// formatEngine is the behavior behind one bracket topology. Generate builds
// the initial round structure from a finalized roster; NextRound synthesizes
// the round after the bracket's current one, or returns nil when the format
// does not grow (round robin, Swiss) or a single winner remains.
type formatEngine interface {
	Generate(roster []string, rng utils.Rand) []*models.Round
	NextRound(b *models.Bracket) *models.Round
}

func engineFor(format models.BracketFormat) (formatEngine, bool) {
	switch format {
	case models.FormatSingleElimination:
		return singleElimination{}, true
	case models.FormatDoubleElimination:
		return doubleElimination{}, true
	case models.FormatRoundRobin:
		return roundRobin{}, true
	case models.FormatSwiss:
		return swissSystem{}, true
	}
	return nil, false
}

// pairRound pairs adjacent slots into one round. Any pairing containing a
// bye is resolved on the spot: the real player advances and the bye is
// recorded as the loser (two byes advance a bye). Returns the round and the
// slots that feed the next one.
func pairRound(slots []models.Slot, idx int, side models.BracketSide) (*models.Round, []models.Slot) {
	round := &models.Round{Index: idx}
	advancers := make([]models.Slot, 0, len(slots)/2)
	for i := 0; i+1 < len(slots); i += 2 {
		a, b := slots[i], slots[i+1]
		m := &models.Match{
			ID:    models.MatchID(idx, i/2),
			Round: idx,
			SlotA: a,
			SlotB: b,
			Side:  side,
		}
		switch {
		case a.IsBye() && b.IsBye():
			m.Bye = true
			m.Winner, m.Loser = models.ByeSlot(), models.ByeSlot()
		case b.IsBye():
			m.Bye = true
			m.Winner, m.Loser = a, models.ByeSlot()
		case a.IsBye():
			m.Bye = true
			m.Winner, m.Loser = b, models.ByeSlot()
		default:
			m.Winner, m.Loser = models.PendingSlot(), models.PendingSlot()
		}
		round.Matches = append(round.Matches, m)
		if m.Bye {
			advancers = append(advancers, m.Winner)
		} else {
			advancers = append(advancers, models.PendingSlot())
		}
	}
	return round, advancers
}

// buildElimination builds the full skeleton: round 0 from the given slots,
// then successively smaller rounds (pending slots where winners are not yet
// known) until one slot remains.
func buildElimination(slots []models.Slot, side models.BracketSide) []*models.Round {
	var rounds []*models.Round
	idx := 0
	for len(slots) > 1 {
		round, advancers := pairRound(slots, idx, side)
		rounds = append(rounds, round)
		slots = advancers
		idx++
	}
	return rounds
}

// eliminationNext pairs the current round's non-bye winners sequentially
// into the next round. Pre-seeded placeholder rounds get overwritten by the
// caller; an odd winner count yields a trailing auto-resolved bye.
func eliminationNext(b *models.Bracket) *models.Round {
	cur := b.Rounds[b.CurrentRound]
	var winners []models.Slot
	for _, m := range cur.Matches {
		if m.Winner.IsPlayer() {
			winners = append(winners, m.Winner)
		}
	}
	if len(winners) < 2 {
		return nil
	}
	idx := b.CurrentRound + 1
	side := cur.Matches[0].Side
	round := &models.Round{Index: idx}
	for i := 0; i < len(winners); i += 2 {
		m := &models.Match{
			ID:    models.MatchID(idx, i/2),
			Round: idx,
			SlotA: winners[i],
			Side:  side,
		}
		if i+1 < len(winners) {
			m.SlotB = winners[i+1]
			m.Winner, m.Loser = models.PendingSlot(), models.PendingSlot()
		} else {
			m.SlotB = models.ByeSlot()
			m.Bye = true
			m.Winner, m.Loser = winners[i], models.ByeSlot()
		}
		round.Matches = append(round.Matches, m)
	}
	return round
}

type singleElimination struct{}

func (singleElimination) Generate(roster []string, rng utils.Rand) []*models.Round {
	shuffled := utils.Shuffle(roster, rng)
	size := utils.NextPow2(len(shuffled))
	slots := make([]models.Slot, 0, size)
	for _, id := range shuffled {
		slots = append(slots, models.PlayerSlot(id))
	}
	for len(slots) < size {
		slots = append(slots, models.ByeSlot())
	}
	return buildElimination(slots, "")
}

func (singleElimination) NextRound(b *models.Bracket) *models.Round {
	return eliminationNext(b)
}

type doubleElimination struct{}

func (doubleElimination) Generate(roster []string, rng utils.Rand) []*models.Round {
	shuffled := utils.Shuffle(roster, rng)
	size := utils.NextPow2(len(shuffled))
	slots := make([]models.Slot, 0, size)
	for _, id := range shuffled {
		slots = append(slots, models.PlayerSlot(id))
	}
	for len(slots) < size {
		slots = append(slots, models.ByeSlot())
	}
	rounds := buildElimination(slots, models.SideWinners)

	// One losers-bracket placeholder round sized to the round-0 losers.
	// Slots stay pending until backfilled; no automatic progression of the
	// losers side happens beyond this round.
	losers := 0
	for _, m := range rounds[0].Matches {
		if !m.Bye {
			losers++
		}
	}
	if losers > 0 {
		idx := len(rounds)
		loserRound := &models.Round{Index: idx}
		for i := 0; i < (losers+1)/2; i++ {
			loserRound.Matches = append(loserRound.Matches, &models.Match{
				ID:     models.MatchID(idx, i),
				Round:  idx,
				SlotA:  models.PendingSlot(),
				SlotB:  models.PendingSlot(),
				Winner: models.PendingSlot(),
				Loser:  models.PendingSlot(),
				Side:   models.SideLosers,
			})
		}
		rounds = append(rounds, loserRound)
	}
	return rounds
}

func (doubleElimination) NextRound(b *models.Bracket) *models.Round {
	return eliminationNext(b)
}

type roundRobin struct{}

// Generate emits a single round holding every unordered pair exactly once.
func (roundRobin) Generate(roster []string, rng utils.Rand) []*models.Round {
	shuffled := utils.Shuffle(roster, rng)
	round := &models.Round{Index: 0}
	k := 0
	for i := 0; i < len(shuffled); i++ {
		for j := i + 1; j < len(shuffled); j++ {
			round.Matches = append(round.Matches, &models.Match{
				ID:     models.MatchID(0, k),
				Round:  0,
				SlotA:  models.PlayerSlot(shuffled[i]),
				SlotB:  models.PlayerSlot(shuffled[j]),
				Winner: models.PendingSlot(),
				Loser:  models.PendingSlot(),
			})
			k++
		}
	}
	return []*models.Round{round}
}

func (roundRobin) NextRound(*models.Bracket) *models.Round { return nil }

type swissSystem struct{}

// Generate pairs sequential slots for round 1; an odd player count gives
// the last player an auto-win bye. Later Swiss rounds are not generated.
func (swissSystem) Generate(roster []string, rng utils.Rand) []*models.Round {
	shuffled := utils.Shuffle(roster, rng)
	round := &models.Round{Index: 0}
	for i := 0; i < len(shuffled); i += 2 {
		m := &models.Match{
			ID:    models.MatchID(0, i/2),
			Round: 0,
			SlotA: models.PlayerSlot(shuffled[i]),
		}
		if i+1 < len(shuffled) {
			m.SlotB = models.PlayerSlot(shuffled[i+1])
			m.Winner, m.Loser = models.PendingSlot(), models.PendingSlot()
		} else {
			m.SlotB = models.ByeSlot()
			m.Bye = true
			m.Winner = models.PlayerSlot(shuffled[i])
			m.Loser = models.ByeSlot()
		}
		round.Matches = append(round.Matches, m)
	}
	return []*models.Round{round}
}

func (swissSystem) NextRound(*models.Bracket) *models.Round { return nil }
