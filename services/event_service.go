package services

import (
	"log"
	"sort"

	"arena-scheduler/models"
	"arena-scheduler/utils"

	"github.com/gofiber/fiber/v2"
)

// EventService is the lifecycle manager: it creates event instances from
// catalog entries, runs the registration window and drives status
// transitions. Bracket generation and settlement live in their own services
// on the same shared state.
type EventService struct {
	State *ArenaState
}

func NewEventService(state *ArenaState) *EventService {
	return &EventService{State: state}
}

// ScheduleEvent inserts a new event instance in registration state.
func (s *EventService) ScheduleEvent(typeID string, startTick int64, seed int64) (*models.EventInstance, error) {
	st := s.State
	st.mu.Lock()
	defer st.mu.Unlock()

	def, ok := st.Catalog.Get(typeID)
	if !ok {
		return nil, ErrUnknownEventType
	}
	if startTick < 0 {
		return nil, ErrInvalidStartTick
	}

	regOpen := startTick - models.RegistrationWindow
	if regOpen < 0 {
		regOpen = 0
	}

	ev := &models.EventInstance{
		ID:                   st.nextEventID(def.ID),
		TypeID:               def.ID,
		Name:                 def.Name,
		Category:             def.Category,
		Format:               def.Format,
		MinPlayers:           def.MinPlayers,
		MaxPlayers:           def.MaxPlayers,
		EntryFee:             def.EntryFee,
		Prizes:               def.Prizes,
		XP:                   def.XP,
		StartTick:            startTick,
		EndTick:              startTick + def.DurationTicks,
		RegistrationOpenTick: regOpen,
		CreatedTick:          st.tick,
		RegistrationOpen:     true,
		Status:               models.StatusRegistration,
		Seed:                 utils.NormalizeSeed(seed),
	}
	st.events[ev.ID] = ev
	st.eventOrder = append(st.eventOrder, ev.ID)
	log.Printf("[Arena] scheduled %s (%s) start=%d seed=%d", ev.ID, ev.Format, ev.StartTick, ev.Seed)
	return ev.Clone(), nil
}

// Register adds a player to the roster and debits the entry fee. The
// duplicate and capacity checks run before the funds check so a rejected
// registration never touches the ledger.
func (s *EventService) Register(playerID, eventID string) error {
	st := s.State
	st.mu.Lock()
	defer st.mu.Unlock()

	ev, ok := st.events[eventID]
	if !ok {
		return ErrEventNotFound
	}
	switch ev.Status {
	case models.StatusCancelled:
		return ErrEventCancelled
	case models.StatusCompleted:
		return ErrEventCompleted
	case models.StatusInProgress:
		return ErrEventInProgress
	}
	if !ev.RegistrationOpen {
		return ErrRegistrationClosed
	}
	if ev.IsRegistered(playerID) {
		return ErrAlreadyRegistered
	}
	if len(ev.Participants) >= ev.MaxPlayers {
		return ErrEventFull
	}
	if ev.EntryFee > 0 && !st.Ledger.Debit(playerID, ev.EntryFee) {
		return ErrInsufficientFunds
	}
	ev.Participants = append(ev.Participants, playerID)
	return nil
}

// Unregister removes a player from the roster. The entry fee comes back
// only while registration is still open; after lock-in the player may still
// withdraw but forfeits the fee.
func (s *EventService) Unregister(playerID, eventID string) (int64, error) {
	st := s.State
	st.mu.Lock()
	defer st.mu.Unlock()

	ev, ok := st.events[eventID]
	if !ok {
		return 0, ErrEventNotFound
	}
	switch ev.Status {
	case models.StatusCompleted:
		return 0, ErrEventCompleted
	case models.StatusInProgress:
		return 0, ErrEventInProgress
	}
	if !ev.RemoveParticipant(playerID) {
		return 0, ErrNotRegistered
	}
	var refund int64
	if ev.RegistrationOpen {
		refund = ev.EntryFee
		st.Ledger.Credit(playerID, refund)
	}
	return refund, nil
}

// CancelEvent refunds every still-registered participant their entry fee,
// closes registration and propagates the cancellation to any bracket.
// Cancelling twice fails: the refunds already went out.
func (s *EventService) CancelEvent(eventID string) (map[string]int64, error) {
	st := s.State
	st.mu.Lock()
	defer st.mu.Unlock()

	ev, ok := st.events[eventID]
	if !ok {
		return nil, ErrEventNotFound
	}
	if ev.Status == models.StatusCompleted {
		return nil, ErrEventCompleted
	}
	if ev.Status == models.StatusCancelled {
		return nil, ErrEventCancelled
	}

	refunds := make(map[string]int64, len(ev.Participants))
	for _, playerID := range ev.Participants {
		st.Ledger.Credit(playerID, ev.EntryFee)
		refunds[playerID] = ev.EntryFee
	}
	ev.Status = models.StatusCancelled
	ev.RegistrationOpen = false
	if br, ok := st.brackets[eventID]; ok {
		br.Status = models.StatusCancelled
	}
	log.Printf("[Arena] cancelled %s, refunded %d participant(s)", eventID, len(refunds))
	return refunds, nil
}

// Schedule returns events whose start tick falls within [from, to],
// ordered by start tick. All read operations return snapshots: returned
// structs never alias the live entity graph.
func (s *EventService) Schedule(from, to int64) []*models.EventInstance {
	st := s.State
	st.mu.Lock()
	defer st.mu.Unlock()

	var out []*models.EventInstance
	for _, id := range st.eventOrder {
		ev := st.events[id]
		if ev.StartTick >= from && ev.StartTick <= to {
			out = append(out, ev.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTick < out[j].StartTick })
	return out
}

// UpcomingEvents returns events that have not started yet, excluding
// cancelled and completed ones, soonest first. count <= 0 means no limit.
func (s *EventService) UpcomingEvents(now int64, count int) []*models.EventInstance {
	st := s.State
	st.mu.Lock()
	defer st.mu.Unlock()

	var out []*models.EventInstance
	for _, id := range st.eventOrder {
		ev := st.events[id]
		if ev.Status == models.StatusCancelled || ev.Status == models.StatusCompleted {
			continue
		}
		if ev.StartTick >= now {
			out = append(out, ev.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTick < out[j].StartTick })
	if count > 0 && len(out) > count {
		out = out[:count]
	}
	return out
}

// ActiveEvents returns in-progress events whose window contains now.
func (s *EventService) ActiveEvents(now int64) []*models.EventInstance {
	st := s.State
	st.mu.Lock()
	defer st.mu.Unlock()

	var out []*models.EventInstance
	for _, id := range st.eventOrder {
		ev := st.events[id]
		if ev.Status == models.StatusInProgress && now >= ev.StartTick && now <= ev.EndTick {
			out = append(out, ev.Clone())
		}
	}
	return out
}

// StartDecision is one event whose start tick has arrived: either the
// roster is viable and a bracket should be generated, or it is not and the
// event should be cancelled.
type StartDecision struct {
	EventID string
	Viable  bool
}

// StartDue returns the decisions for every registration-phase event whose
// start tick is at or before now, in schedule order.
func (s *EventService) StartDue(now int64) []StartDecision {
	st := s.State
	st.mu.Lock()
	defer st.mu.Unlock()

	var out []StartDecision
	for _, id := range st.eventOrder {
		ev := st.events[id]
		if ev.Status != models.StatusRegistration || ev.StartTick > now {
			continue
		}
		out = append(out, StartDecision{
			EventID: id,
			Viable:  len(ev.Participants) >= ev.MinPlayers,
		})
	}
	return out
}

func (s *EventService) EventByID(eventID string) (*models.EventInstance, error) {
	st := s.State
	st.mu.Lock()
	defer st.mu.Unlock()

	ev, ok := st.events[eventID]
	if !ok {
		return nil, ErrEventNotFound
	}
	return ev.Clone(), nil
}

func (s *EventService) Participants(eventID string) ([]string, error) {
	st := s.State
	st.mu.Lock()
	defer st.mu.Unlock()

	ev, ok := st.events[eventID]
	if !ok {
		return nil, ErrEventNotFound
	}
	out := make([]string, len(ev.Participants))
	copy(out, ev.Participants)
	return out, nil
}

// --- Fiber handlers ---

func playerFromCtx(c *fiber.Ctx, bodyID string) string {
	if bodyID != "" {
		return bodyID
	}
	if v, ok := c.Locals("user_id").(string); ok {
		return v
	}
	return ""
}

func (s *EventService) ScheduleEventHandler(c *fiber.Ctx) error {
	var req struct {
		TypeID    string `json:"type_id"`
		StartTick int64  `json:"start_tick"`
		Seed      int64  `json:"seed"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.TypeID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "type_id is required"})
	}
	ev, err := s.ScheduleEvent(req.TypeID, req.StartTick, req.Seed)
	if err != nil {
		return errJSON(c, err)
	}
	return c.Status(201).JSON(ev)
}

func (s *EventService) RegisterHandler(c *fiber.Ctx) error {
	var req struct {
		PlayerID string `json:"player_id"`
	}
	_ = c.BodyParser(&req)
	playerID := playerFromCtx(c, req.PlayerID)
	if playerID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "player_id is required"})
	}
	if err := s.Register(playerID, c.Params("id")); err != nil {
		return errJSON(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "registered", "event_id": c.Params("id"), "player_id": playerID})
}

func (s *EventService) UnregisterHandler(c *fiber.Ctx) error {
	var req struct {
		PlayerID string `json:"player_id"`
	}
	_ = c.BodyParser(&req)
	playerID := playerFromCtx(c, req.PlayerID)
	if playerID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "player_id is required"})
	}
	refund, err := s.Unregister(playerID, c.Params("id"))
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(fiber.Map{"message": "unregistered", "refund": refund})
}

func (s *EventService) CancelEventHandler(c *fiber.Ctx) error {
	refunds, err := s.CancelEvent(c.Params("id"))
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(fiber.Map{"message": "event cancelled", "refunds": refunds})
}

func (s *EventService) GetScheduleHandler(c *fiber.Ctx) error {
	from := int64(c.QueryInt("from", 0))
	to := int64(c.QueryInt("to", int(s.State.Tick()+models.TicksPerWeek)))
	return c.JSON(s.Schedule(from, to))
}

func (s *EventService) GetUpcomingHandler(c *fiber.Ctx) error {
	now := int64(c.QueryInt("now", int(s.State.Tick())))
	count := c.QueryInt("count", 0)
	return c.JSON(s.UpcomingEvents(now, count))
}

func (s *EventService) GetActiveHandler(c *fiber.Ctx) error {
	now := int64(c.QueryInt("now", int(s.State.Tick())))
	return c.JSON(s.ActiveEvents(now))
}

func (s *EventService) GetEventHandler(c *fiber.Ctx) error {
	ev, err := s.EventByID(c.Params("id"))
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(ev)
}

func (s *EventService) GetParticipantsHandler(c *fiber.Ctx) error {
	parts, err := s.Participants(c.Params("id"))
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(fiber.Map{"event_id": c.Params("id"), "participants": parts, "count": len(parts)})
}

func (s *EventService) GetEventTypesHandler(c *fiber.Ctx) error {
	return c.JSON(s.State.Catalog.List())
}

func (s *EventService) GetBalanceHandler(c *fiber.Ctx) error {
	playerID := c.Params("id")
	return c.JSON(fiber.Map{"player_id": playerID, "balance": s.State.Ledger.GetBalance(playerID)})
}
