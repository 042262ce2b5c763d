package workers

import (
	"log"
	"time"

	"arena-scheduler/models"
	"arena-scheduler/services"
	"arena-scheduler/utils"

	"github.com/go-co-op/gocron/v2"
)

// TickDriver maps real time onto world ticks. Each beat advances the clock,
// auto-schedules recurring catalog events at day boundaries, and resolves
// events whose start tick has arrived: viable rosters get a bracket, short
// ones get cancelled with refunds.
type TickDriver struct {
	state    *services.ArenaState
	events   *services.EventService
	brackets *services.BracketService

	interval     time.Duration
	ticksPerBeat int64
	lastDay      int64

	sched gocron.Scheduler
}

func NewTickDriver(state *services.ArenaState, events *services.EventService, brackets *services.BracketService, interval time.Duration, ticksPerBeat int64) *TickDriver {
	if interval <= 0 {
		interval = time.Second
	}
	if ticksPerBeat <= 0 {
		ticksPerBeat = 1
	}
	return &TickDriver{
		state:        state,
		events:       events,
		brackets:     brackets,
		interval:     interval,
		ticksPerBeat: ticksPerBeat,
		lastDay:      -1,
	}
}

func (d *TickDriver) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	d.sched = sched
	_, err = sched.NewJob(
		gocron.DurationJob(d.interval),
		gocron.NewTask(d.Beat),
	)
	if err != nil {
		return err
	}
	sched.Start()
	log.Printf("[TickDriver] started: %d tick(s) every %s", d.ticksPerBeat, d.interval)
	return nil
}

func (d *TickDriver) Stop() {
	if d.sched != nil {
		_ = d.sched.Shutdown()
	}
}

// Beat is one driver iteration. Exposed so tests (and manual tooling) can
// step the world without waiting on wall-clock time.
func (d *TickDriver) Beat() {
	tick := d.state.AdvanceTick(d.ticksPerBeat)
	d.scheduleRecurring(tick)
	d.resolveStarts(tick)
}

// scheduleRecurring inserts the catalog's recurring events when the world
// clock crosses into a new day. Day 0 starts on a Sunday. Weekly types run
// on their configured weekday; of the daily types, one is picked per day by
// a capacity-weighted draw seeded from the day number, so every node
// driving the same clock schedules the same event.
func (d *TickDriver) scheduleRecurring(tick int64) {
	day := tick / models.TicksPerDay
	if day <= d.lastDay {
		return
	}
	if d.lastDay < 0 {
		// First beat: don't backfill history, just adopt the current day.
		d.lastDay = day - 1
	}

	for dy := d.lastDay + 1; dy <= day; dy++ {
		weekday := time.Weekday(dy % 7)
		startTick := dy*models.TicksPerDay + models.RegistrationWindow

		var daily []models.EventTypeDefinition
		for _, def := range d.state.Catalog.List() {
			switch def.Frequency {
			case models.FrequencyWeekly:
				if def.DayOfWeek != nil && *def.DayOfWeek == weekday {
					d.autoSchedule(def.ID, startTick, dy)
				}
			case models.FrequencyDaily:
				daily = append(daily, def)
			}
		}
		if len(daily) > 0 {
			weights := make([]float64, len(daily))
			for i, def := range daily {
				weights[i] = float64(def.MaxPlayers)
			}
			pick := utils.WeightedIndex(weights, utils.NewRand(utils.NormalizeSeed(dy)))
			d.autoSchedule(daily[pick].ID, startTick, dy)
		}
	}
	d.lastDay = day
}

func (d *TickDriver) autoSchedule(typeID string, startTick, seed int64) {
	ev, err := d.events.ScheduleEvent(typeID, startTick, seed)
	if err != nil {
		log.Printf("[TickDriver] auto-schedule of %s failed: %v", typeID, err)
		return
	}
	log.Printf("[TickDriver] auto-scheduled %s at tick %d", ev.ID, ev.StartTick)
}

// resolveStarts locks in every event whose start tick has passed.
func (d *TickDriver) resolveStarts(tick int64) {
	for _, dec := range d.events.StartDue(tick) {
		if dec.Viable {
			if _, err := d.brackets.GenerateBracket(dec.EventID, nil); err != nil {
				log.Printf("[TickDriver] bracket generation for %s failed: %v", dec.EventID, err)
			}
			continue
		}
		if _, err := d.events.CancelEvent(dec.EventID); err != nil {
			log.Printf("[TickDriver] cancel of undersubscribed %s failed: %v", dec.EventID, err)
		} else {
			log.Printf("[TickDriver] cancelled %s: not enough participants", dec.EventID)
		}
	}
}
