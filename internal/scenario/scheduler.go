package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"wildfire-sim/internal/sim"
)

// Epoch anchors simulated seconds to a calendar so cron schedules can be
// evaluated against simulated time.
var Epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// parseSchedule rejects schedules that parse but never match, such as
// the 30th of February.
func parseSchedule(spec string) (cron.Schedule, error) {
	if spec == "" {
		return nil, fmt.Errorf("empty schedule")
	}
	sched, err := parser.Parse(spec)
	if err != nil {
		return nil, err
	}
	if sched.Next(Epoch).IsZero() {
		return nil, fmt.Errorf("schedule %q never fires", spec)
	}
	return sched, nil
}

// SimClock converts simulated seconds to a time on the epoch calendar.
func SimClock(simTime float64) time.Time {
	return Epoch.Add(time.Duration(simTime * float64(time.Second)))
}

type pending struct {
	event    Event
	schedule cron.Schedule
	next     time.Time
	done     bool
}

// Scheduler fires scenario events as the simulated clock passes their
// schedule. It is not safe for concurrent use.
type Scheduler struct {
	events []*pending
	last   float64
	log    *slog.Logger
}

// NewScheduler prepares the events of sc.
func NewScheduler(sc *Scenario, log *slog.Logger) (*Scheduler, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &Scheduler{log: log}
	for _, ev := range sc.Events {
		sched, err := parseSchedule(ev.Schedule)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", ev.Name, err)
		}
		next := sched.Next(Epoch)
		s.events = append(s.events, &pending{event: ev, schedule: sched, next: next, done: next.IsZero()})
	}
	return s, nil
}

// Fired is one event occurrence.
type Fired struct {
	Event  Event
	At     float64
	Status sim.Status
	Err    error
}

// Advance fires every event due at or before the simulator's current time.
// When the clock moved backwards, after going back in history or a reset,
// schedules restart from the new time and past events are not replayed.
func (s *Scheduler) Advance(target *sim.Simulator) []Fired {
	now := target.SimTime()
	if now < s.last {
		s.rewind(now)
	}
	s.last = now
	clock := SimClock(now)

	var out []Fired
	for _, p := range s.events {
		for !p.done && !p.next.After(clock) {
			at := p.next.Sub(Epoch).Seconds()
			st, err := p.event.fire(target)
			out = append(out, Fired{Event: p.event, At: at, Status: st, Err: err})
			switch {
			case err != nil:
				s.log.Error("scenario event failed", "event", p.event.Name, "action", p.event.Action, "error", err)
			case !st.Applied:
				s.log.Warn("scenario event rejected", "event", p.event.Name, "reason", st.Message)
			default:
				s.log.Info("scenario event", "event", p.event.Name, "action", p.event.Action, "sim_time", at)
			}
			p.next = p.schedule.Next(p.next)
			if p.event.Once || p.next.IsZero() {
				p.done = true
			}
		}
	}
	return out
}

func (s *Scheduler) rewind(now float64) {
	clock := SimClock(now)
	for _, p := range s.events {
		p.next = p.schedule.Next(clock)
		if p.next.IsZero() {
			p.done = true
		}
	}
}

// Run polls the simulator every interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context, target *sim.Simulator, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Advance(target)
		}
	}
}
