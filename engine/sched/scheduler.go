// Package sched provides the tick-countdown event scheduler driving every
// timed behaviour of the simulation: resource ticks, CPU-player logic,
// scenario trigger evaluation.
package sched

import (
	"log/slog"
	"math"
)

// MethodTag identifies the callback of a scheduled event, so events can be
// serialized as (entity id, method tag, args) records instead of bound
// closures.
type MethodTag int

const (
	MethodNone MethodTag = iota
	MethodUpdateResourcesStock
	MethodUpdateCPULogic
	MethodEvaluateTriggers
	MethodRestoreHealth
	MethodRetryMove
)

// Record is the serializable identity of a scheduled event.
type Record struct {
	EntityID int       `yaml:"entity_id"`
	Tag      MethodTag `yaml:"tag"`
	Args     []float64 `yaml:"args,omitempty"`
}

// Event is a callback executed after a delay, optionally repeating.
// Repeat -1 repeats forever; any positive count re-schedules that many times.
type Event struct {
	Creator  interface{}
	Delay    float64 // seconds
	Callback func()
	Repeat   int
	Record   Record

	// FramesLeft overrides the computed countdown when restoring from a save.
	FramesLeft int
}

// NewEvent creates a one-shot event.
func NewEvent(creator interface{}, delay float64, callback func()) *Event {
	return &Event{Creator: creator, Delay: delay, Callback: callback}
}

// NewRepeatingEvent creates an event re-scheduled repeat times after each
// execution; repeat -1 means forever.
func NewRepeatingEvent(creator interface{}, delay float64, repeat int, callback func()) *Event {
	return &Event{Creator: creator, Delay: delay, Repeat: repeat, Callback: callback}
}

// WithRecord attaches a serializable identity to the event.
func (e *Event) WithRecord(entityID int, tag MethodTag, args ...float64) *Event {
	e.Record = Record{EntityID: entityID, Tag: tag, Args: args}
	return e
}

// Scheduler counts down frames for every scheduled event and executes those
// whose counter reaches zero. Execution order within a tick is insertion
// order. Callbacks may schedule or cancel events freely: mutations are staged
// in buffers and applied after the tick's execution loop, so the countdown
// lists are never modified during iteration.
type Scheduler struct {
	updateRate float64 // seconds per frame

	events     []*Event
	framesLeft []int

	updating      bool
	stagedAdds    []*Event
	stagedRemoves []*Event
}

// NewScheduler creates a scheduler ticking at the given update rate
// (seconds per frame, e.g. 1/60).
func NewScheduler(updateRate float64) *Scheduler {
	return &Scheduler{updateRate: updateRate}
}

// UpdateRate returns the seconds-per-frame rate of the scheduler.
func (s *Scheduler) UpdateRate() float64 { return s.updateRate }

// Len returns the number of pending events.
func (s *Scheduler) Len() int { return len(s.events) }

// Schedule registers an event. Its countdown is ceil(delay / update rate)
// frames unless the event carries a preset countdown from a save.
func (s *Scheduler) Schedule(event *Event) {
	if s.updating {
		s.stagedAdds = append(s.stagedAdds, event)
		return
	}
	s.schedule(event)
}

func (s *Scheduler) schedule(event *Event) {
	framesLeft := event.FramesLeft
	if framesLeft == 0 {
		framesLeft = int(math.Ceil(event.Delay / s.updateRate))
	}
	event.FramesLeft = 0
	s.events = append(s.events, event)
	s.framesLeft = append(s.framesLeft, framesLeft)
	slog.Debug("scheduled event", "delay", event.Delay, "frames", framesLeft, "repeat", event.Repeat)
}

// Unschedule cancels an event by identity.
func (s *Scheduler) Unschedule(event *Event) {
	if s.updating {
		s.stagedRemoves = append(s.stagedRemoves, event)
		return
	}
	s.unschedule(event)
}

func (s *Scheduler) unschedule(event *Event) {
	for i, e := range s.events {
		if e == event {
			s.events = append(s.events[:i], s.events[i+1:]...)
			s.framesLeft = append(s.framesLeft[:i], s.framesLeft[i+1:]...)
			return
		}
	}
}

// FramesLeft returns the countdown of an event, or -1 when not scheduled.
func (s *Scheduler) FramesLeft(event *Event) int {
	for i, e := range s.events {
		if e == event {
			return s.framesLeft[i]
		}
	}
	return -1
}

// Update decrements every countdown and executes each event that reached
// zero, exactly once per repeat. Events scheduled or cancelled by callbacks
// take effect after the loop.
func (s *Scheduler) Update() {
	for i := range s.framesLeft {
		s.framesLeft[i]--
	}

	s.updating = true
	var expired []int
	for i, event := range s.events {
		if s.framesLeft[i] > 0 {
			continue
		}
		event.Callback()
		expired = append(expired, i)
		if event.Repeat != 0 {
			if event.Repeat > 0 {
				event.Repeat--
			}
			s.stagedAdds = append(s.stagedAdds, event)
		}
	}
	s.updating = false

	for i := len(expired) - 1; i >= 0; i-- {
		index := expired[i]
		s.events = append(s.events[:index], s.events[index+1:]...)
		s.framesLeft = append(s.framesLeft[:index], s.framesLeft[index+1:]...)
	}
	for _, event := range s.stagedRemoves {
		s.unschedule(event)
	}
	for _, event := range s.stagedAdds {
		s.schedule(event)
	}
	s.stagedRemoves = s.stagedRemoves[:0]
	s.stagedAdds = s.stagedAdds[:0]
}

// Pending returns the events and countdowns for serialization.
func (s *Scheduler) Pending() ([]*Event, []int) {
	return s.events, s.framesLeft
}
