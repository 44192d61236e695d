package sched

import "testing"

func TestSchedulerCountdownAndExecution(t *testing.T) {
	s := NewScheduler(1.0 / 60.0)
	fired := 0
	event := NewEvent(nil, 0.05, func() { fired++ }) // 3 frames at 60 fps

	s.Schedule(event)
	if got := s.FramesLeft(event); got != 3 {
		t.Fatalf("frames left = %d, want 3", got)
	}
	for tick := 1; tick <= 2; tick++ {
		s.Update()
		if fired != 0 {
			t.Fatalf("event fired early on tick %d", tick)
		}
		if got := s.FramesLeft(event); got != 3-tick {
			t.Fatalf("tick %d: frames left = %d, want %d", tick, got, 3-tick)
		}
	}
	s.Update()
	if fired != 1 {
		t.Fatalf("event fired %d times, want exactly 1", fired)
	}
	if s.Len() != 0 {
		t.Errorf("executed one-shot still scheduled")
	}
}

func TestSchedulerRepeatCount(t *testing.T) {
	s := NewScheduler(1)
	fired := 0
	event := NewRepeatingEvent(nil, 1, 2, func() { fired++ })
	s.Schedule(event)
	for i := 0; i < 10; i++ {
		s.Update()
	}
	// repeat 2 means the event runs its first time plus two repeats
	if fired != 3 {
		t.Errorf("event fired %d times, want 3", fired)
	}
	if s.Len() != 0 {
		t.Errorf("exhausted repeating event still scheduled")
	}
}

func TestSchedulerInfiniteRepeat(t *testing.T) {
	s := NewScheduler(1)
	fired := 0
	s.Schedule(NewRepeatingEvent(nil, 1, -1, func() { fired++ }))
	for i := 0; i < 7; i++ {
		s.Update()
	}
	if fired != 7 {
		t.Errorf("infinite event fired %d times in 7 ticks, want 7", fired)
	}
}

func TestSchedulerUnschedule(t *testing.T) {
	s := NewScheduler(1)
	fired := false
	event := NewEvent(nil, 2, func() { fired = true })
	s.Schedule(event)
	s.Unschedule(event)
	for i := 0; i < 5; i++ {
		s.Update()
	}
	if fired {
		t.Error("cancelled event fired")
	}
	if got := s.FramesLeft(event); got != -1 {
		t.Errorf("cancelled event reports %d frames left, want -1", got)
	}
}

func TestSchedulerStagesMutationsDuringExecution(t *testing.T) {
	s := NewScheduler(1)
	var order []string
	var late *Event
	first := NewEvent(nil, 1, func() {
		order = append(order, "first")
		late = NewEvent(nil, 1, func() { order = append(order, "late") })
		s.Schedule(late)
	})
	second := NewEvent(nil, 1, func() { order = append(order, "second") })
	s.Schedule(first)
	s.Schedule(second)

	s.Update()
	// both due events ran in insertion order; the event scheduled from
	// inside the callback did not run this tick
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("execution order = %v", order)
	}
	if s.FramesLeft(late) != 1 {
		t.Fatalf("staged event has %d frames left, want 1", s.FramesLeft(late))
	}
	s.Update()
	if len(order) != 3 || order[2] != "late" {
		t.Errorf("staged event did not run next tick: %v", order)
	}
}

func TestSchedulerPresetFramesLeft(t *testing.T) {
	s := NewScheduler(1.0 / 60.0)
	fired := 0
	event := &Event{Delay: 10, FramesLeft: 2, Callback: func() { fired++ }}
	s.Schedule(event)
	s.Update()
	s.Update()
	if fired != 1 {
		t.Errorf("restored event fired %d times after its preset countdown, want 1", fired)
	}
}
