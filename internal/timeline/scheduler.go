// Package timeline provides a logical clock with cancelable one-shot timers.
//
// Time only moves when the owner calls Advance, so a session can be
// paused by simply not advancing it and tests can fast-forward through
// seconds of play without sleeping. A Scheduler is not safe for
// concurrent use; the owning loop serializes every call.
package timeline

import (
	"container/heap"
	"time"
)

// TimerID identifies a scheduled callback. The zero value is never issued.
type TimerID uint64

type timer struct {
	id       TimerID
	deadline time.Duration
	fn       func()
	index    int
}

// Scheduler runs callbacks when the logical clock passes their deadline.
// Timers due at the same instant fire in the order they were scheduled.
type Scheduler struct {
	now    time.Duration
	nextID TimerID
	queue  timerQueue
	byID   map[TimerID]*timer
	paused bool
}

// NewScheduler returns a running scheduler at time zero.
func NewScheduler() *Scheduler {
	return &Scheduler{byID: make(map[TimerID]*timer)}
}

// Now returns the current logical time.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// After schedules fn to run once the clock has advanced by d.
// A non-positive d fires on the next Advance.
func (s *Scheduler) After(d time.Duration, fn func()) TimerID {
	if d < 0 {
		d = 0
	}
	s.nextID++
	t := &timer{id: s.nextID, deadline: s.now + d, fn: fn}
	heap.Push(&s.queue, t)
	s.byID[t.id] = t
	return t.id
}

// Cancel removes a pending timer. It reports whether the timer was pending.
func (s *Scheduler) Cancel(id TimerID) bool {
	t, ok := s.byID[id]
	if !ok {
		return false
	}
	heap.Remove(&s.queue, t.index)
	delete(s.byID, id)
	return true
}

// Extend pushes a pending timer's deadline out by d.
func (s *Scheduler) Extend(id TimerID, d time.Duration) bool {
	t, ok := s.byID[id]
	if !ok {
		return false
	}
	t.deadline += d
	if t.deadline < s.now {
		t.deadline = s.now
	}
	heap.Fix(&s.queue, t.index)
	return true
}

// Remaining returns how long until a pending timer fires.
func (s *Scheduler) Remaining(id TimerID) (time.Duration, bool) {
	t, ok := s.byID[id]
	if !ok {
		return 0, false
	}
	return t.deadline - s.now, true
}

// Pending returns the number of scheduled timers.
func (s *Scheduler) Pending() int {
	return len(s.byID)
}

// Advance moves the clock forward by dt, firing every timer whose deadline
// falls inside the step. Each callback observes Now() equal to its own
// deadline. A callback may cancel, schedule or pause; cancellation is
// honored for timers that have not fired yet, and a pause stops the
// advance at the pausing timer's deadline. Returns the number of timers fired.
func (s *Scheduler) Advance(dt time.Duration) int {
	if s.paused || dt < 0 {
		return 0
	}
	target := s.now + dt
	fired := 0
	for len(s.queue) > 0 && !s.paused {
		next := s.queue[0]
		if next.deadline > target {
			break
		}
		heap.Pop(&s.queue)
		delete(s.byID, next.id)
		if next.deadline > s.now {
			s.now = next.deadline
		}
		next.fn()
		fired++
	}
	if !s.paused {
		s.now = target
	}
	return fired
}

// Pause freezes the clock. Pending timers keep their remaining durations.
func (s *Scheduler) Pause() {
	s.paused = true
}

// Resume lets Advance move the clock again.
func (s *Scheduler) Resume() {
	s.paused = false
}

// Paused reports whether the clock is frozen.
func (s *Scheduler) Paused() bool {
	return s.paused
}

// CancelAll drops every pending timer.
func (s *Scheduler) CancelAll() {
	s.queue = s.queue[:0]
	clear(s.byID)
}

// Reset cancels all timers and rewinds the clock to zero, unpaused.
func (s *Scheduler) Reset() {
	s.CancelAll()
	s.now = 0
	s.paused = false
}

// timerQueue is a min-heap on (deadline, id).
type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].deadline == q[j].deadline {
		return q[i].id < q[j].id
	}
	return q[i].deadline < q[j].deadline
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
