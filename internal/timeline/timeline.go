package timeline

import (
	"math"
	"sort"
	"time"
)

type event struct {
	at  time.Duration
	seq int
	fn  func()
}

// Timeline is a queue of timed callbacks driven by the caller's tick. Nothing runs on its own:
// time only passes inside Advance, so playback is pausable and needs no real timers.
type Timeline struct {
	now    time.Duration
	tail   time.Duration
	seq    int
	events []event

	paused    bool
	cancelled bool
}

// New returns an empty timeline at time zero.
func New() *Timeline {
	return &Timeline{}
}

// At schedules fn at absolute timeline time t. Times already in the past fire on the next Advance.
func (tl *Timeline) At(t time.Duration, fn func()) *Timeline {
	if fn == nil || tl.cancelled {
		return tl
	}
	tl.seq++
	e := event{at: t, seq: tl.seq, fn: fn}
	i := sort.Search(len(tl.events), func(i int) bool {
		x := tl.events[i]
		return x.at > e.at || (x.at == e.at && x.seq > e.seq)
	})
	tl.events = append(tl.events, event{})
	copy(tl.events[i+1:], tl.events[i:])
	tl.events[i] = e
	if t > tl.tail {
		tl.tail = t
	}
	return tl
}

// Then schedules fn d after the latest scheduled event, chaining steps one after another.
func (tl *Timeline) Then(d time.Duration, fn func()) *Timeline {
	start := tl.tail
	if start < tl.now {
		start = tl.now
	}
	return tl.At(start+d, fn)
}

// Advance moves time forward by dt and runs every due callback in time order. Callbacks may
// schedule more events; those due now run in the same call. It returns how many ran.
func (tl *Timeline) Advance(dt time.Duration) int {
	if tl.paused || tl.cancelled {
		return 0
	}
	if dt > 0 {
		tl.now += dt
	}
	fired := 0
	for len(tl.events) > 0 && tl.events[0].at <= tl.now && !tl.paused && !tl.cancelled {
		e := tl.events[0]
		tl.events = tl.events[1:]
		e.fn()
		fired++
	}
	return fired
}

// Pause stops time until Resume.
func (tl *Timeline) Pause() { tl.paused = true }

// Resume lets Advance move time again.
func (tl *Timeline) Resume() { tl.paused = false }

// Paused reports whether the timeline is paused.
func (tl *Timeline) Paused() bool { return tl.paused }

// Cancel drops every pending event. A cancelled timeline ignores further scheduling.
func (tl *Timeline) Cancel() {
	tl.cancelled = true
	tl.events = nil
}

// Done reports whether nothing is left to run.
func (tl *Timeline) Done() bool {
	return tl.cancelled || len(tl.events) == 0
}

// Now returns the current timeline time.
func (tl *Timeline) Now() time.Duration { return tl.now }

// Pending returns the number of scheduled events.
func (tl *Timeline) Pending() int { return len(tl.events) }

// Seconds converts a float step in seconds, as the physics loop counts time, to a Duration,
// rounded to the nearest nanosecond.
func Seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
