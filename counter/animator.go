package counter

import (
	"math"
	"sync"
	"time"
)

// Duration is how long a counter takes to reach its target.
const Duration = 2000 * time.Millisecond

// VisibilityThreshold is the visible ratio that starts the animation.
const VisibilityThreshold = 0.5

type State string

const (
	Idle      State = "idle"
	Animating State = "animating"
)

// Target is one counter and the value it animates to.
type Target struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value int    `json:"value"`
}

// ImpactTargets are the counters on the home and about pages.
var ImpactTargets = []Target{
	{Key: "youthsImpacted", Label: "Youths Impacted", Value: 500},
	{Key: "volunteers", Label: "Volunteers", Value: 150},
	{Key: "programs", Label: "Programs", Value: 50},
}

// Value is a displayed counter value.
type Value struct {
	Key     string `json:"key"`
	Current int    `json:"current"`
	Target  int    `json:"target"`
}

// Frame is what the counters show at one instant.
type Frame struct {
	State    State   `json:"state"`
	Fraction float64 `json:"fraction"`
	Values   []Value `json:"values"`
	Done     bool    `json:"done"`
}

// Animator moves from Idle to Animating exactly once, the first time the
// counters are at least half visible. Later visibility changes are ignored.
type Animator struct {
	mu        sync.Mutex
	targets   []Target
	duration  time.Duration
	state     State
	startedAt time.Time
	triggered bool
}

func NewAnimator(targets []Target) *Animator {
	return &Animator{
		targets:  append([]Target(nil), targets...),
		duration: Duration,
		state:    Idle,
	}
}

func (a *Animator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Observe reports a visibility ratio seen at now. It returns true only on the
// call that starts the animation.
func (a *Animator) Observe(ratio float64, now time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.triggered || ratio < VisibilityThreshold {
		return false
	}
	a.triggered = true
	a.state = Animating
	a.startedAt = now
	return true
}

// Frame computes the displayed values at now. While Idle every value is 0.
func (a *Animator) Frame(now time.Time) Frame {
	a.mu.Lock()
	defer a.mu.Unlock()

	fraction := 0.0
	if a.state == Animating {
		fraction = Fraction(now.Sub(a.startedAt), a.duration)
	}

	values := make([]Value, 0, len(a.targets))
	for _, t := range a.targets {
		values = append(values, Value{Key: t.Key, Current: Displayed(t.Value, fraction), Target: t.Value})
	}
	return Frame{
		State:    a.state,
		Fraction: fraction,
		Values:   values,
		Done:     a.state == Animating && fraction >= 1,
	}
}

// Done reports whether the animation has reached its targets.
func (a *Animator) Done(now time.Time) bool {
	return a.Frame(now).Done
}

// Fraction is elapsed/total clamped to [0, 1].
func Fraction(elapsed, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	f := float64(elapsed) / float64(total)
	return math.Max(0, math.Min(1, f))
}

// Displayed is floor(target * fraction).
func Displayed(target int, fraction float64) int {
	if fraction >= 1 {
		return target
	}
	return int(math.Floor(float64(target) * fraction))
}
