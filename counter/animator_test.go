package counter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestObserveFiresOnce(t *testing.T) {
	a := NewAnimator(ImpactTargets)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.False(t, a.Observe(0.49, start))
	assert.Equal(t, Idle, a.State())

	assert.True(t, a.Observe(0.5, start))
	assert.Equal(t, Animating, a.State())

	assert.False(t, a.Observe(1, start.Add(time.Second)))
	frame := a.Frame(start.Add(time.Second))
	assert.InDelta(t, 0.5, frame.Fraction, 1e-9)
}

func TestFrameEndpoints(t *testing.T) {
	a := NewAnimator(ImpactTargets)
	start := time.Now()

	for _, v := range a.Frame(start).Values {
		assert.Zero(t, v.Current)
	}

	a.Observe(0.8, start)
	for _, v := range a.Frame(start).Values {
		assert.Zero(t, v.Current)
	}

	end := a.Frame(start.Add(Duration))
	assert.True(t, end.Done)
	assert.Equal(t, []Value{
		{Key: "youthsImpacted", Current: 500, Target: 500},
		{Key: "volunteers", Current: 150, Target: 150},
		{Key: "programs", Current: 50, Target: 50},
	}, end.Values)

	assert.Equal(t, end.Values, a.Frame(start.Add(time.Hour)).Values)
	assert.False(t, a.Done(start.Add(time.Second)))
}

func TestFrameMonotonic(t *testing.T) {
	a := NewAnimator(ImpactTargets)
	start := time.Now()
	a.Observe(1, start)

	prev := a.Frame(start).Values
	for ms := 0; ms <= 2100; ms += 7 {
		cur := a.Frame(start.Add(time.Duration(ms) * time.Millisecond)).Values
		for i := range cur {
			require.GreaterOrEqual(t, cur[i].Current, prev[i].Current)
			require.LessOrEqual(t, cur[i].Current, cur[i].Target)
		}
		prev = cur
	}
}

func TestDisplayed(t *testing.T) {
	assert.Equal(t, 0, Displayed(500, 0))
	assert.Equal(t, 250, Displayed(500, 0.5))
	assert.Equal(t, 49, Displayed(50, 0.999))
	assert.Equal(t, 150, Displayed(150, 1))
	assert.Equal(t, 1.0, Fraction(3*time.Second, Duration))
	assert.Equal(t, 0.0, Fraction(-time.Second, Duration))
}

func TestRunStopsWhenDone(t *testing.T) {
	a := NewAnimator(ImpactTargets)
	a.duration = 30 * time.Millisecond
	a.Observe(1, time.Now())

	var frames []Frame
	err := a.Run(context.Background(), time.Millisecond, func(f Frame) error {
		frames = append(frames, f)
		return nil
	})
	require.NoError(t, err)
	require.NotEmpty(t, frames)
	last := frames[len(frames)-1]
	assert.True(t, last.Done)
	assert.Equal(t, 500, last.Values[0].Current)
}

func TestRunIdleEmitsOnce(t *testing.T) {
	a := NewAnimator(ImpactTargets)
	calls := 0
	err := a.Run(context.Background(), time.Millisecond, func(f Frame) error {
		calls++
		assert.Equal(t, Idle, f.State)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRunCancelledAndEmitError(t *testing.T) {
	a := NewAnimator(ImpactTargets)
	a.Observe(1, time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := a.Run(ctx, time.Millisecond, func(Frame) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)

	closed := errors.New("client went away")
	err = a.Run(context.Background(), time.Millisecond, func(Frame) error { return closed })
	assert.ErrorIs(t, err, closed)
}
