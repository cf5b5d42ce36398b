package counter

import (
	"context"
	"time"
)

// FrameInterval approximates a display refresh.
const FrameInterval = 16 * time.Millisecond

// Run emits a frame every interval until the animation is done or ctx ends.
// The final frame always carries the targets. Run does not start the
// animation; Observe must have fired.
func (a *Animator) Run(ctx context.Context, interval time.Duration, emit func(Frame) error) error {
	if interval <= 0 {
		interval = FrameInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		frame := a.Frame(time.Now())
		if err := emit(frame); err != nil {
			return err
		}
		if frame.Done || frame.State == Idle {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
