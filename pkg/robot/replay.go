package robot

import (
	"context"
	"fmt"
	"time"

	"github.com/roarm-dev/roarm/pkg/trajectory"
)

// Replay drives the arm through a recording. Inter-sample delays are
// reconstructed from the recorded timestamps and divided by speed, so
// 2.0 plays twice as fast and 0.5 at half speed. Each sample's radians
// are converted back to degrees and sent as one all-joints degree
// command; the first failed send aborts the replay.
func (c *Controller) Replay(ctx context.Context, rec trajectory.Recording, speed float64) error {
	if speed <= 0 {
		return fmt.Errorf("replay: speed must be positive, got %v", speed)
	}
	if len(rec) == 0 {
		return nil
	}
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	c.logger.Info("replay started",
		"samples", len(rec), "speed", speed, "duration", rec.Duration())

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	prev := rec[0].TimestampMS
	for i, s := range rec {
		if delta := s.TimestampMS - prev; delta > 0 {
			delay := time.Duration(float64(delta) / speed * float64(time.Millisecond))
			if timer == nil {
				timer = time.NewTimer(delay)
			} else {
				timer.Reset(delay)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
		prev = s.TimestampMS

		// The degree command carries the full recorded range; the
		// radian one clamps at 3.14 and would distort poses near pi.
		degs := make([]float64, len(s.Joints))
		for j, rad := range s.Joints {
			degs[j] = Degrees(rad)
		}
		if err := c.moveJointsDeg(ctx, degs, 0, 0); err != nil {
			return fmt.Errorf("replay sample %d: %w", i, err)
		}
	}

	c.logger.Info("replay finished", "samples", len(rec))
	return nil
}

// ReplayFile loads a recording and replays it.
func (c *Controller) ReplayFile(ctx context.Context, path string, speed float64) error {
	rec, err := trajectory.Load(path)
	if err != nil {
		return err
	}
	return c.Replay(ctx, rec, speed)
}
