package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/roarm-dev/roarm/pkg/trajectory"
)

type ReplayCommand struct {
	File  string  `long:"file" short:"f" required:"true" description:"Recording to play"`
	Speed float64 `long:"speed" description:"Playback speed factor (default from config, 2.0 doubles)"`
	Yes   bool    `long:"yes" short:"y" description:"Skip the confirmation prompt"`
}

func (c *ReplayCommand) Execute(args []string) error {
	rec, err := trajectory.Load(c.File)
	if err != nil {
		return err
	}
	if len(rec) == 0 {
		return fmt.Errorf("%s holds no samples", c.File)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctrl, cfg, err := openRobot(ctx)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	speed := c.Speed
	if speed <= 0 {
		speed = cfg.Teach.ReplaySpeed
	}

	fmt.Println(headerStyle.Render("Replay"))
	fmt.Printf("  File:     %s\n", c.File)
	fmt.Printf("  Samples:  %d\n", len(rec))
	fmt.Printf("  Duration: %s at %.2fx\n", scaled(rec.Duration(), speed), speed)
	fmt.Println()

	if !c.Yes {
		var proceed bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("The arm will move through the recorded motion. Continue?").
					Affirmative("Replay").
					Negative("Cancel").
					Value(&proceed),
			),
		)
		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Println("Cancelled.")
				return nil
			}
			return err
		}
		if !proceed {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	start := time.Now()
	if err := ctrl.Replay(ctx, rec, speed); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println()
			fmt.Println(errorStyle.Render("Replay interrupted."))
			return nil
		}
		return err
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("Replay finished in %s.", time.Since(start).Round(time.Millisecond))))
	return nil
}

// scaled divides a recorded duration by the speed factor.
func scaled(d time.Duration, speed float64) time.Duration {
	return time.Duration(float64(d) / speed).Round(time.Millisecond)
}
