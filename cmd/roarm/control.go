package main

import (
	"context"
	"fmt"

	"github.com/roarm-dev/roarm/pkg/robot"
)

type TorqueCommand struct {
	Args struct {
		State string `positional-arg-name:"on|off" required:"true" description:"Engage (on) or release (off)"`
	} `positional-args:"true"`
}

func (c *TorqueCommand) Execute(args []string) error {
	on, err := parseOnOff(c.Args.State)
	if err != nil {
		return err
	}

	ctx := context.Background()
	ctrl, _, err := openRobot(ctx)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if err := ctrl.SetTorque(ctx, on); err != nil {
		return err
	}
	if on {
		fmt.Println(successStyle.Render("Torque engaged."))
	} else {
		fmt.Println("Torque released. The arm can be moved by hand and may sag under gravity.")
	}
	return nil
}

type GripperCommand struct {
	Mode  int     `long:"mode" default:"1" description:"0 free, 1 angle controlled"`
	Angle float64 `long:"angle" default:"-1" description:"Opening, 0-100"`
}

func (c *GripperCommand) Execute(args []string) error {
	ctx := context.Background()
	ctrl, _, err := openRobot(ctx)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if err := ctrl.Gripper(ctx, c.Mode, c.Angle); err != nil {
		return err
	}
	fmt.Println("Gripper set.")
	return nil
}

type LEDCommand struct {
	Brightness *int `long:"brightness" description:"Overall brightness, 0-255"`
	Red        *int `long:"red" description:"Red channel, 0-255"`
	Green      *int `long:"green" description:"Green channel, 0-255"`
	Blue       *int `long:"blue" description:"Blue channel, 0-255"`
}

func (c *LEDCommand) Execute(args []string) error {
	color := c.Red != nil || c.Green != nil || c.Blue != nil
	if !color && c.Brightness == nil {
		return fmt.Errorf("pass --brightness, or any of --red --green --blue")
	}

	ctx := context.Background()
	ctrl, _, err := openRobot(ctx)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if color {
		r, g, b := 0, 0, 0
		if c.Red != nil {
			r = *c.Red
		}
		if c.Green != nil {
			g = *c.Green
		}
		if c.Blue != nil {
			b = *c.Blue
		}
		if err := ctrl.SetLEDColor(ctx, r, g, b); err != nil {
			return err
		}
	} else {
		if err := ctrl.SetLED(ctx, *c.Brightness); err != nil {
			return err
		}
	}
	fmt.Println("LED set.")
	return nil
}

type PIDCommand struct {
	Joint int  `long:"joint" short:"j" required:"true" description:"Joint number, 1-6"`
	P     *int `long:"p" description:"Proportional gain"`
	I     *int `long:"i" description:"Integral gain"`
	D     *int `long:"d" description:"Derivative gain"`
}

func (c *PIDCommand) Execute(args []string) error {
	if c.P == nil && c.I == nil && c.D == nil {
		return fmt.Errorf("nothing to tune: pass at least one of --p --i --d")
	}

	ctx := context.Background()
	ctrl, _, err := openRobot(ctx)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if err := ctrl.SetPID(ctx, c.Joint, robot.PIDGains{P: c.P, I: c.I, D: c.D}); err != nil {
		return err
	}
	fmt.Printf("PID gains set for joint %d.\n", c.Joint)
	return nil
}

type AdaptCommand struct {
	Base     *int `long:"base" description:"Base force threshold"`
	Shoulder *int `long:"shoulder" description:"Shoulder force threshold"`
	Elbow    *int `long:"elbow" description:"Elbow force threshold"`
	Hand     *int `long:"hand" description:"Hand force threshold"`
	Args     struct {
		State string `positional-arg-name:"on|off" required:"true" description:"Enable or disable adaptation"`
	} `positional-args:"true"`
}

// Execute switches dynamic external force adaptation: with it on, the
// arm yields when pushed instead of fighting back.
func (c *AdaptCommand) Execute(args []string) error {
	on, err := parseOnOff(c.Args.State)
	if err != nil {
		return err
	}

	ctx := context.Background()
	ctrl, _, err := openRobot(ctx)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	th := robot.AdaptThresholds{Base: c.Base, Shoulder: c.Shoulder, Elbow: c.Elbow, Hand: c.Hand}
	if err := ctrl.SetDynamicAdaptation(ctx, on, th); err != nil {
		return err
	}
	fmt.Printf("Force adaptation %s.\n", c.Args.State)
	return nil
}

type MiddleCommand struct{}

func (c *MiddleCommand) Execute(args []string) error {
	ctx := context.Background()
	ctrl, _, err := openRobot(ctx)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if err := ctrl.SetMiddlePosition(ctx); err != nil {
		return err
	}
	fmt.Println(successStyle.Render("Current pose stored as the servo middle position."))
	return nil
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("want on or off, got %q", s)
}
