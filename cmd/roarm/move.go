package main

import (
	"context"
	"fmt"

	"github.com/roarm-dev/roarm/pkg/robot"
)

type HomeCommand struct{}

func (c *HomeCommand) Execute(args []string) error {
	ctx := context.Background()
	ctrl, _, err := openRobot(ctx)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if err := ctrl.Home(ctx); err != nil {
		return err
	}
	fmt.Println(successStyle.Render("Arm moved to the home pose."))
	return nil
}

type MoveCommand struct {
	X     *float64 `long:"x" description:"Target X in mm"`
	Y     *float64 `long:"y" description:"Target Y in mm"`
	Z     *float64 `long:"z" description:"Target Z in mm"`
	T     *float64 `long:"t" description:"Tool tilt in degrees"`
	Speed *int     `long:"speed" description:"Speed, 1-4096"`
	Acc   *int     `long:"acc" description:"Acceleration, 1-254"`
}

// Execute moves the end effector. Omitted axes keep their last
// commanded value.
func (c *MoveCommand) Execute(args []string) error {
	if c.X == nil && c.Y == nil && c.Z == nil && c.T == nil {
		return fmt.Errorf("nothing to move: pass at least one of --x --y --z --t")
	}

	ctx := context.Background()
	ctrl, _, err := openRobot(ctx)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	u := robot.PositionUpdate{X: c.X, Y: c.Y, Z: c.Z, T: c.T, Speed: c.Speed, Acc: c.Acc}
	if err := ctrl.MoveToPosition(ctx, u); err != nil {
		return err
	}

	st, err := ctrl.State(ctx)
	if err != nil {
		return err
	}
	if st.Position != nil {
		fmt.Printf("Moved to x %.1f  y %.1f  z %.1f  tilt %.1f\n",
			st.Position.X, st.Position.Y, st.Position.Z, st.Position.T)
	}
	return nil
}

type JointCommand struct {
	Joint int     `long:"joint" short:"j" required:"true" description:"Joint number, 1-6 (1 base, 2 shoulder, 3 elbow, 4 hand, 5 wrist, 6 grip)"`
	Angle float64 `long:"angle" short:"a" required:"true" description:"Target angle in degrees"`
	Rad   bool    `long:"rad" description:"Interpret the angle as radians"`
	Speed int     `long:"speed" description:"Speed, 1-4096"`
}

func (c *JointCommand) Execute(args []string) error {
	ctx := context.Background()
	ctrl, _, err := openRobot(ctx)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if c.Rad {
		err = ctrl.MoveJointRad(ctx, c.Joint, c.Angle, c.Speed)
	} else {
		err = ctrl.MoveJoint(ctx, c.Joint, c.Angle, c.Speed)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Joint %d moved.\n", c.Joint)
	return nil
}

type JointsCommand struct {
	Base     *float64 `long:"base" short:"b" description:"Base angle in degrees"`
	Shoulder *float64 `long:"shoulder" short:"s" description:"Shoulder angle in degrees"`
	Elbow    *float64 `long:"elbow" short:"e" description:"Elbow angle in degrees"`
	Hand     *float64 `long:"hand" description:"Hand angle in degrees"`
	Wrist    *float64 `long:"wrist" short:"w" description:"Wrist angle in degrees (m3 only)"`
	Grip     *float64 `long:"grip" short:"g" description:"Grip angle in degrees (m3 only)"`
	Speed    *int     `long:"speed" description:"Speed, 1-4096"`
	Acc      *int     `long:"acc" description:"Acceleration, 1-254"`
}

// Execute moves several joints in one command. Omitted joints keep
// their last commanded angle.
func (c *JointsCommand) Execute(args []string) error {
	u := robot.JointsUpdate{
		Base:     c.Base,
		Shoulder: c.Shoulder,
		Elbow:    c.Elbow,
		Hand:     c.Hand,
		Wrist:    c.Wrist,
		Grip:     c.Grip,
		Speed:    c.Speed,
		Acc:      c.Acc,
	}
	if u.Base == nil && u.Shoulder == nil && u.Elbow == nil && u.Hand == nil &&
		u.Wrist == nil && u.Grip == nil {
		return fmt.Errorf("nothing to move: pass at least one joint flag")
	}

	ctx := context.Background()
	ctrl, _, err := openRobot(ctx)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if err := ctrl.MoveJoints(ctx, u); err != nil {
		return err
	}
	fmt.Println("Joints moved.")
	return nil
}
