package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
)

type MissionCommand struct {
	Create MissionCreateCommand `command:"create" description:"Create a named mission on the device"`
	Step   MissionStepCommand   `command:"step" description:"Append the arm's current pose as a step"`
	Delay  MissionDelayCommand  `command:"delay" description:"Append a pause to a mission"`
	Play   MissionPlayCommand   `command:"play" description:"Play a stored mission"`
}

type MissionCreateCommand struct {
	Intro string `long:"intro" description:"Mission description"`
	Args  struct {
		Name string `positional-arg-name:"name" description:"Mission name"`
	} `positional-args:"true"`
}

func (c *MissionCreateCommand) Execute(args []string) error {
	name := c.Args.Name
	intro := c.Intro
	if name == "" {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Mission name").
					Validate(func(s string) error {
						if s == "" {
							return fmt.Errorf("a mission needs a name")
						}
						return nil
					}).
					Value(&name),
				huh.NewInput().
					Title("Description (optional)").
					Value(&intro),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}
	}

	ctx := context.Background()
	ctrl, _, err := openRobot(ctx)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if err := ctrl.CreateMission(ctx, name, intro); err != nil {
		return err
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("Mission %q created on the device.", name)))
	fmt.Println(dimStyle.Render("Pose the arm, then append steps with: roarm mission step " + name))
	return nil
}

type MissionStepCommand struct {
	Speed float64 `long:"speed" description:"Playback speed fraction for this step, 0.1-1.0"`
	Args  struct {
		Name string `positional-arg-name:"name" required:"true" description:"Mission name"`
	} `positional-args:"true"`
}

func (c *MissionStepCommand) Execute(args []string) error {
	ctx := context.Background()
	ctrl, _, err := openRobot(ctx)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if err := ctrl.AddMissionStep(ctx, c.Args.Name, c.Speed); err != nil {
		return err
	}
	fmt.Printf("Current pose appended to %q.\n", c.Args.Name)
	return nil
}

type MissionDelayCommand struct {
	MS   int `long:"ms" required:"true" description:"Pause length in milliseconds, 0-60000"`
	Args struct {
		Name string `positional-arg-name:"name" required:"true" description:"Mission name"`
	} `positional-args:"true"`
}

func (c *MissionDelayCommand) Execute(args []string) error {
	ctx := context.Background()
	ctrl, _, err := openRobot(ctx)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if err := ctrl.AddMissionDelay(ctx, c.Args.Name, c.MS); err != nil {
		return err
	}
	fmt.Printf("%dms pause appended to %q.\n", c.MS, c.Args.Name)
	return nil
}

type MissionPlayCommand struct {
	Times int `long:"times" short:"n" default:"1" description:"Repetitions, 1-1000"`
	Args  struct {
		Name string `positional-arg-name:"name" required:"true" description:"Mission name"`
	} `positional-args:"true"`
}

func (c *MissionPlayCommand) Execute(args []string) error {
	ctx := context.Background()
	ctrl, _, err := openRobot(ctx)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if err := ctrl.PlayMission(ctx, c.Args.Name, c.Times); err != nil {
		return err
	}
	fmt.Printf("Mission %q playing %d time(s).\n", c.Args.Name, c.Times)
	return nil
}
