package robot

import (
	"context"

	"github.com/roarm-dev/roarm/pkg/command"
)

// Missions are stored and executed on the device itself; the controller
// validates and forwards.

// CreateMission creates a named mission on the device, with an optional
// description.
func (c *Controller) CreateMission(ctx context.Context, name, intro string) error {
	raw := command.Raw{"name": name}
	if intro != "" {
		raw["intro"] = intro
	}
	return c.exec(ctx, command.CmdMissionNew, raw, nil)
}

// AddMissionStep appends the arm's current pose to a mission. speed is
// the fraction of full speed used when the step plays back; zero keeps
// the device default.
func (c *Controller) AddMissionStep(ctx context.Context, mission string, speed float64) error {
	raw := command.Raw{"mission": mission}
	if speed > 0 {
		raw["spd"] = speed
	}
	return c.exec(ctx, command.CmdMissionStep, raw, nil)
}

// AddMissionDelay appends a pause in milliseconds to a mission.
func (c *Controller) AddMissionDelay(ctx context.Context, mission string, delayMS int) error {
	raw := command.Raw{"mission": mission, "delay": delayMS}
	return c.exec(ctx, command.CmdMissionDelay, raw, nil)
}

// PlayMission runs a stored mission the given number of times; zero
// plays it once.
func (c *Controller) PlayMission(ctx context.Context, name string, times int) error {
	raw := command.Raw{"name": name}
	if times > 0 {
		raw["times"] = times
	}
	return c.exec(ctx, command.CmdMissionPlay, raw, nil)
}
