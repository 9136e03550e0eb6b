package command

import "sort"

// Wire command codes understood by the arm firmware.
const (
	CmdHome         = 100
	CmdJointRad     = 101
	CmdJointsRad    = 102
	CmdPosition     = 104
	CmdFeedback     = 105
	CmdGripper      = 106
	CmdPID          = 108
	CmdAdapt        = 112
	CmdLED          = 114
	CmdJointDeg     = 121
	CmdJointsDeg    = 122
	CmdTorque       = 210
	CmdMissionNew   = 220
	CmdMissionStep  = 223
	CmdMissionDelay = 224
	CmdMissionPlay  = 242
	CmdSetMiddle    = 502
)

// Shared wire ranges.
const (
	SpeedMin = 1
	SpeedMax = 4096
	AccMin   = 1
	AccMax   = 254
)

func f64(v float64) *float64 { return &v }

func reqInt(min, max float64) ParamSpec {
	return ParamSpec{Type: Integer, Min: f64(min), Max: f64(max), Required: true}
}

func optInt(min, max float64) ParamSpec {
	return ParamSpec{Type: Integer, Min: f64(min), Max: f64(max)}
}

func defInt(min, max float64, def int) ParamSpec {
	return ParamSpec{Type: Integer, Min: f64(min), Max: f64(max), Default: def}
}

func reqFloat(min, max float64) ParamSpec {
	return ParamSpec{Type: Float, Min: f64(min), Max: f64(max), Required: true}
}

func optFloat(min, max float64) ParamSpec {
	return ParamSpec{Type: Float, Min: f64(min), Max: f64(max)}
}

func defFloat(min, max, def float64) ParamSpec {
	return ParamSpec{Type: Float, Min: f64(min), Max: f64(max), Default: def}
}

func reqString() ParamSpec { return ParamSpec{Type: String, Required: true} }

func defString(def string) ParamSpec { return ParamSpec{Type: String, Default: def} }

// registry holds every command the firmware understands, keyed by wire
// code. Built once at init, never mutated.
var registry = map[int]*Schema{
	CmdHome: {
		Type: CmdHome, Name: "home", Category: CategoryMovement,
		Description: "move all joints to the home pose",
	},
	CmdJointRad: {
		Type: CmdJointRad, Name: "joint_radians", Category: CategoryMovement,
		Description: "move a single joint to an angle in radians",
		Params: []Param{
			{"joint", reqInt(1, 6)},
			{"rad", reqFloat(-3.14, 3.14)},
			{"spd", optInt(SpeedMin, SpeedMax)},
		},
	},
	CmdJointsRad: {
		Type: CmdJointsRad, Name: "joints_radians", Category: CategoryMovement,
		Description: "move all joints to angles in radians",
		Params: []Param{
			{"b", reqFloat(-3.14, 3.14)},
			{"s", reqFloat(-3.14, 3.14)},
			{"e", reqFloat(-3.14, 3.14)},
			{"h", reqFloat(-3.14, 3.14)},
			{"w", optFloat(-3.14, 3.14)},
			{"g", optFloat(-3.14, 3.14)},
			{"spd", optInt(SpeedMin, SpeedMax)},
			{"acc", optInt(AccMin, AccMax)},
		},
	},
	CmdPosition: {
		Type: CmdPosition, Name: "position", Category: CategoryMovement,
		Description: "move the end effector to a cartesian pose",
		Params: []Param{
			{"x", reqFloat(-500, 500)},
			{"y", reqFloat(-500, 500)},
			{"z", reqFloat(0, 500)},
			{"t", reqFloat(-180, 180)},
			{"spd", optInt(SpeedMin, SpeedMax)},
			{"acc", optInt(AccMin, AccMax)},
		},
	},
	CmdFeedback: {
		Type: CmdFeedback, Name: "feedback", Category: CategorySystem,
		Description: "query current pose and joint angles",
	},
	CmdGripper: {
		Type: CmdGripper, Name: "gripper", Category: CategoryGripper,
		Description: "set gripper mode and opening",
		Params: []Param{
			{"mode", reqInt(0, 1)},
			{"angle", optFloat(0, 100)},
		},
	},
	CmdPID: {
		Type: CmdPID, Name: "pid", Category: CategoryPID,
		Description: "tune servo PID gains for one joint",
		Params: []Param{
			{"joint", reqInt(1, 6)},
			{"p", optInt(0, 100)},
			{"i", optInt(0, 100)},
			{"d", optInt(0, 100)},
		},
	},
	CmdAdapt: {
		Type: CmdAdapt, Name: "adapt", Category: CategoryAdapt,
		Description: "set force adaptation mode and per-joint thresholds",
		Params: []Param{
			{"mode", reqInt(0, 1)},
			{"b", optInt(0, 1000)},
			{"s", optInt(0, 1000)},
			{"e", optInt(0, 1000)},
			{"h", optInt(0, 1000)},
		},
	},
	CmdLED: {
		Type: CmdLED, Name: "led", Category: CategoryLED,
		Description: "set LED brightness and color",
		Params: []Param{
			{"led", optInt(0, 255)},
			{"r", optInt(0, 255)},
			{"g", optInt(0, 255)},
			{"b", optInt(0, 255)},
		},
	},
	CmdJointDeg: {
		Type: CmdJointDeg, Name: "joint_degrees", Category: CategoryMovement,
		Description: "move a single joint to an angle in degrees",
		Params: []Param{
			{"joint", reqInt(1, 6)},
			{"angle", reqFloat(-180, 180)},
			{"spd", optInt(SpeedMin, SpeedMax)},
		},
	},
	CmdJointsDeg: {
		Type: CmdJointsDeg, Name: "joints_degrees", Category: CategoryMovement,
		Description: "move all joints to angles in degrees",
		Params: []Param{
			{"b", reqFloat(-180, 180)},
			{"s", reqFloat(-180, 180)},
			{"e", reqFloat(-180, 180)},
			{"h", reqFloat(-180, 180)},
			{"w", optFloat(-180, 180)},
			{"g", optFloat(-180, 180)},
			{"spd", optInt(SpeedMin, SpeedMax)},
			{"acc", optInt(AccMin, AccMax)},
		},
	},
	CmdTorque: {
		Type: CmdTorque, Name: "torque", Category: CategorySystem,
		Description: "enable or disable joint torque",
		Params: []Param{
			{"cmd", reqInt(0, 1)},
		},
	},
	CmdMissionNew: {
		Type: CmdMissionNew, Name: "mission_create", Category: CategoryMission,
		Description: "create a named mission on the device",
		Params: []Param{
			{"name", reqString()},
			{"intro", defString("")},
		},
	},
	CmdMissionStep: {
		Type: CmdMissionStep, Name: "mission_step", Category: CategoryMission,
		Description: "append the current pose as a mission step",
		Params: []Param{
			{"mission", reqString()},
			{"spd", defFloat(0.1, 1.0, 0.25)},
		},
	},
	CmdMissionDelay: {
		Type: CmdMissionDelay, Name: "mission_delay", Category: CategoryMission,
		Description: "append a delay step to a mission",
		Params: []Param{
			{"mission", reqString()},
			{"delay", reqInt(0, 60000)},
		},
	},
	CmdMissionPlay: {
		Type: CmdMissionPlay, Name: "mission_play", Category: CategoryMission,
		Description: "play a stored mission",
		Params: []Param{
			{"name", reqString()},
			{"times", defInt(1, 1000, 1)},
		},
	},
	CmdSetMiddle: {
		Type: CmdSetMiddle, Name: "set_middle", Category: CategorySystem,
		Description: "store the current pose as the servo middle position",
	},
}

// Lookup returns the schema for a wire code.
func Lookup(code int) (*Schema, bool) {
	s, ok := registry[code]
	return s, ok
}

// Schemas returns all registered schemas ordered by wire code.
func Schemas() []*Schema {
	out := make([]*Schema, 0, len(registry))
	for _, s := range registry {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}
