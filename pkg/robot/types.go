// Package robot drives serial arms: a per-arm controller owning
// connection, torque and pose state, teach-by-demonstration recording,
// and replay of taught motions.
package robot

import (
	"fmt"
	"math"
	"strings"
)

// Model selects the arm variant.
type Model string

const (
	// M2 has four joints: base, shoulder, elbow, hand.
	M2 Model = "m2"
	// M3 adds wrist and grip.
	M3 Model = "m3"
)

// ParseModel normalizes a model name. The empty string means M2.
func ParseModel(s string) (Model, error) {
	switch strings.ToLower(s) {
	case "", "m2":
		return M2, nil
	case "m3":
		return M3, nil
	}
	return "", fmt.Errorf("unknown model %q (want m2 or m3)", s)
}

// JointCount returns the number of joints the model drives.
func (m Model) JointCount() int {
	if m == M3 {
		return 6
	}
	return 4
}

// JointName identifies a joint.
type JointName string

const (
	Base     JointName = "base"
	Shoulder JointName = "shoulder"
	Elbow    JointName = "elbow"
	Hand     JointName = "hand"
	Wrist    JointName = "wrist"
	Grip     JointName = "grip"
)

// JointNames returns the model's joints in wire order (servo 1 first).
func (m Model) JointNames() []JointName {
	names := []JointName{Base, Shoulder, Elbow, Hand}
	if m == M3 {
		names = append(names, Wrist, Grip)
	}
	return names
}

// Position is the end effector pose: millimeters for X, Y, Z and
// degrees for the tool tilt T.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	T float64 `json:"t"`
}

// Joints holds joint angles in degrees. Wrist and Grip carry values
// only on M3 arms.
type Joints struct {
	Base     float64 `json:"b"`
	Shoulder float64 `json:"s"`
	Elbow    float64 `json:"e"`
	Hand     float64 `json:"h"`
	Wrist    float64 `json:"w"`
	Grip     float64 `json:"g"`
}

// Slice returns the first n joint angles in wire order.
func (j Joints) Slice(n int) []float64 {
	all := []float64{j.Base, j.Shoulder, j.Elbow, j.Hand, j.Wrist, j.Grip}
	if n < 0 || n > len(all) {
		n = len(all)
	}
	return all[:n]
}

// SetIndex sets the nth joint (1-based wire numbering) in degrees.
func (j *Joints) SetIndex(n int, deg float64) {
	switch n {
	case 1:
		j.Base = deg
	case 2:
		j.Shoulder = deg
	case 3:
		j.Elbow = deg
	case 4:
		j.Hand = deg
	case 5:
		j.Wrist = deg
	case 6:
		j.Grip = deg
	}
}

// JointsFromSlice builds Joints from wire-order angles in degrees.
func JointsFromSlice(vals []float64) Joints {
	var j Joints
	for i, v := range vals {
		j.SetIndex(i+1, v)
	}
	return j
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// DefaultPosition is the pose assumed for unset fields when a partial
// cartesian move arrives before any pose is cached.
func DefaultPosition() Position { return Position{X: 235, Y: 0, Z: 234, T: 0} }

// DefaultJoints is the home pose in degrees.
func DefaultJoints() Joints { return Joints{Elbow: 90, Hand: 180} }

// PositionUpdate names the pose fields a partial move changes; nil
// fields keep their cached value.
type PositionUpdate struct {
	X     *float64
	Y     *float64
	Z     *float64
	T     *float64
	Speed *int
	Acc   *int
}

// JointsUpdate names the joints a partial move changes, in degrees; nil
// fields keep their cached value.
type JointsUpdate struct {
	Base     *float64
	Shoulder *float64
	Elbow    *float64
	Hand     *float64
	Wrist    *float64
	Grip     *float64
	Speed    *int
	Acc      *int
}

// F returns a pointer to v, for building updates inline.
func F(v float64) *float64 { return &v }

// I returns a pointer to v, for building updates inline.
func I(v int) *int { return &v }

func mergePosition(cur Position, u PositionUpdate) Position {
	if u.X != nil {
		cur.X = *u.X
	}
	if u.Y != nil {
		cur.Y = *u.Y
	}
	if u.Z != nil {
		cur.Z = *u.Z
	}
	if u.T != nil {
		cur.T = *u.T
	}
	return cur
}

func mergeJoints(cur Joints, u JointsUpdate) Joints {
	if u.Base != nil {
		cur.Base = *u.Base
	}
	if u.Shoulder != nil {
		cur.Shoulder = *u.Shoulder
	}
	if u.Elbow != nil {
		cur.Elbow = *u.Elbow
	}
	if u.Hand != nil {
		cur.Hand = *u.Hand
	}
	if u.Wrist != nil {
		cur.Wrist = *u.Wrist
	}
	if u.Grip != nil {
		cur.Grip = *u.Grip
	}
	return cur
}
