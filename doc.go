// Package roarm controls RoArm serial robot arms over their
// newline-delimited JSON wire protocol.
//
// Commands are validated against a typed schema registry before they
// reach the wire, a per-arm controller serializes access to the serial
// link and tracks torque and pose state, and taught motions can be
// recorded by hand-guiding the arm and replayed with their original
// timing.
//
// # Installation
//
//	go install github.com/roarm-dev/roarm/cmd/roarm@latest
//
// # Usage
//
// Find the arm's serial port and check it responds:
//
//	roarm ports
//	roarm --port /dev/ttyUSB0 status
//
// Record a motion by guiding the arm by hand, then play it back:
//
//	roarm --port /dev/ttyUSB0 teach --file wave.json
//	roarm --port /dev/ttyUSB0 replay --file wave.json --speed 1.5
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/roarm: CLI for moving, teaching, replaying and device missions
//   - pkg/command: wire command schemas, validation and encoding
//   - pkg/robot: arm controller, teaching recorder, replayer and registry
//   - pkg/trajectory: recorded motion files
//   - pkg/transport: serial line transport and port discovery
package roarm
