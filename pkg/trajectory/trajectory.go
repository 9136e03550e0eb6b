// Package trajectory holds taught arm motions: timestamped joint
// samples captured while the arm is moved by hand, persisted as JSON for
// later replay.
package trajectory

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Sample is one captured set of joint angles in radians, base joint
// first, stamped with capture time in unix milliseconds.
type Sample struct {
	TimestampMS int64     `json:"timestamped"`
	Joints      []float64 `json:"joints"`
}

// Recording is a taught motion, samples in capture order.
type Recording []Sample

// Duration returns the span from first to last sample.
func (r Recording) Duration() time.Duration {
	if len(r) < 2 {
		return 0
	}
	return time.Duration(r[len(r)-1].TimestampMS-r[0].TimestampMS) * time.Millisecond
}

// Validate checks recording integrity: at least one joint per sample, a
// consistent joint count, and non-decreasing timestamps.
func (r Recording) Validate() error {
	for i, s := range r {
		if len(s.Joints) == 0 {
			return fmt.Errorf("sample %d: no joints", i)
		}
		if len(s.Joints) != len(r[0].Joints) {
			return fmt.Errorf("sample %d: %d joints, first sample has %d", i, len(s.Joints), len(r[0].Joints))
		}
		if i > 0 && s.TimestampMS < r[i-1].TimestampMS {
			return fmt.Errorf("sample %d: timestamp %d before previous %d", i, s.TimestampMS, r[i-1].TimestampMS)
		}
	}
	return nil
}

// Load reads a recording from a JSON file.
func Load(path string) (Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}

	var rec Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse recording JSON: %w", err)
	}
	return rec, nil
}

// Save writes the recording to a JSON file. An empty recording is
// written as an empty array.
func (r Recording) Save(path string) error {
	if r == nil {
		r = Recording{}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode recording: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write recording: %w", err)
	}
	return nil
}
