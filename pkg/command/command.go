// Package command implements the arm's wire command set: parameter
// schemas, validation with symbolic value resolution and range clamping,
// and the newline-delimited JSON codec.
package command

import "fmt"

// ParamType is the value type a command parameter accepts.
type ParamType int

const (
	Integer ParamType = iota
	Float
	String
	Boolean
)

func (t ParamType) String() string {
	switch t {
	case Integer:
		return "integer"
	case Float:
		return "float"
	case String:
		return "string"
	case Boolean:
		return "boolean"
	}
	return fmt.Sprintf("ParamType(%d)", int(t))
}

// Symbol is a symbolic stand-in for a numeric parameter value. It is
// resolved against the parameter's declared range during validation, so
// callers can say "open the gripper fully" without knowing the bounds.
type Symbol int

const (
	Min Symbol = iota
	Mid
	Max
)

func (s Symbol) String() string {
	switch s {
	case Min:
		return "min"
	case Mid:
		return "mid"
	case Max:
		return "max"
	}
	return fmt.Sprintf("Symbol(%d)", int(s))
}

// ParamSpec declares the constraints for a single parameter.
type ParamSpec struct {
	Type     ParamType
	Min      *float64 // inclusive, nil when unbounded
	Max      *float64 // inclusive, nil when unbounded
	Default  any      // used when an optional parameter is absent
	Required bool
}

// Param pairs a wire field name with its spec. The order of params in a
// Schema is the order fields are emitted on the wire.
type Param struct {
	Name string
	Spec ParamSpec
}

// Category groups commands for dispatch timeout selection. Movement
// commands get a longer reply window than the rest.
type Category string

const (
	CategoryMovement Category = "movement"
	CategorySystem   Category = "system"
	CategoryLED      Category = "led"
	CategoryPID      Category = "pid"
	CategoryAdapt    Category = "adapt"
	CategoryMission  Category = "mission"
	CategoryGripper  Category = "gripper"
)

// Schema describes one command type.
type Schema struct {
	Type        int // wire T-code
	Name        string
	Description string
	Category    Category
	Params      []Param
}

// Raw holds caller-supplied parameter values before validation: numbers,
// strings, bools, or Symbol.
type Raw map[string]any

// Validated is a command that passed validation. Every value satisfies
// its spec, required and defaulted parameters are always present, and no
// undeclared parameters are carried.
type Validated struct {
	schema *Schema
	values map[string]any
}

// Type returns the wire command code.
func (v Validated) Type() int { return v.schema.Type }

// Name returns the command's registry name.
func (v Validated) Name() string { return v.schema.Name }

// Category returns the command's dispatch category.
func (v Validated) Category() Category { return v.schema.Category }

// Value returns the resolved value for a parameter name.
func (v Validated) Value(name string) (any, bool) {
	val, ok := v.values[name]
	return val, ok
}

// MissingParameterError reports a required parameter absent from the
// caller's input.
type MissingParameterError struct {
	Command string
	Param   string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("command %s: missing required parameter %q", e.Command, e.Param)
}

// InvalidTypeError reports a value that cannot satisfy a parameter's
// declared type, including a symbol used against a parameter without
// numeric bounds.
type InvalidTypeError struct {
	Param    string
	Expected ParamType
	Value    any
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("parameter %q: expected %s, got %T (%v)", e.Param, e.Expected, e.Value, e.Value)
}

// UnknownCommandError reports a wire code with no registered schema.
type UnknownCommandError struct {
	Type int
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command type %d", e.Type)
}

// FormatError reports a device reply that matches no known shape.
type FormatError struct {
	Line string
	Err  error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unrecognized feedback %q: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("unrecognized feedback %q", e.Line)
}

func (e *FormatError) Unwrap() error { return e.Err }
