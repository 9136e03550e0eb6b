package command

import "math"

// Validate resolves raw parameter values against the schema for code.
//
// Per declared parameter, in order: an absent value fails if required,
// falls back to the default if one exists, and is otherwise left out.
// Symbols resolve against the declared range. Numeric values are clamped
// into [min, max]. Integer parameters round to the nearest whole number;
// string and boolean values must match their declared type exactly.
// Parameters not declared by the schema are dropped.
func Validate(code int, raw Raw) (Validated, error) {
	s, ok := Lookup(code)
	if !ok {
		return Validated{}, &UnknownCommandError{Type: code}
	}

	values := make(map[string]any, len(s.Params))
	for _, p := range s.Params {
		v, present := raw[p.Name]
		if !present {
			if p.Spec.Required {
				return Validated{}, &MissingParameterError{Command: s.Name, Param: p.Name}
			}
			if p.Spec.Default != nil {
				values[p.Name] = p.Spec.Default
			}
			continue
		}
		resolved, err := resolve(p.Name, p.Spec, v)
		if err != nil {
			return Validated{}, err
		}
		values[p.Name] = resolved
	}

	return Validated{schema: s, values: values}, nil
}

// MustValidate is Validate for fixed inputs known to be valid, such as
// commands the controller builds itself. It panics on error.
func MustValidate(code int, raw Raw) Validated {
	v, err := Validate(code, raw)
	if err != nil {
		panic(err)
	}
	return v
}

func resolve(name string, spec ParamSpec, v any) (any, error) {
	if sym, ok := v.(Symbol); ok {
		return resolveSymbol(name, spec, sym)
	}

	switch spec.Type {
	case Integer:
		f, ok := toFloat(v)
		if !ok {
			return nil, &InvalidTypeError{Param: name, Expected: Integer, Value: v}
		}
		return int(math.Round(clamp(f, spec))), nil
	case Float:
		f, ok := toFloat(v)
		if !ok {
			return nil, &InvalidTypeError{Param: name, Expected: Float, Value: v}
		}
		return clamp(f, spec), nil
	case String:
		s, ok := v.(string)
		if !ok {
			return nil, &InvalidTypeError{Param: name, Expected: String, Value: v}
		}
		return s, nil
	case Boolean:
		b, ok := v.(bool)
		if !ok {
			return nil, &InvalidTypeError{Param: name, Expected: Boolean, Value: v}
		}
		return b, nil
	}
	return nil, &InvalidTypeError{Param: name, Expected: spec.Type, Value: v}
}

// resolveSymbol maps Min/Mid/Max onto the parameter's declared range.
// A symbol against a parameter without both numeric bounds is a type
// error: there is nothing to resolve it against.
func resolveSymbol(name string, spec ParamSpec, sym Symbol) (any, error) {
	numeric := spec.Type == Integer || spec.Type == Float
	if !numeric || spec.Min == nil || spec.Max == nil {
		return nil, &InvalidTypeError{Param: name, Expected: spec.Type, Value: sym}
	}

	var f float64
	switch sym {
	case Min:
		f = *spec.Min
	case Mid:
		f = (*spec.Min + *spec.Max) / 2
	case Max:
		f = *spec.Max
	default:
		return nil, &InvalidTypeError{Param: name, Expected: spec.Type, Value: sym}
	}

	if spec.Type == Integer {
		return int(math.Round(f)), nil
	}
	return f, nil
}

func clamp(f float64, spec ParamSpec) float64 {
	if spec.Min != nil && f < *spec.Min {
		return *spec.Min
	}
	if spec.Max != nil && f > *spec.Max {
		return *spec.Max
	}
	return f
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return finite(float64(n))
	case float64:
		return finite(n)
	}
	return 0, false
}

// finite rejects NaN and infinities; the wire format cannot carry them.
func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
