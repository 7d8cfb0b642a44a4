package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ParamType identifies the declared type of a tool parameter. Raw invocation
// arguments are coerced to the declared type before a handler runs.
type ParamType string

// Supported parameter types.
const (
	TypeString     ParamType = "string"
	TypeInteger    ParamType = "integer"
	TypeNumber     ParamType = "number"
	TypeBoolean    ParamType = "boolean"
	TypeStringList ParamType = "string_list"
)

// Param declares a single tool parameter.
type Param struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description,omitempty"`
	Required    bool      `json:"required,omitempty"`

	// Default is injected when the argument is absent. It must match the
	// declared type. A nil Default means the argument stays absent.
	Default any `json:"default,omitempty"`

	// Enum restricts a string parameter to a fixed set of values.
	Enum []string `json:"enum,omitempty"`
}

// jsonType returns the JSON Schema type name for the parameter.
func (p Param) jsonType() string {
	if p.Type == TypeStringList {
		return "array"
	}
	return string(p.Type)
}

// Params is an ordered list of parameter declarations.
type Params []Param

// Get returns the declaration for the named parameter.
func (ps Params) Get(name string) (Param, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Validate checks raw arguments against the declarations and returns the
// coerced argument set: required parameters must be present, every value
// must coerce to its declared type, undeclared names are rejected, and
// declared defaults are injected for absent optional parameters. Failures
// wrap ErrInvalidArguments and name the offending parameter.
func (ps Params) Validate(raw map[string]any) (Args, error) {
	undeclared := make([]string, 0)
	for name := range raw {
		if _, ok := ps.Get(name); !ok {
			undeclared = append(undeclared, name)
		}
	}
	if len(undeclared) > 0 {
		sort.Strings(undeclared)
		return nil, &InvalidArgumentsError{Param: undeclared[0], Reason: "not a declared parameter"}
	}

	args := make(Args, len(ps))
	for _, p := range ps {
		v, ok := raw[p.Name]
		if !ok || v == nil {
			if p.Required {
				return nil, &InvalidArgumentsError{Param: p.Name, Reason: "required parameter missing"}
			}
			if p.Default != nil {
				args[p.Name] = p.Default
			}
			continue
		}
		coerced, err := coerceValue(p, v)
		if err != nil {
			return nil, err
		}
		args[p.Name] = coerced
	}
	return args, nil
}

// coerceValue converts a raw argument to the parameter's declared type.
// JSON decoding hands numbers over as float64, so integer parameters accept
// integral floats.
func coerceValue(p Param, v any) (any, error) {
	switch p.Type {
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return nil, &InvalidArgumentsError{Param: p.Name, Reason: fmt.Sprintf("expected a string, got %T", v)}
		}
		if len(p.Enum) > 0 && !containsString(p.Enum, s) {
			return nil, &InvalidArgumentsError{
				Param:  p.Name,
				Reason: fmt.Sprintf("must be one of: %s", strings.Join(p.Enum, ", ")),
			}
		}
		return s, nil

	case TypeInteger:
		switch n := v.(type) {
		case int:
			return n, nil
		case int32:
			return int(n), nil
		case int64:
			return int(n), nil
		case float64:
			if n != math.Trunc(n) {
				return nil, &InvalidArgumentsError{Param: p.Name, Reason: fmt.Sprintf("expected an integer, got %v", n)}
			}
			return int(n), nil
		case json.Number:
			i, err := n.Int64()
			if err != nil {
				return nil, &InvalidArgumentsError{Param: p.Name, Reason: fmt.Sprintf("expected an integer, got %q", n.String())}
			}
			return int(i), nil
		default:
			return nil, &InvalidArgumentsError{Param: p.Name, Reason: fmt.Sprintf("expected an integer, got %T", v)}
		}

	case TypeNumber:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case json.Number:
			f, err := n.Float64()
			if err != nil {
				return nil, &InvalidArgumentsError{Param: p.Name, Reason: fmt.Sprintf("expected a number, got %q", n.String())}
			}
			return f, nil
		default:
			return nil, &InvalidArgumentsError{Param: p.Name, Reason: fmt.Sprintf("expected a number, got %T", v)}
		}

	case TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, &InvalidArgumentsError{Param: p.Name, Reason: fmt.Sprintf("expected a boolean, got %T", v)}
		}
		return b, nil

	case TypeStringList:
		switch list := v.(type) {
		case []string:
			out := make([]string, len(list))
			copy(out, list)
			return out, nil
		case []any:
			out := make([]string, len(list))
			for i, item := range list {
				s, ok := item.(string)
				if !ok {
					return nil, &InvalidArgumentsError{Param: p.Name, Reason: fmt.Sprintf("expected a list of strings, element %d is %T", i, item)}
				}
				out[i] = s
			}
			return out, nil
		default:
			return nil, &InvalidArgumentsError{Param: p.Name, Reason: fmt.Sprintf("expected a list of strings, got %T", v)}
		}

	default:
		return nil, &InvalidArgumentsError{Param: p.Name, Reason: fmt.Sprintf("unsupported parameter type %q", p.Type)}
	}
}

// checkDefault verifies a declared default against the declaration itself.
func checkDefault(p Param) error {
	if p.Default == nil {
		return nil
	}
	switch p.Type {
	case TypeString:
		s, ok := p.Default.(string)
		if !ok {
			return fmt.Errorf("%w: parameter %q", ErrBadDefault, p.Name)
		}
		if len(p.Enum) > 0 && !containsString(p.Enum, s) {
			return fmt.Errorf("%w: parameter %q default not in enum", ErrBadDefault, p.Name)
		}
	case TypeInteger:
		if _, ok := p.Default.(int); !ok {
			return fmt.Errorf("%w: parameter %q", ErrBadDefault, p.Name)
		}
	case TypeNumber:
		if _, ok := p.Default.(float64); !ok {
			return fmt.Errorf("%w: parameter %q", ErrBadDefault, p.Name)
		}
	case TypeBoolean:
		if _, ok := p.Default.(bool); !ok {
			return fmt.Errorf("%w: parameter %q", ErrBadDefault, p.Name)
		}
	case TypeStringList:
		if _, ok := p.Default.([]string); !ok {
			return fmt.Errorf("%w: parameter %q", ErrBadDefault, p.Name)
		}
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// Args holds validated, coerced invocation arguments. Values are guaranteed
// to match their declared types, so the typed getters do not fail; absent
// optional parameters read as zero values.
type Args map[string]any

// Has reports whether the argument is present.
func (a Args) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// String returns a string argument.
func (a Args) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Int returns an integer argument.
func (a Args) Int(key string) int {
	n, _ := a[key].(int)
	return n
}

// Float returns a number argument.
func (a Args) Float(key string) float64 {
	f, _ := a[key].(float64)
	return f
}

// Bool returns a boolean argument.
func (a Args) Bool(key string) bool {
	b, _ := a[key].(bool)
	return b
}

// StringSlice returns a string-list argument.
func (a Args) StringSlice(key string) []string {
	list, _ := a[key].([]string)
	return list
}
