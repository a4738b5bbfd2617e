package behavior

import (
	"fmt"
	"time"
)

// Kind is the type tag of a configuration parameter. The set of kinds is
// closed; loading dispatches exhaustively on it.
type Kind string

const (
	KindBool     Kind = "bool"
	KindInt      Kind = "int"
	KindFloat    Kind = "float"
	KindString   Kind = "string"
	KindDuration Kind = "duration"
)

// Parameter is a named, typed configuration value of a behavior. The value
// is a tagged union over Kind; the typed accessors fail with an explicit
// error instead of converting silently.
type Parameter struct {
	name  string
	kind  Kind
	value interface{}
}

// BoolParameter creates a bool parameter.
func BoolParameter(name string, value bool) Parameter {
	return Parameter{name: name, kind: KindBool, value: value}
}

// IntParameter creates an int parameter.
func IntParameter(name string, value int) Parameter {
	return Parameter{name: name, kind: KindInt, value: value}
}

// FloatParameter creates a float parameter.
func FloatParameter(name string, value float64) Parameter {
	return Parameter{name: name, kind: KindFloat, value: value}
}

// StringParameter creates a string parameter.
func StringParameter(name string, value string) Parameter {
	return Parameter{name: name, kind: KindString, value: value}
}

// DurationParameter creates a duration parameter.
func DurationParameter(name string, value time.Duration) Parameter {
	return Parameter{name: name, kind: KindDuration, value: value}
}

// Name returns the parameter name.
func (p Parameter) Name() string { return p.name }

// Kind returns the parameter's type tag.
func (p Parameter) Kind() Kind { return p.kind }

// AsBool returns the value of a bool parameter.
func (p Parameter) AsBool() (bool, error) {
	if p.kind != KindBool {
		return false, p.kindError(KindBool)
	}
	return p.value.(bool), nil
}

// AsInt returns the value of an int parameter.
func (p Parameter) AsInt() (int, error) {
	if p.kind != KindInt {
		return 0, p.kindError(KindInt)
	}
	return p.value.(int), nil
}

// AsFloat returns the value of a float parameter.
func (p Parameter) AsFloat() (float64, error) {
	if p.kind != KindFloat {
		return 0, p.kindError(KindFloat)
	}
	return p.value.(float64), nil
}

// AsString returns the value of a string parameter.
func (p Parameter) AsString() (string, error) {
	if p.kind != KindString {
		return "", p.kindError(KindString)
	}
	return p.value.(string), nil
}

// AsDuration returns the value of a duration parameter.
func (p Parameter) AsDuration() (time.Duration, error) {
	if p.kind != KindDuration {
		return 0, p.kindError(KindDuration)
	}
	return p.value.(time.Duration), nil
}

func (p Parameter) kindError(want Kind) error {
	return fmt.Errorf("parameter %q has kind %q, not %q", p.name, p.kind, want)
}

// Settings is an ordered sequence of parameters, sufficient to reconstruct a
// behavior's configuration. Saving never includes execution-time feedback.
type Settings struct {
	params []Parameter
}

// Add appends a parameter, replacing an existing parameter of the same name
// in place so the sequence order stays stable.
func (s *Settings) Add(p Parameter) {
	for i, have := range s.params {
		if have.name == p.name {
			s.params[i] = p
			return
		}
	}
	s.params = append(s.params, p)
}

// Get returns the named parameter and whether it is present.
func (s Settings) Get(name string) (Parameter, bool) {
	for _, p := range s.params {
		if p.name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Has reports whether the named parameter is present.
func (s Settings) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Parameters returns a copy of the parameter sequence in order.
func (s Settings) Parameters() []Parameter {
	out := make([]Parameter, len(s.params))
	copy(out, s.params)
	return out
}

// Len returns the number of parameters.
func (s Settings) Len() int {
	return len(s.params)
}

// parameterWire is the serialized shape of a parameter:
// {name, kind, value-opaque-by-kind}.
type parameterWire struct {
	Name  string      `yaml:"name" json:"name"`
	Kind  string      `yaml:"kind" json:"kind"`
	Value interface{} `yaml:"value" json:"value"`
}

// MarshalYAML implements yaml.Marshaler. Durations are encoded in their
// canonical string form so saved settings stay human-editable.
func (s Settings) MarshalYAML() (interface{}, error) {
	wire := make([]parameterWire, 0, len(s.params))
	for _, p := range s.params {
		value := p.value
		if p.kind == KindDuration {
			value = p.value.(time.Duration).String()
		}
		wire = append(wire, parameterWire{
			Name:  p.name,
			Kind:  string(p.kind),
			Value: value,
		})
	}
	return wire, nil
}

// UnmarshalYAML implements yaml.Unmarshaler with exhaustive dispatch on the
// parameter kind. An unknown kind is an error; decoding never guesses.
func (s *Settings) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var wire []parameterWire
	if err := unmarshal(&wire); err != nil {
		return err
	}
	params := make([]Parameter, 0, len(wire))
	for _, w := range wire {
		p, err := decodeParameter(w)
		if err != nil {
			return err
		}
		params = append(params, p)
	}
	s.params = params
	return nil
}

func decodeParameter(w parameterWire) (Parameter, error) {
	switch Kind(w.Kind) {
	case KindBool:
		v, ok := w.Value.(bool)
		if !ok {
			return Parameter{}, fmt.Errorf("parameter %q: value %v is not a bool", w.Name, w.Value)
		}
		return BoolParameter(w.Name, v), nil
	case KindInt:
		switch v := w.Value.(type) {
		case int:
			return IntParameter(w.Name, v), nil
		case int64:
			return IntParameter(w.Name, int(v)), nil
		default:
			return Parameter{}, fmt.Errorf("parameter %q: value %v is not an int", w.Name, w.Value)
		}
	case KindFloat:
		switch v := w.Value.(type) {
		case float64:
			return FloatParameter(w.Name, v), nil
		case int:
			return FloatParameter(w.Name, float64(v)), nil
		default:
			return Parameter{}, fmt.Errorf("parameter %q: value %v is not a float", w.Name, w.Value)
		}
	case KindString:
		v, ok := w.Value.(string)
		if !ok {
			return Parameter{}, fmt.Errorf("parameter %q: value %v is not a string", w.Name, w.Value)
		}
		return StringParameter(w.Name, v), nil
	case KindDuration:
		v, ok := w.Value.(string)
		if !ok {
			return Parameter{}, fmt.Errorf("parameter %q: value %v is not a duration string", w.Name, w.Value)
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return Parameter{}, fmt.Errorf("parameter %q: %w", w.Name, err)
		}
		return DurationParameter(w.Name, d), nil
	default:
		return Parameter{}, fmt.Errorf("parameter %q: unknown kind %q", w.Name, w.Kind)
	}
}
