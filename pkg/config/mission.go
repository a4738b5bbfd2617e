package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/openmission/openmission/pkg/behavior"
)

// validate is the shared validator instance for configuration structs.
var validate = validator.New()

// Duration is a time.Duration that (un)marshals as the canonical duration
// string ("90s", "5m") so mission files stay human-editable.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler, accepting duration strings and
// plain integer nanoseconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw interface{}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
		return nil
	case int:
		*d = Duration(v)
		return nil
	default:
		return fmt.Errorf("invalid duration value %v", raw)
	}
}

// Mission describes a single runnable mission: which behavior type to
// construct, under what name, and the settings to load into it before
// execution.
type Mission struct {
	// Name is the instance name of the root behavior and the label used in
	// reports, logs and run records.
	Name string `yaml:"name" validate:"required"`

	// Behavior is the registered behavior type to construct.
	Behavior string `yaml:"behavior" validate:"required"`

	// Settings are loaded into the constructed behavior. Parameters the
	// behavior does not recognize are ignored.
	Settings behavior.Settings `yaml:"settings"`

	// Timeout bounds the whole mission; zero means unbounded. On expiry the
	// runner requests preemption rather than killing the behavior.
	Timeout Duration `yaml:"timeout" validate:"min=0"`

	// Description is free-form operator documentation.
	Description string `yaml:"description"`
}

// File is the on-disk shape of a mission definition.
type File struct {
	Mission Mission `yaml:"mission"`
}

// Parse decodes and validates a mission definition. Unknown fields are
// ignored so that older engines can run newer mission files.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing mission definition: %w", err)
	}
	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid mission definition: %w", err)
	}
	return &f, nil
}

// Load reads and parses a mission definition file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mission file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Encode renders a mission definition back to YAML, the inverse of Parse.
// It is used by the settings editing workflow: load, save the behavior's
// current settings into the definition, write it back.
func (f *File) Encode() ([]byte, error) {
	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encoding mission definition: %w", err)
	}
	return data, nil
}

// Write stores the mission definition at path with conventional permissions.
func (f *File) Write(path string) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing mission file: %w", err)
	}
	return nil
}
