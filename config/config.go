// Package config implements the typed, validated option bag shared by every
// other gohttp component: the request builder reads its evasion knobs from
// here, the connection manager reads its transport knobs, the auth
// coordinator reads credentials and scheme preference.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the declared type of a config option.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
	KindEnum
)

// Field describes one recognized option: its kind and, for KindEnum, the
// set of values Set will accept.
type Field struct {
	Kind    Kind
	Choices []string
}

// InvalidOption is returned by Set when an enum value isn't a declared choice.
type InvalidOption struct {
	Name    string
	Value   string
	Allowed []string
}

func (e *InvalidOption) Error() string {
	return fmt.Sprintf("gohttp/config: invalid value %q for option %q (allowed: %s)",
		e.Value, e.Name, strings.Join(e.Allowed, ", "))
}

// Config is a string-keyed, schema-validated option bag. The zero value is
// usable (Set fills in the schema on first use), but only New applies the
// declared defaults; on a zero Config every option reads as unset.
type Config struct {
	schema map[string]Field
	values map[string]string
}

// New returns a Config with the built-in option schema and defaults.
func New() *Config {
	c := &Config{
		schema: defaultSchema(),
		values: map[string]string{},
	}
	for name, def := range defaultValues() {
		c.values[name] = def
	}
	return c
}

// Set validates value against the option's declared kind and stores it.
// Enum violations return *InvalidOption; bool/int values are stored as
// given and coerced on read.
func (c *Config) Set(name, value string) error {
	if c.schema == nil {
		c.schema = defaultSchema()
	}
	if c.values == nil {
		c.values = map[string]string{}
	}
	field, known := c.schema[name]
	if !known {
		// unknown names default to string, per spec
		c.values[name] = value
		return nil
	}
	if field.Kind == KindEnum {
		ok := false
		for _, choice := range field.Choices {
			if choice == value {
				ok = true
				break
			}
		}
		if !ok {
			return &InvalidOption{Name: name, Value: value, Allowed: field.Choices}
		}
	}
	c.values[name] = value
	return nil
}

// GetString returns the raw stored value, or "" if unset.
func (c *Config) GetString(name string) string {
	if c == nil {
		return ""
	}
	return c.values[name]
}

// GetBool coerces the stored value to bool. Empty/unset is false. A string
// matching ^(t|y|1) case-insensitively is true; anything else is false.
func (c *Config) GetBool(name string) bool {
	v := strings.ToLower(strings.TrimSpace(c.GetString(name)))
	if v == "" {
		return false
	}
	switch v[0] {
	case 't', 'y', '1':
		return true
	default:
		return false
	}
}

// GetInt coerces the stored value via decimal parsing. Invalid input yields 0.
func (c *Config) GetInt(name string) int {
	v := strings.TrimSpace(c.GetString(name))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// GetIntDefault is GetInt, falling back to def when the option was never set.
func (c *Config) GetIntDefault(name string, def int) int {
	if _, ok := c.values[name]; !ok {
		return def
	}
	return c.GetInt(name)
}

// Merge returns a new Config carrying c's values overlaid with overrides,
// without mutating c. Used to build a per-call view.
func (c *Config) Merge(overrides map[string]string) *Config {
	out := &Config{
		schema: c.schema,
		values: make(map[string]string, len(c.values)+len(overrides)),
	}
	for k, v := range c.values {
		out.values[k] = v
	}
	for k, v := range overrides {
		// per-call overrides still go through validation
		_ = out.Set(k, v)
	}
	return out
}

// Clone returns an independent copy of c.
func (c *Config) Clone() *Config {
	return c.Merge(nil)
}
