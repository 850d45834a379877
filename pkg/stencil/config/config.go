package config

import (
	"slices"
	"strconv"
	"strings"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Config is an ordered, case-insensitive option bag.
// Keys are folded to lower case on every read and write, so "Path", "PATH"
// and "path" name the same option. Iteration follows first-insertion order.
//
// All typed accessors return the default value if the key is missing
// or the value cannot be converted to the requested type.
type Config struct {
	data *orderedmap.OrderedMap[string, any]
}

// New creates a Config from the given map.
// Map iteration order is random, so keys are inserted in sorted order.
// If data is nil, an empty Config is returned.
func New(data map[string]any) *Config {
	c := Empty()
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		c.Set(k, data[k])
	}
	return c
}

// Empty returns a Config with no options.
func Empty() *Config {
	return &Config{data: orderedmap.New[string, any]()}
}

// FromOrdered builds a Config from an ordered map, keeping its order.
func FromOrdered(om *orderedmap.OrderedMap[string, any]) *Config {
	c := Empty()
	if om == nil {
		return c
	}
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		c.Set(pair.Key, pair.Value)
	}
	return c
}

func fold(key string) string {
	return strings.ToLower(key)
}

// Get returns the raw value for key and whether it is present.
func (c *Config) Get(key string) (any, bool) {
	if c == nil || c.data == nil {
		return nil, false
	}
	return c.data.Get(fold(key))
}

// Set stores value under key, replacing any existing value in place.
func (c *Config) Set(key string, value any) *Config {
	if c.data == nil {
		c.data = orderedmap.New[string, any]()
	}
	c.data.Set(fold(key), value)
	return c
}

// Delete removes key and reports whether it was present.
func (c *Config) Delete(key string) bool {
	if c == nil || c.data == nil {
		return false
	}
	_, ok := c.data.Delete(fold(key))
	return ok
}

// String returns the string value for key, or defaultVal if missing or not a string.
func (c *Config) String(key, defaultVal string) string {
	v, ok := c.Get(key)
	if !ok {
		return defaultVal
	}
	if s, ok := v.(string); ok {
		return s
	}
	return defaultVal
}

// Duration returns the duration value for key, or defaultVal if missing or invalid.
//
// Accepts:
//   - string: parsed with time.ParseDuration
//   - int, int64, float64: interpreted as seconds
//   - time.Duration: used directly
func (c *Config) Duration(key string, defaultVal time.Duration) time.Duration {
	v, ok := c.Get(key)
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case string:
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	case float64:
		return time.Duration(val * float64(time.Second))
	case int:
		return time.Duration(val) * time.Second
	case int64:
		return time.Duration(val) * time.Second
	case time.Duration:
		return val
	}
	return defaultVal
}

// Bool returns the boolean value for key, or defaultVal if missing or not convertible.
// Strings are parsed with strconv.ParseBool so options set from the command line work.
func (c *Config) Bool(key string, defaultVal bool) bool {
	v, ok := c.Get(key)
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// Int returns the integer value for key, or defaultVal if missing or not convertible.
//
// Accepts:
//   - int: used directly
//   - int64: converted to int
//   - float64: converted only if there is no fractional part
//   - string: parsed with strconv.Atoi
func (c *Config) Int(key string, defaultVal int) int {
	v, ok := c.Get(key)
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		if val == float64(int(val)) {
			return int(val)
		}
	case string:
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

// Float returns the float64 value for key, or defaultVal if missing or not convertible.
func (c *Config) Float(key string, defaultVal float64) float64 {
	v, ok := c.Get(key)
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	}
	return defaultVal
}

// StringSlice returns the string slice for key, or defaultVal if missing or not convertible.
//
// Accepts:
//   - []string: copied
//   - []any: each element must be a string
//   - string: split on commas, blanks dropped
func (c *Config) StringSlice(key string, defaultVal []string) []string {
	v, ok := c.Get(key)
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case []string:
		return slices.Clone(val)
	case []any:
		result := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return defaultVal
			}
			result = append(result, s)
		}
		return result
	case string:
		var result []string
		for _, part := range strings.Split(val, ",") {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}
		return result
	}
	return defaultVal
}

// Any returns the raw value for key, or defaultVal if missing.
func (c *Config) Any(key string, defaultVal any) any {
	v, ok := c.Get(key)
	if !ok {
		return defaultVal
	}
	return v
}

// Has returns true if the key exists in the config.
func (c *Config) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Len returns the number of options.
func (c *Config) Len() int {
	if c == nil || c.data == nil {
		return 0
	}
	return c.data.Len()
}

// Keys returns the folded keys in insertion order.
func (c *Config) Keys() []string {
	if c == nil || c.data == nil {
		return nil
	}
	keys := make([]string, 0, c.data.Len())
	for pair := c.data.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Clone returns a shallow copy that can be mutated independently.
func (c *Config) Clone() *Config {
	out := Empty()
	if c == nil || c.data == nil {
		return out
	}
	for pair := c.data.Oldest(); pair != nil; pair = pair.Next() {
		out.data.Set(pair.Key, pair.Value)
	}
	return out
}

// Merge returns a new Config holding c's options overlaid with overrides.
// Keys already present keep their position; new keys are appended.
func (c *Config) Merge(overrides *Config) *Config {
	out := c.Clone()
	if overrides == nil || overrides.data == nil {
		return out
	}
	for pair := overrides.data.Oldest(); pair != nil; pair = pair.Next() {
		out.data.Set(pair.Key, pair.Value)
	}
	return out
}

// Raw returns the options as a plain map with folded keys.
// The returned map is a copy.
func (c *Config) Raw() map[string]any {
	out := make(map[string]any, c.Len())
	if c == nil || c.data == nil {
		return out
	}
	for pair := c.data.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}
