package expand

import (
	"fmt"
	"regexp"
	"strings"
)

// reference matches $$, ${name} and $name in a single pass, so values that
// themselves contain "$" are never expanded a second time.
var reference = regexp.MustCompile(`\$\$|\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}|\$([a-zA-Z_][a-zA-Z0-9_]*)`)

// Lookup resolves a variable name to its value.
type Lookup interface {
	Lookup(name string) (any, bool)
}

// Map is a Lookup backed by a plain map.
type Map map[string]any

// Lookup implements Lookup.
func (m Map) Lookup(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// Expander replaces variable references in document text.
//
// Create with New and configure with Option functions.
// Expander is safe for concurrent use after construction.
type Expander struct {
	missingAction MissingAction
	braceStyle    bool
	dollarStyle   bool
}

// New creates an Expander.
//
// Defaults:
//   - MissingAction: MissingEmpty (unset variables render as "")
//   - BraceStyle: enabled (${var})
//   - DollarStyle: enabled ($var)
func New(opts ...Option) *Expander {
	e := &Expander{
		missingAction: MissingEmpty,
		braceStyle:    true,
		dollarStyle:   true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand replaces references in s with values from vars.
// "$$" always produces a literal "$".
//
// An error is only returned when MissingAction is MissingError and
// at least one referenced variable is absent.
func (e *Expander) Expand(s string, vars Lookup) (string, error) {
	if s == "" || !strings.Contains(s, "$") {
		return s, nil
	}

	var missing []string
	result := reference.ReplaceAllStringFunc(s, func(match string) string {
		if match == "$$" {
			return "$"
		}

		var name string
		if strings.HasPrefix(match, "${") {
			if !e.braceStyle {
				return match
			}
			name = match[2 : len(match)-1]
		} else {
			if !e.dollarStyle {
				return match
			}
			name = match[1:]
		}

		if vars != nil {
			if val, ok := vars.Lookup(name); ok {
				return Format(val)
			}
		}

		switch e.missingAction {
		case MissingEmpty:
			return ""
		case MissingError:
			missing = append(missing, name)
			return match
		default: // MissingKeep
			return match
		}
	})

	if len(missing) > 0 {
		return result, &UndefinedVariableError{Names: missing}
	}
	return result, nil
}

// ExpandValue expands every string inside v, descending into maps and
// slices. Other values are returned unchanged.
func (e *Expander) ExpandValue(v any, vars Lookup) (any, error) {
	switch val := v.(type) {
	case string:
		return e.Expand(val, vars)
	case []string:
		out := make([]string, len(val))
		for i, s := range val {
			expanded, err := e.Expand(s, vars)
			if err != nil {
				return nil, err
			}
			out[i] = expanded
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			expanded, err := e.ExpandValue(item, vars)
			if err != nil {
				return nil, err
			}
			out[i] = expanded
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			expanded, err := e.ExpandValue(item, vars)
			if err != nil {
				return nil, err
			}
			out[k] = expanded
		}
		return out, nil
	default:
		return v, nil
	}
}

// Format renders a variable value as document text. nil renders as "".
func Format(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// UndefinedVariableError is returned when MissingError is set and
// one or more variables are not found.
type UndefinedVariableError struct {
	// Names is the list of undefined variable names, in order of appearance.
	Names []string
}

// Error implements the error interface.
func (e *UndefinedVariableError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("undefined variable: %s", e.Names[0])
	}
	return fmt.Sprintf("undefined variables: %s", strings.Join(e.Names, ", "))
}

var defaultExpander = New()

// Expand expands references in s using the default expander.
// Missing variables render as "".
func Expand(s string, vars map[string]any) string {
	result, _ := defaultExpander.Expand(s, Map(vars))
	return result
}
