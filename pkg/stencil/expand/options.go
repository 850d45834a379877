package expand

// MissingAction specifies how to handle missing variables.
type MissingAction int

const (
	// MissingEmpty replaces the reference with an empty string.
	// This is the default, matching how documents treat unset variables.
	MissingEmpty MissingAction = iota

	// MissingKeep leaves the reference text as-is.
	MissingKeep

	// MissingError returns an UndefinedVariableError.
	MissingError
)

// String returns the action name.
func (a MissingAction) String() string {
	switch a {
	case MissingEmpty:
		return "empty"
	case MissingKeep:
		return "keep"
	case MissingError:
		return "error"
	default:
		return "unknown"
	}
}

// Option configures an Expander.
type Option func(*Expander)

// WithMissingAction sets how missing variables are handled.
//
// Example:
//
//	exp := expand.New(expand.WithMissingAction(expand.MissingError))
//	_, err := exp.Expand("${missing}", nil)
//	// err: "undefined variable: missing"
func WithMissingAction(action MissingAction) Option {
	return func(e *Expander) {
		e.missingAction = action
	}
}

// WithBraceStyle enables or disables ${var} references.
func WithBraceStyle(enabled bool) Option {
	return func(e *Expander) {
		e.braceStyle = enabled
	}
}

// WithDollarStyle enables or disables $var references.
func WithDollarStyle(enabled bool) Option {
	return func(e *Expander) {
		e.dollarStyle = enabled
	}
}
