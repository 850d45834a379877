/*
Package expand substitutes ${var} and $var references in text.

# Overview

expand is the lightweight document language used by ExpandExecutor and
the "expand" variable filter. It has no control flow: every reference is
replaced by the formatted value of the named variable.

	out := expand.Expand("<h1>${title}</h1>", map[string]any{"title": "Hi"})
	// out: "<h1>Hi</h1>"

# References

  - ${name} - brace style
  - $name   - dollar style, the name runs to the first non-word character
  - $$      - a literal dollar sign

References are replaced in a single pass, so a substituted value that
contains "$" is emitted as-is.

# Missing Variables

Unset variables render as the empty string by default. Use
WithMissingAction to keep the reference text or to fail with an
UndefinedVariableError.
*/
package expand
