// Package registry provides a generic thread-safe registry of named values.
//
// The filter package keeps its named filter constructors here, and the CLI
// lists them through Keys, which is always sorted.
//
//	r := registry.New[string, int]()
//	if err := r.Register("one", 1); err != nil {
//	    // errors.Is(err, registry.ErrDuplicate)
//	}
//
//	v, err := r.Lookup("two") // errors.Is(err, registry.ErrNotFound)
//
// Register refuses to overwrite; Replace does not.
package registry
