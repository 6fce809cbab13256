package container

import "errors"

// Sentinel errors surfaced by the container. Call sites wrap them with
// the offending identifier; match with errors.Is.
var (
	// ErrAlreadySingleton is returned by Bind when the identifier is
	// already bound as a singleton. Singletons are immutable once
	// registered; the original binding stays in place.
	ErrAlreadySingleton = errors.New("identifier already bound as a singleton")

	// ErrUnbound is returned by Make when the identifier has no active
	// binding.
	ErrUnbound = errors.New("no binding registered")

	// ErrInvalidIdentifier is returned by IsSingleton when the
	// identifier is not a string.
	ErrInvalidIdentifier = errors.New("identifier must be a string")

	// ErrCircularDependency is returned by Make when resolution
	// re-enters a binding that is already being built.
	ErrCircularDependency = errors.New("circular dependency detected")
)
