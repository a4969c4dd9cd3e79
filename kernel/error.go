package kernel

// Error describes a kernel error. All kernel errors are declared as
// package-level *Error values so they can be compared by identity
// without triggering an allocation.
type Error struct {
	// The module where the error occurred.
	Module string

	// The error message
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// String returns the error prefixed with the name of the module that
// raised it.
func (e *Error) String() string {
	if e.Module == "" {
		return e.Message
	}
	return "[" + e.Module + "] " + e.Message
}

// causedError pairs a kernel error kind with the lower-level error that
// triggered it.
type causedError struct {
	kind  *Error
	cause error
}

// Wrap returns an error that matches kind when inspected with errors.Is
// and unwraps to cause. If cause is nil, kind is returned as-is.
func Wrap(cause error, kind *Error) error {
	if cause == nil {
		return kind
	}
	return &causedError{kind: kind, cause: cause}
}

func (e *causedError) Error() string {
	return e.kind.Message + ": " + e.cause.Error()
}

// Is reports whether target is the kernel error kind carried by e.
func (e *causedError) Is(target error) bool {
	k, ok := target.(*Error)
	return ok && k == e.kind
}

// Unwrap returns the underlying cause.
func (e *causedError) Unwrap() error {
	return e.cause
}
