package listing

import "fmt"

// ErrNotFound is returned when a listing is missing or does not belong to the caller.
var ErrNotFound = fmt.Errorf("job listing not found")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
