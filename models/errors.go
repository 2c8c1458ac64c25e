package models

import "fmt"

// ValidationError rejects a mutation before anything is written. It is the
// only error kind surfaced synchronously from the mutation API.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
