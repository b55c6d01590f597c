package artifact

import "fmt"

var (
	// ErrNotFound is returned when no artifact exists for the given run / name
	// pair in the underlying store.
	ErrNotFound = fmt.Errorf("artifact not found")
)
