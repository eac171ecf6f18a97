package backend

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when the backend does not know a search handle
var ErrNotFound = errors.New("search not found")

// ValidationError is a 400 reply listing the rejected fields
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "backend rejected request"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e.Fields[name], "; "))
	}
	return "backend rejected request: " + strings.Join(parts, ", ")
}

// NetworkError covers transport failures, unexpected statuses and
// unreadable replies.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: HTTP %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
