package sync

import (
	"fmt"
	"strings"
)

// LegError records one failed leg of a multi-leg operation.
type LegError struct {
	Entity string // "task", "event", "project"
	ID     string
	Err    error
}

// PartialError reports a multi-leg operation where some remote legs
// failed. Every local write has already committed and each failed
// leg's entity remains dirty; there is no rollback. Callers may show
// this as "saved locally, sync pending".
type PartialError struct {
	Legs []LegError
}

func (e *PartialError) Error() string {
	parts := make([]string, len(e.Legs))
	for i, leg := range e.Legs {
		parts[i] = fmt.Sprintf("%s %s: %v", leg.Entity, leg.ID, leg.Err)
	}
	return "sync pending for " + strings.Join(parts, "; ")
}
