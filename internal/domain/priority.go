package domain

import "fmt"

// Priority is an ordinal urgency. Lower values are more urgent, so sorting
// ascending by priority puts CRITICAL first.
type Priority int

const (
	PriorityCritical Priority = 0
	PriorityHigh     Priority = 1
	PriorityMedium   Priority = 2
	PriorityLow      Priority = 3

	DefaultPriority = PriorityMedium
)

// Valid reports whether p is one of the four defined priorities.
func (p Priority) Valid() bool {
	return p >= PriorityCritical && p <= PriorityLow
}

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "CRITICAL"
	case PriorityHigh:
		return "HIGH"
	case PriorityMedium:
		return "MEDIUM"
	case PriorityLow:
		return "LOW"
	default:
		return fmt.Sprintf("Priority(%d)", int(p))
	}
}

func validatePriority(p Priority) error {
	if !p.Valid() {
		return NewValidationError("priority", "must be one of 0 (critical), 1 (high), 2 (medium), 3 (low)", nil)
	}
	return nil
}
