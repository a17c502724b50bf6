// Package domain provides core business rules for the inquiries bounded context.
package domain

// Status is the lifecycle state of an inquiry.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusClosed    Status = "closed"
)

// transitions is the complete transition table. A status missing from a
// source's set is not reachable from it; self-transitions are never allowed.
var transitions = map[Status]map[Status]bool{
	StatusNew:       {StatusContacted: true, StatusClosed: true},
	StatusContacted: {StatusScheduled: true, StatusClosed: true},
	StatusScheduled: {StatusCompleted: true, StatusClosed: true},
	StatusCompleted: {},
	StatusClosed:    {},
}

// AllStatuses lists every known status, in lifecycle order.
var AllStatuses = []Status{StatusNew, StatusContacted, StatusScheduled, StatusCompleted, StatusClosed}

// IsKnown reports whether s is a recognized status value.
func (s Status) IsKnown() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether s permits no further transitions.
func (s Status) IsTerminal() bool {
	targets, ok := transitions[s]
	return ok && len(targets) == 0
}

// RequiresResponse reports whether an inquiry in this status is still
// waiting on a broker. Only new inquiries count for overdue detection.
func (s Status) RequiresResponse() bool {
	return s == StatusNew
}

// CanTransition reports whether moving from s to target is legal.
func (s Status) CanTransition(target Status) bool {
	return transitions[s][target]
}

// CheckTransition validates a requested transition. It returns
// ErrInvalidTransition for any pair not present in the table, including
// self-transitions and moves out of terminal statuses.
func CheckTransition(from, to Status) error {
	if !from.IsKnown() || !to.IsKnown() {
		return ErrInvalidTransition
	}
	if !from.CanTransition(to) {
		return ErrInvalidTransition
	}
	return nil
}
