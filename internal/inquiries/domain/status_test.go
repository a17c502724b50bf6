package domain

import (
	"errors"
	"testing"
)

// TestTransitionTableExhaustive checks the allow/deny decision for every
// (source, target) pair over the full status set, including that terminal
// statuses permit zero transitions and that no status permits a
// self-transition.
func TestTransitionTableExhaustive(t *testing.T) {
	allowed := map[[2]Status]bool{
		{StatusNew, StatusContacted}:       true,
		{StatusNew, StatusClosed}:          true,
		{StatusContacted, StatusScheduled}: true,
		{StatusContacted, StatusClosed}:    true,
		{StatusScheduled, StatusCompleted}: true,
		{StatusScheduled, StatusClosed}:    true,
	}

	for _, from := range AllStatuses {
		for _, to := range AllStatuses {
			want := allowed[[2]Status{from, to}]
			got := from.CanTransition(to)
			if got != want {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", from, to, got, want)
			}

			err := CheckTransition(from, to)
			if want && err != nil {
				t.Errorf("CheckTransition(%s -> %s) unexpected error: %v", from, to, err)
			}
			if !want && !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("CheckTransition(%s -> %s) expected ErrInvalidTransition, got %v", from, to, err)
			}
		}
	}
}

func TestNoSelfTransitions(t *testing.T) {
	for _, s := range AllStatuses {
		if s.CanTransition(s) {
			t.Errorf("status %s must not permit a self-transition", s)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	cases := []struct {
		status   Status
		terminal bool
	}{
		{StatusNew, false},
		{StatusContacted, false},
		{StatusScheduled, false},
		{StatusCompleted, true},
		{StatusClosed, true},
	}

	for _, tc := range cases {
		if got := tc.status.IsTerminal(); got != tc.terminal {
			t.Errorf("IsTerminal(%s) = %v, want %v", tc.status, got, tc.terminal)
		}
	}
}

func TestUnknownStatusRejected(t *testing.T) {
	if err := CheckTransition(Status("pending"), StatusContacted); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for unknown source, got %v", err)
	}
	if err := CheckTransition(StatusNew, Status("archived")); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for unknown target, got %v", err)
	}
}

func TestOnlyNewRequiresResponse(t *testing.T) {
	for _, s := range AllStatuses {
		want := s == StatusNew
		if got := s.RequiresResponse(); got != want {
			t.Errorf("RequiresResponse(%s) = %v, want %v", s, got, want)
		}
	}
}
