// Package workflow defines the FIR status lifecycle.
//
//	draft ──► submitted ──► under_investigation ──► closed
//	              ▲   │                │
//	              │   ▼                ▼
//	              └─ rejected ◄────────┘
package workflow

import (
	"errors"
	"fmt"
	"strings"
)

type Status string

const (
	Draft              Status = "draft"
	Submitted          Status = "submitted"
	UnderInvestigation Status = "under_investigation"
	Closed             Status = "closed"
	Rejected           Status = "rejected"
)

// ErrInvalidTransition is matched by every rejected transition
var ErrInvalidTransition = errors.New("invalid status transition")

// TransitionError reports a rejected transition. The FIR it was requested
// for is left unchanged.
type TransitionError struct {
	From    Status
	To      Status
	Allowed []Status
}

func (e *TransitionError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("cannot move from %s to %s: %s is terminal", e.From, e.To, e.From)
	}
	names := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		names[i] = string(s)
	}
	return fmt.Sprintf("cannot move from %s to %s: allowed next statuses are %s",
		e.From, e.To, strings.Join(names, ", "))
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

var transitions = map[Status][]Status{
	Draft:              {Submitted},
	Submitted:          {UnderInvestigation, Rejected},
	UnderInvestigation: {Closed, Rejected},
	Rejected:           {Submitted},
	Closed:             {},
}

var labels = map[Status]string{
	Draft:              "Draft",
	Submitted:          "Submitted",
	UnderInvestigation: "Under Investigation",
	Closed:             "Closed",
	Rejected:           "Rejected",
}

var badges = map[Status]string{
	Draft:              "secondary",
	Submitted:          "info",
	UnderInvestigation: "warning",
	Closed:             "success",
	Rejected:           "danger",
}

// All lists every status in lifecycle order
func All() []Status {
	return []Status{Draft, Submitted, UnderInvestigation, Closed, Rejected}
}

// Valid reports whether s is a known status
func Valid(s Status) bool {
	_, ok := transitions[s]
	return ok
}

// Allowed returns the statuses reachable from s in one step. The result is a copy.
func Allowed(s Status) []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// Terminal reports whether no transition leaves s
func Terminal(s Status) bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransition reports whether from → to is an edge of the workflow.
// Self-transitions are never edges.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition validates from → to and returns a *TransitionError when it is not allowed
func Transition(from, to Status) error {
	if CanTransition(from, to) {
		return nil
	}
	return &TransitionError{From: from, To: to, Allowed: Allowed(from)}
}

// Label is the human readable status name
func Label(s Status) string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

// Badge is the display class used by rendered reports
func Badge(s Status) string {
	if b, ok := badges[s]; ok {
		return b
	}
	return "secondary"
}
