package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	allowed := map[Status]map[Status]bool{
		Draft:              {Submitted: true},
		Submitted:          {UnderInvestigation: true, Rejected: true},
		UnderInvestigation: {Closed: true, Rejected: true},
		Rejected:           {Submitted: true},
		Closed:             {},
	}

	for _, from := range All() {
		for _, to := range All() {
			want := allowed[from][to]
			assert.Equalf(t, want, CanTransition(from, to), "%s -> %s", from, to)

			err := Transition(from, to)
			if want {
				assert.NoErrorf(t, err, "%s -> %s", from, to)
				continue
			}
			var te *TransitionError
			require.ErrorAsf(t, err, &te, "%s -> %s", from, to)
			assert.True(t, errors.Is(err, ErrInvalidTransition))
			assert.Equal(t, from, te.From)
			assert.Equal(t, to, te.To)
		}
	}
}

func TestClosedIsTerminal(t *testing.T) {
	assert.True(t, Terminal(Closed))
	assert.Empty(t, Allowed(Closed))
	for _, to := range append(All(), Status("reopened"), Status("")) {
		assert.False(t, CanTransition(Closed, to), "closed -> %s", to)
	}
	for _, s := range []Status{Draft, Submitted, UnderInvestigation, Rejected} {
		assert.False(t, Terminal(s), "%s should not be terminal", s)
	}
}

func TestSelfTransitionRejected(t *testing.T) {
	for _, s := range All() {
		assert.Error(t, Transition(s, s), "%s -> %s", s, s)
	}
}

func TestUnknownStatuses(t *testing.T) {
	assert.False(t, Valid("archived"))
	assert.True(t, Valid(UnderInvestigation))
	assert.Error(t, Transition("archived", Submitted))
	assert.Error(t, Transition(Draft, "archived"))
}

func TestAllowedReturnsCopy(t *testing.T) {
	next := Allowed(Submitted)
	next[0] = Closed
	assert.Equal(t, []Status{UnderInvestigation, Rejected}, Allowed(Submitted))
}

func TestRejectResubmitScenario(t *testing.T) {
	status := Submitted

	steps := []struct {
		to       Status
		accepted bool
	}{
		{to: Rejected, accepted: true},
		{to: Submitted, accepted: true},
		{to: Closed, accepted: false},
	}

	for _, step := range steps {
		err := Transition(status, step.to)
		if step.accepted {
			require.NoError(t, err)
			status = step.to
		} else {
			require.Error(t, err)
		}
	}
	assert.Equal(t, Submitted, status)
}

func TestTransitionErrorMessage(t *testing.T) {
	err := Transition(Closed, Submitted)
	assert.Contains(t, err.Error(), "terminal")

	err = Transition(Draft, UnderInvestigation)
	assert.Contains(t, err.Error(), "submitted")
}

func TestLabelAndBadge(t *testing.T) {
	assert.Equal(t, "Under Investigation", Label(UnderInvestigation))
	assert.Equal(t, "danger", Badge(Rejected))
	assert.Equal(t, "secondary", Badge("unknown"))
	assert.Equal(t, "unknown", Label("unknown"))
}
