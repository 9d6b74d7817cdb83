package environments

import (
	"testing"

	"github.com/goliatone/go-appcatalog/sessions"
	"github.com/google/uuid"
)

func sessionsInStates(states ...sessions.State) []*sessions.Session {
	out := make([]*sessions.Session, len(states))
	for i, state := range states {
		out[i] = &sessions.Session{ID: uuid.New(), State: state}
	}
	return out
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name   string
		states []sessions.State
		want   Status
	}{
		{"no sessions", nil, StatusReady},
		{"single open", []sessions.State{sessions.StateOpened}, StatusPending},
		{"deploy in flight", []sessions.State{sessions.StateOpened, sessions.StateDeploying}, StatusDeploying},
		{"delete in flight", []sessions.State{sessions.StateDeleting}, StatusDeleting},
		{"failed deploy", []sessions.State{sessions.StateDeployFailure}, StatusDeployFailure},
		{"failed delete", []sessions.State{sessions.StateDeleteFailure}, StatusDeleteFailure},
		{"deployed settles", []sessions.State{sessions.StateDeployed, sessions.StateOpened}, StatusReady},
		{"open before deployed", []sessions.State{sessions.StateOpened, sessions.StateDeployed}, StatusPending},
		{"in flight wins over open", []sessions.State{sessions.StateDeploying, sessions.StateOpened}, StatusDeploying},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveStatus(sessionsInStates(tc.states...))
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

// A failure followed by a successful redeploy must not keep reporting the
// failure: the newer deployed session ends the scan before the stale failed
// one is reached.
func TestDeriveStatusRecoveredAfterFailure(t *testing.T) {
	ordered := sessionsInStates(
		sessions.StateDeployed,
		sessions.StateDeployFailure,
	)
	if got := DeriveStatus(ordered); got != StatusReady {
		t.Fatalf("expected ready after recovery, got %s", got)
	}
}
