package sessions

import (
	"testing"

	"github.com/google/uuid"
)

func TestValidateStaleVersion(t *testing.T) {
	session := &Session{ID: uuid.New(), Version: 2, State: StateOpened}

	if !Validate(session, 2, nil) {
		t.Fatal("session at the environment version should be valid")
	}
	if Validate(session, 3, nil) {
		t.Fatal("session behind the environment version should be invalid")
	}
}

func TestValidateSiblingInFlight(t *testing.T) {
	session := &Session{ID: uuid.New(), Version: 5, State: StateOpened}
	deploying := &Session{ID: uuid.New(), Version: 5, State: StateDeploying}
	deleting := &Session{ID: uuid.New(), Version: 5, State: StateDeleting}
	open := &Session{ID: uuid.New(), Version: 5, State: StateOpened}

	if Validate(session, 5, []*Session{deploying}) {
		t.Fatal("open session with deploying sibling should be invalid")
	}
	if Validate(session, 5, []*Session{deleting}) {
		t.Fatal("open session with deleting sibling should be invalid")
	}
	if !Validate(session, 5, []*Session{open}) {
		t.Fatal("open siblings do not invalidate each other")
	}
}

func TestValidateIgnoresSelfAndNonOpenStates(t *testing.T) {
	session := &Session{ID: uuid.New(), Version: 1, State: StateDeploying}
	sibling := &Session{ID: uuid.New(), Version: 1, State: StateDeploying}

	// The sibling check only applies while the session itself is open.
	if !Validate(session, 1, []*Session{sibling}) {
		t.Fatal("in-flight session should not be invalidated by siblings")
	}

	open := &Session{ID: uuid.New(), Version: 1, State: StateOpened}
	if !Validate(open, 1, []*Session{open}) {
		t.Fatal("a session is not its own sibling")
	}
}

func TestValidateNilSession(t *testing.T) {
	if Validate(nil, 0, nil) {
		t.Fatal("nil session is never valid")
	}
}
