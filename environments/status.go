package environments

import "github.com/goliatone/go-appcatalog/sessions"

// DeriveStatus computes the environment-level status from its sessions.
//
// Sessions must already be ordered by (version desc, updated desc) so the
// most authoritative outcome is considered first. The scan returns the first
// in-flight or failed session state it meets; an open session is remembered
// but does not short-circuit, because a later deployed session must still be
// able to settle the environment as ready. A deployed session ends the scan:
// everything older than it has been superseded.
func DeriveStatus(ordered []*sessions.Session) Status {
	hasOpened := false
scan:
	for _, session := range ordered {
		switch session.State {
		case sessions.StateDeploying:
			return StatusDeploying
		case sessions.StateDeleting:
			return StatusDeleting
		case sessions.StateDeployFailure:
			return StatusDeployFailure
		case sessions.StateDeleteFailure:
			return StatusDeleteFailure
		case sessions.StateOpened:
			hasOpened = true
		case sessions.StateDeployed:
			break scan
		}
	}
	if hasOpened {
		return StatusPending
	}
	return StatusReady
}
