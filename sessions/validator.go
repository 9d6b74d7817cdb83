package sessions

// Validate reports whether a session is still usable given the owning
// environment's current version and the environment's other sessions.
//
// A session is invalid once the environment version moved past the version it
// branched from (a sibling deployed in the meantime), or while it is still
// open and any sibling has a deployment in flight. The check is pure and is
// re-evaluated at every sensitive operation; environment version and sibling
// states can change between calls, so the result is never cached.
func Validate(session *Session, environmentVersion int64, siblings []*Session) bool {
	if session == nil {
		return false
	}
	if environmentVersion > session.Version {
		return false
	}
	if session.State == StateOpened {
		for _, sibling := range siblings {
			if sibling == nil || sibling.ID == session.ID {
				continue
			}
			if sibling.State.InFlight() {
				return false
			}
		}
	}
	return true
}
