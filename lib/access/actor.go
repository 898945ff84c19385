package access

import "ikaris/lib/models"

// Actor is the resolved permission context for one request: the caller's
// normalized role, department and creation flag, taken from their active
// membership. It is built once after the membership lookup and passed down
// explicitly rather than stashed on any request state.
type Actor struct {
	Role           Role
	Department     string // empty when the member has no department
	CanCreateForms bool
}

// ActorFor builds the permission context from a membership record. The
// caller is responsible for rejecting inactive memberships first.
func ActorFor(m *models.Membership) Actor {
	return Actor{
		Role:           NormalizeRole(m.Role),
		Department:     m.DepartmentOrEmpty(),
		CanCreateForms: m.CanCreateForms,
	}
}

// IsAdmin reports whether the actor bypasses department and field rules.
func (a Actor) IsAdmin() bool {
	return a.Role.IsAdmin()
}
