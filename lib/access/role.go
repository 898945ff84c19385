// Package access implements the permission and visibility rules for the
// forms subsystem: the role model, the department allow-list predicate, the
// field-level visibility filter, the answer sanitizer and the form-level
// gates. Everything here is a pure function over loaded records; persistence
// and transport live elsewhere.
package access

import "strings"

// Role is the three-tier company role. Stored uppercase; comparison is
// always on the normalized form.
type Role string

const (
	Archon    Role = "ARCHON"    // owner/director, full access
	Epistates Role = "EPISTATES" // delegated admin, full access
	Polites   Role = "POLITES"   // rank-and-file respondent
)

// NormalizeRole maps a raw role string to one of the three roles. Case is
// ignored. Empty or unrecognized values collapse to POLITES, the restricted
// default, so an unknown role can never widen access.
func NormalizeRole(raw string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case Archon:
		return Archon
	case Epistates:
		return Epistates
	default:
		return Polites
	}
}

// IsAdmin reports whether the role bypasses all department and field
// restrictions. ARCHON and EPISTATES are jointly "admin" everywhere.
func (r Role) IsAdmin() bool {
	return r == Archon || r == Epistates
}
