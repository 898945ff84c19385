package access

import "ikaris/lib/models"

// FilterFieldsForUser returns the fields the actor is allowed to see, in
// their original order. Admins always get the full sequence unchanged. For
// everyone else a field must pass both gates: the explicit respondent
// visibility flag and the field's own department allow-list. Fields failing
// either are omitted entirely; the caller never learns they exist.
func FilterFieldsForUser(fields []models.Field, actor Actor) []models.Field {
	if actor.IsAdmin() {
		return fields
	}

	out := make([]models.Field, 0, len(fields))
	for _, f := range fields {
		if !f.Visibility.Respondent {
			continue
		}
		if !HasDeptAccess(f.RespondentDepartments, actor.Department) {
			continue
		}
		out = append(out, f)
	}
	return out
}
