package access

import "ikaris/lib/models"

// SanitizeAnswersForUser strips an incoming answer payload down to the field
// ids the actor may write. This is the single choke point keeping a
// respondent from answering fields they cannot see or that are read-only for
// them, whatever the client claimed.
//
// Admins pass through untouched, including keys that match no declared
// field: admin-authored corrections are intentionally permissive. For
// everyone else a key survives only when its field is respondent-visible,
// respondent-editable and department-allowed. Rejected keys are dropped
// silently, never reported, so restricted fields stay unleaked.
func SanitizeAnswersForUser(raw models.AnswerValues, fields []models.Field, actor Actor) models.AnswerValues {
	if raw == nil {
		raw = models.AnswerValues{}
	}
	if actor.IsAdmin() {
		return raw
	}

	allowed := make(map[string]bool, len(fields))
	for _, f := range fields {
		if !f.Visibility.Respondent || !f.Editable.Respondent {
			continue
		}
		if !HasDeptAccess(f.RespondentDepartments, actor.Department) {
			continue
		}
		allowed[f.ID] = true
	}

	out := make(models.AnswerValues, len(raw))
	for k, v := range raw {
		if allowed[k] {
			out[k] = v
		}
	}
	return out
}
