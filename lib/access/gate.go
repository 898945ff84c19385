package access

import "ikaris/lib/models"

// Form-level gates. Each consults one of the form's three department
// allow-lists against the actor's department; admins bypass all of them.
// The gates are stateless and checked per request, in order: a submit must
// pass visibility before the respond check so the two failures stay
// distinguishable.

// CanViewForm reports whether the form is visible to the actor at all. A
// caller failing this gate is told the form does not exist.
func CanViewForm(form *models.Form, actor Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	return HasDeptAccess(form.AssignedDepartments, actor.Department)
}

// CanRespondToForm reports whether the actor may submit answers. Callers
// must have passed CanViewForm first; this only evaluates the respondent
// list.
func CanRespondToForm(form *models.Form, actor Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	return HasDeptAccess(form.RespondentDepartments, actor.Department)
}

// CanEditForm reports whether the actor may modify the form definition or
// review all of its answers.
func CanEditForm(form *models.Form, actor Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	return HasDeptAccess(form.EditorDepartments, actor.Department)
}

// CanCreateForms reports whether the actor may create new forms: admins
// always, others only with the explicit membership flag.
func CanCreateForms(actor Actor) bool {
	return actor.IsAdmin() || actor.CanCreateForms
}
