package access

// HasDeptAccess evaluates a department allow-list: an empty list is
// unrestricted, a non-empty list admits only exact (case-sensitive) members,
// and a caller with no department can never satisfy a non-empty list. The
// same predicate serves form-level and field-level checks.
func HasDeptAccess(allowList []string, department string) bool {
	if len(allowList) == 0 {
		return true
	}
	if department == "" {
		return false
	}
	for _, d := range allowList {
		if d == department {
			return true
		}
	}
	return false
}
