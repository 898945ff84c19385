package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_HasDeptAccess_EmptyListIsUnrestricted(t *testing.T) {
	assert.True(t, HasDeptAccess(nil, "SALES"))
	assert.True(t, HasDeptAccess([]string{}, "SALES"))
	assert.True(t, HasDeptAccess(nil, ""))
}

func Test_HasDeptAccess_NoDepartmentNeverSatisfiesList(t *testing.T) {
	assert.False(t, HasDeptAccess([]string{"HR"}, ""))
	assert.False(t, HasDeptAccess([]string{"HR", "OPS"}, ""))
}

func Test_HasDeptAccess_Membership(t *testing.T) {
	assert.True(t, HasDeptAccess([]string{"HR", "OPS"}, "OPS"))
	assert.False(t, HasDeptAccess([]string{"HR", "OPS"}, "SALES"))

	// exact match, case-sensitive as stored
	assert.False(t, HasDeptAccess([]string{"OPS"}, "ops"))
}
