package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_NormalizeRole(t *testing.T) {
	assert.Equal(t, Archon, NormalizeRole("ARCHON"))
	assert.Equal(t, Archon, NormalizeRole("archon"))
	assert.Equal(t, Epistates, NormalizeRole(" Epistates "))
	assert.Equal(t, Polites, NormalizeRole("POLITES"))

	// absence and garbage both collapse to the restricted default
	assert.Equal(t, Polites, NormalizeRole(""))
	assert.Equal(t, Polites, NormalizeRole("SUPERUSER"))
}

func Test_Role_IsAdmin(t *testing.T) {
	assert.True(t, Archon.IsAdmin())
	assert.True(t, Epistates.IsAdmin())
	assert.False(t, Polites.IsAdmin())
}
