package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConditionalString(t *testing.T) {
	assert.Equal(t, "yes", ConditionalString(true, "yes", "no"))
	assert.Equal(t, "no", ConditionalString(false, "yes", "no"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "ikaris-tech", Slugify("  IKARIS Tech  "))
	assert.Equal(t, "compañía-andina", Slugify("Compañía. Andina!"))
	assert.Equal(t, "a-b-c", Slugify("a   b---c"))
	assert.Equal(t, 60, len([]rune(Slugify(strings.Repeat("empresa ", 20)))))
	assert.Equal(t, "", Slugify(""))
}

func TestUsernameFromEmail(t *testing.T) {
	assert.Equal(t, "dora", UsernameFromEmail("dora@example.com", "archon"))
	assert.Equal(t, "archon", UsernameFromEmail("", "archon"))
	assert.Equal(t, "archon", UsernameFromEmail("@example.com", "archon"))
}
