package access

import (
	"encoding/json"
	"testing"

	"ikaris/lib/models"

	"github.com/stretchr/testify/assert"
)

func rawValue(s string) json.RawMessage {
	return json.RawMessage(`"` + s + `"`)
}

func Test_SanitizeAnswersForUser_AdminPassThrough(t *testing.T) {
	// Scenario C: any configuration, any department, keys always retained,
	// including keys that match no declared field.
	fields := []models.Field{visibleField("f1", "HR")}
	raw := models.AnswerValues{
		"f1":         rawValue("yes"),
		"undeclared": rawValue("correction"),
	}

	for _, role := range []Role{Archon, Epistates} {
		got := SanitizeAnswersForUser(raw, fields, Actor{Role: role})
		assert.Equal(t, raw, got)
	}
}

func Test_SanitizeAnswersForUser_DropsRestrictedKeys(t *testing.T) {
	// Scenario B: field restricted to HR, caller is SALES
	fields := []models.Field{visibleField("f1", "HR")}
	raw := models.AnswerValues{"f1": rawValue("v")}

	got := SanitizeAnswersForUser(raw, fields, Actor{Role: Polites, Department: "SALES"})

	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func Test_SanitizeAnswersForUser_ReadOnlyFieldDropped(t *testing.T) {
	// visible but not editable: read-only for respondents
	f := visibleField("f1")
	f.Editable.Respondent = false
	raw := models.AnswerValues{"f1": rawValue("v")}

	got := SanitizeAnswersForUser(raw, []models.Field{f}, Actor{Role: Polites, Department: "SALES"})

	assert.Empty(t, got)
}

func Test_SanitizeAnswersForUser_HiddenFieldDropped(t *testing.T) {
	f := visibleField("f1")
	f.Visibility.Respondent = false
	raw := models.AnswerValues{"f1": rawValue("v")}

	got := SanitizeAnswersForUser(raw, []models.Field{f}, Actor{Role: Polites, Department: "SALES"})

	assert.Empty(t, got)
}

func Test_SanitizeAnswersForUser_NeverLeaksUnknownKeys(t *testing.T) {
	// adversarial payload: extra keys must never survive for non-admins
	fields := []models.Field{visibleField("f1"), visibleField("f2", "HR")}
	raw := models.AnswerValues{
		"f1":      rawValue("ok"),
		"f2":      rawValue("forbidden"),
		"f3":      rawValue("undeclared"),
		"__proto": rawValue("junk"),
	}

	got := SanitizeAnswersForUser(raw, fields, Actor{Role: Polites, Department: "SALES"})

	assert.Equal(t, models.AnswerValues{"f1": rawValue("ok")}, got)
}

func Test_SanitizeAnswersForUser_NilPayload(t *testing.T) {
	got := SanitizeAnswersForUser(nil, []models.Field{visibleField("f1")}, Actor{Role: Polites})
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = SanitizeAnswersForUser(nil, nil, Actor{Role: Archon})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
