package access

import (
	"testing"

	"ikaris/lib/models"

	"github.com/stretchr/testify/assert"
)

func visibleField(id string, depts ...string) models.Field {
	if depts == nil {
		depts = []string{}
	}
	return models.Field{
		ID:                    id,
		Type:                  models.FieldShortText,
		Visibility:            models.AudienceFlags{Respondent: true, Editor: true},
		Editable:              models.AudienceFlags{Respondent: true, Editor: true},
		RespondentDepartments: depts,
		EditorDepartments:     []string{},
	}
}

func Test_FilterFieldsForUser_AdminsNeverLoseFields(t *testing.T) {
	hidden := visibleField("f1", "HR")
	hidden.Visibility.Respondent = false
	fields := []models.Field{hidden, visibleField("f2", "FINANCE")}

	for _, role := range []Role{Archon, Epistates} {
		got := FilterFieldsForUser(fields, Actor{Role: role})
		assert.Equal(t, fields, got, "role %s must see every field", role)
	}
}

func Test_FilterFieldsForUser_HiddenFlagHidesFromRespondents(t *testing.T) {
	f := visibleField("f1")
	f.Visibility.Respondent = false

	for _, dept := range []string{"", "SALES", "HR"} {
		got := FilterFieldsForUser([]models.Field{f}, Actor{Role: Polites, Department: dept})
		assert.Empty(t, got)
	}
}

func Test_FilterFieldsForUser_DepartmentGate(t *testing.T) {
	// Scenario A: unrestricted field is visible to any respondent
	open := visibleField("f1")
	got := FilterFieldsForUser([]models.Field{open}, Actor{Role: Polites, Department: "SALES"})
	assert.Len(t, got, 1)

	// Scenario B: field restricted to HR is silently absent for SALES
	restricted := visibleField("f1", "HR")
	got = FilterFieldsForUser([]models.Field{restricted}, Actor{Role: Polites, Department: "SALES"})
	assert.Empty(t, got)
}

func Test_FilterFieldsForUser_OrderPreserved(t *testing.T) {
	fields := []models.Field{
		visibleField("a"),
		visibleField("b", "HR"),
		visibleField("c"),
		visibleField("d", "OPS"),
		visibleField("e"),
	}

	got := FilterFieldsForUser(fields, Actor{Role: Polites, Department: "OPS"})

	ids := make([]string, 0, len(got))
	for _, f := range got {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"a", "c", "d", "e"}, ids)
}

func Test_FilterFieldsForUser_Pure(t *testing.T) {
	fields := []models.Field{visibleField("a"), visibleField("b", "HR")}
	actor := Actor{Role: Polites, Department: "SALES"}

	first := FilterFieldsForUser(fields, actor)
	second := FilterFieldsForUser(fields, actor)

	assert.Equal(t, first, second)
	// input untouched
	assert.Len(t, fields, 2)
	assert.Equal(t, "b", fields[1].ID)
}
