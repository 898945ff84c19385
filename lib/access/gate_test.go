package access

import (
	"database/sql"
	"testing"

	"ikaris/lib/models"

	"github.com/stretchr/testify/assert"
)

func gatedForm(assigned, respondent, editor []string) *models.Form {
	if assigned == nil {
		assigned = []string{}
	}
	if respondent == nil {
		respondent = []string{}
	}
	if editor == nil {
		editor = []string{}
	}
	return &models.Form{
		ID:                    1,
		CompanyID:             10,
		Title:                 "Weekly report",
		AssignedDepartments:   assigned,
		RespondentDepartments: respondent,
		EditorDepartments:     editor,
	}
}

func Test_FormGates_AdminBypassesAllLists(t *testing.T) {
	form := gatedForm([]string{"HR"}, []string{"HR"}, []string{"HR"})

	for _, role := range []Role{Archon, Epistates} {
		actor := Actor{Role: role} // no department at all
		assert.True(t, CanViewForm(form, actor))
		assert.True(t, CanRespondToForm(form, actor))
		assert.True(t, CanEditForm(form, actor))
	}
}

func Test_FormGates_VisibleButNotRespondable(t *testing.T) {
	// Scenario D: open assigned list, respondent list restricted to OPS
	form := gatedForm(nil, []string{"OPS"}, nil)

	ops := Actor{Role: Polites, Department: "OPS"}
	assert.True(t, CanViewForm(form, ops))
	assert.True(t, CanRespondToForm(form, ops))

	finance := Actor{Role: Polites, Department: "FINANCE"}
	assert.True(t, CanViewForm(form, finance), "empty assigned list keeps the form visible")
	assert.False(t, CanRespondToForm(form, finance))
}

func Test_FormGates_AssignedListHidesForm(t *testing.T) {
	form := gatedForm([]string{"HR"}, nil, nil)

	assert.False(t, CanViewForm(form, Actor{Role: Polites, Department: "SALES"}))
	assert.False(t, CanViewForm(form, Actor{Role: Polites}))
	assert.True(t, CanViewForm(form, Actor{Role: Polites, Department: "HR"}))
}

func Test_FormGates_EditorList(t *testing.T) {
	form := gatedForm(nil, nil, []string{"QA"})

	assert.True(t, CanEditForm(form, Actor{Role: Polites, Department: "QA"}))
	assert.False(t, CanEditForm(form, Actor{Role: Polites, Department: "OPS"}))

	open := gatedForm(nil, nil, nil)
	assert.True(t, CanEditForm(open, Actor{Role: Polites, Department: "OPS"}))
}

func Test_CanCreateForms(t *testing.T) {
	assert.True(t, CanCreateForms(Actor{Role: Archon}))
	assert.True(t, CanCreateForms(Actor{Role: Epistates}))
	assert.True(t, CanCreateForms(Actor{Role: Epistates, CanCreateForms: true}))
	assert.True(t, CanCreateForms(Actor{Role: Polites, CanCreateForms: true}))
	assert.False(t, CanCreateForms(Actor{Role: Polites}))
}

func Test_ActorFor(t *testing.T) {
	m := &models.Membership{
		Role:           "archon",
		Department:     sql.NullString{String: "DIRECCION", Valid: true},
		CanCreateForms: true,
	}

	actor := ActorFor(m)

	assert.Equal(t, Archon, actor.Role)
	assert.Equal(t, "DIRECCION", actor.Department)
	assert.True(t, actor.CanCreateForms)

	noDept := &models.Membership{Role: ""}
	actor = ActorFor(noDept)
	assert.Equal(t, Polites, actor.Role)
	assert.Equal(t, "", actor.Department)
}
