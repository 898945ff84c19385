package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Field_Unmarshal_DefaultsFlagsTrue(t *testing.T) {
	var f Field
	err := json.Unmarshal([]byte(`{"id":"f1","type":"short_text","label":"Name"}`), &f)
	assert.NoError(t, err)

	assert.True(t, f.Visibility.Respondent)
	assert.True(t, f.Visibility.Editor)
	assert.True(t, f.Editable.Respondent)
	assert.True(t, f.Editable.Editor)
}

func Test_Field_Unmarshal_PartialFlags(t *testing.T) {
	var f Field
	err := json.Unmarshal([]byte(`{"id":"f1","type":"short_text","visibility":{"respondent":false}}`), &f)
	assert.NoError(t, err)

	// absent keys inside the object still default true
	assert.False(t, f.Visibility.Respondent)
	assert.True(t, f.Visibility.Editor)
	assert.True(t, f.Editable.Respondent)
}

func Test_NormalizeField_RatingDefaults(t *testing.T) {
	var f Field
	err := json.Unmarshal([]byte(`{"id":"f1","type":"rating","label":"Rate us"}`), &f)
	assert.NoError(t, err)
	assert.NoError(t, NormalizeField(&f))

	assert.NotNil(t, f.Config.Rating)
	assert.Equal(t, 5, f.Config.Rating.MaxStars)
	assert.Nil(t, f.Config.Scale)
}

func Test_NormalizeField_ScaleBoundsOrdered(t *testing.T) {
	var f Field
	err := json.Unmarshal([]byte(`{"id":"f1","type":"linear_scale","config":{"scaleMin":7,"scaleMax":2}}`), &f)
	assert.NoError(t, err)
	assert.NoError(t, NormalizeField(&f))

	assert.Equal(t, 2, f.Config.Scale.Min)
	assert.Equal(t, 7, f.Config.Scale.Max)
}

func Test_NormalizeField_DropsMismatchedConfig(t *testing.T) {
	// a short_text field carrying rating config: the variant model discards it
	var f Field
	err := json.Unmarshal([]byte(`{"id":"f1","type":"short_text","config":{"maxStars":8,"scaleMin":1}}`), &f)
	assert.NoError(t, err)
	assert.NoError(t, NormalizeField(&f))

	assert.Nil(t, f.Config.Rating)
	assert.Nil(t, f.Config.Scale)

	out, err := json.Marshal(f.Config)
	assert.NoError(t, err)
	assert.Equal(t, "{}", string(out))
}

func Test_NormalizeField_UnknownKindRejected(t *testing.T) {
	f := Field{ID: "f1", Type: "hologram"}
	err := NormalizeField(&f)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "hologram")
}

func Test_NormalizeField_GeneratesID(t *testing.T) {
	f := Field{Type: FieldShortText}
	assert.NoError(t, NormalizeField(&f))

	assert.True(t, strings.HasPrefix(f.ID, "fld_"))
	assert.Equal(t, "Untitled question", f.Label)
	assert.Equal(t, "text", f.ValueMode)
	assert.NotNil(t, f.RespondentDepartments)
	assert.NotNil(t, f.EditorDepartments)
}

func Test_NormalizeFields_DuplicateIDsRejected(t *testing.T) {
	fields := []Field{
		{ID: "f1", Type: FieldShortText},
		{ID: "f1", Type: FieldParagraph},
	}
	err := NormalizeFields(fields)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate field id")
}

func Test_Field_RoundTrip(t *testing.T) {
	src := `{
		"id":"f9","type":"rating","label":"Service","help":"1 to 7","required":true,
		"config":{"maxStars":7},
		"visibility":{"respondent":true,"editor":true},
		"editable":{"respondent":false,"editor":true},
		"respondent_departments":["SALES"],"editor_departments":[]
	}`

	var f Field
	assert.NoError(t, json.Unmarshal([]byte(src), &f))
	assert.NoError(t, NormalizeField(&f))

	out, err := json.Marshal(f)
	assert.NoError(t, err)

	var back Field
	assert.NoError(t, json.Unmarshal(out, &back))
	assert.NoError(t, NormalizeField(&back))

	assert.Equal(t, f.ID, back.ID)
	assert.Equal(t, f.Type, back.Type)
	assert.Equal(t, f.Required, back.Required)
	assert.Equal(t, f.Editable, back.Editable)
	assert.Equal(t, 7, back.Config.Rating.MaxStars)
	assert.Equal(t, []string{"SALES"}, back.RespondentDepartments)
}
