package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// FieldKind identifies the input kind of a form field. The set is closed:
// normalization rejects anything else.
type FieldKind string

const (
	FieldShortText   FieldKind = "short_text"
	FieldParagraph   FieldKind = "paragraph"
	FieldRadio       FieldKind = "radio"
	FieldCheckbox    FieldKind = "checkbox"
	FieldSelect      FieldKind = "select"
	FieldNumber      FieldKind = "number"
	FieldDate        FieldKind = "date"
	FieldTime        FieldKind = "time"
	FieldDatetime    FieldKind = "datetime"
	FieldEmail       FieldKind = "email"
	FieldPhone       FieldKind = "phone"
	FieldURL         FieldKind = "url"
	FieldYesNo       FieldKind = "yes_no"
	FieldConsent     FieldKind = "consent"
	FieldRating      FieldKind = "rating"
	FieldLinearScale FieldKind = "linear_scale"
	FieldFile        FieldKind = "file"
)

var validFieldKinds = map[FieldKind]bool{
	FieldShortText: true, FieldParagraph: true,
	FieldRadio: true, FieldCheckbox: true, FieldSelect: true,
	FieldNumber: true, FieldDate: true, FieldTime: true, FieldDatetime: true,
	FieldEmail: true, FieldPhone: true, FieldURL: true,
	FieldYesNo: true, FieldConsent: true,
	FieldRating: true, FieldLinearScale: true, FieldFile: true,
}

// IsValid reports whether the kind belongs to the closed set.
func (k FieldKind) IsValid() bool {
	return validFieldKinds[k]
}

// HasOptions reports whether the kind carries a manual option list.
func (k FieldKind) HasOptions() bool {
	return k == FieldRadio || k == FieldCheckbox || k == FieldSelect
}

// AudienceFlags is a per-audience boolean pair. On the wire an absent key
// means true, so decoding goes through pointers and the default is applied
// exactly once here.
type AudienceFlags struct {
	Respondent bool `json:"respondent"`
	Editor     bool `json:"editor"`
}

// UnmarshalJSON applies the default-true rule for absent keys.
func (a *AudienceFlags) UnmarshalJSON(b []byte) error {
	var raw struct {
		Respondent *bool `json:"respondent"`
		Editor     *bool `json:"editor"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	a.Respondent = raw.Respondent == nil || *raw.Respondent
	a.Editor = raw.Editor == nil || *raw.Editor
	return nil
}

// RatingConfig is the configuration for rating (star) fields.
type RatingConfig struct {
	MaxStars int `json:"maxStars"`
}

// ScaleConfig is the configuration for linear-scale fields.
type ScaleConfig struct {
	Min int `json:"scaleMin"`
	Max int `json:"scaleMax"`
}

// NumberConfig is the configuration for number fields. Step is kept as text
// because the builder sends either "" or a numeric literal.
type NumberConfig struct {
	Step string `json:"step"`
}

// FileConfig is the configuration for file-upload fields.
type FileConfig struct {
	Accept   string `json:"accept"`
	Multiple bool   `json:"multiple"`
}

// FieldBinding connects a choice field to a lookup entity instead of a manual
// option list.
type FieldBinding struct {
	Enabled  bool   `json:"enabled"`
	Entity   string `json:"entity"`
	ValueCol string `json:"valueCol"`
	LabelCol string `json:"labelCol"`
	Mode     string `json:"mode"`
}

// rawFieldConfig is the flat wire shape the builder sends. All keys are
// optional; NormalizeField keeps only the ones matching the field kind.
type rawFieldConfig struct {
	MaxStars *int            `json:"maxStars"`
	ScaleMin *int            `json:"scaleMin"`
	ScaleMax *int            `json:"scaleMax"`
	Step     json.RawMessage `json:"step"`
	Accept   *string         `json:"accept"`
	Multiple *bool           `json:"multiple"`
}

// FieldConfig holds the kind-specific configuration as a closed variant: at
// most one of the pointers is set after normalization, and it always matches
// the field kind. A rating field cannot carry scale bounds.
type FieldConfig struct {
	Rating *RatingConfig `json:"-"`
	Scale  *ScaleConfig  `json:"-"`
	Number *NumberConfig `json:"-"`
	File   *FileConfig   `json:"-"`

	raw *rawFieldConfig
}

// UnmarshalJSON captures the flat wire object; the variant is selected later
// by NormalizeField once the kind is known.
func (c *FieldConfig) UnmarshalJSON(b []byte) error {
	var raw rawFieldConfig
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	c.raw = &raw
	return nil
}

// MarshalJSON emits the flat wire object for whichever variant is set.
func (c FieldConfig) MarshalJSON() ([]byte, error) {
	switch {
	case c.Rating != nil:
		return json.Marshal(c.Rating)
	case c.Scale != nil:
		return json.Marshal(c.Scale)
	case c.Number != nil:
		return json.Marshal(c.Number)
	case c.File != nil:
		return json.Marshal(c.File)
	default:
		return []byte("{}"), nil
	}
}

// Field is one question definition within a form, carrying its own
// visibility, editability and department rules.
type Field struct {
	ID       string    `json:"id"`
	Type     FieldKind `json:"type"`
	Label    string    `json:"label"`
	Help     string    `json:"help,omitempty"`
	Required bool      `json:"required"`

	Options   []string      `json:"options,omitempty"`
	Binding   *FieldBinding `json:"binding,omitempty"`
	ValueMode string        `json:"valueMode,omitempty"`
	Config    FieldConfig   `json:"config"`

	Visibility AudienceFlags `json:"visibility"`
	Editable   AudienceFlags `json:"editable"`

	RespondentDepartments []string `json:"respondent_departments"`
	EditorDepartments     []string `json:"editor_departments"`
}

// fieldAlias avoids recursing into Field.UnmarshalJSON.
type fieldAlias Field

// UnmarshalJSON decodes the field and tracks whether the audience flag
// objects were present at all, so a wholly absent object also defaults true.
func (f *Field) UnmarshalJSON(b []byte) error {
	var wire struct {
		fieldAlias
		Visibility *AudienceFlags `json:"visibility"`
		Editable   *AudienceFlags `json:"editable"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}

	*f = Field(wire.fieldAlias)
	if wire.Visibility != nil {
		f.Visibility = *wire.Visibility
	} else {
		f.Visibility = AudienceFlags{Respondent: true, Editor: true}
	}
	if wire.Editable != nil {
		f.Editable = *wire.Editable
	} else {
		f.Editable = AudienceFlags{Respondent: true, Editor: true}
	}
	return nil
}

// stepText converts the raw step value ("" or a numeric literal, possibly
// quoted) into plain text.
func stepText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// NormalizeField applies the construction-time defaults and selects the
// config variant matching the field kind, dropping configuration that belongs
// to another kind. Returns an error for unknown kinds.
func NormalizeField(f *Field) error {
	if !f.Type.IsValid() {
		return fmt.Errorf("unknown field type %q", f.Type)
	}

	if f.ID == "" {
		f.ID = "fld_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	}
	if f.Label == "" {
		f.Label = "Untitled question"
	}
	if f.ValueMode == "" {
		f.ValueMode = "text"
	}
	if !f.Type.HasOptions() {
		f.Options = nil
		f.Binding = nil
	}
	if f.RespondentDepartments == nil {
		f.RespondentDepartments = []string{}
	}
	if f.EditorDepartments == nil {
		f.EditorDepartments = []string{}
	}

	raw := f.Config.raw
	f.Config = FieldConfig{}
	switch f.Type {
	case FieldRating:
		cfg := &RatingConfig{MaxStars: 5}
		if raw != nil && raw.MaxStars != nil && *raw.MaxStars > 0 {
			cfg.MaxStars = *raw.MaxStars
		}
		f.Config.Rating = cfg
	case FieldLinearScale:
		cfg := &ScaleConfig{Min: 1, Max: 5}
		if raw != nil {
			if raw.ScaleMin != nil {
				cfg.Min = *raw.ScaleMin
			}
			if raw.ScaleMax != nil {
				cfg.Max = *raw.ScaleMax
			}
		}
		if cfg.Min > cfg.Max {
			cfg.Min, cfg.Max = cfg.Max, cfg.Min
		}
		f.Config.Scale = cfg
	case FieldNumber:
		cfg := &NumberConfig{}
		if raw != nil {
			cfg.Step = stepText(raw.Step)
		}
		f.Config.Number = cfg
	case FieldFile:
		cfg := &FileConfig{}
		if raw != nil {
			if raw.Accept != nil {
				cfg.Accept = *raw.Accept
			}
			if raw.Multiple != nil {
				cfg.Multiple = *raw.Multiple
			}
		}
		f.Config.File = cfg
	}

	return nil
}

// NormalizeFields normalizes every field in place and enforces id uniqueness
// within the form.
func NormalizeFields(fields []Field) error {
	seen := make(map[string]bool, len(fields))
	for i := range fields {
		if err := NormalizeField(&fields[i]); err != nil {
			return err
		}
		if seen[fields[i].ID] {
			return fmt.Errorf("duplicate field id %q", fields[i].ID)
		}
		seen[fields[i].ID] = true
	}
	return nil
}
