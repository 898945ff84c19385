package models

import (
	"database/sql"
	"time"
)

// Form represents a dynamic form definition scoped to one company, based on
// the forms.forms table. The three department lists are independent
// allow-lists: empty means unrestricted, non-empty means only those
// departments, and admins bypass all of them.
type Form struct {
	ID          int64          `json:"id"`
	CompanyID   int64          `json:"company_id"`
	Title       string         `json:"title"`
	Description sql.NullString `json:"description,omitempty"`

	Fields []Field `json:"fields"`

	AssignedDepartments   []string `json:"assigned_departments"`   // who sees the form exists
	RespondentDepartments []string `json:"respondent_departments"` // who may submit answers
	EditorDepartments     []string `json:"editor_departments"`     // who may edit / review answers

	IsArchived bool `json:"is_archived"`

	CreatedAt time.Time      `json:"created_at"`
	CreatedBy string         `json:"created_by"`
	UpdatedAt time.Time      `json:"updated_at"`
	UpdatedBy sql.NullString `json:"updated_by,omitempty"`
}

// CreateFormRequest represents the request payload for creating a new form
type CreateFormRequest struct {
	Title                 string   `json:"title" binding:"required"`
	Description           string   `json:"description,omitempty"`
	Fields                []Field  `json:"fields" binding:"required"`
	AssignedDepartments   []string `json:"assigned_departments,omitempty"`
	RespondentDepartments []string `json:"respondent_departments,omitempty"`
	EditorDepartments     []string `json:"editor_departments,omitempty"`
}

// UpdateFormRequest represents a partial patch of a form definition. Nil
// means "leave unchanged"; an empty list clears the restriction.
type UpdateFormRequest struct {
	Title                 *string   `json:"title,omitempty"`
	Description           *string   `json:"description,omitempty"`
	Fields                []Field   `json:"fields,omitempty"`
	AssignedDepartments   *[]string `json:"assigned_departments,omitempty"`
	RespondentDepartments *[]string `json:"respondent_departments,omitempty"`
	EditorDepartments     *[]string `json:"editor_departments,omitempty"`
}

// FormListResponse represents the response for listing forms
type FormListResponse struct {
	Forms []Form `json:"forms"`
}

// FormResponse wraps a single form payload
type FormResponse struct {
	Form *Form `json:"form"`
}

// CreateFormResponse represents the response after creating or updating a form
type CreateFormResponse struct {
	OK   bool  `json:"ok"`
	Form *Form `json:"form"`
}
