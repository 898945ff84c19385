package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// AnswerValues maps field ids to submitted values. Values are kept opaque so
// admin-authored payloads round-trip untouched.
type AnswerValues map[string]json.RawMessage

// Answer status constants. Only pending is assigned by this service; the rest
// are the approval-workflow extension points.
const (
	AnswerStatusPending  = "pending"
	AnswerStatusApproved = "approved"
	AnswerStatusRejected = "rejected"
)

// Answer represents one submission against a form, based on the forms.answers
// table. The system allows multiple submissions per user per form.
type Answer struct {
	ID         int64          `json:"id"`
	CompanyID  int64          `json:"company_id"`
	FormID     int64          `json:"form_id"`
	AuthUserID string         `json:"auth_user_id"`
	Username   string         `json:"user_username"`
	Department sql.NullString `json:"department,omitempty"` // submitter's department at submission time
	Answers    AnswerValues   `json:"answers"`
	Status     string         `json:"status"`
	LastEdited time.Time      `json:"last_edited"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// SubmitAnswerRequest represents the request payload for submitting an answer
type SubmitAnswerRequest struct {
	Answers AnswerValues `json:"answers"`
}

// SubmitAnswerResponse represents the response after submitting an answer
type SubmitAnswerResponse struct {
	OK     bool    `json:"ok"`
	Answer *Answer `json:"answer"`
}

// AnswerListResponse represents the response for listing a form's answers
type AnswerListResponse struct {
	OK      bool     `json:"ok"`
	Answers []Answer `json:"answers"`
}
