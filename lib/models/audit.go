package models

import (
	"encoding/json"
	"time"
)

// Audit entity and action constants
const (
	AuditEntityForm   = "form"
	AuditEntityAnswer = "answer"
	AuditEntityUser   = "user"

	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
)

// AuditEntry is one append-only row in core.audit_log. The core only ever
// writes these; nothing reads them back.
type AuditEntry struct {
	ID          int64           `json:"id"`
	CompanyID   int64           `json:"company_id"`
	ActorUserID string          `json:"actor_user_id"`
	Entity      string          `json:"entity"`
	EntityID    string          `json:"entity_id"`
	Action      string          `json:"action"`
	Meta        json.RawMessage `json:"meta,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
