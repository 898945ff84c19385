package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
)

// AuditRepository defines the interface for append-only audit writes. The
// audit trail is a side effect of mutations: a failed write is logged and
// swallowed by callers, never rolled into the primary operation's outcome.
type AuditRepository interface {
	// WriteEntry appends one audit row
	WriteEntry(ctx context.Context, companyID int64, actorUserID, entity, entityID, action string, meta map[string]interface{}) error
}

// AuditDao implements AuditRepository interface using PostgreSQL
type AuditDao struct {
	DB     *sql.DB
	Logger *logrus.Logger
}

// WriteEntry appends one audit row
func (dao *AuditDao) WriteEntry(ctx context.Context, companyID int64, actorUserID, entity, entityID, action string, meta map[string]interface{}) error {
	var metaJSON []byte
	if meta != nil {
		var err error
		metaJSON, err = json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("failed to encode audit meta: %w", err)
		}
	}

	_, err := dao.DB.ExecContext(ctx, `
		INSERT INTO core.audit_log (company_id, actor_user_id, entity, entity_id, action, meta)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, companyID, actorUserID, entity, entityID, action, metaJSON)

	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"company_id": companyID,
			"entity":     entity,
			"entity_id":  entityID,
			"action":     action,
			"error":      err.Error(),
		}).Error("Failed to write audit entry")
		return fmt.Errorf("failed to write audit entry: %w", err)
	}

	return nil
}
