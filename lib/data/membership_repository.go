package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ikaris/lib/models"

	"github.com/sirupsen/logrus"
)

// MembershipRepository defines the interface for company membership data operations
type MembershipRepository interface {
	// GetMembership retrieves the membership binding a user to a company.
	// Returns (nil, nil) when no membership row exists.
	GetMembership(ctx context.Context, companyID int64, authUserID string) (*models.Membership, error)

	// GetActiveMembershipByUser retrieves the user's first active membership
	// across companies. Returns (nil, nil) when the user has none.
	GetActiveMembershipByUser(ctx context.Context, authUserID string) (*models.Membership, error)

	// HasAnyMembership reports whether the user already belongs to any company
	HasAnyMembership(ctx context.Context, authUserID string) (bool, error)

	// CreateMembership creates a new membership row
	CreateMembership(ctx context.Context, m *models.Membership) (*models.Membership, error)

	// GetActiveMembersByCompany lists active memberships for lookup purposes
	GetActiveMembersByCompany(ctx context.Context, companyID int64) ([]models.Membership, error)

	// UpdateProfile patches phone and/or avatar on a membership
	UpdateProfile(ctx context.Context, membershipID int64, phone, avatarURL *string, stampPhone bool) (*models.Membership, error)

	// MarkWelcomeSent stamps welcome_sent_at after a successful send
	MarkWelcomeSent(ctx context.Context, membershipID int64) error
}

// MembershipDao implements MembershipRepository interface using PostgreSQL
type MembershipDao struct {
	DB     *sql.DB
	Logger *logrus.Logger
}

const membershipColumns = `
	id, company_id, auth_user_id, username, role, department, active,
	can_create_forms, phone, avatar_url, phone_updated_at, welcome_sent_at,
	created_at, updated_at`

func scanMembership(row *sql.Row) (*models.Membership, error) {
	var m models.Membership
	err := row.Scan(
		&m.ID, &m.CompanyID, &m.AuthUserID, &m.Username, &m.Role,
		&m.Department, &m.Active, &m.CanCreateForms, &m.Phone, &m.AvatarURL,
		&m.PhoneUpdatedAt, &m.WelcomeSentAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMembership retrieves the (company, user) membership row
func (dao *MembershipDao) GetMembership(ctx context.Context, companyID int64, authUserID string) (*models.Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM iam.company_users
		WHERE company_id = $1 AND auth_user_id = $2
	`

	m, err := scanMembership(dao.DB.QueryRowContext(ctx, query, companyID, authUserID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"company_id":   companyID,
			"auth_user_id": authUserID,
			"error":        err.Error(),
		}).Error("Failed to get membership")
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return m, nil
}

// GetActiveMembershipByUser retrieves the user's first active membership
func (dao *MembershipDao) GetActiveMembershipByUser(ctx context.Context, authUserID string) (*models.Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM iam.company_users
		WHERE auth_user_id = $1 AND active = TRUE
		ORDER BY created_at ASC
		LIMIT 1
	`

	m, err := scanMembership(dao.DB.QueryRowContext(ctx, query, authUserID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"auth_user_id": authUserID,
			"error":        err.Error(),
		}).Error("Failed to get active membership")
		return nil, fmt.Errorf("failed to get active membership: %w", err)
	}

	return m, nil
}

// HasAnyMembership reports whether the user already belongs to any company
func (dao *MembershipDao) HasAnyMembership(ctx context.Context, authUserID string) (bool, error) {
	var exists bool
	err := dao.DB.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM iam.company_users WHERE auth_user_id = $1)
	`, authUserID).Scan(&exists)

	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"auth_user_id": authUserID,
			"error":        err.Error(),
		}).Error("Failed to check membership existence")
		return false, fmt.Errorf("failed to check membership existence: %w", err)
	}

	return exists, nil
}

// CreateMembership creates a new membership row
func (dao *MembershipDao) CreateMembership(ctx context.Context, m *models.Membership) (*models.Membership, error) {
	err := dao.DB.QueryRowContext(ctx, `
		INSERT INTO iam.company_users (company_id, auth_user_id, username, role, department, active, can_create_forms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, m.CompanyID, m.AuthUserID, m.Username, m.Role, m.Department, m.Active, m.CanCreateForms).Scan(
		&m.ID, &m.CreatedAt, &m.UpdatedAt)

	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"company_id":   m.CompanyID,
			"auth_user_id": m.AuthUserID,
			"error":        err.Error(),
		}).Error("Failed to create membership")
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	dao.Logger.WithFields(logrus.Fields{
		"membership_id": m.ID,
		"company_id":    m.CompanyID,
		"role":          m.Role,
	}).Info("Successfully created membership")

	return m, nil
}

// GetActiveMembersByCompany lists active memberships ordered by username
func (dao *MembershipDao) GetActiveMembersByCompany(ctx context.Context, companyID int64) ([]models.Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM iam.company_users
		WHERE company_id = $1 AND active = TRUE
		ORDER BY username ASC
	`

	rows, err := dao.DB.QueryContext(ctx, query, companyID)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"company_id": companyID,
			"error":      err.Error(),
		}).Error("Failed to query memberships")
		return nil, fmt.Errorf("failed to query memberships: %w", err)
	}
	defer rows.Close()

	var members []models.Membership
	for rows.Next() {
		var m models.Membership
		err := rows.Scan(
			&m.ID, &m.CompanyID, &m.AuthUserID, &m.Username, &m.Role,
			&m.Department, &m.Active, &m.CanCreateForms, &m.Phone, &m.AvatarURL,
			&m.PhoneUpdatedAt, &m.WelcomeSentAt, &m.CreatedAt, &m.UpdatedAt,
		)
		if err != nil {
			dao.Logger.WithError(err).Error("Failed to scan membership row")
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		members = append(members, m)
	}

	if err = rows.Err(); err != nil {
		dao.Logger.WithError(err).Error("Error iterating membership rows")
		return nil, fmt.Errorf("error iterating memberships: %w", err)
	}

	return members, nil
}

// UpdateProfile patches phone and/or avatar on a membership. stampPhone also
// refreshes phone_updated_at, which drives the edit cooldown.
func (dao *MembershipDao) UpdateProfile(ctx context.Context, membershipID int64, phone, avatarURL *string, stampPhone bool) (*models.Membership, error) {
	setParts := []string{"updated_at = NOW()"}
	args := []interface{}{}
	argIndex := 1

	if phone != nil {
		setParts = append(setParts, fmt.Sprintf("phone = NULLIF($%d, '')", argIndex))
		args = append(args, *phone)
		argIndex++
		if stampPhone {
			setParts = append(setParts, "phone_updated_at = NOW()")
		}
	}

	if avatarURL != nil {
		setParts = append(setParts, fmt.Sprintf("avatar_url = NULLIF($%d, '')", argIndex))
		args = append(args, *avatarURL)
		argIndex++
	}

	args = append(args, membershipID)
	query := fmt.Sprintf(`
		UPDATE iam.company_users
		SET %s
		WHERE id = $%d
		RETURNING `+membershipColumns+`
	`, strings.Join(setParts, ", "), argIndex)

	m, err := scanMembership(dao.DB.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		dao.Logger.WithField("membership_id", membershipID).Warn("Membership not found for profile update")
		return nil, fmt.Errorf("membership not found")
	}
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"membership_id": membershipID,
			"error":         err.Error(),
		}).Error("Failed to update profile")
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	dao.Logger.WithField("membership_id", membershipID).Info("Successfully updated profile")
	return m, nil
}

// MarkWelcomeSent stamps welcome_sent_at after a successful welcome email
func (dao *MembershipDao) MarkWelcomeSent(ctx context.Context, membershipID int64) error {
	_, err := dao.DB.ExecContext(ctx, `
		UPDATE iam.company_users
		SET welcome_sent_at = $1, updated_at = NOW()
		WHERE id = $2 AND welcome_sent_at IS NULL
	`, time.Now().UTC(), membershipID)

	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"membership_id": membershipID,
			"error":         err.Error(),
		}).Error("Failed to mark welcome sent")
		return fmt.Errorf("failed to mark welcome sent: %w", err)
	}

	return nil
}
