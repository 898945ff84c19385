package data

import (
	"context"
	"database/sql"
	"fmt"

	"ikaris/lib/models"

	"github.com/sirupsen/logrus"
)

// CompanyRepository defines the interface for company and pending-registration
// data operations
type CompanyRepository interface {
	// CreateCompany creates a new tenant. verified is true for federated
	// signups, which skip email verification entirely.
	CreateCompany(ctx context.Context, company *models.Company, verified bool) (*models.Company, error)

	// GetCompanyByID retrieves a company. Returns (nil, nil) when absent.
	GetCompanyByID(ctx context.Context, companyID int64) (*models.Company, error)

	// CreatePendingRegistration records an email/password signup awaiting
	// verification, expiring 24 hours out
	CreatePendingRegistration(ctx context.Context, authUserID string, companyID int64, email string) error

	// MarkRegistrationVerified flags the pending row verified and stamps the
	// company's verified_at
	MarkRegistrationVerified(ctx context.Context, authUserID string) error

	// GetExpiredRegistrations lists unverified registrations past their
	// expiry, for the cleanup job
	GetExpiredRegistrations(ctx context.Context) ([]models.PendingRegistration, error)

	// DeleteCompany hard-deletes a company; dependent rows cascade
	DeleteCompany(ctx context.Context, companyID int64) error

	// DeletePendingRegistration removes one pending row
	DeletePendingRegistration(ctx context.Context, id int64) error
}

// CompanyDao implements CompanyRepository interface using PostgreSQL
type CompanyDao struct {
	DB     *sql.DB
	Logger *logrus.Logger
}

// CreateCompany creates a new tenant
func (dao *CompanyDao) CreateCompany(ctx context.Context, company *models.Company, verified bool) (*models.Company, error) {
	query := `
		INSERT INTO core.companies
			(name, slug, country, sector, organization_type, representative_name,
			 owner_auth_user_id, owner_email, verified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CASE WHEN $9 THEN NOW() ELSE NULL END)
		RETURNING id, verified_at, created_at, updated_at
	`

	err := dao.DB.QueryRowContext(ctx, query,
		company.Name, company.Slug, company.Country, company.Sector,
		company.OrganizationType, company.RepresentativeName,
		company.OwnerAuthUserID, company.OwnerEmail, verified,
	).Scan(&company.ID, &company.VerifiedAt, &company.CreatedAt, &company.UpdatedAt)

	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"company_name": company.Name,
			"slug":         company.Slug,
			"error":        err.Error(),
		}).Error("Failed to create company")
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	dao.Logger.WithFields(logrus.Fields{
		"company_id": company.ID,
		"slug":       company.Slug,
	}).Info("Successfully created company")

	return company, nil
}

// GetCompanyByID retrieves a company
func (dao *CompanyDao) GetCompanyByID(ctx context.Context, companyID int64) (*models.Company, error) {
	var company models.Company
	err := dao.DB.QueryRowContext(ctx, `
		SELECT id, name, slug, country, sector, organization_type, representative_name,
		       owner_auth_user_id, owner_email, verified_at, website, created_at, updated_at
		FROM core.companies
		WHERE id = $1
	`, companyID).Scan(
		&company.ID, &company.Name, &company.Slug, &company.Country, &company.Sector,
		&company.OrganizationType, &company.RepresentativeName,
		&company.OwnerAuthUserID, &company.OwnerEmail, &company.VerifiedAt,
		&company.Website, &company.CreatedAt, &company.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"company_id": companyID,
			"error":      err.Error(),
		}).Error("Failed to get company")
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	return &company, nil
}

// CreatePendingRegistration records an email/password signup awaiting verification
func (dao *CompanyDao) CreatePendingRegistration(ctx context.Context, authUserID string, companyID int64, email string) error {
	_, err := dao.DB.ExecContext(ctx, `
		INSERT INTO core.pending_registrations (auth_user_id, company_id, email, verified, expires_at)
		VALUES ($1, $2, $3, FALSE, NOW() + INTERVAL '24 hours')
	`, authUserID, companyID, email)

	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"auth_user_id": authUserID,
			"company_id":   companyID,
			"error":        err.Error(),
		}).Error("Failed to create pending registration")
		return fmt.Errorf("failed to create pending registration: %w", err)
	}

	return nil
}

// MarkRegistrationVerified flags the pending row verified and stamps the company
func (dao *CompanyDao) MarkRegistrationVerified(ctx context.Context, authUserID string) error {
	tx, err := dao.DB.BeginTx(ctx, nil)
	if err != nil {
		dao.Logger.WithError(err).Error("Failed to start transaction for registration verification")
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var companyID int64
	err = tx.QueryRowContext(ctx, `
		UPDATE core.pending_registrations
		SET verified = TRUE
		WHERE auth_user_id = $1 AND verified = FALSE
		RETURNING company_id
	`, authUserID).Scan(&companyID)

	if err == sql.ErrNoRows {
		// nothing pending: federated signup or already verified
		return nil
	}
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"auth_user_id": authUserID,
			"error":        err.Error(),
		}).Error("Failed to mark registration verified")
		return fmt.Errorf("failed to mark registration verified: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE core.companies
		SET verified_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND verified_at IS NULL
	`, companyID)

	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"company_id": companyID,
			"error":      err.Error(),
		}).Error("Failed to stamp company verification")
		return fmt.Errorf("failed to stamp company verification: %w", err)
	}

	if err = tx.Commit(); err != nil {
		dao.Logger.WithError(err).Error("Failed to commit verification transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	dao.Logger.WithFields(logrus.Fields{
		"auth_user_id": authUserID,
		"company_id":   companyID,
	}).Info("Successfully verified registration")

	return nil
}

// GetExpiredRegistrations lists unverified registrations past their expiry
func (dao *CompanyDao) GetExpiredRegistrations(ctx context.Context) ([]models.PendingRegistration, error) {
	rows, err := dao.DB.QueryContext(ctx, `
		SELECT id, auth_user_id, company_id, email, verified, expires_at, created_at
		FROM core.pending_registrations
		WHERE verified = FALSE AND expires_at < NOW()
	`)
	if err != nil {
		dao.Logger.WithError(err).Error("Failed to query expired registrations")
		return nil, fmt.Errorf("failed to query expired registrations: %w", err)
	}
	defer rows.Close()

	var pending []models.PendingRegistration
	for rows.Next() {
		var p models.PendingRegistration
		err := rows.Scan(&p.ID, &p.AuthUserID, &p.CompanyID, &p.Email, &p.Verified, &p.ExpiresAt, &p.CreatedAt)
		if err != nil {
			dao.Logger.WithError(err).Error("Failed to scan pending registration row")
			return nil, fmt.Errorf("failed to scan pending registration: %w", err)
		}
		pending = append(pending, p)
	}

	if err = rows.Err(); err != nil {
		dao.Logger.WithError(err).Error("Error iterating pending registration rows")
		return nil, fmt.Errorf("error iterating pending registrations: %w", err)
	}

	return pending, nil
}

// DeleteCompany hard-deletes a company; dependent rows cascade
func (dao *CompanyDao) DeleteCompany(ctx context.Context, companyID int64) error {
	_, err := dao.DB.ExecContext(ctx, `DELETE FROM core.companies WHERE id = $1`, companyID)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"company_id": companyID,
			"error":      err.Error(),
		}).Error("Failed to delete company")
		return fmt.Errorf("failed to delete company: %w", err)
	}
	return nil
}

// DeletePendingRegistration removes one pending row
func (dao *CompanyDao) DeletePendingRegistration(ctx context.Context, id int64) error {
	_, err := dao.DB.ExecContext(ctx, `DELETE FROM core.pending_registrations WHERE id = $1`, id)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"pending_id": id,
			"error":      err.Error(),
		}).Error("Failed to delete pending registration")
		return fmt.Errorf("failed to delete pending registration: %w", err)
	}
	return nil
}
