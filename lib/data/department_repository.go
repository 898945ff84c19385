package data

import (
	"context"
	"database/sql"
	"fmt"

	"ikaris/lib/models"

	"github.com/sirupsen/logrus"
)

// DepartmentRepository defines the interface for department data operations
type DepartmentRepository interface {
	// GetActiveDepartments retrieves all active departments for a company,
	// ordered by name
	GetActiveDepartments(ctx context.Context, companyID int64) ([]models.Department, error)
}

// DepartmentDao implements DepartmentRepository interface using PostgreSQL
type DepartmentDao struct {
	DB     *sql.DB
	Logger *logrus.Logger
}

// GetActiveDepartments retrieves all active departments for a company
func (dao *DepartmentDao) GetActiveDepartments(ctx context.Context, companyID int64) ([]models.Department, error) {
	rows, err := dao.DB.QueryContext(ctx, `
		SELECT id, company_id, name, is_active, created_at
		FROM core.departments
		WHERE company_id = $1 AND is_active = TRUE
		ORDER BY name
	`, companyID)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"company_id": companyID,
			"error":      err.Error(),
		}).Error("Failed to query departments")
		return nil, fmt.Errorf("failed to query departments: %w", err)
	}
	defer rows.Close()

	departments := []models.Department{}
	for rows.Next() {
		var d models.Department
		err := rows.Scan(&d.ID, &d.CompanyID, &d.Name, &d.Active, &d.CreatedAt)
		if err != nil {
			dao.Logger.WithError(err).Error("Failed to scan department row")
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, d)
	}

	if err = rows.Err(); err != nil {
		dao.Logger.WithError(err).Error("Error iterating department rows")
		return nil, fmt.Errorf("error iterating departments: %w", err)
	}

	return departments, nil
}
