package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"ikaris/lib/models"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// FormRepository defines the interface for form data operations. Archived
// forms are treated as deleted: no method here ever returns one.
type FormRepository interface {
	// GetActiveForms retrieves all non-archived forms for the company,
	// newest first
	GetActiveForms(ctx context.Context, companyID int64) ([]models.Form, error)

	// GetFormByID retrieves a non-archived form. Returns (nil, nil) when the
	// form does not exist or is archived.
	GetFormByID(ctx context.Context, companyID, formID int64) (*models.Form, error)

	// CreateForm persists a new form definition
	CreateForm(ctx context.Context, companyID int64, authUserID string, req *models.CreateFormRequest) (*models.Form, error)

	// UpdateForm applies a partial patch to a form definition
	UpdateForm(ctx context.Context, companyID, formID int64, authUserID string, req *models.UpdateFormRequest) (*models.Form, error)
}

// FormDao implements FormRepository interface using PostgreSQL
type FormDao struct {
	DB     *sql.DB
	Logger *logrus.Logger
}

const formColumns = `
	id, company_id, title, description, fields,
	assigned_departments, respondent_departments, editor_departments,
	is_archived, created_at, created_by, updated_at, updated_by`

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanForm(row rowScanner) (*models.Form, error) {
	var (
		form      models.Form
		fieldsRaw []byte
		assigned  pq.StringArray
		resp      pq.StringArray
		editor    pq.StringArray
	)

	err := row.Scan(
		&form.ID, &form.CompanyID, &form.Title, &form.Description, &fieldsRaw,
		&assigned, &resp, &editor,
		&form.IsArchived, &form.CreatedAt, &form.CreatedBy, &form.UpdatedAt, &form.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(fieldsRaw, &form.Fields); err != nil {
		return nil, fmt.Errorf("failed to decode form fields: %w", err)
	}
	if err := models.NormalizeFields(form.Fields); err != nil {
		return nil, fmt.Errorf("stored form fields are invalid: %w", err)
	}
	if form.Fields == nil {
		form.Fields = []models.Field{}
	}

	form.AssignedDepartments = []string(assigned)
	form.RespondentDepartments = []string(resp)
	form.EditorDepartments = []string(editor)
	if form.AssignedDepartments == nil {
		form.AssignedDepartments = []string{}
	}
	if form.RespondentDepartments == nil {
		form.RespondentDepartments = []string{}
	}
	if form.EditorDepartments == nil {
		form.EditorDepartments = []string{}
	}

	return &form, nil
}

// GetActiveForms retrieves all non-archived forms for the company
func (dao *FormDao) GetActiveForms(ctx context.Context, companyID int64) ([]models.Form, error) {
	query := `
		SELECT ` + formColumns + `
		FROM forms.forms
		WHERE company_id = $1 AND is_archived = FALSE
		ORDER BY created_at DESC
	`

	rows, err := dao.DB.QueryContext(ctx, query, companyID)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"company_id": companyID,
			"error":      err.Error(),
		}).Error("Failed to query forms")
		return nil, fmt.Errorf("failed to query forms: %w", err)
	}
	defer rows.Close()

	var forms []models.Form
	for rows.Next() {
		form, err := scanForm(rows)
		if err != nil {
			dao.Logger.WithError(err).Error("Failed to scan form row")
			return nil, fmt.Errorf("failed to scan form: %w", err)
		}
		forms = append(forms, *form)
	}

	if err = rows.Err(); err != nil {
		dao.Logger.WithError(err).Error("Error iterating form rows")
		return nil, fmt.Errorf("error iterating forms: %w", err)
	}

	dao.Logger.WithFields(logrus.Fields{
		"company_id": companyID,
		"count":      len(forms),
	}).Debug("Successfully retrieved forms for company")

	return forms, nil
}

// GetFormByID retrieves a non-archived form scoped to the company
func (dao *FormDao) GetFormByID(ctx context.Context, companyID, formID int64) (*models.Form, error) {
	query := `
		SELECT ` + formColumns + `
		FROM forms.forms
		WHERE company_id = $1 AND id = $2 AND is_archived = FALSE
	`

	form, err := scanForm(dao.DB.QueryRowContext(ctx, query, companyID, formID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"company_id": companyID,
			"form_id":    formID,
			"error":      err.Error(),
		}).Error("Failed to get form")
		return nil, fmt.Errorf("failed to get form: %w", err)
	}

	return form, nil
}

// CreateForm persists a new form definition. Fields must already be
// normalized by the caller.
func (dao *FormDao) CreateForm(ctx context.Context, companyID int64, authUserID string, req *models.CreateFormRequest) (*models.Form, error) {
	fieldsJSON, err := json.Marshal(req.Fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode form fields: %w", err)
	}

	description := sql.NullString{String: req.Description, Valid: req.Description != ""}

	query := `
		INSERT INTO forms.forms
			(company_id, title, description, fields, assigned_departments, respondent_departments, editor_departments, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING ` + formColumns

	form, err := scanForm(dao.DB.QueryRowContext(ctx, query,
		companyID, req.Title, description, fieldsJSON,
		pq.Array(emptyIfNil(req.AssignedDepartments)),
		pq.Array(emptyIfNil(req.RespondentDepartments)),
		pq.Array(emptyIfNil(req.EditorDepartments)),
		authUserID,
	))

	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"company_id": companyID,
			"title":      req.Title,
			"error":      err.Error(),
		}).Error("Failed to create form")
		return nil, fmt.Errorf("failed to create form: %w", err)
	}

	dao.Logger.WithFields(logrus.Fields{
		"form_id":    form.ID,
		"company_id": companyID,
		"title":      form.Title,
	}).Info("Successfully created form")

	return form, nil
}

// UpdateForm applies a partial patch. Nil request members leave the stored
// value unchanged; provided lists replace the stored lists wholesale.
func (dao *FormDao) UpdateForm(ctx context.Context, companyID, formID int64, authUserID string, req *models.UpdateFormRequest) (*models.Form, error) {
	setParts := []string{"updated_at = NOW()"}
	args := []interface{}{}
	argIndex := 1

	if req.Title != nil {
		setParts = append(setParts, fmt.Sprintf("title = $%d", argIndex))
		args = append(args, strings.TrimSpace(*req.Title))
		argIndex++
	}

	if req.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", argIndex))
		args = append(args, *req.Description)
		argIndex++
	}

	if req.Fields != nil {
		fieldsJSON, err := json.Marshal(req.Fields)
		if err != nil {
			return nil, fmt.Errorf("failed to encode form fields: %w", err)
		}
		setParts = append(setParts, fmt.Sprintf("fields = $%d", argIndex))
		args = append(args, fieldsJSON)
		argIndex++
	}

	if req.AssignedDepartments != nil {
		setParts = append(setParts, fmt.Sprintf("assigned_departments = $%d", argIndex))
		args = append(args, pq.Array(*req.AssignedDepartments))
		argIndex++
	}

	if req.RespondentDepartments != nil {
		setParts = append(setParts, fmt.Sprintf("respondent_departments = $%d", argIndex))
		args = append(args, pq.Array(*req.RespondentDepartments))
		argIndex++
	}

	if req.EditorDepartments != nil {
		setParts = append(setParts, fmt.Sprintf("editor_departments = $%d", argIndex))
		args = append(args, pq.Array(*req.EditorDepartments))
		argIndex++
	}

	setParts = append(setParts, fmt.Sprintf("updated_by = $%d", argIndex))
	args = append(args, authUserID)
	argIndex++

	args = append(args, companyID, formID)
	query := fmt.Sprintf(`
		UPDATE forms.forms
		SET %s
		WHERE company_id = $%d AND id = $%d AND is_archived = FALSE
		RETURNING `+formColumns+`
	`, strings.Join(setParts, ", "), argIndex, argIndex+1)

	form, err := scanForm(dao.DB.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		dao.Logger.WithFields(logrus.Fields{
			"company_id": companyID,
			"form_id":    formID,
		}).Warn("Form not found for update")
		return nil, fmt.Errorf("form not found")
	}
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"company_id": companyID,
			"form_id":    formID,
			"error":      err.Error(),
		}).Error("Failed to update form")
		return nil, fmt.Errorf("failed to update form: %w", err)
	}

	dao.Logger.WithFields(logrus.Fields{
		"form_id":    formID,
		"company_id": companyID,
	}).Info("Successfully updated form")

	return form, nil
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
