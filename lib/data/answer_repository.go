package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"ikaris/lib/models"

	"github.com/sirupsen/logrus"
)

// AnswerRepository defines the interface for answer data operations
type AnswerRepository interface {
	// CreateAnswer persists one submission. The values must already be
	// sanitized for the submitter.
	CreateAnswer(ctx context.Context, answer *models.Answer) (*models.Answer, error)

	// GetAnswersByForm retrieves all submissions for a form, newest first
	GetAnswersByForm(ctx context.Context, companyID, formID int64) ([]models.Answer, error)
}

// AnswerDao implements AnswerRepository interface using PostgreSQL
type AnswerDao struct {
	DB     *sql.DB
	Logger *logrus.Logger
}

// CreateAnswer persists one submission
func (dao *AnswerDao) CreateAnswer(ctx context.Context, answer *models.Answer) (*models.Answer, error) {
	valuesJSON, err := json.Marshal(answer.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	err = dao.DB.QueryRowContext(ctx, `
		INSERT INTO forms.answers
			(company_id, form_id, auth_user_id, user_username, department, answers, status, last_edited)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, last_edited, created_at, updated_at
	`, answer.CompanyID, answer.FormID, answer.AuthUserID, answer.Username,
		answer.Department, valuesJSON, answer.Status).Scan(
		&answer.ID, &answer.LastEdited, &answer.CreatedAt, &answer.UpdatedAt)

	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"company_id": answer.CompanyID,
			"form_id":    answer.FormID,
			"error":      err.Error(),
		}).Error("Failed to create answer")
		return nil, fmt.Errorf("failed to create answer: %w", err)
	}

	dao.Logger.WithFields(logrus.Fields{
		"answer_id":  answer.ID,
		"form_id":    answer.FormID,
		"company_id": answer.CompanyID,
	}).Info("Successfully created answer")

	return answer, nil
}

// GetAnswersByForm retrieves all submissions for a form
func (dao *AnswerDao) GetAnswersByForm(ctx context.Context, companyID, formID int64) ([]models.Answer, error) {
	query := `
		SELECT id, company_id, form_id, auth_user_id, user_username, department,
		       answers, status, last_edited, created_at, updated_at
		FROM forms.answers
		WHERE company_id = $1 AND form_id = $2
		ORDER BY created_at DESC
	`

	rows, err := dao.DB.QueryContext(ctx, query, companyID, formID)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"company_id": companyID,
			"form_id":    formID,
			"error":      err.Error(),
		}).Error("Failed to query answers")
		return nil, fmt.Errorf("failed to query answers: %w", err)
	}
	defer rows.Close()

	var answers []models.Answer
	for rows.Next() {
		var (
			answer    models.Answer
			valuesRaw []byte
		)
		err := rows.Scan(
			&answer.ID, &answer.CompanyID, &answer.FormID, &answer.AuthUserID,
			&answer.Username, &answer.Department, &valuesRaw, &answer.Status,
			&answer.LastEdited, &answer.CreatedAt, &answer.UpdatedAt,
		)
		if err != nil {
			dao.Logger.WithError(err).Error("Failed to scan answer row")
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}

		if err := json.Unmarshal(valuesRaw, &answer.Answers); err != nil {
			dao.Logger.WithError(err).Error("Failed to decode answer values")
			return nil, fmt.Errorf("failed to decode answer values: %w", err)
		}

		answers = append(answers, answer)
	}

	if err = rows.Err(); err != nil {
		dao.Logger.WithError(err).Error("Error iterating answer rows")
		return nil, fmt.Errorf("error iterating answers: %w", err)
	}

	dao.Logger.WithFields(logrus.Fields{
		"form_id": formID,
		"count":   len(answers),
	}).Debug("Successfully retrieved answers for form")

	return answers, nil
}
