package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"ikaris/lib/access"
	"ikaris/lib/api"
	"ikaris/lib/auth"
	"ikaris/lib/clients"
	"ikaris/lib/constants"
	"ikaris/lib/data"
	"ikaris/lib/models"
	"ikaris/lib/util"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
)

// Global variables for Lambda cold start optimization
var (
	logger               *logrus.Logger
	isLocal              bool
	ssmRepository        data.SSMRepository
	ssmParams            map[string]string
	sqlDB                *sql.DB
	formRepository       data.FormRepository
	answerRepository     data.AnswerRepository
	membershipRepository data.MembershipRepository
	auditRepository      data.AuditRepository
)

func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.WithFields(logrus.Fields{
		"operation": "Handler",
		"method":    request.HTTPMethod,
		"path":      request.Path,
		"resource":  request.Resource,
	}).Info("Form management request received")

	// Extract claims from JWT token via API Gateway authorizer
	claims, err := auth.ExtractClaimsFromRequest(request)
	if err != nil {
		logger.WithError(err).Error("Authentication failed")
		return api.ErrorResponse(http.StatusUnauthorized, "Authentication failed", logger), nil
	}

	// Every form operation runs as a resolved membership: no active
	// membership means no access, regardless of role claims.
	membership, err := membershipRepository.GetMembership(ctx, claims.CompanyID, claims.AuthUserID)
	if err != nil {
		logger.WithError(err).Error("Failed to load membership")
		return api.ReasonResponse(http.StatusInternalServerError, api.ReasonServerError, logger), nil
	}
	if membership == nil || !membership.Active {
		return api.ReasonResponse(http.StatusForbidden, api.ReasonInactiveUser, logger), nil
	}

	actor := access.ActorFor(membership)

	// Handle different routes
	switch request.HTTPMethod {
	case http.MethodGet:
		// GET /forms/{formId}/answers - List submissions for a form
		if strings.Contains(request.Resource, "/forms/{formId}/answers") {
			formID, err := strconv.ParseInt(request.PathParameters["formId"], 10, 64)
			if err != nil {
				return api.ErrorResponse(http.StatusBadRequest, "Invalid form ID", logger), nil
			}
			return handleListAnswers(ctx, claims.CompanyID, formID, actor), nil
		}

		// GET /forms/{formId} - Get specific form
		if strings.Contains(request.Resource, "/forms/{formId}") {
			formID, err := strconv.ParseInt(request.PathParameters["formId"], 10, 64)
			if err != nil {
				return api.ErrorResponse(http.StatusBadRequest, "Invalid form ID", logger), nil
			}
			return handleGetForm(ctx, claims.CompanyID, formID, actor), nil
		}

		// GET /forms - List forms visible to the caller
		if request.Resource == "/forms" {
			return handleListForms(ctx, claims.CompanyID, actor), nil
		}

		return api.ErrorResponse(http.StatusNotFound, "Endpoint not found", logger), nil

	case http.MethodPost:
		// POST /forms/{formId}/answers - Submit an answer
		if strings.Contains(request.Resource, "/forms/{formId}/answers") {
			formID, err := strconv.ParseInt(request.PathParameters["formId"], 10, 64)
			if err != nil {
				return api.ErrorResponse(http.StatusBadRequest, "Invalid form ID", logger), nil
			}
			return handleSubmitAnswer(ctx, claims.CompanyID, formID, membership, actor, request.Body), nil
		}

		// POST /forms - Create new form
		if request.Resource == "/forms" {
			return handleCreateForm(ctx, claims.CompanyID, claims.AuthUserID, actor, request.Body), nil
		}

		return api.ErrorResponse(http.StatusNotFound, "Endpoint not found", logger), nil

	case http.MethodPut:
		// PUT /forms/{formId} - Update form definition
		if strings.Contains(request.Resource, "/forms/{formId}") {
			formID, err := strconv.ParseInt(request.PathParameters["formId"], 10, 64)
			if err != nil {
				return api.ErrorResponse(http.StatusBadRequest, "Invalid form ID", logger), nil
			}
			return handleUpdateForm(ctx, claims.CompanyID, formID, claims.AuthUserID, actor, request.Body), nil
		}
		return api.ErrorResponse(http.StatusNotFound, "Endpoint not found", logger), nil

	default:
		return api.ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed", logger), nil
	}
}

// handleListForms handles GET /forms
func handleListForms(ctx context.Context, companyID int64, actor access.Actor) events.APIGatewayProxyResponse {
	forms, err := formRepository.GetActiveForms(ctx, companyID)
	if err != nil {
		logger.WithError(err).Error("Failed to list forms")
		return api.ReasonResponse(http.StatusInternalServerError, api.ReasonServerError, logger)
	}

	// Forms the caller cannot see are dropped outright; surviving forms get
	// their field sequence filtered for the same caller.
	visible := []models.Form{}
	for _, form := range forms {
		f := form
		if !access.CanViewForm(&f, actor) {
			continue
		}
		f.Fields = access.FilterFieldsForUser(f.Fields, actor)
		visible = append(visible, f)
	}

	return api.SuccessResponse(http.StatusOK, models.FormListResponse{Forms: visible}, logger)
}

// handleGetForm handles GET /forms/{formId}
func handleGetForm(ctx context.Context, companyID, formID int64, actor access.Actor) events.APIGatewayProxyResponse {
	form, err := formRepository.GetFormByID(ctx, companyID, formID)
	if err != nil {
		logger.WithError(err).Error("Failed to get form")
		return api.ReasonResponse(http.StatusInternalServerError, api.ReasonServerError, logger)
	}
	if form == nil {
		return api.ReasonResponse(http.StatusNotFound, api.ReasonNotFound, logger)
	}
	if !access.CanViewForm(form, actor) {
		return api.ReasonResponse(http.StatusForbidden, api.ReasonNoVisibility, logger)
	}

	form.Fields = access.FilterFieldsForUser(form.Fields, actor)

	return api.SuccessResponse(http.StatusOK, models.FormResponse{Form: form}, logger)
}

// handleCreateForm handles POST /forms
func handleCreateForm(ctx context.Context, companyID int64, authUserID string, actor access.Actor, body string) events.APIGatewayProxyResponse {
	if !access.CanCreateForms(actor) {
		return api.ReasonResponse(http.StatusForbidden, api.ReasonNoCreatePermission, logger)
	}

	var createReq models.CreateFormRequest
	if err := json.Unmarshal([]byte(body), &createReq); err != nil {
		logger.WithError(err).Error("Failed to parse create form request")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
	}

	createReq.Title = strings.TrimSpace(createReq.Title)
	if createReq.Title == "" {
		return api.ReasonResponse(http.StatusBadRequest, api.ReasonMissingTitle, logger)
	}
	if len(createReq.Fields) == 0 {
		return api.ReasonResponse(http.StatusBadRequest, api.ReasonFieldsRequired, logger)
	}

	if err := models.NormalizeFields(createReq.Fields); err != nil {
		logger.WithError(err).Warn("Rejected form with invalid fields")
		return api.ErrorResponse(http.StatusBadRequest, err.Error(), logger)
	}

	form, err := formRepository.CreateForm(ctx, companyID, authUserID, &createReq)
	if err != nil {
		logger.WithError(err).Error("Failed to create form")
		return api.ReasonResponse(http.StatusInternalServerError, api.ReasonServerError, logger)
	}

	writeAudit(ctx, companyID, authUserID, models.AuditEntityForm, form.ID, models.AuditActionCreate, map[string]interface{}{
		"title": form.Title,
	})

	return api.SuccessResponse(http.StatusCreated, models.CreateFormResponse{OK: true, Form: form}, logger)
}

// handleUpdateForm handles PUT /forms/{formId}
func handleUpdateForm(ctx context.Context, companyID, formID int64, authUserID string, actor access.Actor, body string) events.APIGatewayProxyResponse {
	form, err := formRepository.GetFormByID(ctx, companyID, formID)
	if err != nil {
		logger.WithError(err).Error("Failed to get form")
		return api.ReasonResponse(http.StatusInternalServerError, api.ReasonServerError, logger)
	}
	if form == nil {
		return api.ReasonResponse(http.StatusNotFound, api.ReasonNotFound, logger)
	}
	if !access.CanEditForm(form, actor) {
		return api.ReasonResponse(http.StatusForbidden, api.ReasonNoEditPermission, logger)
	}

	var updateReq models.UpdateFormRequest
	if err := json.Unmarshal([]byte(body), &updateReq); err != nil {
		logger.WithError(err).Error("Failed to parse update form request")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
	}

	if updateReq.Title != nil && strings.TrimSpace(*updateReq.Title) == "" {
		return api.ReasonResponse(http.StatusBadRequest, api.ReasonMissingTitle, logger)
	}
	if updateReq.Fields != nil {
		if len(updateReq.Fields) == 0 {
			return api.ReasonResponse(http.StatusBadRequest, api.ReasonFieldsRequired, logger)
		}
		if err := models.NormalizeFields(updateReq.Fields); err != nil {
			logger.WithError(err).Warn("Rejected form update with invalid fields")
			return api.ErrorResponse(http.StatusBadRequest, err.Error(), logger)
		}
	}

	updated, err := formRepository.UpdateForm(ctx, companyID, formID, authUserID, &updateReq)
	if err != nil {
		if err.Error() == "form not found" {
			return api.ReasonResponse(http.StatusNotFound, api.ReasonNotFound, logger)
		}
		logger.WithError(err).Error("Failed to update form")
		return api.ReasonResponse(http.StatusInternalServerError, api.ReasonServerError, logger)
	}

	writeAudit(ctx, companyID, authUserID, models.AuditEntityForm, formID, models.AuditActionUpdate, nil)

	return api.SuccessResponse(http.StatusOK, models.CreateFormResponse{OK: true, Form: updated}, logger)
}

// handleSubmitAnswer handles POST /forms/{formId}/answers
func handleSubmitAnswer(ctx context.Context, companyID, formID int64, membership *models.Membership, actor access.Actor, body string) events.APIGatewayProxyResponse {
	form, err := formRepository.GetFormByID(ctx, companyID, formID)
	if err != nil {
		logger.WithError(err).Error("Failed to get form")
		return api.ReasonResponse(http.StatusInternalServerError, api.ReasonServerError, logger)
	}
	if form == nil {
		return api.ReasonResponse(http.StatusNotFound, api.ReasonFormNotFound, logger)
	}

	// Visibility first so the two failures stay distinguishable
	if !access.CanViewForm(form, actor) {
		return api.ReasonResponse(http.StatusForbidden, api.ReasonNoVisibility, logger)
	}
	if !access.CanRespondToForm(form, actor) {
		return api.ReasonResponse(http.StatusForbidden, api.ReasonNoRespondPermission, logger)
	}

	var submitReq models.SubmitAnswerRequest
	if err := json.Unmarshal([]byte(body), &submitReq); err != nil {
		logger.WithError(err).Error("Failed to parse submit answer request")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
	}

	answer := &models.Answer{
		CompanyID:  companyID,
		FormID:     formID,
		AuthUserID: membership.AuthUserID,
		Username:   membership.Username,
		Department: membership.Department,
		Answers:    access.SanitizeAnswersForUser(submitReq.Answers, form.Fields, actor),
		Status:     models.AnswerStatusPending,
	}

	created, err := answerRepository.CreateAnswer(ctx, answer)
	if err != nil {
		logger.WithError(err).Error("Failed to create answer")
		return api.ReasonResponse(http.StatusInternalServerError, api.ReasonServerError, logger)
	}

	writeAudit(ctx, companyID, membership.AuthUserID, models.AuditEntityAnswer, created.ID, models.AuditActionCreate, map[string]interface{}{
		"form_id": formID,
	})

	return api.SuccessResponse(http.StatusCreated, models.SubmitAnswerResponse{OK: true, Answer: created}, logger)
}

// handleListAnswers handles GET /forms/{formId}/answers
func handleListAnswers(ctx context.Context, companyID, formID int64, actor access.Actor) events.APIGatewayProxyResponse {
	form, err := formRepository.GetFormByID(ctx, companyID, formID)
	if err != nil {
		logger.WithError(err).Error("Failed to get form")
		return api.ReasonResponse(http.StatusInternalServerError, api.ReasonServerError, logger)
	}
	if form == nil {
		return api.ReasonResponse(http.StatusNotFound, api.ReasonFormNotFound, logger)
	}

	// Editors are the accountable reviewers: they see every submission raw,
	// with no field-level filtering applied.
	if !access.CanEditForm(form, actor) {
		return api.ReasonResponse(http.StatusForbidden, api.ReasonNoPermission, logger)
	}

	answers, err := answerRepository.GetAnswersByForm(ctx, companyID, formID)
	if err != nil {
		logger.WithError(err).Error("Failed to list answers")
		return api.ReasonResponse(http.StatusInternalServerError, api.ReasonServerError, logger)
	}
	if answers == nil {
		answers = []models.Answer{}
	}

	return api.SuccessResponse(http.StatusOK, models.AnswerListResponse{OK: true, Answers: answers}, logger)
}

// writeAudit appends an audit row, logging and swallowing any failure so the
// primary mutation's outcome is never affected.
func writeAudit(ctx context.Context, companyID int64, actorUserID, entity string, entityID int64, action string, meta map[string]interface{}) {
	err := auditRepository.WriteEntry(ctx, companyID, actorUserID, entity, strconv.FormatInt(entityID, 10), action, meta)
	if err != nil {
		logger.WithError(err).Warn("Audit write failed")
	}
}

// main is the Lambda function entry point
func main() {
	lambda.Start(Handler)
}

func init() {
	var err error

	isLocal = parseIsLocal()

	// Logger Setup
	logger = setupLogger(isLocal)

	// Outside the Lambda runtime (go test) there is no SSM or database;
	// handlers run against repositories injected by the test instead.
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") == "" {
		return
	}

	// Initialize AWS SSM Parameter Store client
	ssmClient := clients.NewSSMClient(isLocal)
	ssmRepository = &data.SSMDao{
		SSM:    ssmClient,
		Logger: logger,
	}

	// Retrieve all required configuration parameters from SSM
	ssmParams, err = ssmRepository.GetParameters()
	if err != nil {
		logger.WithFields(logrus.Fields{
			"operation": "init",
			"error":     err.Error(),
		}).Fatal("Error while getting SSM params from parameter store")
	}

	logger.WithFields(logrus.Fields{
		"operation":    "init",
		"params_count": len(ssmParams),
	}).Debug("Retrieved SSM parameters")

	// Initialize PostgreSQL database connection
	err = setupPostgresSQLClient(ssmParams)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"operation": "init",
			"error":     err.Error(),
		}).Fatal("Error setting up PostgreSQL client")
	}

	logger.WithField("operation", "init").Info("Form Management Lambda initialization completed successfully")
}

func parseIsLocal() bool {
	isLocal, _ := strconv.ParseBool(os.Getenv("IS_LOCAL"))
	return isLocal
}

func setupLogger(isLocal bool) *logrus.Logger {
	logger := logrus.New()
	util.SetLogLevel(logger, os.Getenv("LOG_LEVEL"))
	logger.SetFormatter(&logrus.JSONFormatter{PrettyPrint: isLocal})
	return logger
}

func setupPostgresSQLClient(ssmParams map[string]string) error {
	var err error

	// Create PostgreSQL client using RDS connection parameters from SSM
	sqlDB, err = clients.NewPostgresSQLClient(
		ssmParams[constants.DATABASE_RDS_ENDPOINT],
		ssmParams[constants.DATABASE_PORT],
		ssmParams[constants.DATABASE_NAME],
		ssmParams[constants.DATABASE_USERNAME],
		ssmParams[constants.DATABASE_PASSWORD],
		ssmParams[constants.SSL_MODE],
	)
	if err != nil {
		return fmt.Errorf("error creating PostgreSQL client: %w", err)
	}

	formRepository = &data.FormDao{DB: sqlDB, Logger: logger}
	answerRepository = &data.AnswerDao{DB: sqlDB, Logger: logger}
	membershipRepository = &data.MembershipDao{DB: sqlDB, Logger: logger}
	auditRepository = &data.AuditDao{DB: sqlDB, Logger: logger}

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		logger.WithField("operation", "setupPostgresSQLClient").Debug("PostgreSQL client initialized successfully")
	}
	return nil
}
