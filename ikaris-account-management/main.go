package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"ikaris/lib/api"
	"ikaris/lib/auth"
	"ikaris/lib/clients"
	"ikaris/lib/constants"
	"ikaris/lib/data"
	"ikaris/lib/models"
	"ikaris/lib/util"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// phoneCooldown is how long a member must wait between phone number changes
const phoneCooldown = 72 * time.Hour

// Global variables for Lambda cold start optimization
var (
	logger               *logrus.Logger
	isLocal              bool
	ssmRepository        data.SSMRepository
	ssmParams            map[string]string
	sqlDB                *sql.DB
	membershipRepository data.MembershipRepository
	companyRepository    data.CompanyRepository
	auditRepository      data.AuditRepository
	s3Client             clients.S3ClientInterface
	mailSender           clients.MailSender
)

func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.WithFields(logrus.Fields{
		"operation": "Handler",
		"method":    request.HTTPMethod,
		"path":      request.Path,
		"resource":  request.Resource,
	}).Info("Account management request received")

	// Account routes run before onboarding completes, so company_id may be
	// absent from the token; only the subject and email are required.
	claims, err := auth.ExtractUserClaimsFromRequest(request)
	if err != nil {
		logger.WithError(err).Error("Authentication failed")
		return api.ErrorResponse(http.StatusUnauthorized, "Authentication failed", logger), nil
	}

	switch {
	case request.Resource == "/account/me" && request.HTTPMethod == http.MethodGet:
		return handleGetMe(ctx, claims), nil

	case request.Resource == "/account/profile" && request.HTTPMethod == http.MethodPatch:
		return handleUpdateProfile(ctx, claims, request.Body), nil

	case request.Resource == "/account/avatar-upload-url" && request.HTTPMethod == http.MethodPost:
		return handleAvatarUploadURL(ctx, claims, request.Body), nil

	default:
		return api.ErrorResponse(http.StatusNotFound, "Endpoint not found", logger), nil
	}
}

// handleGetMe handles GET /account/me, the client's bootstrap call
func handleGetMe(ctx context.Context, claims *auth.Claims) events.APIGatewayProxyResponse {
	membership, err := membershipRepository.GetActiveMembershipByUser(ctx, claims.AuthUserID)
	if err != nil {
		logger.WithError(err).Error("Failed to load membership")
		return api.ReasonResponse(http.StatusInternalServerError, api.ReasonServerError, logger)
	}

	user := &models.AuthUserInfo{ID: claims.AuthUserID, Email: claims.Email}

	// No membership yet: the client routes to company registration
	if membership == nil {
		return api.SuccessResponse(http.StatusOK, models.MeResponse{
			OK:              true,
			User:            user,
			NeedsOnboarding: true,
		}, logger)
	}

	company, err := companyRepository.GetCompanyByID(ctx, membership.CompanyID)
	if err != nil || company == nil {
		logger.WithError(err).WithField("company_id", membership.CompanyID).Error("Failed to load company")
		return api.ReasonResponse(http.StatusInternalServerError, api.ReasonServerError, logger)
	}

	// Email/password companies stay locked until the owner confirms the
	// verification email; federated identities never need it.
	if company.VerifiedAt == nil && !claims.IsOAuth() {
		return api.ReasonResponse(http.StatusForbidden, api.ReasonNeedsVerification, logger)
	}

	// First verified bootstrap gets a welcome email; the stamp is written
	// only after a successful send so a failed send retries next time.
	if membership.WelcomeSentAt == nil {
		sendWelcomeEmail(ctx, claims.Email, membership, company)
	}

	return api.SuccessResponse(http.StatusOK, models.MeResponse{
		OK:         true,
		User:       user,
		Membership: membership,
		Company:    company,
	}, logger)
}

func sendWelcomeEmail(ctx context.Context, email string, membership *models.Membership, company *models.Company) {
	if err := mailSender.SendWelcomeEmail(email, company.RepresentativeName, company.Name); err != nil {
		logger.WithError(err).WithField("membership_id", membership.ID).Warn("Welcome email send failed")
		return
	}
	if err := membershipRepository.MarkWelcomeSent(ctx, membership.ID); err != nil {
		logger.WithError(err).WithField("membership_id", membership.ID).Warn("Failed to stamp welcome email")
	}
}

// handleUpdateProfile handles PATCH /account/profile
func handleUpdateProfile(ctx context.Context, claims *auth.Claims, body string) events.APIGatewayProxyResponse {
	membership, err := membershipRepository.GetActiveMembershipByUser(ctx, claims.AuthUserID)
	if err != nil {
		logger.WithError(err).Error("Failed to load membership")
		return api.ReasonResponse(http.StatusInternalServerError, api.ReasonServerError, logger)
	}
	if membership == nil {
		return api.ReasonResponse(http.StatusForbidden, api.ReasonInactiveUser, logger)
	}

	var updateReq models.UpdateProfileRequest
	if err := json.Unmarshal([]byte(body), &updateReq); err != nil {
		logger.WithError(err).Error("Failed to parse profile update request")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
	}

	if updateReq.Phone == nil && updateReq.AvatarURL == nil {
		return api.ErrorResponse(http.StatusBadRequest, "No changes provided", logger)
	}

	// Unchanged phone values don't consume the cooldown
	if updateReq.Phone != nil && *updateReq.Phone == membership.Phone.String {
		updateReq.Phone = nil
	}

	stampPhone := updateReq.Phone != nil
	if stampPhone && membership.PhoneUpdatedAt != nil {
		nextAllowed := membership.PhoneUpdatedAt.Add(phoneCooldown)
		if time.Now().Before(nextAllowed) {
			return api.ReasonResponseWith(http.StatusTooManyRequests, api.ReasonPhoneCooldown, map[string]interface{}{
				"next_allowed_at": nextAllowed.UTC().Format(time.RFC3339),
			}, logger)
		}
	}

	updated, err := membershipRepository.UpdateProfile(ctx, membership.ID, updateReq.Phone, updateReq.AvatarURL, stampPhone)
	if err != nil {
		logger.WithError(err).Error("Failed to update profile")
		return api.ReasonResponse(http.StatusInternalServerError, api.ReasonServerError, logger)
	}

	err = auditRepository.WriteEntry(ctx, membership.CompanyID, claims.AuthUserID,
		models.AuditEntityUser, strconv.FormatInt(membership.ID, 10), models.AuditActionUpdate, nil)
	if err != nil {
		logger.WithError(err).Warn("Audit write failed")
	}

	return api.SuccessResponse(http.StatusOK, models.ProfileResponse{OK: true, Membership: updated}, logger)
}

// handleAvatarUploadURL handles POST /account/avatar-upload-url
func handleAvatarUploadURL(ctx context.Context, claims *auth.Claims, body string) events.APIGatewayProxyResponse {
	membership, err := membershipRepository.GetActiveMembershipByUser(ctx, claims.AuthUserID)
	if err != nil {
		logger.WithError(err).Error("Failed to load membership")
		return api.ReasonResponse(http.StatusInternalServerError, api.ReasonServerError, logger)
	}
	if membership == nil {
		return api.ReasonResponse(http.StatusForbidden, api.ReasonInactiveUser, logger)
	}

	var uploadReq struct {
		FileName string `json:"file_name" binding:"required"`
	}
	if err := json.Unmarshal([]byte(body), &uploadReq); err != nil {
		logger.WithError(err).Error("Failed to parse upload URL request")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
	}

	ext := strings.ToLower(path.Ext(uploadReq.FileName))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
	default:
		return api.ErrorResponse(http.StatusBadRequest, "Unsupported avatar file type", logger)
	}

	key := fmt.Sprintf("avatars/%d/%d-%s%s", membership.CompanyID, membership.ID, uuid.New().String()[:8], ext)

	uploadURL, err := s3Client.GenerateUploadURL(key, 15*time.Minute)
	if err != nil {
		logger.WithError(err).Error("Failed to generate upload URL")
		return api.ReasonResponse(http.StatusInternalServerError, api.ReasonServerError, logger)
	}

	return api.SuccessResponse(http.StatusOK, map[string]interface{}{
		"ok":         true,
		"upload_url": uploadURL,
		"key":        key,
	}, logger)
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

	// Initialize PostgreSQL database connection
	err = setupPostgresSQLClient(ssmParams)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"operation": "init",
			"error":     err.Error(),
		}).Fatal("Error setting up PostgreSQL client")
	}

	// Avatar bucket and SMTP relay
	s3Client = clients.NewS3Client(isLocal, ssmParams[constants.AVATAR_BUCKET])

	smtpPort, err := strconv.Atoi(ssmParams[constants.SMTP_PORT])
	if err != nil {
		logger.WithField("operation", "init").WithError(err).Fatal("Invalid SMTP port parameter")
	}
	mailSender = clients.NewSMTPMailSender(clients.SMTPConfig{
		Host: ssmParams[constants.SMTP_HOST],
		Port: smtpPort,
		User: ssmParams[constants.SMTP_USER],
		Pass: ssmParams[constants.SMTP_PASS],
		From: ssmParams[constants.SMTP_FROM],
	})

	logger.WithField("operation", "init").Info("Account Management Lambda initialization completed successfully")
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

	membershipRepository = &data.MembershipDao{DB: sqlDB, Logger: logger}
	companyRepository = &data.CompanyDao{DB: sqlDB, Logger: logger}
	auditRepository = &data.AuditDao{DB: sqlDB, Logger: logger}

	return nil
}
