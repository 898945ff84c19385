// Package main implements the company registration Lambda.
//
// Registration creates a new tenant from an authenticated Cognito identity:
// the company record, its founding ARCHON membership and, for email/password
// signups, a pending-registration row that expires unless the owner confirms
// their address within 24 hours. Federated (OAuth) signups arrive already
// verified and skip the pending row entirely.
//
// The caller's identity is never trusted from the request body alone: the
// Cognito user is looked up through AdminGetUser and its email attribute must
// match the one submitted with the registration form.
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
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/sirupsen/logrus"
)

// founderDepartment is the department stamped on the first ARCHON membership
const founderDepartment = "DIRECCION"

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
	cognitoClient        *cognitoidentityprovider.Client
	userPoolID           string
)

func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.WithFields(logrus.Fields{
		"operation": "Handler",
		"method":    request.HTTPMethod,
		"path":      request.Path,
		"resource":  request.Resource,
	}).Info("Company registration request received")

	claims, err := auth.ExtractUserClaimsFromRequest(request)
	if err != nil {
		logger.WithError(err).Error("Authentication failed")
		return api.ErrorResponse(http.StatusUnauthorized, "Authentication failed", logger), nil
	}

	if request.Resource == "/registration/start" && request.HTTPMethod == http.MethodPost {
		return handleStartRegistration(ctx, claims, request.Body), nil
	}

	return api.ErrorResponse(http.StatusNotFound, "Endpoint not found", logger), nil
}

// handleStartRegistration handles POST /registration/start
func handleStartRegistration(ctx context.Context, claims *auth.Claims, body string) events.APIGatewayProxyResponse {
	var startReq models.StartRegistrationRequest
	if err := json.Unmarshal([]byte(body), &startReq); err != nil {
		logger.WithError(err).Error("Failed to parse registration request")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
	}

	if startReq.CompanyName == "" || startReq.RepresentativeName == "" || startReq.Email == "" ||
		startReq.Country == "" || startReq.Sector == "" || startReq.OrganizationType == "" {
		return api.ErrorResponse(http.StatusBadRequest, "Missing required registration fields", logger)
	}

	// The registration always runs as the authenticated subject, whatever
	// the body claims
	authUserID := claims.AuthUserID

	// The Cognito user must exist and its email must match the form
	cognitoUser, err := cognitoClient.AdminGetUser(ctx, &cognitoidentityprovider.AdminGetUserInput{
		UserPoolId: aws.String(userPoolID),
		Username:   aws.String(authUserID),
	})
	if err != nil {
		logger.WithError(err).WithField("auth_user_id", authUserID).Error("Cognito user lookup failed")
		return api.ErrorResponse(http.StatusBadRequest, "Unknown user identity", logger)
	}

	cognitoEmail := ""
	for _, attr := range cognitoUser.UserAttributes {
		if attr.Name != nil && *attr.Name == "email" && attr.Value != nil {
			cognitoEmail = *attr.Value
			break
		}
	}
	if cognitoEmail == "" || cognitoEmail != startReq.Email {
		logger.WithFields(logrus.Fields{
			"auth_user_id": authUserID,
		}).Warn("Registration email does not match identity")
		return api.ErrorResponse(http.StatusBadRequest, "Email does not match the authenticated identity", logger)
	}

	// One membership per user: a second registration is a client bug
	exists, err := membershipRepository.HasAnyMembership(ctx, authUserID)
	if err != nil {
		logger.WithError(err).Error("Failed to check existing memberships")
		return api.ReasonResponse(http.StatusInternalServerError, api.ReasonServerError, logger)
	}
	if exists {
		return api.ReasonResponse(http.StatusConflict, api.ReasonAlreadyMember, logger)
	}

	company := &models.Company{
		Name:               startReq.CompanyName,
		Slug:               util.Slugify(startReq.CompanyName),
		Country:            startReq.Country,
		Sector:             startReq.Sector,
		OrganizationType:   startReq.OrganizationType,
		RepresentativeName: startReq.RepresentativeName,
		OwnerAuthUserID:    authUserID,
		OwnerEmail:         cognitoEmail,
	}

	company, err = companyRepository.CreateCompany(ctx, company, claims.IsOAuth())
	if err != nil {
		logger.WithError(err).Error("Failed to create company")
		return api.ReasonResponse(http.StatusInternalServerError, api.ReasonServerError, logger)
	}

	membership := &models.Membership{
		CompanyID:      company.ID,
		AuthUserID:     authUserID,
		Username:       util.UsernameFromEmail(cognitoEmail, startReq.RepresentativeName),
		Role:           "ARCHON",
		Department:     sql.NullString{String: founderDepartment, Valid: true},
		Active:         true,
		CanCreateForms: true,
	}

	membership, err = membershipRepository.CreateMembership(ctx, membership)
	if err != nil {
		logger.WithError(err).Error("Failed to create founding membership")
		return api.ReasonResponse(http.StatusInternalServerError, api.ReasonServerError, logger)
	}

	// Email/password owners must still confirm their address; the cleanup
	// job reaps companies whose pending row expires unverified
	if !claims.IsOAuth() {
		if err := companyRepository.CreatePendingRegistration(ctx, authUserID, company.ID, cognitoEmail); err != nil {
			logger.WithError(err).Error("Failed to create pending registration")
			return api.ReasonResponse(http.StatusInternalServerError, api.ReasonServerError, logger)
		}
	}

	err = auditRepository.WriteEntry(ctx, company.ID, authUserID,
		models.AuditEntityUser, strconv.FormatInt(membership.ID, 10), models.AuditActionCreate,
		map[string]interface{}{"company_slug": company.Slug})
	if err != nil {
		logger.WithError(err).Warn("Audit write failed")
	}

	logger.WithFields(logrus.Fields{
		"company_id":   company.ID,
		"auth_user_id": authUserID,
		"verified":     company.VerifiedAt != nil,
	}).Info("Company registration completed")

	return api.SuccessResponse(http.StatusCreated, models.StartRegistrationResponse{
		OK:        true,
		CompanyID: company.ID,
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

	cognitoClient = clients.NewCognitoIdentityProviderClient(isLocal)
	userPoolID = ssmParams[constants.USER_POOL_ID]
	if userPoolID == "" {
		logger.WithField("operation", "init").Fatal("USER_POOL_ID parameter is missing")
	}

	logger.WithField("operation", "init").Info("Company Registration Lambda initialization completed successfully")
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
