package main

import (
	"context"
	"database/sql"
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
	"github.com/sirupsen/logrus"
)

// Global variables for Lambda cold start optimization
var (
	logger               *logrus.Logger
	isLocal              bool
	ssmRepository        data.SSMRepository
	ssmParams            map[string]string
	sqlDB                *sql.DB
	membershipRepository data.MembershipRepository
	departmentRepository data.DepartmentRepository
)

// Handler serves GET /lookups/{entity}: small value/label lists the form
// builder UI uses to populate department and member pickers.
func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.WithFields(logrus.Fields{
		"operation": "Handler",
		"method":    request.HTTPMethod,
		"path":      request.Path,
		"entity":    request.PathParameters["entity"],
	}).Info("Lookup request received")

	claims, err := auth.ExtractClaimsFromRequest(request)
	if err != nil {
		logger.WithError(err).Error("Authentication failed")
		return api.ErrorResponse(http.StatusUnauthorized, "Authentication failed", logger), nil
	}

	if request.HTTPMethod != http.MethodGet {
		return api.ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed", logger), nil
	}

	membership, err := membershipRepository.GetMembership(ctx, claims.CompanyID, claims.AuthUserID)
	if err != nil {
		logger.WithError(err).Error("Failed to load membership")
		return api.ReasonResponse(http.StatusInternalServerError, api.ReasonServerError, logger), nil
	}
	if membership == nil || !membership.Active {
		return api.ReasonResponse(http.StatusForbidden, api.ReasonInactiveUser, logger), nil
	}

	switch request.PathParameters["entity"] {
	case "departments":
		return handleDepartmentLookup(ctx, claims.CompanyID), nil
	case "company_users":
		return handleMemberLookup(ctx, claims.CompanyID), nil
	default:
		return api.ErrorResponse(http.StatusBadRequest, "Unknown lookup entity", logger), nil
	}
}

func handleDepartmentLookup(ctx context.Context, companyID int64) events.APIGatewayProxyResponse {
	departments, err := departmentRepository.GetActiveDepartments(ctx, companyID)
	if err != nil {
		logger.WithError(err).Error("Failed to load departments")
		return api.ReasonResponse(http.StatusInternalServerError, api.ReasonServerError, logger)
	}

	items := make([]models.LookupItem, 0, len(departments))
	for _, d := range departments {
		items = append(items, models.LookupItem{Value: d.ID, Label: d.Name})
	}

	return api.SuccessResponse(http.StatusOK, models.LookupResponse{Items: items}, logger)
}

func handleMemberLookup(ctx context.Context, companyID int64) events.APIGatewayProxyResponse {
	members, err := membershipRepository.GetActiveMembersByCompany(ctx, companyID)
	if err != nil {
		logger.WithError(err).Error("Failed to load members")
		return api.ReasonResponse(http.StatusInternalServerError, api.ReasonServerError, logger)
	}

	items := make([]models.LookupItem, 0, len(members))
	for _, m := range members {
		items = append(items, models.LookupItem{Value: m.ID, Label: m.Username})
	}

	return api.SuccessResponse(http.StatusOK, models.LookupResponse{Items: items}, logger)
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

	logger.WithField("operation", "init").Info("Lookup Management Lambda initialization completed successfully")
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
	departmentRepository = &data.DepartmentDao{DB: sqlDB, Logger: logger}

	return nil
}
