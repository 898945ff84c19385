// Package main implements the scheduled registration cleanup Lambda.
//
// Email/password registrations that are never verified leave behind a locked
// company, its founding membership and a Cognito user. This job runs on a
// CloudWatch Events schedule and reaps every pending registration past its
// expiry: the company row (memberships cascade), the Cognito user, then the
// pending row itself. Failures are recorded per row and the loop continues,
// so one bad record never blocks the rest of the batch.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"ikaris/lib/clients"
	"ikaris/lib/constants"
	"ikaris/lib/data"
	"ikaris/lib/models"
	"ikaris/lib/util"
	"os"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/sirupsen/logrus"
)

// Global variables for Lambda cold start optimization
var (
	logger            *logrus.Logger
	isLocal           bool
	ssmRepository     data.SSMRepository
	ssmParams         map[string]string
	sqlDB             *sql.DB
	companyRepository data.CompanyRepository
	cognitoClient     *cognitoidentityprovider.Client
	userPoolID        string
)

// Handler runs one cleanup sweep
func Handler(ctx context.Context, event events.CloudWatchEvent) (models.CleanupReport, error) {
	logger.WithFields(logrus.Fields{
		"operation": "Handler",
		"source":    event.Source,
	}).Info("Registration cleanup started")

	report := models.CleanupReport{OK: true, Errors: []string{}}

	expired, err := companyRepository.GetExpiredRegistrations(ctx)
	if err != nil {
		logger.WithError(err).Error("Failed to list expired registrations")
		report.OK = false
		report.Errors = append(report.Errors, err.Error())
		return report, nil
	}

	report.Scanned = len(expired)

	for _, pending := range expired {
		rowLogger := logger.WithFields(logrus.Fields{
			"operation":    "Handler",
			"pending_id":   pending.ID,
			"company_id":   pending.CompanyID,
			"auth_user_id": pending.AuthUserID,
		})

		if err := companyRepository.DeleteCompany(ctx, pending.CompanyID); err != nil {
			rowLogger.WithError(err).Error("Failed to delete expired company")
			report.Errors = append(report.Errors, fmt.Sprintf("company %d: %v", pending.CompanyID, err))
			continue
		}
		report.DeletedCompanies++

		// The Cognito user may already be gone; treat that as deleted
		_, err := cognitoClient.AdminDeleteUser(ctx, &cognitoidentityprovider.AdminDeleteUserInput{
			UserPoolId: aws.String(userPoolID),
			Username:   aws.String(pending.AuthUserID),
		})
		if err != nil {
			rowLogger.WithError(err).Warn("Failed to delete Cognito user")
			report.Errors = append(report.Errors, fmt.Sprintf("cognito user %s: %v", pending.AuthUserID, err))
		} else {
			report.DeletedUsers++
		}

		if err := companyRepository.DeletePendingRegistration(ctx, pending.ID); err != nil {
			rowLogger.WithError(err).Error("Failed to delete pending registration")
			report.Errors = append(report.Errors, fmt.Sprintf("pending %d: %v", pending.ID, err))
			continue
		}
		report.DeletedPending++

		rowLogger.Info("Reaped expired registration")
	}

	report.OK = len(report.Errors) == 0

	logger.WithFields(logrus.Fields{
		"operation":         "Handler",
		"scanned":           report.Scanned,
		"deleted_companies": report.DeletedCompanies,
		"deleted_users":     report.DeletedUsers,
		"deleted_pending":   report.DeletedPending,
		"errors":            len(report.Errors),
	}).Info("Registration cleanup finished")

	return report, nil
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

	logger.WithField("operation", "init").Info("Registration Cleanup Lambda initialization completed successfully")
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

	companyRepository = &data.CompanyDao{DB: sqlDB, Logger: logger}

	return nil
}
