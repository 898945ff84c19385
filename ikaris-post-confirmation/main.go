// Package main implements the AWS Cognito Post-Confirmation Lambda trigger.
//
// When an email/password owner confirms their address, this trigger marks
// their pending registration verified and stamps the company's verified_at,
// unlocking the tenant. Federated signups never produce a pending row, so
// the trigger is a no-op for them.
//
// Error Handling:
//   - Never return an error that would block Cognito confirmation
//   - Log all failures with a correlation ID for debugging
//   - An unverified company stays locked and is retried on the next login
//     through the account bootstrap, so a missed stamp is recoverable
package main

import (
	"context"
	"database/sql"
	"fmt"
	"ikaris/lib/clients"
	"ikaris/lib/constants"
	"ikaris/lib/data"
	"ikaris/lib/util"
	"os"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"
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
)

// Handler processes the Cognito Post-Confirmation trigger event
func Handler(ctx context.Context, event events.CognitoEventUserPoolsPostConfirmation) (events.CognitoEventUserPoolsPostConfirmation, error) {
	// Correlation ID for tracking this confirmation end-to-end
	correlationID := uuid.New().String()

	authUserID := event.Request.UserAttributes["sub"]
	if authUserID == "" {
		logger.WithFields(logrus.Fields{
			"correlation_id": correlationID,
			"trigger_source": event.TriggerSource,
			"operation":      "Handler",
		}).Error("Post-confirmation event carries no sub attribute")
		return event, nil // Never block Cognito confirmation
	}

	logger.WithFields(logrus.Fields{
		"correlation_id": correlationID,
		"auth_user_id":   authUserID,
		"trigger_source": event.TriggerSource,
		"operation":      "Handler",
	}).Info("Processing post-confirmation event")

	if err := companyRepository.MarkRegistrationVerified(ctx, authUserID); err != nil {
		// Log and let confirmation proceed; the company simply stays
		// locked until the stamp succeeds
		logger.WithFields(logrus.Fields{
			"correlation_id": correlationID,
			"auth_user_id":   authUserID,
			"operation":      "Handler",
			"error":          err.Error(),
		}).Error("Failed to verify registration")
		return event, nil
	}

	logger.WithFields(logrus.Fields{
		"correlation_id": correlationID,
		"auth_user_id":   authUserID,
		"operation":      "Handler",
	}).Info("Registration verification completed")

	return event, nil
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

	logger.WithField("operation", "init").Info("Post-Confirmation Lambda initialization completed successfully")
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
