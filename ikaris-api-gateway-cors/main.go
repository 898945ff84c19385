package main

import (
	"ikaris/lib/clients"
	"ikaris/lib/constants"
	"ikaris/lib/data"
	"ikaris/lib/util"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
)

var (
	logger        *logrus.Logger
	isLocal       bool
	ssmRepository data.SSMRepository
	ssmParams     map[string]string
)

// handler answers OPTIONS preflight requests, echoing the origin back when it
// is on the allow-list from SSM.
func handler(request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestOrigin, ok := request.Headers["origin"]
	if !ok {
		logger.Warn("Origin header missing from preflight request")
		return events.APIGatewayProxyResponse{
			StatusCode: 500,
		}, nil
	}

	allowedOrigins := strings.Split(ssmParams[constants.ALLOWED_ORIGINS], ",")

	for _, allowedOrigin := range allowedOrigins {
		if allowedOrigin == "*" || allowedOrigin == requestOrigin {
			return events.APIGatewayProxyResponse{
				StatusCode: 200,
				Headers: map[string]string{
					"Access-Control-Allow-Origin":      requestOrigin,
					"Access-Control-Allow-Headers":     "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token",
					"Access-Control-Allow-Methods":     "GET, PUT, DELETE, POST, OPTIONS, PATCH",
					"Access-Control-Allow-Credentials": "true",
				},
			}, nil
		}
	}

	logger.WithField("origin", requestOrigin).Warn("Unauthorized origin on preflight request")

	return events.APIGatewayProxyResponse{
		StatusCode: 400,
	}, nil
}

func main() {
	lambda.Start(handler)
}

func init() {
	isLocal, _ = strconv.ParseBool(os.Getenv("IS_LOCAL"))

	logger = logrus.New()
	util.SetLogLevel(logger, os.Getenv("LOG_LEVEL"))
	logger.SetFormatter(&logrus.JSONFormatter{
		PrettyPrint: isLocal,
	})

	// Setup SSM client
	ssmClient := clients.NewSSMClient(isLocal)
	ssmRepository = &data.SSMDao{
		SSM:    ssmClient,
		Logger: logger,
	}

	// Get SSM parameters
	var err error
	ssmParams, err = ssmRepository.GetParameters()
	if err != nil {
		logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Fatal("Error while getting ssm params from param store")
	}
}
