package api

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

// Stable machine-readable reason codes returned to callers. Clients branch on
// these, so they must never change once shipped.
const (
	ReasonInactiveUser        = "inactive_user"
	ReasonNotFound            = "not_found"
	ReasonFormNotFound        = "form_not_found"
	ReasonNoVisibility        = "no_visibility"
	ReasonNoRespondPermission = "no_respond_permission"
	ReasonNoEditPermission    = "no_edit_permission"
	ReasonNoCreatePermission  = "no_create_permission"
	ReasonNoPermission        = "no_permission"
	ReasonMissingTitle        = "missing_title"
	ReasonFieldsRequired      = "fields_required"
	ReasonAlreadyMember       = "already_member"
	ReasonPhoneCooldown       = "phone_cooldown"
	ReasonNeedsVerification   = "needs_verification"
	ReasonServerError         = "server_error"
)

func corsHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token",
		"Access-Control-Allow-Methods": "GET,POST,PUT,DELETE,OPTIONS",
	}
}

// SuccessResponse creates a successful API Gateway response
func SuccessResponse(statusCode int, data interface{}, logger *logrus.Logger) events.APIGatewayProxyResponse {
	body, err := json.Marshal(data)
	if err != nil {
		logger.WithError(err).Error("Failed to marshal response data")
		return ReasonResponse(http.StatusInternalServerError, ReasonServerError, logger)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Body:       string(body),
		Headers:    corsHeaders(),
	}
}

// ReasonResponse creates an error response carrying a stable reason code in
// the "error" key, matching what the web client branches on.
func ReasonResponse(statusCode int, reason string, logger *logrus.Logger) events.APIGatewayProxyResponse {
	body, err := json.Marshal(map[string]string{"error": reason})
	if err != nil {
		logger.WithError(err).Error("Failed to marshal error response")
		body = []byte(`{"error":"server_error"}`)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Body:       string(body),
		Headers:    corsHeaders(),
	}
}

// ReasonResponseWith creates an error response with a reason code plus extra
// fields (cooldown deadlines, onboarding hints).
func ReasonResponseWith(statusCode int, reason string, extra map[string]interface{}, logger *logrus.Logger) events.APIGatewayProxyResponse {
	payload := map[string]interface{}{"error": reason}
	for k, v := range extra {
		payload[k] = v
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logger.WithError(err).Error("Failed to marshal error response")
		return ReasonResponse(statusCode, reason, logger)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Body:       string(body),
		Headers:    corsHeaders(),
	}
}

// ErrorResponse creates an error API Gateway response with a human-readable message
func ErrorResponse(statusCode int, message string, logger *logrus.Logger) events.APIGatewayProxyResponse {
	errorData := map[string]interface{}{
		"error":   true,
		"message": message,
		"status":  statusCode,
	}

	body, err := json.Marshal(errorData)
	if err != nil {
		logger.WithError(err).Error("Failed to marshal error response")
		body = []byte(`{"error":true,"message":"Internal server error","status":500}`)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Body:       string(body),
		Headers:    corsHeaders(),
	}
}
