package auth

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
)

// Claims represents the verified identity extracted from the API Gateway authorizer context
type Claims struct {
	AuthUserID string `json:"sub"`
	Email      string `json:"email"`
	CompanyID  int64  `json:"company_id"`
	Provider   string `json:"provider"`
}

// IsOAuth reports whether the identity came from a federated provider rather
// than email/password. Federated identities skip email verification.
func (c *Claims) IsOAuth() bool {
	return c.Provider != "" && c.Provider != "email"
}

// ExtractClaimsFromRequest extracts and parses JWT claims from API Gateway request
func ExtractClaimsFromRequest(request events.APIGatewayProxyRequest) (*Claims, error) {
	// Get claims from authorizer context
	var claimsMap map[string]interface{}
	var ok bool

	// Try different possible claim locations in the authorizer context
	if authClaims, exists := request.RequestContext.Authorizer["claims"]; exists {
		claimsMap, ok = authClaims.(map[string]interface{})
	}

	// If claims not found, try direct access to authorizer (some API Gateway configurations)
	if !ok {
		claimsMap = request.RequestContext.Authorizer
		ok = (claimsMap != nil)
	}

	if !ok || claimsMap == nil {
		return nil, fmt.Errorf("claims not found in authorizer context")
	}

	// Extract the auth user id (Cognito sub)
	authUserID, ok := claimsMap["sub"].(string)
	if !ok || authUserID == "" {
		return nil, fmt.Errorf("sub not found or invalid in claims")
	}

	// Extract email
	email, ok := claimsMap["email"].(string)
	if !ok {
		return nil, fmt.Errorf("email not found or invalid in claims")
	}

	// Extract and parse company_id. JSON numbers arrive as float64, but some
	// API Gateway configurations pass claims through as strings.
	var companyID int64
	if companyIDValue, exists := claimsMap["company_id"]; exists {
		if companyIDStr, ok := companyIDValue.(string); ok {
			var err error
			companyID, err = strconv.ParseInt(companyIDStr, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse company_id string: %w", err)
			}
		} else if companyIDFloat, ok := companyIDValue.(float64); ok {
			companyID = int64(companyIDFloat)
		} else {
			return nil, fmt.Errorf("company_id has unexpected type")
		}
	} else {
		return nil, fmt.Errorf("company_id not found in claims")
	}

	// Extract the identity provider, defaulting to email/password
	provider := "email"
	if providerValue, ok := claimsMap["provider"].(string); ok && providerValue != "" {
		provider = providerValue
	}

	return &Claims{
		AuthUserID: authUserID,
		Email:      email,
		CompanyID:  companyID,
		Provider:   provider,
	}, nil
}

// ExtractUserClaimsFromRequest extracts identity claims for routes that do
// not require a company membership yet (registration, /account/me). Only the
// sub and email are required; company_id may be absent before onboarding.
func ExtractUserClaimsFromRequest(request events.APIGatewayProxyRequest) (*Claims, error) {
	claims, err := ExtractClaimsFromRequest(request)
	if err == nil {
		return claims, nil
	}

	var claimsMap map[string]interface{}
	var ok bool
	if authClaims, exists := request.RequestContext.Authorizer["claims"]; exists {
		claimsMap, ok = authClaims.(map[string]interface{})
	}
	if !ok {
		claimsMap = request.RequestContext.Authorizer
	}
	if claimsMap == nil {
		return nil, fmt.Errorf("claims not found in authorizer context")
	}

	authUserID, ok := claimsMap["sub"].(string)
	if !ok || authUserID == "" {
		return nil, fmt.Errorf("sub not found or invalid in claims")
	}
	email, _ := claimsMap["email"].(string)

	provider := "email"
	if providerValue, ok := claimsMap["provider"].(string); ok && providerValue != "" {
		provider = providerValue
	}

	return &Claims{
		AuthUserID: authUserID,
		Email:      email,
		Provider:   provider,
	}, nil
}

// ToJSON converts claims to JSON string for logging
func (c *Claims) ToJSON() string {
	data, _ := json.Marshal(c)
	return string(data)
}
