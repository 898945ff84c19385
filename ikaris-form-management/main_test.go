package main

import (
	"context"
	"net/http"
	"testing"

	"ikaris/lib/data"
	"ikaris/lib/models"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

// mockMembershipRepository returns a fixed membership row (or none) for every
// lookup; the other interface methods are unused by this lambda.
type mockMembershipRepository struct {
	membership *models.Membership
	err        error
}

var _ data.MembershipRepository = (*mockMembershipRepository)(nil)

func (m *mockMembershipRepository) GetMembership(ctx context.Context, companyID int64, authUserID string) (*models.Membership, error) {
	return m.membership, m.err
}

func (m *mockMembershipRepository) GetActiveMembershipByUser(ctx context.Context, authUserID string) (*models.Membership, error) {
	return m.membership, m.err
}

func (m *mockMembershipRepository) HasAnyMembership(ctx context.Context, authUserID string) (bool, error) {
	return m.membership != nil, m.err
}

func (m *mockMembershipRepository) CreateMembership(ctx context.Context, mem *models.Membership) (*models.Membership, error) {
	return mem, m.err
}

func (m *mockMembershipRepository) GetActiveMembersByCompany(ctx context.Context, companyID int64) ([]models.Membership, error) {
	return nil, m.err
}

func (m *mockMembershipRepository) UpdateProfile(ctx context.Context, membershipID int64, phone, avatarURL *string, stampPhone bool) (*models.Membership, error) {
	return m.membership, m.err
}

func (m *mockMembershipRepository) MarkWelcomeSent(ctx context.Context, membershipID int64) error {
	return m.err
}

func formRequest(method, resource string, pathParams map[string]string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod:     method,
		Resource:       resource,
		Path:           resource,
		PathParameters: pathParams,
		RequestContext: events.APIGatewayProxyRequestContext{
			Authorizer: map[string]interface{}{
				"claims": map[string]interface{}{
					"sub":        "auth-user-1",
					"email":      "maria@example.com",
					"company_id": "7",
				},
			},
		},
	}
}

func setupHandlerTest(membership *models.Membership) {
	logger = logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	membershipRepository = &mockMembershipRepository{membership: membership}
}

func Test_Handler_InactiveMembershipRejected(t *testing.T) {
	//Arrange
	// Role must not matter: an inactive row grants nothing even for ARCHON
	setupHandlerTest(&models.Membership{
		ID:         3,
		CompanyID:  7,
		AuthUserID: "auth-user-1",
		Username:   "maria",
		Role:       "ARCHON",
		Active:     false,
	})

	requests := []events.APIGatewayProxyRequest{
		formRequest(http.MethodGet, "/forms", nil),
		formRequest(http.MethodPost, "/forms", nil),
		formRequest(http.MethodGet, "/forms/{formId}", map[string]string{"formId": "42"}),
		formRequest(http.MethodPut, "/forms/{formId}", map[string]string{"formId": "42"}),
		formRequest(http.MethodPost, "/forms/{formId}/answers", map[string]string{"formId": "42"}),
		formRequest(http.MethodGet, "/forms/{formId}/answers", map[string]string{"formId": "42"}),
	}

	for _, request := range requests {
		//Act
		response, err := Handler(context.Background(), request)

		//Assert
		assert.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, response.StatusCode, "%s %s", request.HTTPMethod, request.Resource)
		assert.JSONEq(t, `{"error":"inactive_user"}`, response.Body)
	}
}

func Test_Handler_MissingMembershipRejected(t *testing.T) {
	//Arrange
	setupHandlerTest(nil)

	//Act
	response, err := Handler(context.Background(), formRequest(http.MethodGet, "/forms", nil))

	//Assert
	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, response.StatusCode)
	assert.JSONEq(t, `{"error":"inactive_user"}`, response.Body)
}

func Test_Handler_MissingClaimsRejected(t *testing.T) {
	//Arrange
	setupHandlerTest(nil)
	request := events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodGet,
		Resource:   "/forms",
	}

	//Act
	response, err := Handler(context.Background(), request)

	//Assert
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
}
