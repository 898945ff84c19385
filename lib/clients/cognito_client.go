package clients

import (
	"context"

	"ikaris/lib/constants"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
)

func NewCognitoIdentityProviderClient(isLocal bool) *cognitoidentityprovider.Client {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(constants.AWS_REGION),
	)
	if err != nil {
		panic(err)
	}

	if isLocal {
		cfg.BaseEndpoint = aws.String(constants.LOCALSTACK_ENDPOINT)
	}

	return cognitoidentityprovider.NewFromConfig(cfg)
}
