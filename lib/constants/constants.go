package constants

const (
	SSM_PARAMETER_PATH = "/ikaris"

	ALLOWED_ORIGINS       = "/ikaris/ALLOWED_ORIGINS"
	DATABASE_RDS_ENDPOINT = "/ikaris/DATABASE_RDS_ENDPOINT"
	DATABASE_PORT         = "/ikaris/DATABASE_PORT"
	DATABASE_NAME         = "/ikaris/DATABASE_NAME"
	DATABASE_USERNAME     = "/ikaris/DATABASE_USERNAME"
	DATABASE_PASSWORD     = "/ikaris/DATABASE_PASSWORD"
	SSL_MODE              = "/ikaris/SSL_MODE"
	AVATAR_BUCKET         = "/ikaris/AVATAR_BUCKET"
	USER_POOL_ID          = "/ikaris/USER_POOL_ID"
	SMTP_HOST             = "/ikaris/SMTP_HOST"
	SMTP_PORT             = "/ikaris/SMTP_PORT"
	SMTP_USER             = "/ikaris/SMTP_USER"
	SMTP_PASS             = "/ikaris/SMTP_PASS"
	SMTP_FROM             = "/ikaris/SMTP_FROM"
	DRIVER_NAME           = "postgres"

	AWS_REGION          = "us-east-2"
	LOCALSTACK_ENDPOINT = "http://docker.for.mac.host.internal:4566"
)
