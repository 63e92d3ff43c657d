package config

const (
	EnvPrefix = "PAWFUND"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv                 = "PAWFUND_APP_ENV"
	EnvPort                   = "PAWFUND_APP_PORT"
	EnvDBDSN                  = "PAWFUND_DB_DSN"
	EnvDBHost                 = "PAWFUND_DB_HOST"
	EnvDBUser                 = "PAWFUND_DB_USER"
	EnvDBName                 = "PAWFUND_DB_NAME"
	EnvRedisURL               = "PAWFUND_REDIS_URL"
	EnvJWTSecret              = "PAWFUND_JWT_SECRET"
	EnvJWTIssuer              = "PAWFUND_JWT_ISSUER"
	EnvJWTExpMins             = "PAWFUND_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "PAWFUND_REFRESH_TOKEN_TTL_MINUTES"
	EnvScreeningAnswerKey     = "PAWFUND_SCREENING_ANSWER_KEY"
	EnvScreeningPassScore     = "PAWFUND_SCREENING_PASS_SCORE"
	EnvDonationsMonthlyGoal   = "PAWFUND_DONATIONS_MONTHLY_GOAL"
	EnvPayPalMode             = "PAWFUND_PAYPAL_MODE"

	ScreeningQuestionCount = 10

	PayPalSandboxURL = "https://api-m.sandbox.paypal.com"
	PayPalLiveURL    = "https://api-m.paypal.com"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
