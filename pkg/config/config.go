package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	CORS          CORSConfig
	Screening     ScreeningConfig
	Login         LoginConfig
	Verification  VerificationConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Sendgrid      SendgridConfig
	PayPal        PayPalConfig
	Donations     DonationsConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.Screening.Key(); err != nil {
		return nil, err
	}
	if _, err := cfg.Donations.Goal(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PAWFUND_APP_ENV" required:"true"`
	Port         string `envconfig:"PAWFUND_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PAWFUND_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PAWFUND_LOG_WARN_STACK" default:"false"`
	PublicURL    string `envconfig:"PAWFUND_PUBLIC_URL" default:"http://localhost:8080"`
	FrontendURL  string `envconfig:"PAWFUND_FRONTEND_URL" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PAWFUND_DB_DSN"`
	Driver string `envconfig:"PAWFUND_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"PAWFUND_DB_HOST"`
	Port     int    `envconfig:"PAWFUND_DB_PORT" default:"5432"`
	User     string `envconfig:"PAWFUND_DB_USER"`
	Password string `envconfig:"PAWFUND_DB_PASSWORD"`
	Name     string `envconfig:"PAWFUND_DB_NAME"`
	SSLMode  string `envconfig:"PAWFUND_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PAWFUND_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PAWFUND_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PAWFUND_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PAWFUND_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PAWFUND_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PAWFUND_REDIS_ADDR"`
	Password     string        `envconfig:"PAWFUND_REDIS_PASSWORD"`
	DB           int           `envconfig:"PAWFUND_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PAWFUND_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PAWFUND_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PAWFUND_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PAWFUND_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PAWFUND_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"PAWFUND_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"PAWFUND_JWT_ISSUER" default:"pawfund"`
	ExpirationMinutes      int    `envconfig:"PAWFUND_JWT_EXPIRATION_MINUTES" default:"1440"`
	RefreshTokenTTLMinutes int    `envconfig:"PAWFUND_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	BcryptCost int `envconfig:"PAWFUND_BCRYPT_COST" default:"10"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"PAWFUND_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"PAWFUND_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"PAWFUND_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"PAWFUND_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"PAWFUND_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"PAWFUND_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PAWFUND_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PAWFUND_AUTO_MIGRATE" default:"false"`
	// EmailEnabled turns outbound email off entirely; messages are only logged.
	EmailEnabled bool `envconfig:"PAWFUND_EMAIL_ENABLED" default:"true"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"PAWFUND_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// ScreeningConfig holds the adoption readiness quiz settings.
type ScreeningConfig struct {
	AnswerKey []string `envconfig:"PAWFUND_SCREENING_ANSWER_KEY" default:"true,false,true,true,false,true,false,true,false,true"`
	PassScore int      `envconfig:"PAWFUND_SCREENING_PASS_SCORE" default:"70"`
}

// Key parses the configured answer key. It must hold exactly ScreeningQuestionCount booleans.
func (s ScreeningConfig) Key() ([ScreeningQuestionCount]bool, error) {
	var key [ScreeningQuestionCount]bool
	if len(s.AnswerKey) != ScreeningQuestionCount {
		return key, fmt.Errorf("%s must contain %d answers, got %d", EnvScreeningAnswerKey, ScreeningQuestionCount, len(s.AnswerKey))
	}
	for i, raw := range s.AnswerKey {
		v, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return key, fmt.Errorf("%s[%d]: %w", EnvScreeningAnswerKey, i, err)
		}
		key[i] = v
	}
	return key, nil
}

type LoginConfig struct {
	// InactivityLimit blocks non-admin accounts whose last login is older than this.
	InactivityLimit time.Duration `envconfig:"PAWFUND_LOGIN_INACTIVITY_LIMIT" default:"4320h"`
}

type VerificationConfig struct {
	TokenTTL time.Duration `envconfig:"PAWFUND_VERIFICATION_TOKEN_TTL" default:"24h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PAWFUND_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"PAWFUND_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"PAWFUND_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName    string `envconfig:"PAWFUND_GCS_BUCKET_NAME"`
	PublicBaseURL string `envconfig:"PAWFUND_GCS_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
	MaxUploadMB   int    `envconfig:"PAWFUND_MAX_UPLOAD_MB" default:"10"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"PAWFUND_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"PAWFUND_SENDGRID_FROM_EMAIL" default:"no-reply@pawfund.org"`
	FromName    string `envconfig:"PAWFUND_SENDGRID_FROM_NAME" default:"PawFund"`
}

type PayPalConfig struct {
	ClientID     string `envconfig:"PAWFUND_PAYPAL_CLIENT_ID"`
	ClientSecret string `envconfig:"PAWFUND_PAYPAL_CLIENT_SECRET"`
	Mode         string `envconfig:"PAWFUND_PAYPAL_MODE" default:"sandbox"`
	Currency     string `envconfig:"PAWFUND_PAYPAL_CURRENCY" default:"USD"`
}

// BaseURL returns the PayPal REST endpoint for the configured mode.
func (p PayPalConfig) BaseURL() string {
	if strings.EqualFold(strings.TrimSpace(p.Mode), "live") {
		return PayPalLiveURL
	}
	return PayPalSandboxURL
}

type DonationsConfig struct {
	MonthlyGoal string `envconfig:"PAWFUND_DONATIONS_MONTHLY_GOAL" default:"50000000"`
}

// Goal parses the monthly donation goal.
func (d DonationsConfig) Goal() (decimal.Decimal, error) {
	goal, err := decimal.NewFromString(strings.TrimSpace(d.MonthlyGoal))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", EnvDonationsMonthlyGoal, err)
	}
	return goal, nil
}

type CronConfig struct {
	Schedule              string        `envconfig:"PAWFUND_CRON_SCHEDULE" default:"0 * * * *"`
	GuestCartRetention    time.Duration `envconfig:"PAWFUND_CRON_GUEST_CART_RETENTION" default:"720h"`
	NotificationRetention time.Duration `envconfig:"PAWFUND_CRON_NOTIFICATION_RETENTION" default:"720h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dbPartEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
