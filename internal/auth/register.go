package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pawfund/pawfund-backend/internal/users"
	"github.com/pawfund/pawfund-backend/pkg/config"
	"github.com/pawfund/pawfund-backend/pkg/db"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	"github.com/pawfund/pawfund-backend/pkg/enums"
	pkgerrors "github.com/pawfund/pawfund-backend/pkg/errors"
	"github.com/pawfund/pawfund-backend/pkg/security"
	"gorm.io/gorm"
)

const (
	verificationTokenBytes = 32
	verificationSubject    = "Xác thực tài khoản PawFund"
	verifyPath             = "/api/auth/verify"
)

// RegisterService handles sign-up and email verification.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
	Verify(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
}

type mailer interface {
	SendEmail(ctx context.Context, to, subject, body string)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB                 *db.Client
	Mailer             mailer
	PasswordConfig     config.PasswordConfig
	VerificationConfig config.VerificationConfig
	PublicURL          string
	Now                func() time.Time
}

type registerService struct {
	db          *db.Client
	mailer      mailer
	passwordCfg config.PasswordConfig
	tokenTTL    time.Duration
	publicURL   string
	now         func() time.Time
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Mailer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "mailer required")
	}
	ttl := params.VerificationConfig.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &registerService{
		db:          params.DB,
		mailer:      params.Mailer,
		passwordCfg: params.PasswordConfig,
		tokenTTL:    ttl,
		publicURL:   strings.TrimRight(params.PublicURL, "/"),
		now:         now,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	if email == "" || username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and email are required")
	}

	role := enums.RoleAdopter
	if strings.TrimSpace(req.Role) != "" {
		if requested, err := enums.ParseRole(req.Role); err == nil && !requested.SelfRegistrable() {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "role %s cannot be self-registered", requested)
		}
		role = enums.RegistrationRole(req.Role)
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		if errors.Is(err, security.ErrEmptyPassword) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var (
		created *models.User
		token   string
	)
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		tokenRepo := NewVerificationRepository(tx)

		emailTaken, usernameTaken, err := userRepo.ExistsByEmailOrUsername(ctx, email, username)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing user")
		}
		if usernameTaken {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already exists")
		}
		if emailTaken {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already exists")
		}

		created, err = userRepo.Create(ctx, users.CreateUserDTO{
			Username:     username,
			Email:        email,
			PasswordHash: passwordHash,
			FullName:     strings.TrimSpace(req.FullName),
			Phone:        req.Phone,
			Address:      req.Address,
			Role:         role,
			Enabled:      false,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "username or email already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		token, err = s.issueToken(ctx, tokenRepo, created)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.sendVerification(ctx, created, token)
	return users.FromModel(created), nil
}

func (s *registerService) Verify(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "verification token is required")
	}
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		tokenRepo := NewVerificationRepository(tx)
		vt, err := tokenRepo.FindByToken(ctx, token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid or expired verification token")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup verification token")
		}
		if vt.Expired(s.now()) {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid or expired verification token")
		}
		if err := users.NewRepository(tx).Enable(ctx, vt.UserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "enable user")
		}
		if err := tokenRepo.Delete(ctx, vt.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete verification token")
		}
		return nil
	})
}

func (s *registerService) ResendVerification(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	var (
		user  *models.User
		token string
	)
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		user, err = users.NewRepository(tx).FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
		}
		if user.Enabled {
			return pkgerrors.New(pkgerrors.CodeValidation, "account already verified")
		}
		tokenRepo := NewVerificationRepository(tx)
		if err := tokenRepo.DeleteForUser(ctx, user.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "drop previous tokens")
		}
		token, err = s.issueToken(ctx, tokenRepo, user)
		return err
	})
	if err != nil {
		return err
	}

	s.sendVerification(ctx, user, token)
	return nil
}

func (s *registerService) issueToken(ctx context.Context, repo *VerificationRepository, user *models.User) (string, error) {
	token, err := security.GenerateToken(verificationTokenBytes)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate verification token")
	}
	if err := repo.Create(ctx, &models.VerificationToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: s.now().Add(s.tokenTTL),
	}); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store verification token")
	}
	return token, nil
}

func (s *registerService) sendVerification(ctx context.Context, user *models.User, token string) {
	link := fmt.Sprintf("%s%s?token=%s", s.publicURL, verifyPath, url.QueryEscape(token))
	body := "Vui lòng bấm vào link sau để xác thực tài khoản: " + link
	s.mailer.SendEmail(ctx, user.Email, verificationSubject, body)
}
