package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/internal/users"
	pkgAuth "github.com/pawfund/pawfund-backend/pkg/auth"
	"github.com/pawfund/pawfund-backend/pkg/auth/session"
	"github.com/pawfund/pawfund-backend/pkg/config"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	"github.com/pawfund/pawfund-backend/pkg/enums"
	pkgerrors "github.com/pawfund/pawfund-backend/pkg/errors"
	"github.com/pawfund/pawfund-backend/pkg/logger"
	"github.com/pawfund/pawfund-backend/pkg/security"
	"gorm.io/gorm"
)

const (
	invalidCredentialsMessage = "invalid username or password"
	notVerifiedMessage        = "account is not verified, check your email for the verification link"
	inactiveMessage           = "account locked after a long period of inactivity"
)

// Service defines the login and session behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, accessID, refreshToken string) (*TokenPair, error)
}

type service struct {
	users    userRepository
	session  sessionManager
	carts    guestCartMerger
	jwtCfg   config.JWTConfig
	loginCfg config.LoginConfig
	logg     *logger.Logger
	now      func() time.Time
}

type userRepository interface {
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string, userID uuid.UUID) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (session.Session, error)
}

type guestCartMerger interface {
	MergeGuestIntoUser(ctx context.Context, token string, userID uuid.UUID) (bool, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	CartMerger     guestCartMerger
	JWTConfig      config.JWTConfig
	LoginConfig    config.LoginConfig
	Logger         *logger.Logger
	Now            func() time.Time
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		users:    params.UserRepo,
		session:  params.SessionManager,
		carts:    params.CartMerger,
		jwtCfg:   params.JWTConfig,
		loginCfg: params.LoginConfig,
		logg:     params.Logger,
		now:      now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Identifier(), req.Password)
	if err != nil {
		return nil, err
	}
	if !user.Enabled {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, notVerifiedMessage)
	}

	now := s.now()
	if s.inactive(user, now) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, inactiveMessage)
	}
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now

	pair, err := s.issue(ctx, user, now)
	if err != nil {
		return nil, err
	}

	resp := &LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         users.FromModel(user),
	}
	resp.CartMerged = s.mergeGuestCart(ctx, req.GuestToken, user.ID)
	return resp, nil
}

// Refresh rotates the refresh token bound to accessID and mints a new access
// token from the current user record.
func (s *service) Refresh(ctx context.Context, accessID, refreshToken string) (*TokenPair, error) {
	next, err := s.session.Rotate(ctx, accessID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}

	user, err := s.users.FindByID(ctx, next.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if !user.Enabled {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, notVerifiedMessage)
	}

	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		JTI:    next.AccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: next.RefreshToken}, nil
}

func (s *service) issue(ctx context.Context, user *models.User, now time.Time) (*TokenPair, error) {
	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *service) authenticate(ctx context.Context, login, password string) (*models.User, error) {
	if login == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

// inactive applies the dormant-account lock. Admins are exempt and a user
// who never logged in is never considered dormant.
func (s *service) inactive(user *models.User, now time.Time) bool {
	if user.Role == enums.RoleAdmin || user.LastLoginAt == nil || s.loginCfg.InactivityLimit <= 0 {
		return false
	}
	return user.LastLoginAt.Before(now.Add(-s.loginCfg.InactivityLimit))
}

func (s *service) mergeGuestCart(ctx context.Context, token string, userID uuid.UUID) bool {
	if token == "" || s.carts == nil {
		return false
	}
	merged, err := s.carts.MergeGuestIntoUser(ctx, token, userID)
	if err != nil {
		if s.logg != nil {
			logCtx := s.logg.WithField(ctx, "guest_token", token)
			s.logg.Warn(s.logg.WithError(logCtx, err), "auth.guest_cart_merge_failed")
		}
		return false
	}
	return merged
}
