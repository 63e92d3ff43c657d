package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pkgAuth "github.com/pawfund/pawfund-backend/pkg/auth"
	"github.com/pawfund/pawfund-backend/pkg/auth/session"
	"github.com/pawfund/pawfund-backend/pkg/config"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	"github.com/pawfund/pawfund-backend/pkg/enums"
	pkgerrors "github.com/pawfund/pawfund-backend/pkg/errors"
	"github.com/pawfund/pawfund-backend/pkg/security"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "pawfund",
	ExpirationMinutes: 30,
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestServiceLoginIssuesTokens(t *testing.T) {
	user := testUser(t, "adopter-secret", enums.RoleAdopter)
	svc, repo, sessions, _ := buildTestService(t, user)

	resp, err := svc.Login(context.Background(), LoginRequest{Username: user.Username, Password: "adopter-secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.RoleAdopter || claims.UserID != user.ID {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if resp.RefreshToken != "refresh-token" {
		t.Fatalf("expected refresh token from session manager, got %q", resp.RefreshToken)
	}
	if sessions.generated[claims.ID] != user.ID {
		t.Fatalf("session not stored under jti %s", claims.ID)
	}
	if repo.lastLogin == nil || !repo.lastLogin.Equal(fixedNow) {
		t.Fatalf("expected last login to be recorded, got %v", repo.lastLogin)
	}
	if resp.CartMerged {
		t.Fatalf("no guest token was supplied")
	}
}

func TestServiceLoginByEmail(t *testing.T) {
	user := testUser(t, "pw-123456", enums.RoleDonor)
	svc, _, _, _ := buildTestService(t, user)

	if _, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "pw-123456"}); err != nil {
		t.Fatalf("login by email: %v", err)
	}
}

func TestServiceLoginRejectsBadPassword(t *testing.T) {
	user := testUser(t, "right", enums.RoleAdopter)
	svc, _, _, _ := buildTestService(t, user)

	_, err := svc.Login(context.Background(), LoginRequest{Username: user.Username, Password: "wrong"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Username: "ghost", Password: "right"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for unknown user, got %v", err)
	}
}

func TestServiceLoginRequiresVerifiedAccount(t *testing.T) {
	user := testUser(t, "pw", enums.RoleAdopter)
	user.Enabled = false
	svc, _, _, _ := buildTestService(t, user)

	_, err := svc.Login(context.Background(), LoginRequest{Username: user.Username, Password: "pw"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestServiceLoginLocksDormantAccounts(t *testing.T) {
	stale := fixedNow.Add(-181 * 24 * time.Hour)

	user := testUser(t, "pw", enums.RoleVolunteer)
	user.LastLoginAt = &stale
	svc, _, _, _ := buildTestService(t, user)
	_, err := svc.Login(context.Background(), LoginRequest{Username: user.Username, Password: "pw"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected dormant volunteer to be locked, got %v", err)
	}

	admin := testUser(t, "pw", enums.RoleAdmin)
	admin.LastLoginAt = &stale
	svc, _, _, _ = buildTestService(t, admin)
	if _, err := svc.Login(context.Background(), LoginRequest{Username: admin.Username, Password: "pw"}); err != nil {
		t.Fatalf("admins are exempt from the inactivity lock: %v", err)
	}
}

func TestServiceLoginMergesGuestCart(t *testing.T) {
	user := testUser(t, "pw", enums.RoleAdopter)
	svc, _, _, merger := buildTestService(t, user)
	merger.merged = true

	resp, err := svc.Login(context.Background(), LoginRequest{Username: user.Username, Password: "pw", GuestToken: "guest-1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !resp.CartMerged || merger.token != "guest-1" || merger.userID != user.ID {
		t.Fatalf("expected guest cart merge, got merged=%v token=%q", resp.CartMerged, merger.token)
	}
}

func TestServiceLoginIgnoresMergeFailure(t *testing.T) {
	user := testUser(t, "pw", enums.RoleAdopter)
	svc, _, _, merger := buildTestService(t, user)
	merger.err = errors.New("db down")

	resp, err := svc.Login(context.Background(), LoginRequest{Username: user.Username, Password: "pw", GuestToken: "guest-1"})
	if err != nil {
		t.Fatalf("merge failure must not fail login: %v", err)
	}
	if resp.CartMerged {
		t.Fatalf("expected CartMerged false on failure")
	}
}

func TestServiceRefreshRotatesSession(t *testing.T) {
	user := testUser(t, "pw", enums.RoleShelter)
	svc, _, sessions, _ := buildTestService(t, user)
	sessions.rotated = session.Session{AccessID: "next-id", RefreshToken: "next-refresh", UserID: user.ID}

	pair, err := svc.Refresh(context.Background(), "old-id", "old-refresh")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, pair.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ID != "next-id" || claims.Role != enums.RoleShelter {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if pair.RefreshToken != "next-refresh" {
		t.Fatalf("unexpected refresh token %q", pair.RefreshToken)
	}

	sessions.rotateErr = session.ErrInvalidRefreshToken
	_, err = svc.Refresh(context.Background(), "old-id", "bad")
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func buildTestService(t *testing.T, user *models.User) (Service, *stubUserRepo, *stubSessionManager, *stubCartMerger) {
	t.Helper()
	repo := &stubUserRepo{user: user}
	sessions := &stubSessionManager{refreshToken: "refresh-token", generated: map[string]uuid.UUID{}}
	merger := &stubCartMerger{}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		CartMerger:     merger,
		JWTConfig:      testJWTConfig,
		LoginConfig:    config.LoginConfig{InactivityLimit: 180 * 24 * time.Hour},
		Now:            func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, repo, sessions, merger
}

func testUser(t *testing.T, password string, role enums.Role) *models.User {
	t.Helper()
	id := uuid.New()
	return &models.User{
		ID:           id,
		Username:     "user-" + id.String()[:8],
		Email:        id.String()[:8] + "@pawfund.test",
		PasswordHash: mustHashPassword(t, password),
		Role:         role,
		Enabled:      true,
	}
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{BcryptCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

type stubUserRepo struct {
	user      *models.User
	lastLogin *time.Time
}

func (s *stubUserRepo) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	if s.user != nil && (s.user.Email == login || s.user.Username == login) {
		return s.user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.lastLogin = &at
	return nil
}

type stubSessionManager struct {
	refreshToken string
	generated    map[string]uuid.UUID
	rotated      session.Session
	rotateErr    error
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string, userID uuid.UUID) (string, error) {
	s.generated[accessID] = userID
	return s.refreshToken, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (session.Session, error) {
	if s.rotateErr != nil {
		return session.Session{}, s.rotateErr
	}
	return s.rotated, nil
}

type stubCartMerger struct {
	merged bool
	err    error
	token  string
	userID uuid.UUID
}

func (s *stubCartMerger) MergeGuestIntoUser(ctx context.Context, token string, userID uuid.UUID) (bool, error) {
	s.token = token
	s.userID = userID
	return s.merged, s.err
}
