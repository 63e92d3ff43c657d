package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/pkg/auth"
	"github.com/pawfund/pawfund-backend/pkg/auth/session"
	"github.com/pawfund/pawfund-backend/pkg/config"
	"github.com/pawfund/pawfund-backend/pkg/enums"
	"github.com/stretchr/testify/require"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "pawfund", ExpirationMinutes: 60}

type stubSessionVerifier struct {
	ok  bool
	err error
}

func (s stubSessionVerifier) HasSession(context.Context, string) (bool, error) {
	return s.ok, s.err
}

func mintTestToken(t *testing.T, userID uuid.UUID, role enums.Role) string {
	t.Helper()
	token, err := auth.MintAccessToken(testJWT, time.Now(), auth.AccessTokenPayload{
		UserID: userID,
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	require.NoError(t, err)
	return token
}

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func okHandler(captured *Actor, seen *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured, *seen = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingAndInvalidTokens(t *testing.T) {
	var actor Actor
	var seen bool
	h := Auth(testJWT, stubSessionVerifier{ok: true}, nil)(okHandler(&actor, &seen))

	require.Equal(t, http.StatusUnauthorized, serve(h, "").Code)
	require.Equal(t, http.StatusUnauthorized, serve(h, "invalid").Code)
}

func TestAuthSeedsActor(t *testing.T) {
	var actor Actor
	var seen bool
	userID := uuid.New()
	h := Auth(testJWT, stubSessionVerifier{ok: true}, nil)(okHandler(&actor, &seen))

	rec := serve(h, mintTestToken(t, userID, enums.RoleShelter))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, seen)
	require.Equal(t, userID, actor.UserID)
	require.Equal(t, enums.RoleShelter, actor.Role)
	require.NotEmpty(t, actor.AccessID)
}

func TestAuthRequiresLiveSession(t *testing.T) {
	var actor Actor
	var seen bool
	token := mintTestToken(t, uuid.New(), enums.RoleAdopter)

	revoked := Auth(testJWT, stubSessionVerifier{ok: false}, nil)(okHandler(&actor, &seen))
	require.Equal(t, http.StatusUnauthorized, serve(revoked, token).Code)

	broken := Auth(testJWT, stubSessionVerifier{err: errors.New("redis down")}, nil)(okHandler(&actor, &seen))
	require.Equal(t, http.StatusServiceUnavailable, serve(broken, token).Code)
}

func TestOptionalAuthAllowsGuests(t *testing.T) {
	var actor Actor
	var seen bool
	h := OptionalAuth(testJWT, stubSessionVerifier{ok: true}, nil)(okHandler(&actor, &seen))

	require.Equal(t, http.StatusOK, serve(h, "").Code)
	require.False(t, seen)

	require.Equal(t, http.StatusOK, serve(h, mintTestToken(t, uuid.New(), enums.RoleAdopter)).Code)
	require.True(t, seen)

	require.Equal(t, http.StatusUnauthorized, serve(h, "garbage").Code)
}

func TestRequireCapability(t *testing.T) {
	var actor Actor
	var seen bool
	chain := func(role enums.Role) *httptest.ResponseRecorder {
		h := Auth(testJWT, stubSessionVerifier{ok: true}, nil)(
			RequireCapability(enums.CapabilityManagePets, nil)(okHandler(&actor, &seen)))
		return serve(h, mintTestToken(t, uuid.New(), role))
	}

	require.Equal(t, http.StatusOK, chain(enums.RoleShelter).Code)
	require.Equal(t, http.StatusOK, chain(enums.RoleAdmin).Code)
	require.Equal(t, http.StatusForbidden, chain(enums.RoleAdopter).Code)

	unauth := RequireCapability(enums.CapabilityManagePets, nil)(okHandler(&actor, &seen))
	require.Equal(t, http.StatusUnauthorized, serve(unauth, "").Code)
}
