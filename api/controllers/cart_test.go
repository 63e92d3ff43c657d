package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pawfund/pawfund-backend/api/middleware"
	"github.com/pawfund/pawfund-backend/internal/cart"
	"github.com/pawfund/pawfund-backend/internal/pets"
	"github.com/pawfund/pawfund-backend/pkg/enums"
)

type recordingCart struct {
	cart.Service
	identity cart.Identity
	petID    uuid.UUID
	removed  uuid.UUID
}

func (c *recordingCart) RemoveFromCart(_ context.Context, identity cart.Identity, petID uuid.UUID) (*cart.View, error) {
	c.identity, c.removed = identity, petID
	return &cart.View{Token: identity.GuestToken}, nil
}

func (c *recordingCart) AddToCart(_ context.Context, identity cart.Identity, petID uuid.UUID) (*cart.View, error) {
	c.identity, c.petID = identity, petID
	token := identity.GuestToken
	if identity.UserID == uuid.Nil && token == "" {
		token = "fresh-token"
	}
	if identity.UserID != uuid.Nil {
		token = ""
	}
	return &cart.View{Token: token, Pets: []pets.PetDTO{{ID: petID}}}, nil
}

func TestAddToCartAcceptsQueryParams(t *testing.T) {
	svc := &recordingCart{}
	petID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/guest-cart/add?token=abc&petId="+petID.String(), nil)
	resp := httptest.NewRecorder()

	AddToCart(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "abc", svc.identity.GuestToken)
	require.Equal(t, petID, svc.petID)
	require.Equal(t, "abc", resp.Header().Get(middleware.GuestTokenHeader))
}

func TestAddToCartAcceptsFormAndIssuesToken(t *testing.T) {
	svc := &recordingCart{}
	petID := uuid.New()
	form := url.Values{"petId": {petID.String()}}
	req := httptest.NewRequest(http.MethodPost, "/api/guest-cart/add", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := httptest.NewRecorder()

	AddToCart(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Empty(t, svc.identity.GuestToken)
	require.Equal(t, "fresh-token", resp.Header().Get(middleware.GuestTokenHeader))

	var body struct {
		Data cart.View `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "fresh-token", body.Data.Token)
}

func TestAddToCartUsesAuthenticatedUser(t *testing.T) {
	svc := &recordingCart{}
	userID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/guest-cart/add", strings.NewReader(`{"petId":"`+uuid.NewString()+`","token":"ignored-for-users"}`))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithActor(req.Context(), middleware.Actor{UserID: userID, Role: enums.RoleAdopter}))
	resp := httptest.NewRecorder()

	AddToCart(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, userID, svc.identity.UserID)
	require.Empty(t, resp.Header().Get(middleware.GuestTokenHeader))
}

func TestAddToCartRejectsBadPetID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/guest-cart/add?petId=nope", nil)
	resp := httptest.NewRecorder()

	AddToCart(&recordingCart{}, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCartHandlersBuildWithoutService(t *testing.T) {
	require.NotPanics(t, func() {
		AddToCart(nil, nil)
		RemoveFromCart(nil, nil)
	})
}

func TestRemoveFromCartCallsRemove(t *testing.T) {
	svc := &recordingCart{}
	petID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/guest-cart/remove?token=abc&petId="+petID.String(), nil)
	resp := httptest.NewRecorder()

	RemoveFromCart(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, petID, svc.removed)
	require.Equal(t, uuid.Nil, svc.petID)
}
