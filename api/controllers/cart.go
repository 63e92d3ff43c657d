package controllers

import (
	"context"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/api/middleware"
	"github.com/pawfund/pawfund-backend/api/responses"
	"github.com/pawfund/pawfund-backend/api/validators"
	"github.com/pawfund/pawfund-backend/internal/cart"
	pkgerrors "github.com/pawfund/pawfund-backend/pkg/errors"
	"github.com/pawfund/pawfund-backend/pkg/logger"
)

type cartParams struct {
	Token string `json:"token"`
	PetID string `json:"petId"`
}

// readCartParams collects token and petId from the query string, a form body
// or a JSON body, in that order of precedence.
func readCartParams(r *http.Request) (cartParams, error) {
	q := r.URL.Query()
	params := cartParams{Token: q.Get("token"), PetID: q.Get("petId")}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var body cartParams
		if err := validators.DecodeOptionalJSONBody(r, &body); err != nil {
			return params, err
		}
		if params.Token == "" {
			params.Token = body.Token
		}
		if params.PetID == "" {
			params.PetID = body.PetID
		}
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if params.Token == "" {
			params.Token = r.FormValue("token")
		}
		if params.PetID == "" {
			params.PetID = r.FormValue("petId")
		}
	}
	if params.Token == "" {
		params.Token = r.Header.Get(middleware.GuestTokenHeader)
	}
	params.Token = strings.TrimSpace(params.Token)
	params.PetID = strings.TrimSpace(params.PetID)
	return params, nil
}

func cartIdentity(r *http.Request, token string) cart.Identity {
	identity := cart.Identity{GuestToken: token}
	if actor, ok := middleware.ActorFromContext(r.Context()); ok {
		identity.UserID = actor.UserID
	}
	return identity
}

func writeCartView(w http.ResponseWriter, view *cart.View) {
	if view.Token != "" {
		w.Header().Set(middleware.GuestTokenHeader, view.Token)
	}
	responses.WriteSuccess(w, view)
}

// AddToCart adds a pet to the caller's cart. Anonymous callers without a
// token get a new guest cart whose token is echoed back.
func AddToCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return mutateCart(svc, cartAdd, logg)
}

func RemoveFromCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return mutateCart(svc, cartRemove, logg)
}

type cartOp int

const (
	cartAdd cartOp = iota
	cartRemove
)

func (op cartOp) apply(ctx context.Context, svc cart.Service, identity cart.Identity, petID uuid.UUID) (*cart.View, error) {
	if op == cartRemove {
		return svc.RemoveFromCart(ctx, identity, petID)
	}
	return svc.AddToCart(ctx, identity, petID)
}

func mutateCart(svc cart.Service, op cartOp, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := readCartParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		petID, err := uuid.Parse(params.PetID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "petId must be a uuid").
				WithDetails(map[string]any{"field": "petId"}))
			return
		}
		view, err := op.apply(r.Context(), svc, cartIdentity(r, params.Token), petID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCartView(w, view)
	}
}

func GetCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := readCartParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		identity := cartIdentity(r, params.Token)
		if identity.UserID == uuid.Nil && identity.GuestToken == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "token is required"))
			return
		}
		view, err := svc.GetCart(r.Context(), identity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCartView(w, view)
	}
}

type userCartResponse struct {
	UserID uuid.UUID   `json:"userId"`
	PetIDs []uuid.UUID `json:"pets"`
}

func UserCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		ids, err := svc.UserCartPetIDs(r.Context(), actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, userCartResponse{UserID: actor.UserID, PetIDs: ids})
	}
}

func MergeCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		params, err := readCartParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if params.Token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "token is required"))
			return
		}
		merged, err := svc.MergeGuestIntoUser(r.Context(), params.Token, actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"merged": merged})
	}
}
