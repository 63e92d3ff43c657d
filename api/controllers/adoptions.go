package controllers

import (
	"net/http"

	"github.com/pawfund/pawfund-backend/api/responses"
	"github.com/pawfund/pawfund-backend/api/validators"
	"github.com/pawfund/pawfund-backend/internal/adoptions"
	"github.com/pawfund/pawfund-backend/pkg/enums"
	pkgerrors "github.com/pawfund/pawfund-backend/pkg/errors"
	"github.com/pawfund/pawfund-backend/pkg/logger"
)

// ApplyForAdoption submits a single-pet application for the caller.
func ApplyForAdoption(svc adoptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		var body adoptions.ApplyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		adoption, err := svc.Apply(r.Context(), actor.UserID, body.PetID, validators.SanitizeString(body.Message, 2000))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, adoptions.FromModel(adoption))
	}
}

// ApplyFromCart turns every pet in the caller's cart into an application.
func ApplyFromCart(svc adoptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		var body adoptions.CartApplyRequest
		if err := validators.DecodeOptionalJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ApplyFromCart(r.Context(), actor.UserID, validators.SanitizeString(body.Message, 2000))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, adoptions.FromModels(list))
	}
}

// ListAdoptions filters by ?userId= and ?petId=. Callers that cannot review
// every application only ever see their own.
func ListAdoptions(svc adoptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		userID, err := validators.ParseOptionalQueryUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		petID, err := validators.ParseOptionalQueryUUID(r, "petId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !actor.Role.Can(enums.CapabilityListAllAdoptions) {
			own := actor.UserID
			userID = &own
		}

		list, err := svc.List(r.Context(), adoptions.Filter{UserID: userID, PetID: petID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, adoptions.FromModels(list))
	}
}

func ListAllAdoptions(svc adoptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, adoptions.FromModels(list))
	}
}

func AdoptionStats(svc adoptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// GetAdoption returns one application. Callers that cannot review every
// application get 404 for applications they do not own.
func GetAdoption(svc adoptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParsePathUUID(r, "adoptionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		adoption, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !actor.Role.Can(enums.CapabilityListAllAdoptions) && adoption.UserID != actor.UserID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "adoption not found"))
			return
		}
		responses.WriteSuccess(w, adoptions.FromModel(adoption))
	}
}

// UpdateAdoption replaces the reviewable fields and always emails the
// applicant the resulting status.
func UpdateAdoption(svc adoptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(r, "adoptionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body adoptions.UpdateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		adoption, err := svc.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, adoptions.FromModel(adoption))
	}
}

func SetAdoptionStatus(svc adoptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(r, "adoptionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body adoptions.StatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		adoption, err := svc.SetStatus(r.Context(), id, body.Status, body.AdminNotes, body.ShelterNotes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, adoptions.FromModel(adoption))
	}
}

func DeleteAdoption(svc adoptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(r, "adoptionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
