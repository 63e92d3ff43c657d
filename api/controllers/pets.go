package controllers

import (
	"net/http"
	"strings"

	"github.com/pawfund/pawfund-backend/api/responses"
	"github.com/pawfund/pawfund-backend/api/validators"
	"github.com/pawfund/pawfund-backend/internal/pets"
	"github.com/pawfund/pawfund-backend/pkg/logger"
)

// ListPets serves the public catalog with optional filters.
func ListPets(svc pets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter, err := parsePetFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), filter, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func parsePetFilter(r *http.Request) (pets.Filter, error) {
	q := r.URL.Query()
	filter := pets.Filter{
		Status:   strings.TrimSpace(q.Get("status")),
		Breed:    strings.TrimSpace(q.Get("breed")),
		Search:   strings.TrimSpace(q.Get("search")),
		Location: strings.TrimSpace(q.Get("location")),
	}
	var err error
	if filter.Age, err = validators.ParseOptionalQueryInt(r, "age"); err != nil {
		return filter, err
	}
	if filter.AgeMin, err = validators.ParseOptionalQueryInt(r, "ageMin"); err != nil {
		return filter, err
	}
	if filter.AgeMax, err = validators.ParseOptionalQueryInt(r, "ageMax"); err != nil {
		return filter, err
	}
	return filter, nil
}

func GetPet(svc pets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(r, "petId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pet, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pet)
	}
}

// CreatePet accepts a JSON body or a multipart form with a "pet" JSON part
// and "images" files.
func CreatePet(svc pets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		var input pets.PetInput
		files, done, err := decodeWithFiles(r, &input, "pet", "images")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer done()

		pet, err := svc.Create(r.Context(), actor.UserID, actor.Role, input, files)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, pet)
	}
}

func UpdatePet(svc pets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParsePathUUID(r, "petId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var input pets.PetInput
		files, done, err := decodeWithFiles(r, &input, "pet", "images")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer done()

		pet, err := svc.Update(r.Context(), actor.UserID, actor.Role, id, input, files)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pet)
	}
}

func DeletePet(svc pets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParsePathUUID(r, "petId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), actor.UserID, actor.Role, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
