package pets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/internal/media"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	"github.com/pawfund/pawfund-backend/pkg/enums"
	pkgerrors "github.com/pawfund/pawfund-backend/pkg/errors"
	"github.com/pawfund/pawfund-backend/pkg/logger"
	"github.com/pawfund/pawfund-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Service manages the pet catalog.
type Service interface {
	List(ctx context.Context, filter Filter, page pagination.Page) (pagination.PageResult[PetDTO], error)
	Get(ctx context.Context, id uuid.UUID) (*PetDTO, error)
	Create(ctx context.Context, actorID uuid.UUID, role enums.Role, input PetInput, images []media.File) (*PetDTO, error)
	Update(ctx context.Context, actorID uuid.UUID, role enums.Role, id uuid.UUID, input PetInput, images []media.File) (*PetDTO, error)
	Delete(ctx context.Context, actorID uuid.UUID, role enums.Role, id uuid.UUID) error
}

type repository interface {
	Create(ctx context.Context, pet *models.Pet) error
	Save(ctx context.Context, pet *models.Pet) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Pet, error)
	List(ctx context.Context, filter Filter, page pagination.Page) ([]models.Pet, int64, error)
}

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type imageStore interface {
	UploadFiles(ctx context.Context, folder media.Folder, files []media.File) ([]string, error)
	DeleteByURL(ctx context.Context, url string) error
}

type service struct {
	repo   repository
	users  userLookup
	images imageStore
	logg   *logger.Logger
}

// ServiceParams bundles the catalog dependencies.
type ServiceParams struct {
	Repository repository
	Users      userLookup
	Images     imageStore
	Logger     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("pet repository is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user lookup is required")
	}
	if params.Images == nil {
		return nil, fmt.Errorf("image store is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{repo: params.Repository, users: params.Users, images: params.Images, logg: params.Logger}, nil
}

func (s *service) List(ctx context.Context, filter Filter, page pagination.Page) (pagination.PageResult[PetDTO], error) {
	if filter.AgeMin != nil && filter.AgeMax != nil && *filter.AgeMin > *filter.AgeMax {
		return pagination.PageResult[PetDTO]{}, pkgerrors.New(pkgerrors.CodeValidation, "ageMin must not exceed ageMax")
	}
	list, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return pagination.PageResult[PetDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pets")
	}
	return pagination.NewPageResult(FromModels(list), page, total), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*PetDTO, error) {
	pet, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(pet), nil
}

func (s *service) Create(ctx context.Context, actorID uuid.UUID, role enums.Role, input PetInput, images []media.File) (*PetDTO, error) {
	if !role.Can(enums.CapabilityManagePets) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only shelters and admins can add pets")
	}
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	pet := &models.Pet{Status: enums.PetStatusAvailable}
	if err := applyInput(pet, input); err != nil {
		return nil, err
	}

	switch role {
	case enums.RoleShelter:
		pet.ShelterID = &actorID
	case enums.RoleAdmin:
		if input.ShelterID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shelterId is required when an admin adds a pet")
		}
		if err := s.ensureShelter(ctx, *input.ShelterID); err != nil {
			return nil, err
		}
		pet.ShelterID = input.ShelterID
	}

	if len(images) > 0 {
		urls, err := s.images.UploadFiles(ctx, media.FolderPets, images)
		if err != nil {
			return nil, err
		}
		pet.SetImages(urls)
	}

	if err := s.repo.Create(ctx, pet); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create pet")
	}
	return s.Get(ctx, pet.ID)
}

func (s *service) Update(ctx context.Context, actorID uuid.UUID, role enums.Role, id uuid.UUID, input PetInput, images []media.File) (*PetDTO, error) {
	pet, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(pet, actorID, role); err != nil {
		return nil, err
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be blank")
	}
	if err := applyInput(pet, input); err != nil {
		return nil, err
	}

	if input.ShelterID != nil && (pet.ShelterID == nil || *input.ShelterID != *pet.ShelterID) {
		if role != enums.RoleAdmin {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can reassign a pet")
		}
		if err := s.ensureShelter(ctx, *input.ShelterID); err != nil {
			return nil, err
		}
		pet.ShelterID = input.ShelterID
	}

	if len(images) > 0 {
		urls, err := s.images.UploadFiles(ctx, media.FolderPets, images)
		if err != nil {
			return nil, err
		}
		pet.SetImages(urls)
	}

	pet.Shelter = nil
	if err := s.repo.Save(ctx, pet); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update pet")
	}
	return s.Get(ctx, pet.ID)
}

func (s *service) Delete(ctx context.Context, actorID uuid.UUID, role enums.Role, id uuid.UUID) error {
	pet, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(pet, actorID, role); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete pet")
	}
	// The row is gone; orphaned objects are logged, not surfaced.
	for _, url := range pet.Images() {
		if err := s.images.DeleteByURL(ctx, url); err != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{"pet_id": id.String(), "url": url})
			s.logg.Warn(s.logg.WithError(logCtx, err), "pet.image_delete_failed")
		}
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Pet, error) {
	pet, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pet not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pet")
	}
	return pet, nil
}

func (s *service) ensureShelter(ctx context.Context, id uuid.UUID) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "shelterId does not reference a shelter")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load shelter")
	}
	if user.Role != enums.RoleShelter {
		return pkgerrors.New(pkgerrors.CodeValidation, "shelterId does not reference a shelter")
	}
	return nil
}

// authorize lets admins manage any pet and shelters manage their own.
func authorize(pet *models.Pet, actorID uuid.UUID, role enums.Role) error {
	if !role.Can(enums.CapabilityManagePets) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only shelters and admins can manage pets")
	}
	if role == enums.RoleAdmin {
		return nil
	}
	if pet.ShelterID == nil || *pet.ShelterID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "pet belongs to another shelter")
	}
	return nil
}

func applyInput(pet *models.Pet, input PetInput) error {
	if input.Name != nil {
		pet.Name = strings.TrimSpace(*input.Name)
	}
	if input.Age != nil {
		if *input.Age < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "age must not be negative")
		}
		pet.Age = *input.Age
	}
	if input.Breed != nil {
		pet.Breed = strings.TrimSpace(*input.Breed)
	}
	if input.Description != nil {
		pet.Description = *input.Description
	}
	if input.Location != nil {
		pet.Location = strings.TrimSpace(*input.Location)
	}
	if input.Status != nil && strings.TrimSpace(*input.Status) != "" {
		status, err := enums.ParsePetStatus(*input.Status)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		pet.Status = status
	}
	if input.Gender != nil && strings.TrimSpace(*input.Gender) != "" {
		gender, err := enums.ParsePetGender(*input.Gender)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid gender")
		}
		pet.Gender = &gender
	}
	if input.Vaccinated != nil {
		pet.Vaccinated = *input.Vaccinated
	}
	if input.Dewormed != nil {
		pet.Dewormed = *input.Dewormed
	}
	return nil
}
