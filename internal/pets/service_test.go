package pets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/internal/media"
	"github.com/pawfund/pawfund-backend/internal/users"
	"github.com/pawfund/pawfund-backend/pkg/db"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	"github.com/pawfund/pawfund-backend/pkg/enums"
	pkgerrors "github.com/pawfund/pawfund-backend/pkg/errors"
	"github.com/pawfund/pawfund-backend/pkg/logger"
	"github.com/pawfund/pawfund-backend/pkg/pagination"
	"github.com/stretchr/testify/require"
)

type stubImages struct {
	uploaded  []string
	deleted   []string
	err       error
	deleteErr error
}

func (s *stubImages) UploadFiles(_ context.Context, folder media.Folder, files []media.File) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	urls := make([]string, 0, len(files))
	for _, f := range files {
		url := fmt.Sprintf("https://cdn.test/%s/%s", folder, f.Name)
		urls = append(urls, url)
		s.uploaded = append(s.uploaded, url)
	}
	return urls, nil
}

func (s *stubImages) DeleteByURL(_ context.Context, url string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, url)
	return nil
}

type fixture struct {
	svc     Service
	logs    *bytes.Buffer
	images  *stubImages
	shelter *models.User
	other   *models.User
	admin   *models.User
	adopter *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := db.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))

	userRepo := users.NewRepository(conn)
	seed := func(name string, role enums.Role) *models.User {
		u, err := userRepo.Create(context.Background(), users.CreateUserDTO{
			Username: name, Email: name + "@pawfund.test", PasswordHash: "x", FullName: strings.ToUpper(name), Role: role, Enabled: true,
		})
		require.NoError(t, err)
		return u
	}

	images := &stubImages{}
	logs := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "pets-test", Level: logger.ParseLevel("debug"), Output: logs})
	svc, err := NewService(ServiceParams{Repository: NewRepository(conn), Users: userRepo, Images: images, Logger: logg})
	require.NoError(t, err)
	return &fixture{
		svc:     svc,
		logs:    logs,
		images:  images,
		shelter: seed("shelter", enums.RoleShelter),
		other:   seed("other", enums.RoleShelter),
		admin:   seed("admin", enums.RoleAdmin),
		adopter: seed("adopter", enums.RoleAdopter),
	}
}

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

func TestCreateByShelterOwnsPet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pet, err := f.svc.Create(ctx, f.shelter.ID, enums.RoleShelter, PetInput{
		Name:   strPtr("Milo"),
		Age:    intPtr(2),
		Breed:  strPtr("Corgi"),
		Gender: strPtr("male"),
	}, []media.File{{Name: "milo.png"}})
	require.NoError(t, err)
	require.Equal(t, enums.PetStatusAvailable, pet.Status)
	require.NotNil(t, pet.Gender)
	require.Equal(t, enums.PetGenderMale, *pet.Gender)
	require.Equal(t, []string{"https://cdn.test/pets/milo.png"}, pet.ImageURLs)
	require.NotNil(t, pet.Shelter)
	require.Equal(t, f.shelter.ID, pet.Shelter.ID)
}

func TestCreateByAdminRequiresShelter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.admin.ID, enums.RoleAdmin, PetInput{Name: strPtr("Luna")}, nil)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = f.svc.Create(ctx, f.admin.ID, enums.RoleAdmin, PetInput{Name: strPtr("Luna"), ShelterID: &f.adopter.ID}, nil)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	pet, err := f.svc.Create(ctx, f.admin.ID, enums.RoleAdmin, PetInput{Name: strPtr("Luna"), ShelterID: &f.other.ID}, nil)
	require.NoError(t, err)
	require.Equal(t, f.other.ID, pet.Shelter.ID)
}

func TestCreateRejectsAdopterAndBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.adopter.ID, enums.RoleAdopter, PetInput{Name: strPtr("Milo")}, nil)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	_, err = f.svc.Create(ctx, f.shelter.ID, enums.RoleShelter, PetInput{Name: strPtr("  ")}, nil)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = f.svc.Create(ctx, f.shelter.ID, enums.RoleShelter, PetInput{Name: strPtr("Milo"), Status: strPtr("lost")}, nil)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestUpdateAndDeleteOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pet, err := f.svc.Create(ctx, f.shelter.ID, enums.RoleShelter, PetInput{Name: strPtr("Milo")}, []media.File{{Name: "a.png"}})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, f.other.ID, enums.RoleShelter, pet.ID, PetInput{Name: strPtr("Hijack")}, nil)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	updated, err := f.svc.Update(ctx, f.shelter.ID, enums.RoleShelter, pet.ID, PetInput{
		Status:     strPtr("adopted"),
		Vaccinated: boolPtr(true),
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "Milo", updated.Name)
	require.Equal(t, enums.PetStatusAdopted, updated.Status)
	require.True(t, updated.Vaccinated)
	require.Equal(t, []string{"https://cdn.test/pets/a.png"}, updated.ImageURLs)

	updated, err = f.svc.Update(ctx, f.admin.ID, enums.RoleAdmin, pet.ID, PetInput{}, []media.File{{Name: "b.png"}, {Name: "c.png"}})
	require.NoError(t, err)
	require.Len(t, updated.ImageURLs, 2)

	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(f.svc.Delete(ctx, f.other.ID, enums.RoleShelter, pet.ID)).Code())
	require.NoError(t, f.svc.Delete(ctx, f.shelter.ID, enums.RoleShelter, pet.ID))
	require.Len(t, f.images.deleted, 2)

	_, err = f.svc.Get(ctx, pet.ID)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestListFiltersAndPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 14; i++ {
		breed := "Corgi"
		if i%2 == 1 {
			breed = "Poodle"
		}
		_, err := f.svc.Create(ctx, f.shelter.ID, enums.RoleShelter, PetInput{
			Name:  strPtr(fmt.Sprintf("Pet %02d", i)),
			Age:   intPtr(i % 5),
			Breed: strPtr(breed),
		}, nil)
		require.NoError(t, err)
	}

	page, err := f.svc.List(ctx, Filter{}, pagination.Page{Page: 0, Size: 12})
	require.NoError(t, err)
	require.Len(t, page.Items, 12)
	require.EqualValues(t, 14, page.TotalElements)
	require.Equal(t, 2, page.TotalPages)

	page, err = f.svc.List(ctx, Filter{Breed: "corgi", AgeMax: intPtr(1)}, pagination.Page{Size: 12})
	require.NoError(t, err)
	for _, item := range page.Items {
		require.Equal(t, "Corgi", item.Breed)
		require.LessOrEqual(t, item.Age, 1)
	}
	require.NotEmpty(t, page.Items)

	_, err = f.svc.List(ctx, Filter{AgeMin: intPtr(4), AgeMax: intPtr(1)}, pagination.Page{})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func boolPtr(v bool) *bool { return &v }

func TestDeleteLogsImageCleanupFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pet, err := f.svc.Create(ctx, f.shelter.ID, enums.RoleShelter, PetInput{Name: strPtr("Bean")}, []media.File{{Name: "bean.png"}})
	require.NoError(t, err)

	f.images.deleteErr = errors.New("bucket unavailable")
	require.NoError(t, f.svc.Delete(ctx, f.shelter.ID, enums.RoleShelter, pet.ID))

	out := f.logs.String()
	require.Contains(t, out, "pet.image_delete_failed")
	require.Contains(t, out, "bucket unavailable")
	require.Contains(t, out, "https://cdn.test/pets/bean.png")

	_, err = f.svc.Get(ctx, pet.ID)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestNewServiceRequiresLogger(t *testing.T) {
	_, err := NewService(ServiceParams{Repository: &Repository{}, Users: &users.Repository{}, Images: &stubImages{}})
	require.Error(t, err)
}
