package cart

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/internal/pets"
	"github.com/pawfund/pawfund-backend/pkg/db"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	pkgerrors "github.com/pawfund/pawfund-backend/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	conn *gorm.DB
	repo *Repository
	svc  Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn, err := db.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))

	repo := NewRepository(conn)
	svc, err := NewService(repo, db.Wrap(conn), pets.NewRepository(conn))
	require.NoError(t, err)
	return &testEnv{conn: conn, repo: repo, svc: svc}
}

func (e *testEnv) seedPet(t *testing.T, name string) uuid.UUID {
	t.Helper()
	pet := &models.Pet{Name: name}
	require.NoError(t, e.conn.Create(pet).Error)
	return pet.ID
}

func petIDs(view *View) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(view.Pets))
	for _, p := range view.Pets {
		out = append(out, p.ID)
	}
	return out
}

func TestAddToCartIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	petID := env.seedPet(t, "Milo")
	user := Identity{UserID: uuid.New()}

	_, err := env.svc.AddToCart(ctx, user, petID)
	require.NoError(t, err)
	view, err := env.svc.AddToCart(ctx, user, petID)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{petID}, petIDs(view))

	ids, err := env.svc.UserCartPetIDs(ctx, user.UserID)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{petID}, ids)
}

func TestAddToCartUnknownPet(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.AddToCart(context.Background(), Identity{}, uuid.New())
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestGuestCartIssuesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.seedPet(t, "Milo")
	second := env.seedPet(t, "Luna")

	view, err := env.svc.AddToCart(ctx, Identity{}, first)
	require.NoError(t, err)
	require.NotEmpty(t, view.Token)

	view, err = env.svc.AddToCart(ctx, Identity{GuestToken: view.Token}, second)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{first, second}, petIDs(view))

	view, err = env.svc.RemoveFromCart(ctx, Identity{GuestToken: view.Token}, first)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{second}, petIDs(view))

	empty, err := env.svc.GetCart(ctx, Identity{GuestToken: "missing"})
	require.NoError(t, err)
	require.Empty(t, empty.Pets)
}

func TestGetCartDropsDeletedPets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	kept := env.seedPet(t, "Milo")
	gone := env.seedPet(t, "Ghost")
	user := Identity{UserID: uuid.New()}

	_, err := env.svc.AddToCart(ctx, user, kept)
	require.NoError(t, err)
	_, err = env.svc.AddToCart(ctx, user, gone)
	require.NoError(t, err)
	require.NoError(t, env.conn.Delete(&models.Pet{}, "id = ?", gone).Error)

	view, err := env.svc.GetCart(ctx, user)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{kept}, petIDs(view))
}

func TestMergeGuestIntoUserIsSetUnion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p1, p2, p3 := env.seedPet(t, "One"), env.seedPet(t, "Two"), env.seedPet(t, "Three")
	userID := uuid.New()

	guest, err := env.svc.AddToCart(ctx, Identity{}, p1)
	require.NoError(t, err)
	_, err = env.svc.AddToCart(ctx, Identity{GuestToken: guest.Token}, p2)
	require.NoError(t, err)
	_, err = env.svc.AddToCart(ctx, Identity{UserID: userID}, p2)
	require.NoError(t, err)
	_, err = env.svc.AddToCart(ctx, Identity{UserID: userID}, p3)
	require.NoError(t, err)

	merged, err := env.svc.MergeGuestIntoUser(ctx, guest.Token, userID)
	require.NoError(t, err)
	require.True(t, merged)

	ids, err := env.svc.UserCartPetIDs(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{p2, p3, p1}, ids)

	_, err = env.repo.FindGuestCart(ctx, guest.Token)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	merged, err = env.svc.MergeGuestIntoUser(ctx, guest.Token, userID)
	require.NoError(t, err)
	require.False(t, merged)
}

func TestMergeGuestIntoUserWithoutUserCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p1, p2 := env.seedPet(t, "One"), env.seedPet(t, "Two")
	userID := uuid.New()

	guest, err := env.svc.AddToCart(ctx, Identity{}, p1)
	require.NoError(t, err)
	_, err = env.svc.AddToCart(ctx, Identity{GuestToken: guest.Token}, p2)
	require.NoError(t, err)

	merged, err := env.svc.MergeGuestIntoUser(ctx, guest.Token, userID)
	require.NoError(t, err)
	require.True(t, merged)

	ids, err := env.svc.UserCartPetIDs(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{p1, p2}, ids)
}

func TestClearEmptiesUserCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, env.svc.Clear(ctx, userID))

	_, err := env.svc.AddToCart(ctx, Identity{UserID: userID}, env.seedPet(t, "Milo"))
	require.NoError(t, err)
	require.NoError(t, env.svc.Clear(ctx, userID))

	ids, err := env.svc.UserCartPetIDs(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestDeleteStaleGuestCarts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	view, err := env.svc.AddToCart(ctx, Identity{}, env.seedPet(t, "Milo"))
	require.NoError(t, err)
	require.NoError(t, env.conn.Model(&models.GuestCart{}).
		Where("token = ?", view.Token).
		UpdateColumn("updated_at", time.Now().UTC().Add(-60*24*time.Hour)).Error)

	removed, err := env.repo.DeleteStaleGuestCarts(ctx, time.Now().UTC().Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)
}
