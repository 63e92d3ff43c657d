package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/internal/pets"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	dbtypes "github.com/pawfund/pawfund-backend/pkg/db/types"
	pkgerrors "github.com/pawfund/pawfund-backend/pkg/errors"
	"gorm.io/gorm"
)

// Identity selects the cart a request works on. A non-nil UserID always wins
// over GuestToken.
type Identity struct {
	UserID     uuid.UUID
	GuestToken string
}

func (i Identity) authenticated() bool {
	return i.UserID != uuid.Nil
}

// View is the resolved cart returned to clients.
type View struct {
	Token string        `json:"token,omitempty"`
	Pets  []pets.PetDTO `json:"pets"`
}

// Service exposes the interest-list operations for guests and users.
type Service interface {
	AddToCart(ctx context.Context, identity Identity, petID uuid.UUID) (*View, error)
	RemoveFromCart(ctx context.Context, identity Identity, petID uuid.UUID) (*View, error)
	GetCart(ctx context.Context, identity Identity) (*View, error)
	MergeGuestIntoUser(ctx context.Context, token string, userID uuid.UUID) (bool, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	UserCartPetIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type service struct {
	repo    CartRepository
	tx      txRunner
	catalog petCatalog
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, catalog petCatalog) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("pet catalog required")
	}
	return &service{repo: repo, tx: tx, catalog: catalog}, nil
}

func (s *service) AddToCart(ctx context.Context, identity Identity, petID uuid.UUID) (*View, error) {
	if _, err := s.catalog.FindByID(ctx, petID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pet not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pet")
	}

	if identity.authenticated() {
		cart, err := s.userCart(ctx, identity.UserID)
		if err != nil {
			return nil, err
		}
		cart.PetIDs = cart.PetIDs.Add(petID)
		if err := s.repo.SaveUserCart(ctx, cart); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save user cart")
		}
		return s.view(ctx, "", cart.PetIDs)
	}

	cart, err := s.guestCart(ctx, identity.GuestToken)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = &models.GuestCart{Token: uuid.NewString(), PetIDs: dbtypes.UUIDArray{}}
	}
	cart.PetIDs = cart.PetIDs.Add(petID)
	if err := s.repo.SaveGuestCart(ctx, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save guest cart")
	}
	return s.view(ctx, cart.Token, cart.PetIDs)
}

func (s *service) RemoveFromCart(ctx context.Context, identity Identity, petID uuid.UUID) (*View, error) {
	if identity.authenticated() {
		cart, err := s.userCart(ctx, identity.UserID)
		if err != nil {
			return nil, err
		}
		if !cart.PetIDs.Contains(petID) {
			return s.view(ctx, "", cart.PetIDs)
		}
		cart.PetIDs = cart.PetIDs.Remove(petID)
		if err := s.repo.SaveUserCart(ctx, cart); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save user cart")
		}
		return s.view(ctx, "", cart.PetIDs)
	}

	cart, err := s.guestCart(ctx, identity.GuestToken)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return &View{Token: identity.GuestToken, Pets: []pets.PetDTO{}}, nil
	}
	if cart.PetIDs.Contains(petID) {
		cart.PetIDs = cart.PetIDs.Remove(petID)
		if err := s.repo.SaveGuestCart(ctx, cart); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save guest cart")
		}
	}
	return s.view(ctx, cart.Token, cart.PetIDs)
}

func (s *service) GetCart(ctx context.Context, identity Identity) (*View, error) {
	if identity.authenticated() {
		ids, err := s.UserCartPetIDs(ctx, identity.UserID)
		if err != nil {
			return nil, err
		}
		return s.view(ctx, "", ids)
	}

	cart, err := s.guestCart(ctx, identity.GuestToken)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return &View{Token: identity.GuestToken, Pets: []pets.PetDTO{}}, nil
	}
	return s.view(ctx, cart.Token, cart.PetIDs)
}

// MergeGuestIntoUser unions the guest cart into the user's cart and deletes
// the guest cart. It reports false when there was nothing to merge.
func (s *service) MergeGuestIntoUser(ctx context.Context, token string, userID uuid.UUID) (bool, error) {
	if strings.TrimSpace(token) == "" {
		return false, nil
	}
	if userID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required to merge cart")
	}

	merged := false
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		guest, err := repo.FindGuestCart(ctx, token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		user, err := repo.FindUserCart(ctx, userID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			user = &models.UserCart{UserID: userID, PetIDs: dbtypes.UUIDArray{}}
		}
		user.PetIDs = user.PetIDs.Union(guest.PetIDs)
		if err := repo.SaveUserCart(ctx, user); err != nil {
			return err
		}
		if err := repo.DeleteGuestCart(ctx, guest.ID); err != nil {
			return err
		}
		merged = true
		return nil
	})
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "merge guest cart")
	}
	return merged, nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.repo.FindUserCart(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user cart")
	}
	cart.PetIDs = dbtypes.UUIDArray{}
	if err := s.repo.SaveUserCart(ctx, cart); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear user cart")
	}
	return nil
}

// UserCartPetIDs returns the stored pet ids, empty when the user has no cart.
func (s *service) UserCartPetIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	cart, err := s.repo.FindUserCart(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []uuid.UUID{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user cart")
	}
	return append([]uuid.UUID{}, cart.PetIDs...), nil
}

func (s *service) userCart(ctx context.Context, userID uuid.UUID) (*models.UserCart, error) {
	cart, err := s.repo.FindUserCart(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UserCart{UserID: userID, PetIDs: dbtypes.UUIDArray{}}, nil
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user cart")
}

// guestCart returns nil without error when token is blank or unknown.
func (s *service) guestCart(ctx context.Context, token string) (*models.GuestCart, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	cart, err := s.repo.FindGuestCart(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load guest cart")
	}
	return cart, nil
}

// view resolves ids through the catalog, dropping pets that no longer exist.
func (s *service) view(ctx context.Context, token string, ids []uuid.UUID) (*View, error) {
	out := &View{Token: token, Pets: []pets.PetDTO{}}
	if len(ids) == 0 {
		return out, nil
	}
	found, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve cart pets")
	}
	for _, id := range ids {
		pet, ok := found[id]
		if !ok {
			continue
		}
		out.Pets = append(out.Pets, *pets.FromModel(&pet))
	}
	return out, nil
}
