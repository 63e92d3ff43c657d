package adoptions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	"github.com/pawfund/pawfund-backend/pkg/enums"
	pkgerrors "github.com/pawfund/pawfund-backend/pkg/errors"
	"github.com/pawfund/pawfund-backend/pkg/logger"
	"github.com/pawfund/pawfund-backend/pkg/metrics"
	"gorm.io/gorm"
)

const (
	pathSingle = "single"
	pathCart   = "cart"

	subjectSubmitted      = "Đơn xin nhận nuôi đã được gửi"
	subjectNewApplication = "Có đơn xin nhận nuôi mới cần xét duyệt"
	subjectOutcome        = "Kết quả đơn xin nhận nuôi"
)

// Service is the admission pipeline: it turns a screening score plus a pet
// (or the caller's cart) into adoption applications and notifies the parties.
type Service interface {
	Apply(ctx context.Context, userID, petID uuid.UUID, message string) (*models.Adoption, error)
	ApplyFromCart(ctx context.Context, userID uuid.UUID, message string) ([]models.Adoption, error)
	SetStatus(ctx context.Context, id uuid.UUID, status, adminNotes, shelterNotes string) (*models.Adoption, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Adoption, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Adoption, error)
	List(ctx context.Context, filter Filter) ([]models.Adoption, error)
	ListAll(ctx context.Context) ([]models.Adoption, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (Stats, error)
}

type repository interface {
	Create(ctx context.Context, adoption *models.Adoption) error
	Save(ctx context.Context, adoption *models.Adoption) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Adoption, error)
	List(ctx context.Context, filter Filter) ([]models.Adoption, error)
	Stats(ctx context.Context, monthStart time.Time) (Stats, error)
}

type petLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Pet, error)
}

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type scoreReader interface {
	LatestScore(ctx context.Context, userID uuid.UUID) (int, error)
	PassScore() int
}

type cartStore interface {
	UserCartPetIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type notifier interface {
	NotifyUser(ctx context.Context, user *models.User, kind enums.NotificationType, subject, body string)
}

// ServiceParams wires the pipeline collaborators.
type ServiceParams struct {
	Repository repository
	Pets       petLookup
	Users      userLookup
	Screening  scoreReader
	Cart       cartStore
	Notifier   notifier
	Metrics    *metrics.AdmissionMetrics
	Logger     *logger.Logger
	Now        func() time.Time
}

type service struct {
	repo      repository
	pets      petLookup
	users     userLookup
	screening scoreReader
	cart      cartStore
	notifier  notifier
	metrics   *metrics.AdmissionMetrics
	logg      *logger.Logger
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repository == nil:
		return nil, fmt.Errorf("adoption repository required")
	case params.Pets == nil:
		return nil, fmt.Errorf("pet lookup required")
	case params.Users == nil:
		return nil, fmt.Errorf("user lookup required")
	case params.Screening == nil:
		return nil, fmt.Errorf("screening service required")
	case params.Cart == nil:
		return nil, fmt.Errorf("cart service required")
	case params.Notifier == nil:
		return nil, fmt.Errorf("notifier required")
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:      params.Repository,
		pets:      params.Pets,
		users:     params.Users,
		screening: params.Screening,
		cart:      params.Cart,
		notifier:  params.Notifier,
		metrics:   params.Metrics,
		logg:      params.Logger,
		now:       now,
	}, nil
}

// Apply decides immediately: a score at or above the pass score approves,
// anything lower rejects.
func (s *service) Apply(ctx context.Context, userID, petID uuid.UUID, message string) (*models.Adoption, error) {
	adopter, err := s.adopter(ctx, userID)
	if err != nil {
		return nil, err
	}
	pet, err := s.pets.FindByID(ctx, petID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pet not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pet")
	}
	score, err := s.screening.LatestScore(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := enums.AdoptionStatusRejected
	if score >= s.screening.PassScore() {
		status = enums.AdoptionStatusApproved
	}
	adoption := &models.Adoption{
		UserID:    userID,
		PetID:     pet.ID,
		Status:    status,
		Message:   message,
		AppliedAt: s.now(),
	}
	if err := s.repo.Create(ctx, adoption); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create adoption")
	}
	s.metrics.IncCreated(pathSingle, string(status))
	adoption.User = adopter
	adoption.Pet = pet

	s.notifier.NotifyUser(ctx, adopter, enums.NotificationTypeAdoption, subjectSubmitted,
		fmt.Sprintf("Đơn xin nhận nuôi của bạn cho thú cưng: %s đã được gửi thành công và đang chờ xét duyệt. Điểm bài test của bạn: %d.", pet.Name, score))
	s.notifyShelter(ctx, pet)
	return adoption, nil
}

// ApplyFromCart files one PENDING application per resolvable pet in the
// user's cart. The loop is not atomic: on failure the applications created so
// far are kept and the cart is left as is.
func (s *service) ApplyFromCart(ctx context.Context, userID uuid.UUID, message string) ([]models.Adoption, error) {
	adopter, err := s.adopter(ctx, userID)
	if err != nil {
		return nil, err
	}
	petIDs, err := s.cart.UserCartPetIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(petIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	score, err := s.screening.LatestScore(ctx, userID)
	if err != nil {
		return nil, err
	}
	notes := advisoryNote(score, s.screening.PassScore())

	created := make([]models.Adoption, 0, len(petIDs))
	var summary strings.Builder
	summary.WriteString("Bạn đã gửi đơn xin nhận nuôi cho các thú cưng sau:\n")

	for _, petID := range petIDs {
		pet, err := s.pets.FindByID(ctx, petID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, s.abortCart(ctx, userID, len(created), err)
		}

		adminNotes := notes
		adoption := models.Adoption{
			UserID:     userID,
			PetID:      pet.ID,
			Status:     enums.AdoptionStatusPending,
			Message:    message,
			AppliedAt:  s.now(),
			AdminNotes: &adminNotes,
		}
		if err := s.repo.Create(ctx, &adoption); err != nil {
			return nil, s.abortCart(ctx, userID, len(created), err)
		}
		s.metrics.IncCreated(pathCart, string(adoption.Status))
		adoption.User = adopter
		adoption.Pet = pet
		created = append(created, adoption)

		fmt.Fprintf(&summary, "- %s: ĐÃ GỬI (Chờ xét duyệt)\n", pet.Name)
		s.notifyShelter(ctx, pet)
	}

	fmt.Fprintf(&summary, "\nĐiểm bài test của bạn: %d.", score)
	summary.WriteString("\n\nCác đơn đã được gửi thành công và đang chờ xét duyệt bởi admin/shelter.")
	s.notifier.NotifyUser(ctx, adopter, enums.NotificationTypeAdoption, subjectSubmitted, summary.String())

	if err := s.cart.Clear(ctx, userID); err != nil {
		return nil, err
	}
	return created, nil
}

// SetStatus overrides the decision without notifying the adopter. Any status
// may follow any other. Blank notes keep the stored value.
func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status, adminNotes, shelterNotes string) (*models.Adoption, error) {
	adoption, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	parsed, err := enums.ParseAdoptionStatus(status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}

	adoption.Status = parsed
	if strings.TrimSpace(adminNotes) != "" {
		adoption.AdminNotes = &adminNotes
	}
	if strings.TrimSpace(shelterNotes) != "" {
		adoption.ShelterNotes = &shelterNotes
	}
	if err := s.repo.Save(ctx, adoption); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update adoption status")
	}
	return adoption, nil
}

// Update overwrites the application and emails the adopter the outcome.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Adoption, error) {
	adoption, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	parsed, err := enums.ParseAdoptionStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}

	adoption.Status = parsed
	if input.Message != nil {
		adoption.Message = *input.Message
	}
	if input.AdminNotes != nil {
		adoption.AdminNotes = input.AdminNotes
	}
	if input.ShelterNotes != nil {
		adoption.ShelterNotes = input.ShelterNotes
	}
	if err := s.repo.Save(ctx, adoption); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update adoption")
	}

	if adoption.User != nil {
		petName := ""
		if adoption.Pet != nil {
			petName = adoption.Pet.Name
		}
		s.notifier.NotifyUser(ctx, adoption.User, enums.NotificationTypeAdoption, subjectOutcome,
			fmt.Sprintf("Đơn xin nhận nuôi của bạn cho thú cưng: %s đã được %s", petName, outcomeLabel(parsed)))
	}
	return adoption, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Adoption, error) {
	return s.load(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]models.Adoption, error) {
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list adoptions")
	}
	return list, nil
}

func (s *service) ListAll(ctx context.Context) ([]models.Adoption, error) {
	return s.List(ctx, Filter{})
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete adoption")
	}
	return nil
}

func (s *service) Stats(ctx context.Context) (Stats, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	stats, err := s.repo.Stats(ctx, monthStart)
	if err != nil {
		return Stats{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adoption stats")
	}
	return stats, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Adoption, error) {
	adoption, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "adoption not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load adoption")
	}
	return adoption, nil
}

func (s *service) adopter(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}

func (s *service) notifyShelter(ctx context.Context, pet *models.Pet) {
	if pet.Shelter == nil {
		return
	}
	s.notifier.NotifyUser(ctx, pet.Shelter, enums.NotificationTypeAdoption, subjectNewApplication,
		fmt.Sprintf("Có một đơn xin nhận nuôi mới cho thú cưng: %s. Vui lòng đăng nhập để xét duyệt.", pet.Name))
}

func (s *service) abortCart(ctx context.Context, userID uuid.UUID, created int, err error) error {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"user_id":           userID.String(),
		"adoptions_created": created,
	})
	s.logg.Error(ctx, "adoption.cart_conversion_aborted", err)
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "error creating adoptions")
}

func advisoryNote(score, passScore int) string {
	verdict := "Cần cải thiện"
	if score >= passScore {
		verdict = "Đủ điều kiện"
	}
	return fmt.Sprintf("Điểm bài test: %d/100 (%s)", score, verdict)
}

func outcomeLabel(status enums.AdoptionStatus) string {
	switch status {
	case enums.AdoptionStatusApproved:
		return "DUYỆT"
	case enums.AdoptionStatusRejected:
		return "TỪ CHỐI"
	default:
		return "CẬP NHẬT"
	}
}
