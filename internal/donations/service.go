package donations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/pkg/config"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	"github.com/pawfund/pawfund-backend/pkg/enums"
	pkgerrors "github.com/pawfund/pawfund-backend/pkg/errors"
	"github.com/pawfund/pawfund-backend/pkg/logger"
	"github.com/pawfund/pawfund-backend/pkg/paypal"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	subjectThanks       = "Cảm ơn bạn đã quyên góp!"
	subjectPayPalThanks = "Cảm ơn bạn đã quyên góp qua PayPal!"

	// MessagePaymentSucceeded and MessagePaymentCancelled are shown after the
	// PayPal redirect.
	MessagePaymentSucceeded = "Thanh toán thành công!"
	MessagePaymentCancelled = "Thanh toán đã bị hủy bởi người dùng."

	orderDescriptionPrefix = "Donation to PawFund - "
)

// Service manages donation records and the PayPal checkout flow.
type Service interface {
	List(ctx context.Context, userID *uuid.UUID) ([]models.Donation, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Donation, error)
	Create(ctx context.Context, actorID *uuid.UUID, input DonationInput) (*models.Donation, error)
	Update(ctx context.Context, id uuid.UUID, input DonationInput) (*models.Donation, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Statistics(ctx context.Context) (Statistics, error)

	PayPalConfig() paypal.ClientConfig
	CreatePayPalOrder(ctx context.Context, req CreateOrderRequest) (*paypal.Order, error)
	CapturePayPalOrder(ctx context.Context, orderID string) (*paypal.Capture, error)
	VerifyPayPal(req VerifyRequest) bool
	CompletePayPal(ctx context.Context, orderID, payerID, amount string, userID *uuid.UUID) (*CallbackResult, error)
}

type repository interface {
	Create(ctx context.Context, donation *models.Donation) error
	Save(ctx context.Context, donation *models.Donation) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Donation, error)
	List(ctx context.Context, userID *uuid.UUID) ([]models.Donation, error)
	Totals(ctx context.Context, monthStart time.Time) (Statistics, error)
}

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type gateway interface {
	Config() paypal.ClientConfig
	CreateOrder(ctx context.Context, amount decimal.Decimal, description string) (*paypal.Order, error)
	CaptureOrder(ctx context.Context, orderID string) (*paypal.Capture, error)
}

type notifier interface {
	NotifyUser(ctx context.Context, user *models.User, kind enums.NotificationType, subject, body string)
}

// ServiceParams wires the donation service.
type ServiceParams struct {
	Repository repository
	Users      userLookup
	Gateway    gateway
	Notifier   notifier
	Config     config.DonationsConfig
	Logger     *logger.Logger
	Now        func() time.Time
}

type service struct {
	repo     repository
	users    userLookup
	gateway  gateway
	notifier notifier
	goal     decimal.Decimal
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repository == nil:
		return nil, fmt.Errorf("donation repository required")
	case params.Users == nil:
		return nil, fmt.Errorf("user lookup required")
	case params.Gateway == nil:
		return nil, fmt.Errorf("paypal gateway required")
	case params.Notifier == nil:
		return nil, fmt.Errorf("notifier required")
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	goal, err := params.Config.Goal()
	if err != nil {
		return nil, fmt.Errorf("monthly goal: %w", err)
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:     params.Repository,
		users:    params.Users,
		gateway:  params.Gateway,
		notifier: params.Notifier,
		goal:     goal,
		logg:     params.Logger,
		now:      now,
	}, nil
}

func (s *service) List(ctx context.Context, userID *uuid.UUID) ([]models.Donation, error) {
	list, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list donations")
	}
	return list, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	donation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "donation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load donation")
	}
	return donation, nil
}

// Create records a donation. The donor is input.UserID when given, otherwise
// the caller; anonymous donations carry no user.
func (s *service) Create(ctx context.Context, actorID *uuid.UUID, input DonationInput) (*models.Donation, error) {
	if input.Amount == nil || !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	donorID := input.UserID
	if donorID == nil {
		donorID = actorID
	}
	var donor *models.User
	if donorID != nil {
		user, err := s.users.FindByID(ctx, *donorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "donor not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load donor")
		}
		donor = user
	}

	donation := &models.Donation{
		UserID:        donorID,
		Amount:        *input.Amount,
		Currency:      currencyOrDefault(input.Currency),
		Status:        enums.NormalizeDonationStatus(input.Status),
		TransactionID: input.TransactionID,
		DonatedAt:     s.now(),
	}
	donation.SetMethod(methodOf(input))
	if input.DonatedAt != nil {
		donation.DonatedAt = input.DonatedAt.UTC()
	}

	if err := s.repo.Create(ctx, donation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create donation")
	}

	if donor != nil {
		body := fmt.Sprintf("Cảm ơn bạn đã quyên góp số tiền: %s bằng phương thức: %s. Chúng tôi rất trân trọng sự đóng góp của bạn cho các thú cưng bị bỏ rơi.",
			donation.Amount.StringFixed(2), donation.Method)
		s.notifier.NotifyUser(ctx, donor, enums.NotificationTypeDonation, subjectThanks, body)
	}
	return donation, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input DonationInput) (*models.Donation, error) {
	donation, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Amount != nil {
		if !input.Amount.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
		}
		donation.Amount = *input.Amount
	}
	if input.UserID != nil {
		if _, err := s.users.FindByID(ctx, *input.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "donor not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load donor")
		}
		donation.UserID = input.UserID
	}
	if strings.TrimSpace(input.Currency) != "" {
		donation.Currency = currencyOrDefault(input.Currency)
	}
	if strings.TrimSpace(input.Method+input.PaymentMethod) != "" {
		donation.SetMethod(methodOf(input))
	}
	if strings.TrimSpace(input.Status) != "" {
		donation.Status = enums.NormalizeDonationStatus(input.Status)
	}
	if input.TransactionID != nil {
		donation.TransactionID = input.TransactionID
	}
	if input.DonatedAt != nil {
		donation.DonatedAt = input.DonatedAt.UTC()
	}
	donation.User = nil

	if err := s.repo.Save(ctx, donation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update donation")
	}
	return donation, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete donation")
	}
	return nil
}

func (s *service) Statistics(ctx context.Context) (Statistics, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	stats, err := s.repo.Totals(ctx, monthStart)
	if err != nil {
		return Statistics{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "donation statistics")
	}
	stats.MonthlyGoal = s.goal
	if s.goal.IsPositive() {
		pct := stats.ThisMonthAmount.Div(s.goal).Mul(decimal.NewFromInt(100)).Round(2)
		stats.ProgressPercentage = pct.InexactFloat64()
	}
	return stats, nil
}

func (s *service) PayPalConfig() paypal.ClientConfig {
	return s.gateway.Config()
}

func (s *service) CreatePayPalOrder(ctx context.Context, req CreateOrderRequest) (*paypal.Order, error) {
	if !req.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	order, err := s.gateway.CreateOrder(ctx, req.Amount, orderDescriptionPrefix+strings.TrimSpace(req.Category))
	if err != nil {
		return nil, gatewayError(err, "create paypal order")
	}
	return order, nil
}

func (s *service) CapturePayPalOrder(ctx context.Context, orderID string) (*paypal.Capture, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orderId is required")
	}
	capture, err := s.gateway.CaptureOrder(ctx, orderID)
	if err != nil {
		return nil, gatewayError(err, "capture paypal order")
	}
	return capture, nil
}

// VerifyPayPal accepts a client-reported payment when it carries a
// transaction id and a COMPLETED status.
func (s *service) VerifyPayPal(req VerifyRequest) bool {
	return strings.TrimSpace(req.TransactionID) != "" &&
		strings.EqualFold(strings.TrimSpace(req.Status), string(enums.DonationStatusCompleted))
}

// CompletePayPal captures the approved order and records the donation.
// amount is the value echoed on the return URL; the captured amount wins
// when PayPal reports one.
func (s *service) CompletePayPal(ctx context.Context, orderID, payerID, amount string, userID *uuid.UUID) (*CallbackResult, error) {
	capture, err := s.CapturePayPalOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	value := capture.Amount
	if !value.IsPositive() {
		parsed, perr := decimal.NewFromString(strings.TrimSpace(amount))
		if perr != nil || !parsed.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid amount")
		}
		value = parsed
	}

	var donor *models.User
	if userID != nil {
		if user, err := s.users.FindByID(ctx, *userID); err == nil {
			donor = user
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load donor")
		}
	}

	txID := capture.TransactionID
	if txID == "" {
		txID = capture.OrderID
	}
	donation := &models.Donation{
		Amount:        value,
		Currency:      currencyOrDefault(capture.Currency),
		Status:        enums.DonationStatusCompleted,
		TransactionID: &txID,
		DonatedAt:     s.now(),
	}
	if donor != nil {
		donation.UserID = &donor.ID
	}
	donation.SetMethod(enums.DonationMethodPayPal)

	if err := s.repo.Create(ctx, donation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record paypal donation")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"donation_id": donation.ID.String(),
		"order_id":    orderID,
		"payer_id":    payerID,
	}), "donation.paypal_completed")

	if donor != nil {
		body := fmt.Sprintf("Cảm ơn bạn đã quyên góp số tiền: %s %s qua PayPal. Mã giao dịch: %s. Chúng tôi rất trân trọng sự đóng góp của bạn cho các thú cưng bị bỏ rơi.",
			donation.Amount.StringFixed(2), donation.Currency, txID)
		s.notifier.NotifyUser(ctx, donor, enums.NotificationTypeDonation, subjectPayPalThanks, body)
	}

	return &CallbackResult{
		Success:       true,
		Message:       MessagePaymentSucceeded,
		DonationID:    donation.ID,
		TransactionID: txID,
	}, nil
}

func gatewayError(err error, msg string) error {
	var apiErr *paypal.APIError
	switch {
	case errors.Is(err, paypal.ErrNotConfigured):
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "paypal is not configured")
	case errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, msg)
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
	}
}

func methodOf(input DonationInput) string {
	method := strings.TrimSpace(input.Method)
	if method == "" {
		method = strings.TrimSpace(input.PaymentMethod)
	}
	if method == "" {
		return enums.DonationMethodCash
	}
	return strings.ToUpper(method)
}

func currencyOrDefault(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return defaultCurrency
	}
	return value
}
