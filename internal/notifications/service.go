package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	"github.com/pawfund/pawfund-backend/pkg/email"
	"github.com/pawfund/pawfund-backend/pkg/enums"
	pkgerrors "github.com/pawfund/pawfund-backend/pkg/errors"
	"github.com/pawfund/pawfund-backend/pkg/logger"
	"github.com/pawfund/pawfund-backend/pkg/pagination"
)

// Service is the notification gateway: outbound email plus the in-app inbox.
// Delivery is best-effort; failures are logged and never returned to callers.
type Service interface {
	SendEmail(ctx context.Context, to, subject, body string)
	NotifyUser(ctx context.Context, user *models.User, kind enums.NotificationType, subject, body string)
	NotifyShelters(ctx context.Context, event *models.Event, shelters []models.User)
	NotifyVolunteers(ctx context.Context, event *models.Event, volunteers []models.User)
	NotifyDonors(ctx context.Context, event *models.Event, donors []models.User)

	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	repo   Repository
	sender email.Sender
	logg   *logger.Logger
	now    func() time.Time
}

// ServiceParams wires the gateway dependencies.
type ServiceParams struct {
	Repository Repository
	Sender     email.Sender
	Logger     *logger.Logger
	Now        func() time.Time
}

// ListParams configures pagination for notifications.
type ListParams struct {
	UserID     uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// NewService wires notifications dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if params.Sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "email sender required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:   params.Repository,
		sender: params.Sender,
		logg:   params.Logger,
		now:    now,
	}, nil
}

func (s *service) SendEmail(ctx context.Context, to, subject, body string) {
	if strings.TrimSpace(to) == "" {
		return
	}
	if err := s.sender.Send(ctx, email.Message{To: to, Subject: subject, Body: body}); err != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"to": to, "subject": subject})
		s.logg.Warn(s.logg.WithError(logCtx, err), "notification.email_failed")
	}
}

// NotifyUser emails the user and records the same message in their inbox.
func (s *service) NotifyUser(ctx context.Context, user *models.User, kind enums.NotificationType, subject, body string) {
	if user == nil {
		return
	}
	s.SendEmail(ctx, user.Email, subject, body)

	record := &models.Notification{
		UserID:    user.ID,
		Type:      kind,
		Title:     subject,
		Message:   body,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		logCtx := s.logg.WithField(ctx, "user_id", user.ID.String())
		s.logg.Warn(s.logg.WithError(logCtx, err), "notification.record_failed")
	}
}

func (s *service) NotifyShelters(ctx context.Context, event *models.Event, shelters []models.User) {
	s.notifyEventRole(ctx, event, shelters, eventRole{
		label:   "Nhân viên cứu hộ",
		message: "Bạn đã được phân công phụ trách sự kiện: ",
		timing:  "Vui lòng có mặt sớm nhất để chuẩn bị và sắp xếp công việc.",
	})
}

func (s *service) NotifyVolunteers(ctx context.Context, event *models.Event, volunteers []models.User) {
	s.notifyEventRole(ctx, event, volunteers, eventRole{
		label:   "Tình nguyện viên",
		message: "Bạn đã được mời tham gia sự kiện: ",
		timing:  "Vui lòng có mặt đúng giờ để hỗ trợ sự kiện.",
	})
}

func (s *service) NotifyDonors(ctx context.Context, event *models.Event, donors []models.User) {
	s.notifyEventRole(ctx, event, donors, eventRole{
		label:   "Nhà tài trợ",
		message: "Bạn đã được mời tài trợ sự kiện: ",
		timing:  "Bạn có thể đến muộn hơn một chút để tham gia phần tài trợ.",
	})
}

type eventRole struct {
	label   string
	message string
	timing  string
}

func (s *service) notifyEventRole(ctx context.Context, event *models.Event, recipients []models.User, role eventRole) {
	if event == nil {
		return
	}
	subject := "Thông báo sự kiện - " + event.Title
	for i := range recipients {
		user := &recipients[i]
		s.NotifyUser(ctx, user, enums.NotificationTypeEvent, subject, eventBody(user, event, role))
	}
}

func eventBody(user *models.User, event *models.Event, role eventRole) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Xin chào %s,\n\n", user.DisplayName())
	fmt.Fprintf(&b, "%s%s\n\n", role.message, event.Title)
	b.WriteString("Chi tiết sự kiện:\n")
	fmt.Fprintf(&b, "- Tiêu đề: %s\n", event.Title)
	fmt.Fprintf(&b, "- Mô tả: %s\n", event.Description)
	fmt.Fprintf(&b, "- Ngày: %s\n", event.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "- Địa điểm: %s\n", event.Location)
	fmt.Fprintf(&b, "- Thời gian: %s - %s\n", event.StartTime, event.EndTime)
	fmt.Fprintf(&b, "- Số người tối đa: %d\n\n", event.MaxParticipants)
	fmt.Fprintf(&b, "Vai trò: %s\n", role.label)
	fmt.Fprintf(&b, "Lưu ý thời gian: %s\n\n", role.timing)
	b.WriteString("Trân trọng,\nPawFund Team")
	return b.String()
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	query := listNotificationsParams{
		UserID:     params.UserID,
		Limit:      params.Limit,
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	if rows == nil {
		rows = []models.Notification{}
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, userID, notificationID, s.now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	count, err := s.repo.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}
