package auth

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/internal/users"
	"github.com/pawfund/pawfund-backend/pkg/config"
	"github.com/pawfund/pawfund-backend/pkg/db"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	"github.com/pawfund/pawfund-backend/pkg/enums"
	pkgerrors "github.com/pawfund/pawfund-backend/pkg/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type sentEmail struct {
	to, subject, body string
}

type recordingMailer struct {
	sent []sentEmail
}

func (m *recordingMailer) SendEmail(ctx context.Context, to, subject, body string) {
	m.sent = append(m.sent, sentEmail{to: to, subject: subject, body: body})
}

func newRegisterFixture(t *testing.T, now time.Time) (RegisterService, *db.Client, *recordingMailer) {
	t.Helper()
	conn, err := db.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))
	client := db.Wrap(conn)
	mail := &recordingMailer{}
	svc, err := NewRegisterService(RegisterServiceParams{
		DB:                 client,
		Mailer:             mail,
		PasswordConfig:     config.PasswordConfig{BcryptCost: bcrypt.MinCost},
		VerificationConfig: config.VerificationConfig{TokenTTL: 24 * time.Hour},
		PublicURL:          "https://api.pawfund.test/",
		Now:                func() time.Time { return now },
	})
	require.NoError(t, err)
	return svc, client, mail
}

func validRegistration() RegisterRequest {
	return RegisterRequest{
		Username: "linh",
		Email:    "Linh@PawFund.test",
		Password: "secret-pass",
		FullName: "Linh Tran",
	}
}

func extractToken(t *testing.T, body string) string {
	t.Helper()
	idx := strings.Index(body, "token=")
	require.GreaterOrEqual(t, idx, 0, "verification link missing: %s", body)
	return body[idx+len("token="):]
}

func TestRegisterCreatesDisabledUserAndSendsLink(t *testing.T) {
	svc, client, mail := newRegisterFixture(t, fixedNow)
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)
	require.Equal(t, "linh@pawfund.test", user.Email)
	require.Equal(t, enums.RoleAdopter, user.Role)
	require.False(t, user.Enabled)

	require.Len(t, mail.sent, 1)
	require.Equal(t, "linh@pawfund.test", mail.sent[0].to)
	require.Equal(t, verificationSubject, mail.sent[0].subject)
	require.Contains(t, mail.sent[0].body, "https://api.pawfund.test/api/auth/verify?token=")

	var stored models.VerificationToken
	require.NoError(t, client.DB().Where("user_id = ?", user.ID).First(&stored).Error)
	require.True(t, stored.ExpiresAt.Equal(fixedNow.Add(24*time.Hour)))
}

func TestRegisterRolePolicy(t *testing.T) {
	svc, _, _ := newRegisterFixture(t, fixedNow)
	ctx := context.Background()

	req := validRegistration()
	req.Role = "admin"
	_, err := svc.Register(ctx, req)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	req.Role = "SHELTER"
	_, err = svc.Register(ctx, req)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	req.Role = "volunteer"
	user, err := svc.Register(ctx, req)
	require.NoError(t, err)
	require.Equal(t, enums.RoleVolunteer, user.Role)

	req = validRegistration()
	req.Username, req.Email, req.Role = "other", "other@pawfund.test", "wizard"
	user, err = svc.Register(ctx, req)
	require.NoError(t, err)
	require.Equal(t, enums.RoleAdopter, user.Role)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _, _ := newRegisterFixture(t, fixedNow)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	dupUsername := validRegistration()
	dupUsername.Email = "new@pawfund.test"
	_, err = svc.Register(ctx, dupUsername)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	dupEmail := validRegistration()
	dupEmail.Username = "someone"
	_, err = svc.Register(ctx, dupEmail)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestVerifyEnablesUserOnce(t *testing.T) {
	svc, client, mail := newRegisterFixture(t, fixedNow)
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)
	token := extractToken(t, mail.sent[0].body)

	require.NoError(t, svc.Verify(ctx, token))
	reloaded, err := users.NewRepository(client.DB()).FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, reloaded.Enabled)

	err = svc.Verify(ctx, token)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	current := fixedNow
	conn, err := db.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))
	mail := &recordingMailer{}
	svc, err := NewRegisterService(RegisterServiceParams{
		DB:             db.Wrap(conn),
		Mailer:         mail,
		PasswordConfig: config.PasswordConfig{BcryptCost: bcrypt.MinCost},
		Now:            func() time.Time { return current },
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	token := extractToken(t, mail.sent[0].body)

	current = fixedNow.Add(25 * time.Hour)
	err = svc.Verify(context.Background(), token)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestResendVerification(t *testing.T) {
	svc, _, mail := newRegisterFixture(t, fixedNow)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)
	first := extractToken(t, mail.sent[0].body)

	require.NoError(t, svc.ResendVerification(ctx, "LINH@pawfund.test"))
	require.Len(t, mail.sent, 2)
	second := extractToken(t, mail.sent[1].body)
	require.NotEqual(t, first, second)

	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(svc.Verify(ctx, first)).Code())
	require.NoError(t, svc.Verify(ctx, second))

	err = svc.ResendVerification(ctx, "linh@pawfund.test")
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	err = svc.ResendVerification(ctx, "ghost@pawfund.test")
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
