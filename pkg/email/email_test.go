package email

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/pawfund/pawfund-backend/pkg/breaker"
	"github.com/pawfund/pawfund-backend/pkg/config"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/require"
)

type stubAPI struct {
	status int
	err    error
	sent   []*mail.SGMailV3
}

func (s *stubAPI) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	s.sent = append(s.sent, email)
	if s.err != nil {
		return nil, s.err
	}
	return &rest.Response{StatusCode: s.status}, nil
}

func newTestSender(api sendgridAPI) *SendGridSender {
	return &SendGridSender{
		api:  api,
		from: mail.NewEmail("PawFund", "no-reply@pawfund.org"),
		cb:   breaker.New("sendgrid-test", 0, nil),
	}
}

func TestSendGridSenderSends(t *testing.T) {
	api := &stubAPI{status: http.StatusAccepted}
	sender := newTestSender(api)

	err := sender.Send(context.Background(), Message{To: "a@b.c", Subject: "Hi", Body: "line1\nline2"})
	require.NoError(t, err)
	require.Len(t, api.sent, 1)
	require.Equal(t, "Hi", api.sent[0].Subject)
	require.Equal(t, "a@b.c", api.sent[0].Personalizations[0].To[0].Address)
	require.Len(t, api.sent[0].Content, 2)
	require.Equal(t, "<p>line1<br>line2</p>", api.sent[0].Content[1].Value)
}

func TestSendGridSenderReportsFailures(t *testing.T) {
	sender := newTestSender(&stubAPI{status: http.StatusBadRequest})
	require.Error(t, sender.Send(context.Background(), Message{To: "a@b.c", Subject: "Hi"}))

	sender = newTestSender(&stubAPI{err: errors.New("network")})
	require.Error(t, sender.Send(context.Background(), Message{To: "a@b.c", Subject: "Hi"}))
}

func TestMessageValidation(t *testing.T) {
	sender := NewLogSender(nil)
	require.Error(t, sender.Send(context.Background(), Message{Subject: "no recipient"}))
	require.Error(t, sender.Send(context.Background(), Message{To: "a@b.c"}))
	require.NoError(t, sender.Send(context.Background(), Message{To: "a@b.c", Subject: "ok"}))
}

func TestNewSenderFallsBackToLog(t *testing.T) {
	s := NewSender(config.SendgridConfig{}, config.FeatureFlagsConfig{EmailEnabled: true}, nil)
	_, ok := s.(*LogSender)
	require.True(t, ok)

	s = NewSender(config.SendgridConfig{APIKey: "key"}, config.FeatureFlagsConfig{EmailEnabled: false}, nil)
	_, ok = s.(*LogSender)
	require.True(t, ok)

	s = NewSender(config.SendgridConfig{APIKey: "key", DefaultFrom: "x@y.z"}, config.FeatureFlagsConfig{EmailEnabled: true}, nil)
	_, ok = s.(*SendGridSender)
	require.True(t, ok)
}
