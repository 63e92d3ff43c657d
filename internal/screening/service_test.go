package screening

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/pkg/config"
	"github.com/pawfund/pawfund-backend/pkg/db"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	"github.com/stretchr/testify/require"
)

var defaultKey = Answers{true, false, true, true, false, true, false, true, false, true}

func testConfig() config.ScreeningConfig {
	return config.ScreeningConfig{
		AnswerKey: []string{"true", "false", "true", "true", "false", "true", "false", "true", "false", "true"},
		PassScore: 70,
	}
}

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	conn, err := db.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))
	repo := NewRepository(conn)
	svc, err := NewService(repo, testConfig())
	require.NoError(t, err)
	return svc, repo
}

func TestScoreIsMultipleOfTen(t *testing.T) {
	require.Equal(t, 100, Score(defaultKey, defaultKey))

	var inverted Answers
	for i, v := range defaultKey {
		inverted[i] = !v
	}
	require.Equal(t, 0, Score(defaultKey, inverted))

	for flips := 0; flips <= QuestionCount; flips++ {
		answers := defaultKey
		for i := 0; i < flips; i++ {
			answers[i] = !answers[i]
		}
		score := Score(defaultKey, answers)
		require.Equal(t, 0, score%10)
		require.Equal(t, 100-10*flips, score)
	}
}

func TestSubmitAppendsResults(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.Submit(ctx, userID, defaultKey)
	require.NoError(t, err)
	require.Equal(t, 100, first.Score)

	answers := defaultKey
	answers[0], answers[1], answers[2] = !answers[0], !answers[1], !answers[2]
	second, err := svc.Submit(ctx, userID, answers)
	require.NoError(t, err)
	require.Equal(t, 70, second.Score)
	require.NotEqual(t, first.ID, second.ID)

	history, err := svc.History(ctx, userID)
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestLatestScoreFollowsCreatedAt(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	base := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, &models.ScreeningResult{UserID: userID, Score: 90, CreatedAt: base.Add(2 * time.Hour)}))
	require.NoError(t, repo.Create(ctx, &models.ScreeningResult{UserID: userID, Score: 40, CreatedAt: base}))
	require.NoError(t, repo.Create(ctx, &models.ScreeningResult{UserID: uuid.New(), Score: 10, CreatedAt: base.Add(3 * time.Hour)}))

	score, err := svc.LatestScore(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 90, score)

	history, err := svc.History(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 90, history[0].Score)
	require.Equal(t, 40, history[1].Score)
}

func TestLatestScoreWithoutResults(t *testing.T) {
	svc, _ := newTestService(t)
	score, err := svc.LatestScore(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Zero(t, score)
}

func TestNewServiceRejectsBadKey(t *testing.T) {
	cfg := testConfig()
	cfg.AnswerKey = cfg.AnswerKey[:9]
	_, err := NewService(&Repository{}, cfg)
	require.Error(t, err)

	cfg = testConfig()
	cfg.PassScore = 101
	_, err = NewService(&Repository{}, cfg)
	require.Error(t, err)
}

func TestQuestionsAreCopied(t *testing.T) {
	svc, _ := newTestService(t)
	qs := svc.Questions()
	require.Len(t, qs, QuestionCount)
	qs[0].Text = "changed"
	require.NotEqual(t, "changed", svc.Questions()[0].Text)
	require.Equal(t, 70, svc.PassScore())
}
