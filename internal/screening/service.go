package screening

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/pkg/config"
	"github.com/pawfund/pawfund-backend/pkg/db/models"
	pkgerrors "github.com/pawfund/pawfund-backend/pkg/errors"
)

const (
	QuestionCount   = config.ScreeningQuestionCount
	pointsPerAnswer = 10
	maxScore        = 100
)

// Answers holds one boolean per quiz question, in question order.
type Answers [QuestionCount]bool

// Service scores readiness quizzes and exposes a user's score history.
type Service interface {
	Submit(ctx context.Context, userID uuid.UUID, answers Answers) (*models.ScreeningResult, error)
	LatestScore(ctx context.Context, userID uuid.UUID) (int, error)
	History(ctx context.Context, userID uuid.UUID) ([]models.ScreeningResult, error)
	Questions() []Question
	PassScore() int
}

type repository interface {
	Create(ctx context.Context, result *models.ScreeningResult) error
	Latest(ctx context.Context, userID uuid.UUID) (*models.ScreeningResult, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ScreeningResult, error)
}

type service struct {
	repo      repository
	key       Answers
	passScore int
	now       func() time.Time
}

// NewService validates the configured answer key and copies it into the
// service. The key cannot change for the lifetime of the process.
func NewService(repo repository, cfg config.ScreeningConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("screening repository is required")
	}
	key, err := cfg.Key()
	if err != nil {
		return nil, err
	}
	if cfg.PassScore < 0 || cfg.PassScore > maxScore {
		return nil, fmt.Errorf("pass score must be within 0..%d, got %d", maxScore, cfg.PassScore)
	}
	return &service{
		repo:      repo,
		key:       Answers(key),
		passScore: cfg.PassScore,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Score awards ten points per answer matching key, capped at 100.
func Score(key, answers Answers) int {
	score := 0
	for i := range key {
		if answers[i] == key[i] {
			score += pointsPerAnswer
		}
	}
	if score > maxScore {
		score = maxScore
	}
	return score
}

func (s *service) Submit(ctx context.Context, userID uuid.UUID, answers Answers) (*models.ScreeningResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	result := &models.ScreeningResult{
		UserID:    userID,
		Score:     Score(s.key, answers),
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, result); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store screening result")
	}
	return result, nil
}

// LatestScore returns the score of the newest result, or 0 when the user
// has never taken the quiz.
func (s *service) LatestScore(ctx context.Context, userID uuid.UUID) (int, error) {
	latest, err := s.repo.Latest(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load latest screening result")
	}
	if latest == nil {
		return 0, nil
	}
	return latest.Score, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID) ([]models.ScreeningResult, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list screening results")
	}
	if list == nil {
		list = []models.ScreeningResult{}
	}
	return list, nil
}

func (s *service) Questions() []Question {
	out := make([]Question, len(questions))
	copy(out, questions[:])
	return out
}

func (s *service) PassScore() int {
	return s.passScore
}
