package controllers

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/pawfund/pawfund-backend/api/responses"
	"github.com/pawfund/pawfund-backend/api/validators"
	"github.com/pawfund/pawfund-backend/internal/screening"
	pkgerrors "github.com/pawfund/pawfund-backend/pkg/errors"
	"github.com/pawfund/pawfund-backend/pkg/logger"
)

type screeningResultResponse struct {
	Score     int  `json:"score"`
	PassScore int  `json:"passScore"`
	Passed    bool `json:"passed"`
}

func ScreeningQuestions(svc screening.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Questions())
	}
}

// SubmitScreening scores a quiz. Answers arrive either as q1..q10 (form or
// JSON) or as a JSON "answers" array.
func SubmitScreening(svc screening.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		answers, err := parseScreeningAnswers(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Submit(r.Context(), actor.UserID, answers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, screeningResultResponse{
			Score:     result.Score,
			PassScore: svc.PassScore(),
			Passed:    result.Score >= svc.PassScore(),
		})
	}
}

func LatestScreeningScore(svc screening.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		score, err := svc.LatestScore(r.Context(), actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, screeningResultResponse{
			Score:     score,
			PassScore: svc.PassScore(),
			Passed:    score >= svc.PassScore(),
		})
	}
}

func ScreeningHistory(svc screening.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		list, err := svc.History(r.Context(), actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func parseScreeningAnswers(r *http.Request) (screening.Answers, error) {
	var answers screening.Answers
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		if err := r.ParseForm(); err != nil {
			return answers, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body")
		}
		for i := range answers {
			field := fmt.Sprintf("q%d", i+1)
			value, err := strconv.ParseBool(strings.TrimSpace(r.FormValue(field)))
			if err != nil {
				return answers, missingAnswer(field)
			}
			answers[i] = value
		}
		return answers, nil
	}

	var body map[string]json.RawMessage
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		return answers, err
	}
	if raw, ok := body["answers"]; ok {
		var list []bool
		if err := json.Unmarshal(raw, &list); err != nil || len(list) != screening.QuestionCount {
			return answers, pkgerrors.Newf(pkgerrors.CodeValidation, "answers must hold %d booleans", screening.QuestionCount)
		}
		copy(answers[:], list)
		return answers, nil
	}
	for i := range answers {
		field := fmt.Sprintf("q%d", i+1)
		raw, ok := body[field]
		if !ok || json.Unmarshal(raw, &answers[i]) != nil {
			return answers, missingAnswer(field)
		}
	}
	return answers, nil
}

func missingAnswer(field string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "every question needs a true or false answer").
		WithDetails(map[string]any{"field": field})
}
