package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/pawfund/pawfund-backend/pkg/errors"
)

func TestParseScreeningAnswersFromForm(t *testing.T) {
	form := url.Values{}
	for i, v := range []string{"true", "false", "true", "true", "false", "true", "false", "true", "false", "true"} {
		form.Set(fmt.Sprintf("q%d", i+1), v)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/adoption-test/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	answers, err := parseScreeningAnswers(req)
	require.NoError(t, err)
	require.True(t, answers[0])
	require.False(t, answers[1])
	require.True(t, answers[9])
}

func TestParseScreeningAnswersFromJSONArray(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/adoption-test/submit",
		strings.NewReader(`{"answers":[true,true,true,true,true,true,true,true,true,false]}`))
	req.Header.Set("Content-Type", "application/json")

	answers, err := parseScreeningAnswers(req)
	require.NoError(t, err)
	require.True(t, answers[8])
	require.False(t, answers[9])
}

func TestParseScreeningAnswersFromJSONFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/adoption-test/submit",
		strings.NewReader(`{"q1":true,"q2":false,"q3":true,"q4":true,"q5":false,"q6":true,"q7":false,"q8":true,"q9":false,"q10":true}`))
	req.Header.Set("Content-Type", "application/json")

	answers, err := parseScreeningAnswers(req)
	require.NoError(t, err)
	require.True(t, answers[9])
	require.False(t, answers[8])
}

func TestParseScreeningAnswersRejectsMissingQuestion(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/adoption-test/submit", strings.NewReader(`{"q1":true}`))
	req.Header.Set("Content-Type", "application/json")

	_, err := parseScreeningAnswers(req)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	req = httptest.NewRequest(http.MethodPost, "/api/adoption-test/submit", strings.NewReader(`{"answers":[true]}`))
	req.Header.Set("Content-Type", "application/json")
	_, err = parseScreeningAnswers(req)
	require.Error(t, err)
}
