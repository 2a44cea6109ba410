package response_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"tasktracker/shared/failure"
	"tasktracker/transport/http/response"
)

type item struct {
	ID string `json:"id"`
}

func TestWithRawJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	response.WithRawJSON(rec, http.StatusOK, []item{{ID: "a"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `[{"id":"a"}]`, rec.Body.String())

	rec = httptest.NewRecorder()
	var missing *item
	response.WithRawJSON(rec, http.StatusOK, missing)
	assert.Equal(t, "null", rec.Body.String())
}

func TestWithNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	response.WithNoContent(rec)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestWithError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "unauthenticated", err: failure.MissingBearerToken, code: http.StatusUnauthorized},
		{name: "forbidden", err: failure.InvalidToken, code: http.StatusForbidden},
		{name: "plain error", err: errors.New("boom"), code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			response.WithError(rec, tt.err)

			assert.Equal(t, tt.code, rec.Code)
			assert.JSONEq(t, `{"error":"`+tt.err.Error()+`"}`, rec.Body.String())
		})
	}
}

func TestCannedMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	response.WithHealthy(rec)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"OK"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	response.WithPreparingShutdown(rec)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	response.WithRequestLimitExceeded(rec)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
