package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/client/api"
	"tasktracker/internal/domains/task/model/dto"
)

// countingTokens hands out a different token on every call.
type countingTokens struct {
	calls int
	err   error
}

func (c *countingTokens) IDToken(context.Context) (string, error) {
	if c.err != nil {
		return "", c.err
	}

	c.calls++

	return "token-" + strconv.Itoa(c.calls), nil
}

func TestClient_ListAndCreate(t *testing.T) {
	var seenTokens []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tasks", r.URL.Path)

		seenTokens = append(seenTokens, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")

		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`[{"id":"1","title":"Buy milk","completed":false}]`))
		case http.MethodPost:
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			body := map[string]any{}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]any{"title": "Walk dog", "completed": false}, body)

			_, _ = w.Write([]byte(`{"id":"2","title":"Walk dog","completed":false}`))
		}
	}))
	defer server.Close()

	client := api.New(server.URL+"/", &countingTokens{}, server.Client())

	tasks, err := client.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []dto.TaskResponse{{ID: "1", Title: "Buy milk"}}, tasks)

	created, err := client.Create(context.Background(), "Walk dog")
	require.NoError(t, err)
	assert.Equal(t, dto.TaskResponse{ID: "2", Title: "Walk dog"}, created)

	assert.Equal(t, []string{"Bearer token-1", "Bearer token-2"}, seenTokens)
}

func TestClient_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
	}))
	defer server.Close()

	_, err := api.New(server.URL, &countingTokens{}, server.Client()).List(context.Background())

	require.ErrorIs(t, err, api.ErrUnexpectedStatus)

	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.Status)
	assert.Equal(t, "Unauthorized", statusErr.Message)
}

func TestClient_TokenFailure(t *testing.T) {
	called := false

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer server.Close()

	tokenErr := errors.New("not signed in")

	_, err := api.New(server.URL, &countingTokens{err: tokenErr}, server.Client()).Create(context.Background(), "x")

	require.ErrorIs(t, err, tokenErr)
	assert.False(t, called)
}
