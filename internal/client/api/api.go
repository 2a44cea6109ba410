package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tasktracker/internal/domains/task/model/dto"
	"tasktracker/shared/constant"
)

const tasksPath = "/api/tasks"

var ErrUnexpectedStatus = errors.New("unexpected status")

// StatusError is returned for any non-2xx answer from the API.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("task api returned %d: %s", e.Status, e.Message)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// TokenSource mints the bearer token attached to each request.
type TokenSource interface {
	IDToken(ctx context.Context) (string, error)
}

type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

func New(baseURL string, tokens TokenSource, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: httpClient,
	}
}

func (c *Client) List(ctx context.Context) ([]dto.TaskResponse, error) {
	tasks := []dto.TaskResponse{}
	if err := c.do(ctx, http.MethodGet, nil, &tasks); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (c *Client) Create(ctx context.Context, title string) (dto.TaskResponse, error) {
	task := dto.TaskResponse{}
	err := c.do(ctx, http.MethodPost, dto.CreateTaskRequest{Title: title}, &task)

	return task, err
}

func (c *Client) do(ctx context.Context, method string, body, out any) error {
	token, err := c.tokens.IDToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to get id token: %w", err)
	}

	var reader io.Reader
	if body != nil {
		payload, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return fmt.Errorf("failed to encode request: %w", marshalErr)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+tasksPath, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set(constant.RequestHeaderAuthorization, constant.AuthorizationSchemeBearer+" "+token)

	if body != nil {
		req.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("task api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return statusError(resp)
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode task api response: %w", err)
	}

	return nil
}

func statusError(resp *http.Response) error {
	statusErr := &StatusError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	payload := struct {
		Error string `json:"error"`
	}{}

	if json.NewDecoder(resp.Body).Decode(&payload) == nil && payload.Error != "" {
		statusErr.Message = payload.Error
	}

	return statusErr
}
