package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"tasktracker/config"
	"tasktracker/internal/client/session"
)

const (
	pathSignInWithPassword = "/accounts:signInWithPassword"
	pathSignUp             = "/accounts:signUp"
	pathSignInWithIdP      = "/accounts:signInWithIdp"
	pathToken              = "/token"

	// ProviderGoogle is the provider id the identity service expects for Google sign-in.
	ProviderGoogle = "google.com"

	idpRequestURI = "http://localhost"
)

var (
	ErrNotSignedIn = errors.New("not signed in")
	ErrProvider    = errors.New("identity provider error")
)

// ProviderError carries the status and the provider's error code, for example EMAIL_NOT_FOUND.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider returned %d: %s", e.Status, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return ErrProvider
}

type Client struct {
	apiKey          string
	identityBaseURL string
	tokenBaseURL    string
	httpClient      *http.Client
	store           Store
	watcher         *session.Watcher
	federated       *Federated
}

type Options struct {
	APIKey          string
	IdentityBaseURL string
	TokenBaseURL    string
	HTTPClient      *http.Client
	Store           Store
	Watcher         *session.Watcher
	Federated       *Federated
}

func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		apiKey:          opts.APIKey,
		identityBaseURL: strings.TrimRight(opts.IdentityBaseURL, "/"),
		tokenBaseURL:    strings.TrimRight(opts.TokenBaseURL, "/"),
		httpClient:      httpClient,
		store:           opts.Store,
		watcher:         opts.Watcher,
		federated:       opts.Federated,
	}
}

// NewFromConfig builds a client that persists credentials in the XDG config directory.
func NewFromConfig(cfg *config.Config, watcher *session.Watcher) (*Client, error) {
	store, err := NewFileStore()
	if err != nil {
		return nil, err
	}

	var federated *Federated
	if cfg.Client.GoogleClientID != "" {
		federated = NewGoogleFederated(cfg.Client.GoogleClientID, cfg.Client.GoogleClientSecret)
	}

	return New(Options{
		APIKey:          cfg.Client.IdentityAPIKey,
		IdentityBaseURL: cfg.Client.IdentityBaseURL,
		TokenBaseURL:    cfg.Client.TokenBaseURL,
		Store:           store,
		Watcher:         watcher,
		Federated:       federated,
	}), nil
}

type signInResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

type tokenResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Restore reads the persisted credential and resolves the session out of its loading state.
func (c *Client) Restore() {
	credential, err := c.store.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to restore credentials")
	}

	if credential == nil {
		c.watcher.Publish(session.Unauthenticated())

		return
	}

	c.watcher.Publish(session.Authenticated(credential.Subject, credential.Email))
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) error {
	return c.signIn(ctx, pathSignInWithPassword, map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
}

// SignUp creates the account and leaves the user signed in as it.
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	return c.signIn(ctx, pathSignUp, map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
}

// SignInWithIdP exchanges a federated provider's id token for a session.
func (c *Client) SignInWithIdP(ctx context.Context, providerID, providerIDToken string) error {
	postBody := url.Values{}
	postBody.Set("id_token", providerIDToken)
	postBody.Set("providerId", providerID)

	return c.signIn(ctx, pathSignInWithIdP, map[string]any{
		"postBody":          postBody.Encode(),
		"requestUri":        idpRequestURI,
		"returnSecureToken": true,
	})
}

// SignInWithGoogle runs the browser consent flow and signs in with its result.
func (c *Client) SignInWithGoogle(ctx context.Context) error {
	if c.federated == nil {
		return ErrFederatedDisabled
	}

	providerIDToken, err := c.federated.Run(ctx)
	if err != nil {
		return err
	}

	return c.SignInWithIdP(ctx, ProviderGoogle, providerIDToken)
}

// IDToken mints a fresh ID token from the stored refresh token. Tokens are never cached.
func (c *Client) IDToken(ctx context.Context) (string, error) {
	credential, err := c.store.Load()
	if err != nil {
		return "", err
	}

	if credential == nil {
		return "", ErrNotSignedIn
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", credential.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.tokenBaseURL, pathToken), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res := tokenResponse{}
	if err = c.do(req, &res); err != nil {
		return "", err
	}

	if res.RefreshToken != "" && res.RefreshToken != credential.RefreshToken {
		credential.RefreshToken = res.RefreshToken

		if err = c.store.Save(credential); err != nil {
			log.Warn().Err(err).Msg("failed to persist rotated refresh token")
		}
	}

	return res.IDToken, nil
}

func (c *Client) SignOut() error {
	if err := c.store.Delete(); err != nil {
		return err
	}

	c.watcher.Publish(session.Unauthenticated())

	return nil
}

func (c *Client) signIn(ctx context.Context, path string, body map[string]any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.identityBaseURL, path), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build sign-in request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	res := signInResponse{}
	if err = c.do(req, &res); err != nil {
		return err
	}

	credential := &Credential{
		Subject:      res.LocalID,
		Email:        res.Email,
		RefreshToken: res.RefreshToken,
	}

	if err = c.store.Save(credential); err != nil {
		return err
	}

	c.watcher.Publish(session.Authenticated(credential.Subject, credential.Email))

	return nil
}

func (c *Client) endpoint(base, path string) string {
	return base + path + "?key=" + url.QueryEscape(c.apiKey)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read identity response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		providerErr := &ProviderError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

		errRes := errorResponse{}
		if json.Unmarshal(body, &errRes) == nil && errRes.Error.Message != "" {
			providerErr.Message = errRes.Error.Message
		}

		return providerErr
	}

	if err = json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode identity response: %w", err)
	}

	return nil
}
