package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	googleAuthURL  = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"

	callbackPath      = "/callback"
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

var (
	ErrFederatedDisabled = errors.New("federated sign-in is not configured")
	ErrStateMismatch     = errors.New("invalid state parameter")
	ErrMissingCode       = errors.New("missing authorization code")
	ErrMissingIDToken    = errors.New("provider did not return an id token")
)

// Federated runs an authorization code flow with PKCE against a loopback callback,
// standing in for a browser popup.
type Federated struct {
	oauth   oauth2.Config
	openURL func(string) error
}

func NewGoogleFederated(clientID, clientSecret string) *Federated {
	return NewFederated(oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  googleAuthURL,
			TokenURL: googleTokenURL,
		},
	}, browser.OpenURL)
}

// NewFederated uses openURL to show the consent page. RedirectURL is overwritten per run.
func NewFederated(conf oauth2.Config, openURL func(string) error) *Federated {
	return &Federated{
		oauth:   conf,
		openURL: openURL,
	}
}

type callbackResult struct {
	idToken string
	err     error
}

// Run returns the provider's id token once the user finishes the consent page.
func (f *Federated) Run(ctx context.Context) (string, error) {
	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to start callback listener: %w", err)
	}

	conf := f.oauth
	conf.RedirectURL = fmt.Sprintf("http://%s%s", listener.Addr().String(), callbackPath)

	state, err := randomState()
	if err != nil {
		_ = listener.Close()

		return "", err
	}

	verifier := oauth2.GenerateVerifier()
	results := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, f.handleCallback(&conf, state, verifier, results))

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			deliver(results, callbackResult{err: fmt.Errorf("callback server failed: %w", serveErr)})
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Warn().Err(shutdownErr).Msg("failed to shut down callback server")
		}
	}()

	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier))

	if err = f.openURL(authURL); err != nil {
		log.Warn().Err(err).Str("url", authURL).Msg("failed to open browser, open the url manually")
	}

	select {
	case res := <-results:
		return res.idToken, res.err
	case <-ctx.Done():
		return "", fmt.Errorf("federated sign-in cancelled: %w", ctx.Err())
	}
}

func (f *Federated) handleCallback(conf *oauth2.Config, state, verifier string, results chan<- callbackResult) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		var res callbackResult

		switch {
		case query.Get("error") != "":
			res.err = fmt.Errorf("%w: %s %s", ErrProvider, query.Get("error"), query.Get("error_description"))
		case query.Get("state") != state:
			res.err = ErrStateMismatch
		case query.Get("code") == "":
			res.err = ErrMissingCode
		default:
			res = exchange(r.Context(), conf, query.Get("code"), verifier)
		}

		writePage(w, res.err)
		deliver(results, res)
	}
}

func exchange(ctx context.Context, conf *oauth2.Config, code, verifier string) callbackResult {
	token, err := conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return callbackResult{err: fmt.Errorf("failed to exchange authorization code: %w", err)}
	}

	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		return callbackResult{err: ErrMissingIDToken}
	}

	return callbackResult{idToken: idToken}
}

// deliver keeps only the first result; later callbacks are ignored.
func deliver(results chan<- callbackResult, res callbackResult) {
	select {
	case results <- res:
	default:
	}
}

func writePage(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = fmt.Fprintf(w, "<html><body><h1>Sign-in failed</h1><p>%s</p></body></html>", html.EscapeString(err.Error()))

		return
	}

	_, _ = fmt.Fprint(w, "<html><body><h1>Signed in</h1><p>You can close this window and return to the terminal.</p></body></html>")
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
