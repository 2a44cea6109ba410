package identity

//go:generate go run go.uber.org/mock/mockgen -source=./identity.go -destination=./mocks/identity_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/rs/zerolog/log"

	"tasktracker/config"
	"tasktracker/shared/constant"
)

const (
	clockSkew           = 5 * time.Minute
	maxSubjectLength    = 128
	refreshTimeout      = 5 * time.Second
)

var (
	ErrMissingToken    = errors.New("missing bearer token")
	ErrInvalidToken    = errors.New("invalid token")
	ErrExpiredToken    = errors.New("token has expired")
	ErrInvalidClaim    = errors.New("invalid token claim")
	ErrKeysUnavailable = errors.New("signing keys unavailable")
	ErrMissingProject  = errors.New("identity project id is not configured")
)

// Identity is the verified holder of an ID token.
type Identity struct {
	Subject        string
	Email          string
	SignInProvider string
	ExpiresAt      time.Time
}

// Verifier checks ID tokens issued by the identity provider.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

type claims struct {
	Email    string `json:"email,omitempty"`
	AuthTime int64  `json:"auth_time,omitempty"`
	Firebase struct {
		SignInProvider string `json:"sign_in_provider,omitempty"`
	} `json:"firebase"`
	jwt.RegisteredClaims
}

type Options struct {
	ProjectID    string
	IssuerPrefix string
	JWKSURL      string
	HTTPClient   *http.Client
}

type verifier struct {
	projectID string
	issuer    string
	jwksURL   string
	keys      *jwk.Cache
	now       func() time.Time
}

// New builds the verifier from configuration. The project id falls back to the
// project_id field of the service account credentials file.
func New(cfg *config.Config) (Verifier, error) {
	projectID, err := ResolveProjectID(cfg.Identity.ProjectID, cfg.Identity.CredentialsFile)
	if err != nil {
		return nil, err
	}

	return NewVerifier(context.Background(), Options{
		ProjectID:    projectID,
		IssuerPrefix: cfg.Identity.IssuerPrefix,
		JWKSURL:      cfg.Identity.JWKSURL,
	})
}

func NewVerifier(ctx context.Context, opts Options) (Verifier, error) {
	if opts.ProjectID == "" {
		return nil, ErrMissingProject
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	cache, err := jwk.NewCache(ctx, httprc.NewClient(httprc.WithHTTPClient(httpClient)))
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS cache: %w", err)
	}

	// Nothing is fetched here; keySet loads the set on first use.
	if err := cache.Register(ctx, opts.JWKSURL, jwk.WithWaitReady(false)); err != nil {
		return nil, fmt.Errorf("failed to register JWKS url: %w", err)
	}

	return &verifier{
		projectID: opts.ProjectID,
		issuer:    opts.IssuerPrefix + opts.ProjectID,
		jwksURL:   opts.JWKSURL,
		keys:      cache,
		now:       time.Now,
	}, nil
}

// ResolveProjectID prefers the explicit id and otherwise reads it from the credentials file.
func ResolveProjectID(projectID, credentialsFile string) (string, error) {
	if projectID != "" {
		return projectID, nil
	}

	if credentialsFile == "" {
		return "", ErrMissingProject
	}

	raw, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", fmt.Errorf("failed to read credentials file: %w", err)
	}

	var credentials struct {
		ProjectID string `json:"project_id"`
	}

	if err = json.Unmarshal(raw, &credentials); err != nil {
		return "", fmt.Errorf("failed to parse credentials file: %w", err)
	}

	if credentials.ProjectID == "" {
		return "", ErrMissingProject
	}

	return credentials.ProjectID, nil
}

func (v *verifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	var parsed claims

	_, err := jwt.ParseWithClaims(token, &parsed, func(token *jwt.Token) (any, error) {
		return v.signingKey(ctx, token)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.projectID),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, ErrKeysUnavailable):
			return nil, err
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenInvalidAudience), errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
			return nil, fmt.Errorf("%w: %w", ErrInvalidClaim, err)
		default:
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
	}

	if parsed.Subject == "" || len(parsed.Subject) > maxSubjectLength {
		return nil, fmt.Errorf("%w: sub", ErrInvalidClaim)
	}

	if parsed.AuthTime > v.now().Add(clockSkew).Unix() {
		return nil, fmt.Errorf("%w: auth_time", ErrInvalidClaim)
	}

	return &Identity{
		Subject:        parsed.Subject,
		Email:          parsed.Email,
		SignInProvider: parsed.Firebase.SignInProvider,
		ExpiresAt:      parsed.ExpiresAt.Time,
	}, nil
}

// keySet returns the cached key set, fetching it synchronously while the cache
// holds none. A failed fetch leaves the url registered for the next call.
func (v *verifier) keySet(ctx context.Context) (jwk.Set, error) {
	if keySet, err := v.keys.Lookup(ctx, v.jwksURL); err == nil {
		return keySet, nil
	}

	refreshCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	keySet, err := v.keys.Refresh(refreshCtx, v.jwksURL)
	if err != nil {
		log.Error().Err(err).Str("url", v.jwksURL).Msg("failed to fetch JWKS")

		return nil, fmt.Errorf("%w: %w", ErrKeysUnavailable, err)
	}

	return keySet, nil
}

func (v *verifier) signingKey(ctx context.Context, token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}

	kid, ok := token.Header["kid"].(string)
	if !ok || kid == "" {
		return nil, errors.New("token header missing kid")
	}

	keySet, err := v.keySet(ctx)
	if err != nil {
		return nil, err
	}

	key, found := keySet.LookupKeyID(kid)
	if !found {
		return nil, fmt.Errorf("key ID %s not found in JWKS", kid)
	}

	var rawKey any
	if err := jwk.Export(key, &rawKey); err != nil {
		return nil, fmt.Errorf("failed to export raw key: %w", err)
	}

	return rawKey, nil
}

// ExtractTokenFromHeader returns the token of a "Bearer <token>" header. The scheme
// is matched case-insensitively and any other scheme counts as no token.
func ExtractTokenFromHeader(authHeader string) (string, error) {
	scheme, token, found := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !found || !strings.EqualFold(scheme, constant.AuthorizationSchemeBearer) {
		return "", ErrMissingToken
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}

	return token, nil
}
