package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"tasktracker/infras/identity"
	"tasktracker/infras/otel"
	"tasktracker/shared/constant"
	"tasktracker/shared/failure"
	"tasktracker/transport/http/response"
)

// Auth defines the interface for authentication middleware
type Auth interface {
	Auth(http.Handler) http.Handler
}

type authImpl struct {
	verifier identity.Verifier
	otel     otel.Otel
}

// NewAuthMiddleware creates a new middleware instance
func NewAuthMiddleware(verifier identity.Verifier, otel otel.Otel) Auth {
	return &authImpl{
		verifier: verifier,
		otel:     otel,
	}
}

// Auth verifies the bearer ID token and binds the subject to the request context.
// A missing token is answered with 401 and a rejected one with 403; in both cases
// the next handler never runs.
func (m *authImpl) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "auth.middleware")

		scope.SetAttributes(map[string]any{
			"middleware.type": "auth",
			"http.path":       request.URL.Path,
			"http.method":     request.Method,
		})

		token, err := identity.ExtractTokenFromHeader(request.Header.Get(constant.RequestHeaderAuthorization))
		if err != nil {
			scope.TraceError(err)
			scope.End()

			response.WithError(writer, failure.MissingBearerToken)

			return
		}

		verified, err := m.verifier.Verify(ctx, token)
		if err != nil {
			if errors.Is(err, identity.ErrKeysUnavailable) {
				log.Error().Err(err).Msg("token verification could not reach signing keys")
			} else {
				log.Debug().Err(err).Msg("token rejected")
			}

			scope.TraceError(err)
			scope.End()

			response.WithError(writer, failure.InvalidToken)

			return
		}

		ctx = context.WithValue(request.Context(), constant.ContextKeyUserID, verified.Subject)
		ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, verified.Email)

		scope.End()

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}
