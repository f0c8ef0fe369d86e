package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/clientdesk/clientdesk/internal/auth"
)

// TokenVerifier checks bearer tokens.
type TokenVerifier interface {
	Verify(token string, expected auth.TokenKind, now time.Time) (auth.Identity, error)
}

// PublicRoute is a method and exact path served without a bearer token.
type PublicRoute struct {
	Method string
	Path   string
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	Tokens TokenVerifier
	Public []PublicRoute
	Now    func() time.Time
}

// Auth returns a middleware that requires a valid access token on every
// request outside the public allow-list. The verified account id is bound
// into the request context.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	public := make(map[PublicRoute]struct{}, len(cfg.Public))
	for _, route := range cfg.Public {
		public[route] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := public[PublicRoute{Method: r.Method, Path: r.URL.Path}]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				logAuthFailure(cfg.Logger, r, "missing_token")
				writeAuthError(w)
				return
			}

			identity, err := cfg.Tokens.Verify(token, auth.KindAccess, now())
			if err != nil {
				logAuthFailure(cfg.Logger, r, failureReason(err))
				writeAuthError(w)
				return
			}

			annotateAccount(r.Context(), identity.AccountID)

			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "expired"
	case errors.Is(err, auth.ErrTokenInvalidKind):
		return "invalid_kind"
	case errors.Is(err, auth.ErrTokenSignature):
		return "invalid_signature"
	default:
		return "malformed"
	}
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	if logger == nil {
		return
	}
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same body for all auth failures.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Invalid or missing access token","code":"UNAUTHENTICATED"}`))
}
