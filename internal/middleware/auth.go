package middleware

import (
	"net/http"
	"strings"

	"github.com/fittrack/backend/internal/auth"
	"github.com/fittrack/backend/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

type AuthMiddlewareHandler struct {
	tokenChecker auth.Checker
	allowedPaths map[string]bool
}

func NewAuthMiddlewareHandler(tokenChecker auth.Checker) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		tokenChecker: tokenChecker,
		allowedPaths: map[string]bool{
			"/":         true,
			"/version":  true,
			"/ping":     true,
			"/a/logout": true,
		},
	}
}

// AuthCheck resolves the bearer token to a user id and stores it in
// the request context. Handlers past this point can rely on
// auth.UserIDFromContext; anything without a valid token gets a 401
// here, except the few public paths.
func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.allowedPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			userID, err := h.tokenChecker.UserID(ctx, token)
			if err != nil {
				log.Tracef("[invalid token] [auth middleware] unauthorized => %s: %s", r.URL.Path, err)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "invalid-auth-token")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(auth.ContextWithUserID(ctx, userID)))
		})
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	token, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found {
		return ""
	}
	return strings.TrimSpace(token)
}
