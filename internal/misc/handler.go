package misc

import (
	"net/http"
	"strings"

	"github.com/fittrack/backend/internal/auth"
	"github.com/fittrack/backend/internal/middleware"
	"github.com/fittrack/backend/internal/telemetry/metrics"
	"github.com/fittrack/backend/internal/telemetry/tracing"
	"github.com/fittrack/backend/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type tokenInvalidator interface {
	Invalidate(token string)
}

type Handler struct {
	versionInfo      string
	authService      *auth.Service
	tokenInvalidator tokenInvalidator
}

func NewHandler(
	versionInfo string,
	authService *auth.Service,
	tokenInvalidator tokenInvalidator,
) *Handler {
	return &Handler{
		versionInfo:      versionInfo,
		authService:      authService,
		tokenInvalidator: tokenInvalidator,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/ping", handler.handlePing).Methods("GET").Name("ping")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")

	authSubrouter := mainRouter.PathPrefix("/a").Subrouter()
	authSubrouter.
		HandleFunc("/logout", handler.handleLogout).
		Methods("GET", "OPTIONS").Name("logout")

	// rate limit the /logout endpoint to prevent abuse
	authSubrouter.Use(middleware.RateLimit(rateLimiter, "logout", 15, metricsManager))
	authSubrouter.Use(middleware.Cors())
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func (handler *Handler) handlePing(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "pong")
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.logout")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	authToken, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	authToken = strings.TrimSpace(authToken)
	if !found || authToken == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedOut, err := handler.authService.Logout(r.Context(), authToken)
	if err != nil {
		log.Tracef("[failed logout] => %s: %s", r.URL.Path, err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	if !loggedOut {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	// the short-lived token cache must not outlive the session
	handler.tokenInvalidator.Invalidate(authToken)

	log.Tracef("logout success")
	pkg.WriteTextResponseOK(w, "logged-out")
}
