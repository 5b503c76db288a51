package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/thep200/github-kudos/cfg"
	"github.com/thep200/github-kudos/internal/auth"
	"github.com/thep200/github-kudos/pkg/log"
)

func JSONApi(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		h.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func AccessLog(logger log.Logger, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := log.WithRequestID(r.Context(), uuid.NewString())
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		h.ServeHTTP(rec, r.WithContext(ctx))

		logger.Info(ctx, "%s %s %d %s", r.Method, r.RequestURI, rec.status, time.Since(start).Round(time.Microsecond))
	})
}

// RequireAuth guards everything except the health check.
func RequireAuth(verifier *auth.Verifier, h http.Handler) http.Handler {
	guarded := verifier.Middleware(h)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" || r.Method == http.MethodOptions {
			h.ServeHTTP(w, r)
			return
		}
		guarded.ServeHTTP(w, r)
	})
}

func UseMiddlewares(logger log.Logger, config *cfg.Config, verifier *auth.Verifier, h http.Handler) http.Handler {
	h = JSONApi(h)
	h = RequireAuth(verifier, h)
	corsConfig := cors.New(cors.Options{
		AllowedOrigins: config.Server.AllowedOrigins,
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods: []string{"POST", "PUT", "GET", "PATCH", "OPTIONS", "HEAD", "DELETE"},
		Debug:          strings.EqualFold(config.App.LogLevel, "debug"),
	})
	h = corsConfig.Handler(h)
	return AccessLog(logger, h)
}
