// Package httpapi exposes the newsdesk extension endpoints over HTTP:
// author profiles, the sign-off workflow and the Crossref deposit export.
package httpapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/meridianpress/newsdesk/internal/logging"
	"github.com/meridianpress/newsdesk/internal/server/assets"
	"github.com/meridianpress/newsdesk/internal/server/auth"
	"github.com/meridianpress/newsdesk/internal/server/crossref"
	"github.com/meridianpress/newsdesk/internal/server/profiles"
	"github.com/meridianpress/newsdesk/internal/server/signoff"
)

type Server struct {
	addr      string
	profiles  *profiles.Service
	signoffs  *signoff.Service
	formatter *crossref.Formatter
	assets    assets.Store
	verifier  *auth.Issuer
	logger    logging.Logger

	limiters *rateLimiters
	httpSrv  *http.Server
}

func NewServer(addr string, profileSvc *profiles.Service, signoffSvc *signoff.Service,
	formatter *crossref.Formatter, assetStore assets.Store, verifier *auth.Issuer, logger logging.Logger) *Server {
	return &Server{
		addr:      addr,
		profiles:  profileSvc,
		signoffs:  signoffSvc,
		formatter: formatter,
		assets:    assetStore,
		verifier:  verifier,
		logger:    logger.With("module", "httpapi"),
		limiters:  newRateLimiters(rate.Limit(5), 20),
	}
}

// Router assembles the route table. Split out from Run so tests can mount
// it on httptest servers.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/author_profiles", s.handleListProfiles)
		r.Get("/author_profiles/{id}", s.handleGetProfile)

		r.Route("/sign_off_requests", func(r chi.Router) {
			r.Post("/{item_id}", s.handleRequestReviews)
			r.Get("/upload-raw/{token}", s.handleAssetDownload)
			r.Get("/{token}", s.handleApprovalView)
			r.Post("/{token}/sign", s.handleSign)
		})

		r.Delete("/items/{item_id}/sign_off/{user_id}", s.handleRemoveSignOff)

		r.Get("/publish/crossref/{item_id}", s.handleCrossrefExport)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         s.addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.ListenAndServe()
	}()

	s.logger.Info(ctx, "http server listening", "addr", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// rateLimiters keeps one token-bucket limiter per key. Keys here are the
// author ids carried by asset tokens, so one leaked link cannot be used to
// hammer the object store.
type rateLimiters struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

func newRateLimiters(limit rate.Limit, burst int) *rateLimiters {
	return &rateLimiters{
		limit:    limit,
		burst:    burst,
		limiters: map[string]*rate.Limiter{},
	}
}

func (rl *rateLimiters) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, ok := rl.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter.Allow()
}
