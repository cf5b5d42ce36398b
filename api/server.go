package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/tonypoem-foundation/site-backend/auth"
	"github.com/tonypoem-foundation/site-backend/config"
	"github.com/tonypoem-foundation/site-backend/content"
	"github.com/tonypoem-foundation/site-backend/counter"
	"github.com/tonypoem-foundation/site-backend/services"
)

// Dependencies are the collaborators the handlers share.
type Dependencies struct {
	Repository *content.Repository
	Sessions   *auth.Sessions
	Notifier   services.Notifier
	Guard      *content.Guard
	BlobFiles  BlobFiles // optional, set when uploads are stored in process
}

// BlobFiles serves stored uploads whose URLs start with MountPath.
type BlobFiles interface {
	http.Handler
	MountPath() string
}

type Server struct {
	*http.Server
	startupTime time.Time
}

// NewServer builds the HTTP server. Repository, Sessions and Notifier are
// required; a nil Guard gets a fresh one.
func NewServer(deps Dependencies, c map[string]string) (Server, error) {
	var missing []string
	if deps.Repository == nil {
		missing = append(missing, "repository")
	}
	if deps.Sessions == nil {
		missing = append(missing, "sessions")
	}
	if deps.Notifier == nil {
		missing = append(missing, "notifier")
	}
	if len(missing) > 0 {
		return Server{}, fmt.Errorf("server dependencies missing: %s", strings.Join(missing, ", "))
	}

	startupTime := time.Now()
	seconds := func(key string) time.Duration {
		return time.Duration(config.GetInt(c, key, 180)) * time.Second
	}

	server := &http.Server{
		Addr:         net.JoinHostPort("0.0.0.0", config.GetString(c, "PORT", "8080")),
		Handler:      newRouter(deps, withConfig(c), withStartupTime(startupTime)),
		ReadTimeout:  seconds("READ_TIMEOUT_SECONDS"),
		WriteTimeout: seconds("WRITE_TIMEOUT_SECONDS"),
		IdleTimeout:  seconds("IDLE_TIMEOUT_SECONDS"),
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config      map[string]string
	startupTime time.Time
}

// routerSettings are the config values handlers read once at startup.
type routerSettings struct {
	frameInterval time.Duration
	secureCookies bool
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(deps Dependencies, opts ...func(*router)) *chi.Mux {
	var router router
	for _, opt := range opts {
		opt(&router)
	}
	if deps.Guard == nil {
		deps.Guard = content.NewGuard()
	}

	settings := routerSettings{
		frameInterval: config.GetDuration(router.config, "IMPACT_FRAME_INTERVAL", 50*time.Millisecond),
		secureCookies: config.GetBool(router.config, "SECURE_COOKIES", true),
	}
	if settings.frameInterval < counter.FrameInterval {
		settings.frameInterval = counter.FrameInterval
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(RecoverPanics)

	handlers := initializeHandlers(deps, settings)
	authMiddleware := newAuthMiddleware(deps.Sessions)

	acceptedOrigins := config.GetList(router.config, "ACCEPTED_ORIGINS")
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins))
	chiRouter.Use(corsMiddleware(acceptedOrigins))
	if config.GetBool(router.config, "HTTP_LOGGING", true) {
		chiRouter.Use(RequestLogger)
	}

	setupPublicRoutes(chiRouter, handlers)
	setupBlobRoutes(chiRouter, deps.BlobFiles)
	setupAdminRoutes(chiRouter, handlers, authMiddleware)
	setupFallbackRoutes(chiRouter)

	log.Info().Time("startupTime", router.startupTime).Strs("acceptedOrigins", acceptedOrigins).Msg("Router initialized")
	return chiRouter
}

// Start blocks in ListenAndServe and reports its result on errChannel.
func (s Server) Start(errChannel chan<- error) {
	log.Info().Str("addr", s.Addr).Msg("Server listening")
	errChannel <- s.ListenAndServe()
}

// ShutdownGracefully drains open connections, including impact streams,
// for at most timeout.
func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Dur("timeout", timeout).Msg("Draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server did not shut down cleanly")
		return
	}
	log.Info().Dur("uptime", time.Since(s.startupTime)).Msg("Server stopped")
}
