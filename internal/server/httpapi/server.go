// Package httpapi exposes the register service over HTTP: public
// signup/login/checkAuth routes and session-gated register routes, all under
// /api/v1.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/vmatveev/registerd/internal/logging"
	"github.com/vmatveev/registerd/internal/server/config"
	"github.com/vmatveev/registerd/internal/server/models"
	"github.com/vmatveev/registerd/internal/server/services"
)

// SessionCookieName is the name of the cookie carrying the session token.
const SessionCookieName = "registerd_session"

const sessionMaxAge = 30 * 24 * time.Hour

// SessionOptions returns the cookie settings applied to the session store.
func SessionOptions() sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
	}
}

// UserService is the slice of the user service the handlers need.
type UserService interface {
	SignUp(ctx context.Context, username, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (int64, error)
}

// RegisterService is the slice of the register service the handlers need.
type RegisterService interface {
	List(ctx context.Context, userID int64) ([]*models.Register, error)
	Get(ctx context.Context, userID, id int64) (*models.Register, error)
	Create(ctx context.Context, userID int64, input services.RegisterInput) (*models.Register, error)
}

// Server owns the router and translates HTTP traffic into service calls.
type Server struct {
	addr      string
	origins   []string
	logger    logging.Logger
	users     UserService
	registers RegisterService
	store     sessions.Store
}

// NewServer builds a Server from config and injected collaborators.
func NewServer(cfg *config.Config, l logging.Logger, us UserService, rs RegisterService, store sessions.Store) *Server {
	return &Server{
		addr:      cfg.Addr,
		origins:   cfg.Origins(),
		logger:    l.With("module", "httpapi"),
		users:     us,
		registers: rs,
		store:     store,
	}
}

// Router assembles the middleware chain and routes. Exposed separately from
// Run so tests can drive the full chain through httptest.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())
	router.Use(sessions.Sessions(SessionCookieName, s.store))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = s.origins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	api := router.Group("/api/v1")
	{
		api.POST("/users", s.signUp)
		api.POST("/login", s.login)
		api.GET("/checkAuth", s.checkAuth)

		protected := api.Group("")
		protected.Use(s.RequireSession())
		{
			protected.POST("/logout", s.logout)
			protected.GET("/registers", s.listRegisters)
			protected.POST("/registers", s.createRegister)
			protected.GET("/registers/:id", s.getRegister)
		}
	}

	return router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.Router()}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
