package echoapi

import (
	"context"
	"net/http"
	"os"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/campusconnect/hub/core"
	"github.com/campusconnect/hub/core/analytics"
	"github.com/campusconnect/hub/core/event"
	"github.com/campusconnect/hub/core/news"
	"github.com/campusconnect/hub/core/resource"
	"github.com/campusconnect/hub/core/user"
)

type (
	// Deps holds what the HTTP layer needs from the rest of the app.
	Deps struct {
		Logger       core.Logger
		UserSvc      user.ServiceInterface
		NewsSvc      news.ServiceInterface
		EventSvc     event.ServiceInterface
		ResourceSvc  resource.ServiceInterface
		AnalyticsSvc analytics.ServiceInterface
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		addr       string
		shutdown   chan<- os.Signal
		deps       *Deps
		app        *echo.Echo
		validate   *validator.Validate
		translator ut.Translator
	}
)

var _ Server = (*server)(nil)

func NewServer(addr string, shutdown chan<- os.Signal, deps *Deps) Server {
	s := &server{
		addr:     addr,
		shutdown: shutdown,
		deps:     deps,
		app:      echo.New(),
	}
	s.validate, s.translator = core.NewValidator()
	user.RegisterValidators(s.validate, s.translator)
	s.setup()
	return s
}

// signalShutdown asks main to gracefully bring the whole app down.
func (s *server) signalShutdown() {
	if s.shutdown != nil {
		s.shutdown <- syscall.SIGTERM
	}
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !core.Conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.translator, s.signalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	configureAuth()
	jwt := middleware.JWTWithConfig(appJWTConfig)
	optionalAuth := optionalAuthMiddleware()

	v1 := s.app.Group("/v1")
	registerUserAPI(v1, jwt, s.deps.UserSvc, s.validate)
	registerNewsAPI(v1, jwt, s.deps.NewsSvc, s.deps.UserSvc, s.validate)
	registerEventAPI(v1, jwt, optionalAuth, s.deps.EventSvc, s.deps.UserSvc, s.validate)
	registerResourceAPI(v1, jwt, s.deps.ResourceSvc, s.validate)
	registerAdminAPI(v1, jwt, s.deps.AnalyticsSvc)
}

func (s *server) Start() error {
	return s.app.Start(s.addr)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to CampusConnect API!")
}
