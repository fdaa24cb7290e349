// routes.go - Route registration helpers
// This file provides a clean way to register all routes and middleware
package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/plant-identifier/backend/internal/config"
	"github.com/plant-identifier/backend/internal/logging"
	"github.com/plant-identifier/backend/internal/web"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Identifier Identifier
	Version    string
	Model      string
	Extraction string
}

// Handlers holds all handler instances
type Handlers struct {
	Health   HealthHandler
	Identify IdentifyHandler
	Pages    PageHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Version, deps.Model, deps.Extraction),
		Identify: NewIdentifyHandler(deps.Identifier),
		Pages:    NewPageHandler(deps.Identifier),
	}
}

// RegisterRoutes registers the API, page and static routes with the Echo instance.
// Page routes need e.Renderer to be set.
func RegisterRoutes(e *echo.Echo, handlers *Handlers) error {
	apiGroup := e.Group("/api")
	apiGroup.GET("/health", handlers.Health.HandleHealth)
	apiGroup.POST("/identify", handlers.Identify.HandleIdentify)

	// HTML pages
	e.GET("/", handlers.Pages.HandleIndex)
	e.POST("/identify", handlers.Pages.HandleIdentifyForm)
	e.GET("/about", handlers.Pages.HandleStaticPage("about", "About"))
	e.GET("/faq", handlers.Pages.HandleStaticPage("faq", "FAQ"))
	e.GET("/contact", handlers.Pages.HandleStaticPage("contact", "Contact"))

	return web.RegisterStaticRoutes(e)
}

// SetupMiddleware configures common middleware and the error handler
func SetupMiddleware(e *echo.Echo, cfg *config.AppConfig, logger *zap.Logger) {
	e.HTTPErrorHandler = ErrorHandler(logger, cfg.Server.ExposeErrorDetails)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(logging.ContextLogger(logger))
	e.Use(logging.RequestLogger(logger))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logging.FromContext(c.Request().Context(), logger).Error("panic recovered",
				zap.Error(err), zap.ByteString("stack", stack))
			return err
		},
	}))

	if cfg.Server.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	}

	if cfg.Server.EnableCORS {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.GetAllowOrigins(),
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	// msgpack and images are already dense; only text responses are compressed.
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().Header.Get(echo.HeaderAccept) == MIMEApplicationMsgpack
		},
	}))
}
