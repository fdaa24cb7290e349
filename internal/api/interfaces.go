// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/plant-identifier/backend/internal/models"
)

// Identifier turns one uploaded image into a PlantRecord.
// identify.Service implements it; tests substitute their own.
type Identifier interface {
	Identify(ctx context.Context, img models.UploadedImage) (*models.PlantRecord, error)
}

// IdentifyHandler handles the JSON/msgpack identification API
type IdentifyHandler interface {
	HandleIdentify(c echo.Context) error
}

// PageHandler handles the HTML pages and the form-post identification flow
type PageHandler interface {
	HandleIndex(c echo.Context) error
	HandleIdentifyForm(c echo.Context) error
	HandleStaticPage(name, title string) echo.HandlerFunc
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
