// handlers_pages.go - HTML page handlers
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/plant-identifier/backend/internal/web"
)

// PageHandlerImpl implements the PageHandler interface.
// Pages are rendered through the echo.Renderer installed on the Echo instance.
type PageHandlerImpl struct {
	identifier Identifier
}

// NewPageHandler creates a new page handler
func NewPageHandler(identifier Identifier) PageHandler {
	return &PageHandlerImpl{
		identifier: identifier,
	}
}

// HandleIndex renders the upload page with an empty result panel.
func (h *PageHandlerImpl) HandleIndex(c echo.Context) error {
	return c.Render(http.StatusOK, "index", web.NewPageData("index", ""))
}

// HandleIdentifyForm runs an identification from a form post and renders the
// outcome. With ?partial=1 only the result panel is returned, which is what
// the page script swaps in; otherwise the whole page is rendered.
func (h *PageHandlerImpl) HandleIdentifyForm(c echo.Context) error {
	status := http.StatusOK
	view := &web.ResultView{}

	img, err := readUploadedImage(c)
	if err == nil {
		view.Preview = web.PreviewURL(img)
		rec, idErr := h.identifier.Identify(c.Request().Context(), img)
		if idErr == nil {
			view.Record = rec
		}
		err = idErr
	}
	if err != nil {
		apiErr := FromIdentifyError(err)
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			apiErr = &APIError{Status: httpErr.Code, Message: http.StatusText(httpErr.Code)}
		}
		status = apiErr.Status
		view.Record = nil
		view.Error = apiErr.Message
	}

	if c.QueryParam("partial") != "" {
		return c.Render(status, web.ResultName, view)
	}

	page := web.NewPageData("index", "")
	page.Preview = view.Preview
	page.Result = view
	return c.Render(status, "index", page)
}

// HandleStaticPage renders one of the informational pages.
func (h *PageHandlerImpl) HandleStaticPage(name, title string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, name, web.NewPageData(name, title))
	}
}
