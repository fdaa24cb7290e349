// Package web provides the embedded pages, templates and static assets of the
// identify UI.
package web

import (
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/plant-identifier/backend/internal/models"
)

//go:embed templates/*.html static/*
var files embed.FS

// Pages rendered inside the layout.
var pageNames = []string{"index", "about", "faq", "contact"}

// ResultName is the template name of the result panel partial.
const ResultName = "result"

// PageData is the data passed to every full page.
type PageData struct {
	Title   string
	Active  string
	Year    int
	Preview template.URL
	Result  *ResultView
}

// ResultView is the result panel: either a record or an error message.
type ResultView struct {
	Record  *models.PlantRecord
	Error   string
	Preview template.URL
}

// NewPageData fills the layout fields for page name.
func NewPageData(name, title string) PageData {
	return PageData{
		Title:  title,
		Active: name,
		Year:   time.Now().Year(),
	}
}

// PreviewURL returns a data URI for showing img inline. Non-image types get no preview.
func PreviewURL(img models.UploadedImage) template.URL {
	if img.Empty() || !img.IsImageType() {
		return ""
	}
	return template.URL("data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data))
}

var funcs = template.FuncMap{
	"orUnknown": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "Unknown"
		}
		return s
	},
}

// Renderer implements echo.Renderer over the embedded templates.
// Each page gets its own template set so their "content" blocks do not collide.
type Renderer struct {
	base  *template.Template
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	base, err := template.New("base").Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/result.html")
	if err != nil {
		return nil, fmt.Errorf("parsing layout templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning layout for %s: %w", name, err)
		}
		page, err := clone.ParseFS(files, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing page %s: %w", name, err)
		}
		pages[name] = page
	}

	return &Renderer{base: base, pages: pages}, nil
}

// Render renders a full page by name, or the result partial for ResultName.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	if name == ResultName {
		return r.base.ExecuteTemplate(w, "result", data)
	}
	page, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return page.ExecuteTemplate(w, "layout", data)
}

// StaticFS returns the embedded static assets with static/ as root.
func StaticFS() (fs.FS, error) {
	return fs.Sub(files, "static")
}

// RegisterStaticRoutes serves the embedded assets under /static/.
func RegisterStaticRoutes(e *echo.Echo) error {
	staticFS, err := StaticFS()
	if err != nil {
		return err
	}
	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
	e.GET("/static/*", echo.WrapHandler(fileServer))
	return nil
}
