package web

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plant-identifier/backend/internal/models"
)

func renderDoc(t *testing.T, r *Renderer, name string, data interface{}) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, name, data, nil))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestRenderer_Pages(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	tests := []struct {
		page    string
		heading string
	}{
		{"index", "Plant Identifier"},
		{"about", "About Us"},
		{"faq", "Frequently Asked Questions"},
		{"contact", "Contact Us"},
	}
	for _, tt := range tests {
		t.Run(tt.page, func(t *testing.T) {
			doc := renderDoc(t, r, tt.page, NewPageData(tt.page, ""))
			assert.Equal(t, tt.heading, strings.TrimSpace(doc.Find("main h1").First().Text()))
			assert.Equal(t, 4, doc.Find("nav li").Length())
			assert.Equal(t, 1, doc.Find("nav a.active").Length())
		})
	}
}

func TestRenderer_UnknownPage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	assert.Error(t, r.Render(&bytes.Buffer{}, "privacy", NewPageData("privacy", ""), nil))
}

func TestRenderer_IndexForm(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	doc := renderDoc(t, r, "index", NewPageData("index", ""))
	form := doc.Find("form#identify-form")
	assert.Equal(t, "/identify", form.AttrOr("action", ""))
	assert.Equal(t, "multipart/form-data", form.AttrOr("enctype", ""))
	assert.Equal(t, "image", form.Find("input[type=file]").AttrOr("name", ""))
	assert.Equal(t, "empty", doc.Find("#result").AttrOr("data-state", ""))
}

func TestRenderer_ResultHealthyHidesPreventiveMeasures(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	view := &ResultView{Record: &models.PlantRecord{
		Name:               "Rose",
		ScientificName:     "Rosa",
		HealthStatus:       "Healthy",
		CareInstructions:   []string{"Water daily"},
		PreventiveMeasures: []string{"Should not be shown"},
	}}
	doc := renderDoc(t, r, ResultName, view)

	assert.Equal(t, "Rose", strings.TrimSpace(doc.Find(".plant-name").Text()))
	assert.Equal(t, "Rosa", strings.TrimSpace(doc.Find(".scientific").Text()))
	assert.Equal(t, "Healthy", doc.Find(".health .healthy").Text())
	assert.Equal(t, 0, doc.Find(".preventive").Length())
	assert.NotContains(t, doc.Text(), "Should not be shown")
	assert.Equal(t, 1, doc.Find(".care li").Length())
}

func TestRenderer_ResultInfectedShowsPreventiveMeasures(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	view := &ResultView{Record: &models.PlantRecord{
		Name:               "Tomato",
		HealthStatus:       "Early blight",
		PreventiveMeasures: []string{"Rotate crops", "Remove infected leaves"},
	}}
	doc := renderDoc(t, r, ResultName, view)

	assert.Equal(t, "Early blight", doc.Find(".health .unhealthy").Text())
	assert.Equal(t, 2, doc.Find(".preventive li").Length())
	assert.Equal(t, 0, doc.Find(".care").Length())
}

func TestRenderer_ResultUnknownFields(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	doc := renderDoc(t, r, ResultName, &ResultView{Record: &models.PlantRecord{Family: "Rosaceae"}})
	var cells []string
	doc.Find(".info td").Each(func(_ int, s *goquery.Selection) {
		cells = append(cells, s.Text())
	})
	assert.Equal(t, []string{"Rosaceae", "Unknown", "Unknown", "Unknown"}, cells)
	assert.Equal(t, 0, doc.Find(".health").Length())
}

func TestRenderer_ResultError(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	doc := renderDoc(t, r, ResultName, &ResultView{Error: "No JSON data found in response"})
	assert.Equal(t, "error", doc.Find("#result").AttrOr("data-state", ""))
	assert.Equal(t, "Error: No JSON data found in response", strings.TrimSpace(doc.Find(".error").Text()))
	assert.Equal(t, 0, doc.Find(".card").Length())
}

func TestPreviewURL(t *testing.T) {
	assert.Empty(t, PreviewURL(models.UploadedImage{}))
	assert.Empty(t, PreviewURL(models.UploadedImage{MIMEType: "text/plain", Data: []byte("hi")}))

	url := PreviewURL(models.UploadedImage{MIMEType: "image/png", Data: []byte("png")})
	assert.Equal(t, "data:image/png;base64,cG5n", string(url))
}

func TestRegisterStaticRoutes(t *testing.T) {
	e := echo.New()
	require.NoError(t, RegisterStaticRoutes(e))

	for _, path := range []string{"/static/app.js", "/static/styles.css"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotEmpty(t, rec.Body.String())
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/missing.js", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
