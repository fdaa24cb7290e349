// Package client submits plant images to the identify service and keeps the
// state a front end shows: the chosen source, its preview and the last outcome.
package client

import (
	"net/http"

	"github.com/plant-identifier/backend/internal/models"
)

// Source is the image that will be submitted. It is either Uploaded or
// Captured; the unexported method closes the set.
type Source interface {
	Image() models.UploadedImage
	isSource()
}

// Uploaded is a file the user picked.
type Uploaded struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Image implements Source.
func (u Uploaded) Image() models.UploadedImage {
	return models.UploadedImage{
		Filename: u.Name,
		MIMEType: mimeOrSniff(u.MIMEType, u.Data),
		Data:     u.Data,
	}
}

func (Uploaded) isSource() {}

// Captured is a single frame taken from the camera.
type Captured struct {
	MIMEType string
	Data     []byte
}

// Image implements Source. Captured frames have no file name, so one is made up.
func (c Captured) Image() models.UploadedImage {
	mimeType := mimeOrSniff(c.MIMEType, c.Data)
	name := "capture.jpg"
	if mimeType == "image/png" {
		name = "capture.png"
	}
	return models.UploadedImage{
		Filename: name,
		MIMEType: mimeType,
		Data:     c.Data,
	}
}

func (Captured) isSource() {}

func mimeOrSniff(mimeType string, data []byte) string {
	if mimeType != "" {
		return mimeType
	}
	return http.DetectContentType(data)
}
