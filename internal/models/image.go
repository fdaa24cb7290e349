package models

import "strings"

// UploadedImage is the binary payload of one identification request.
// It is owned by the request that carries it and is never persisted.
type UploadedImage struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Empty reports whether there is no payload to send.
func (img UploadedImage) Empty() bool {
	return len(img.Data) == 0
}

// IsImageType reports whether the declared MIME type is an image/* type.
func (img UploadedImage) IsImageType() bool {
	return strings.HasPrefix(strings.ToLower(img.MIMEType), "image/")
}
