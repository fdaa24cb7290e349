// handlers_identify.go - Plant identification handlers
package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/plant-identifier/backend/internal/models"
)

// ImageField is the multipart field that carries the photo.
const ImageField = "image"

// MIMEApplicationMsgpack is the content type of msgpack-encoded records.
const MIMEApplicationMsgpack = "application/msgpack"

// IdentifyHandlerImpl implements the IdentifyHandler interface
type IdentifyHandlerImpl struct {
	identifier Identifier
}

// NewIdentifyHandler creates a new identify handler instance
func NewIdentifyHandler(identifier Identifier) IdentifyHandler {
	return &IdentifyHandlerImpl{
		identifier: identifier,
	}
}

// HandleIdentify accepts a multipart image upload and returns the PlantRecord.
// The record is JSON unless the client asks for msgpack in Accept.
func (h *IdentifyHandlerImpl) HandleIdentify(c echo.Context) error {
	img, err := readUploadedImage(c)
	if err != nil {
		return err
	}

	rec, err := h.identifier.Identify(c.Request().Context(), img)
	if err != nil {
		return FromIdentifyError(err)
	}

	if acceptsMsgpack(c) {
		fields, err := rec.AsMap()
		if err != nil {
			return NewInternalError("failed to encode record", err)
		}
		data, err := msgpack.Marshal(fields)
		if err != nil {
			return NewInternalError("failed to encode msgpack", err)
		}
		return c.Blob(http.StatusOK, MIMEApplicationMsgpack, data)
	}

	return c.JSON(http.StatusOK, rec)
}

// readUploadedImage reads the "image" part into memory. A missing part or an
// empty file counts as missing input. Parts without a usable Content-Type are
// sniffed.
func readUploadedImage(c echo.Context) (models.UploadedImage, error) {
	file, err := c.FormFile(ImageField)
	if err != nil {
		var httpErr *echo.HTTPError
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return models.UploadedImage{}, NewMissingInputError()
		case errors.As(err, &httpErr):
			return models.UploadedImage{}, httpErr
		case errors.As(err, &tooLarge):
			return models.UploadedImage{}, echo.ErrStatusRequestEntityTooLarge
		}
		return models.UploadedImage{}, NewBadRequestError("invalid multipart body", err)
	}

	src, err := file.Open()
	if err != nil {
		return models.UploadedImage{}, NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return models.UploadedImage{}, NewInternalError("failed to read uploaded file", err)
	}
	if len(data) == 0 {
		return models.UploadedImage{}, NewMissingInputError()
	}

	mimeType := file.Header.Get(echo.HeaderContentType)
	if mimeType == "" || mimeType == echo.MIMEOctetStream {
		mimeType = http.DetectContentType(data)
	}

	return models.UploadedImage{
		Filename: file.Filename,
		MIMEType: mimeType,
		Data:     data,
	}, nil
}

func acceptsMsgpack(c echo.Context) bool {
	for _, part := range strings.Split(c.Request().Header.Get(echo.HeaderAccept), ",") {
		mediaType, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.EqualFold(mediaType, MIMEApplicationMsgpack) || strings.EqualFold(mediaType, "application/x-msgpack") {
			return true
		}
	}
	return false
}
