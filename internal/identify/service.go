// Package identify turns an uploaded plant photo into a PlantRecord by asking a
// multimodal model and extracting the JSON object from its free-text reply.
package identify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/plant-identifier/backend/internal/logging"
	"github.com/plant-identifier/backend/internal/models"
)

// Request is one multimodal call: the fixed prompt plus the inline image.
type Request struct {
	Prompt string
	Image  models.UploadedImage
	// JSONResponse asks the model to constrain its output to a PlantRecord-shaped
	// JSON document. Set in strict extraction mode.
	JSONResponse bool
}

// Model is the upstream generative model. It returns the model's raw text reply.
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Service runs identifications. It holds no per-request state and is safe for
// concurrent use.
type Service struct {
	model  Model
	mode   ExtractionMode
	logger *zap.Logger
}

// NewService creates a Service. A nil logger disables logging.
func NewService(model Model, mode ExtractionMode, logger *zap.Logger) *Service {
	if mode == "" {
		mode = ExtractionBracket
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		model:  model,
		mode:   mode,
		logger: logger,
	}
}

// Mode returns the configured extraction mode.
func (s *Service) Mode() ExtractionMode {
	return s.mode
}

// Identify sends img to the model and parses the reply.
// Errors wrap one of ErrMissingInput, ErrUpstream, ErrNoJSONFound or ErrMalformedResponse.
func (s *Service) Identify(ctx context.Context, img models.UploadedImage) (*models.PlantRecord, error) {
	if img.Empty() {
		return nil, ErrMissingInput
	}

	log := logging.FromContext(ctx, s.logger)
	if !img.IsImageType() {
		log.Warn("forwarding non-image MIME type", zap.String("mime_type", img.MIMEType))
	}

	text, err := s.model.Generate(ctx, Request{
		Prompt:       Prompt,
		Image:        img,
		JSONResponse: s.mode == ExtractionStrict,
	})
	if err != nil {
		log.Error("model call failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	log.Info("raw model response", zap.String("text", text))

	span, err := ExtractJSON(text)
	if err != nil {
		log.Warn("no JSON object in model response", zap.Int("response_len", len(text)))
		return nil, err
	}
	log.Info("extracted JSON", zap.String("json", span))

	rec, err := ParseRecord(span, s.mode)
	if err != nil {
		log.Warn("model response is not valid JSON", zap.String("mode", string(s.mode)), zap.Error(err))
		return nil, err
	}

	log.Info("plant identified",
		zap.String("name", rec.Name),
		zap.String("health_status", rec.HealthStatus),
		zap.Int("image_bytes", len(img.Data)))
	return rec, nil
}
