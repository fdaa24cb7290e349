package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/plant-identifier/backend/internal/models"
)

// ErrNoImage is returned by Submit when neither a file nor the camera is selected.
var ErrNoImage = errors.New("please select an image or start the camera")

// State is a snapshot of what a front end shows.
type State struct {
	Source       Source
	CameraActive bool
	Processing   bool
	Result       *models.PlantRecord
	Error        string
}

// Session holds one user's image selection and last result. Submissions are
// serialized: a second Submit waits for the first to finish.
type Session struct {
	identifier Identifier
	logger     *zap.Logger
	inflight   *semaphore.Weighted

	mu           sync.Mutex
	source       Source
	camera       FrameSource
	cameraActive bool
	processing   bool
	result       *models.PlantRecord
	errMsg       string
}

// NewSession creates a session that submits through identifier.
func NewSession(identifier Identifier, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		identifier: identifier,
		logger:     logger,
		inflight:   semaphore.NewWeighted(1),
	}
}

// SelectFile makes u the image to submit and turns the camera off.
func (s *Session) SelectFile(u Uploaded) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = u
	s.cameraActive = false
}

// StartCamera switches to camera mode. Any selected file is dropped and the
// frame is grabbed when Submit runs.
func (s *Session) StartCamera(camera FrameSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera = camera
	s.cameraActive = true
	s.source = nil
}

// StopCamera leaves camera mode. A frame already captured stays selected.
func (s *Session) StopCamera() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cameraActive = false
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Source:       s.source,
		CameraActive: s.cameraActive,
		Processing:   s.processing,
		Result:       s.result,
		Error:        s.errMsg,
	}
}

// Submit identifies the selected image. While it runs the previous result
// stays in State. On success the result is replaced and the error cleared;
// on failure the error is set and the result cleared.
func (s *Session) Submit(ctx context.Context) (*models.PlantRecord, error) {
	if err := s.inflight.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.inflight.Release(1)

	src, err := s.currentSource()
	if err != nil {
		return nil, err
	}
	img := src.Image()

	s.mu.Lock()
	s.processing = true
	s.mu.Unlock()

	s.logger.Debug("submitting image",
		zap.String("filename", img.Filename),
		zap.String("mime_type", img.MIMEType),
		zap.Int("bytes", len(img.Data)))
	rec, err := s.identifier.Identify(ctx, img)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.processing = false
	if err != nil {
		s.result = nil
		s.errMsg = ErrorMessage(err)
		return nil, err
	}
	s.result = rec
	s.errMsg = ""
	return rec, nil
}

// currentSource resolves the source to submit, grabbing a camera frame if
// the camera is active.
func (s *Session) currentSource() (Source, error) {
	s.mu.Lock()
	camera, active, src := s.camera, s.cameraActive, s.source
	s.mu.Unlock()

	if active && camera != nil {
		frame, err := camera.Grab()
		if err != nil {
			return nil, fmt.Errorf("capturing frame: %w", err)
		}
		s.mu.Lock()
		s.source = frame
		s.mu.Unlock()
		return frame, nil
	}
	if src == nil {
		return nil, ErrNoImage
	}
	return src, nil
}

// ErrorMessage is the text shown for a failed submission. Service errors are
// shown verbatim.
func ErrorMessage(err error) string {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}
	return err.Error()
}
