package identify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/plant-identifier/backend/internal/models"
)

// ExtractionMode selects how a model reply is turned into a PlantRecord.
type ExtractionMode string

const (
	// ExtractionBracket slices from the first '{' to the last '}' and decodes
	// leniently: unknown keys and mistyped values are passed through.
	ExtractionBracket ExtractionMode = "bracket"
	// ExtractionStrict uses the same slice but requires exactly one object whose
	// keys and value types match PlantRecord.
	ExtractionStrict ExtractionMode = "strict"
)

// ParseExtractionMode validates a configured mode. Empty means bracket.
func ParseExtractionMode(s string) (ExtractionMode, error) {
	switch ExtractionMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ExtractionBracket:
		return ExtractionBracket, nil
	case ExtractionStrict:
		return ExtractionStrict, nil
	}
	return "", fmt.Errorf("unknown extraction mode %q (want %q or %q)", s, ExtractionBracket, ExtractionStrict)
}

// ExtractJSON returns the substring from the first '{' to the last '}' inclusive.
// It only isolates the right span when the reply holds exactly one JSON object
// and the surrounding prose has no stray braces.
func ExtractJSON(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return "", ErrNoJSONFound
	}
	return text[start : end+1], nil
}

// ParseRecord decodes an extracted span. Any decode failure is reported as
// ErrMalformedResponse and no partially filled record is returned.
func ParseRecord(span string, mode ExtractionMode) (*models.PlantRecord, error) {
	if mode == ExtractionStrict {
		return parseStrict(span)
	}

	var rec models.PlantRecord
	if err := json.Unmarshal([]byte(span), &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &rec, nil
}

// strictRecord drops PlantRecord's lenient UnmarshalJSON.
type strictRecord models.PlantRecord

func parseStrict(span string) (*models.PlantRecord, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(span)))
	dec.DisallowUnknownFields()

	var rec strictRecord
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after JSON object", ErrMalformedResponse)
	}

	// Decode again through PlantRecord so the reply's keys are kept as received.
	var out models.PlantRecord
	if err := json.Unmarshal([]byte(span), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &out, nil
}
