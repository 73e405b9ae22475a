package ocr

import (
	"context"
	"errors"
)

var ErrExtractionFailed = errors.New("text extraction failed")

// Extraction is the text read from one image. Confidence is 0-100.
type Extraction struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Extractor wraps an OCR engine.
type Extractor interface {
	Extract(ctx context.Context, image []byte) (Extraction, error)
}
