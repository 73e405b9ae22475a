package ocr

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/nutriguard/internal/application"
	"github.com/bryanwahyu/nutriguard/internal/domain/images"
	domain "github.com/bryanwahyu/nutriguard/internal/domain/ocr"
)

var ErrNoImages = errors.New("no image provided")

// Upload is one label photo received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Service archives uploaded photos (when a store is configured) and reads their text.
type Service struct {
	Extractor domain.Extractor
	Images    images.Store
	Clock     application.Clock
	Log       *zap.Logger
}

func NewService(extractor domain.Extractor, store images.Store, clock application.Clock, log *zap.Logger) *Service {
	if clock == nil {
		clock = application.SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Extractor: extractor, Images: store, Clock: clock, Log: log}
}

// Extract reads every upload in order. Texts are joined by a blank line and the
// confidence is the mean over all images.
func (s *Service) Extract(ctx context.Context, uploads []Upload) (domain.Extraction, error) {
	if len(uploads) == 0 {
		return domain.Extraction{}, ErrNoImages
	}

	texts := make([]string, 0, len(uploads))
	var total float64
	for i, up := range uploads {
		s.archive(ctx, up)

		ex, err := s.Extractor.Extract(ctx, up.Data)
		if err != nil {
			if !errors.Is(err, domain.ErrExtractionFailed) {
				err = fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
			}
			return domain.Extraction{}, fmt.Errorf("image %d (%s): %w", i+1, up.Filename, err)
		}
		if t := strings.TrimSpace(ex.Text); t != "" {
			texts = append(texts, t)
		}
		total += ex.Confidence
	}

	return domain.Extraction{
		Text:       strings.Join(texts, "\n\n"),
		Confidence: total / float64(len(uploads)),
	}, nil
}

// archive is best effort, a failed upload never blocks extraction
func (s *Service) archive(ctx context.Context, up Upload) {
	if s.Images == nil {
		return
	}
	ext := strings.ToLower(filepath.Ext(up.Filename))
	key := fmt.Sprintf("labels/%s/%s%s", s.Clock.Now().Format("2006/01/02"), uuid.NewString(), ext)
	url, err := s.Images.Put(ctx, key, up.Data, up.ContentType)
	if err != nil {
		s.Log.Warn("archive label image failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.Log.Debug("label image archived", zap.String("url", url))
}
