package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	domain "github.com/bryanwahyu/nutriguard/internal/domain/analysis"
)

const DefaultTimeout = 30 * time.Second

// Service is the analysis engine: validate, prompt, invoke once, parse and repair,
// fall back on any failure.
type Service struct {
	model   domain.Model
	prompts domain.PromptBuilder
	timeout time.Duration
	log     *zap.Logger
}

// NewService wires the engine. A nil model behaves as missing credentials; a nil
// prompt builder is a wiring bug and panics.
func NewService(model domain.Model, prompts domain.PromptBuilder, timeout time.Duration, log *zap.Logger) *Service {
	if prompts == nil {
		panic("analysis: nil prompt builder")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{model: model, prompts: prompts, timeout: timeout, log: log}
}

// Analyze always returns a structurally valid result for a valid request.
// The only error it returns is a *domain.ValidationError, before any model call.
func (s *Service) Analyze(ctx context.Context, req domain.Request) (domain.Result, domain.Outcome, error) {
	if err := req.Validate(); err != nil {
		return domain.Result{}, domain.Outcome{}, err
	}

	start := time.Now()
	res, err := s.invoke(ctx, req)
	if err == nil {
		s.log.Info("analysis completed",
			zap.String("age_group", string(req.AgeGroup)),
			zap.String("product", res.ProductName),
			zap.String("suitability", string(res.Suitability)),
			zap.Duration("took", time.Since(start)),
		)
		return res, domain.Outcome{Source: domain.SourceModel}, nil
	}

	s.log.Warn("analysis fell back",
		zap.String("age_group", string(req.AgeGroup)),
		zap.String("reason", string(domain.Classify(err))),
		zap.Duration("took", time.Since(start)),
		zap.Error(err),
	)
	return domain.Fallback(req, err), domain.Outcome{Source: domain.SourceFallback, Failure: err}, nil
}

func (s *Service) invoke(ctx context.Context, req domain.Request) (domain.Result, error) {
	if s.model == nil {
		return domain.Result{}, domain.ErrMissingCredentials
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.model.Complete(ctx, s.prompts.Build(req))
	if err != nil {
		if errors.Is(err, domain.ErrMissingCredentials) || errors.Is(err, domain.ErrTransportFailure) {
			return domain.Result{}, err
		}
		return domain.Result{}, fmt.Errorf("%w: %w", domain.ErrTransportFailure, err)
	}
	return domain.ParseModelOutput(text)
}
