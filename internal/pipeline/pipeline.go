// Package pipeline orchestrates passport data extraction: input validation,
// image preprocessing, the multi-backend OCR fallback chain, MRZ parsing and
// heuristic field extraction. One Service handles one request at a time per
// call; all state is request-local, so a single Service is safe to share.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adhuhaam/laraos-sub001/internal/backend"
	"github.com/adhuhaam/laraos-sub001/internal/config"
	"github.com/adhuhaam/laraos-sub001/internal/extract"
	"github.com/adhuhaam/laraos-sub001/internal/logger"
	"github.com/adhuhaam/laraos-sub001/internal/mrz"
	"github.com/adhuhaam/laraos-sub001/internal/preprocess"
	"github.com/adhuhaam/laraos-sub001/pkg/models"
)

// Status summarizes one extraction request for the caller.
type Status string

const (
	// StatusSuccess means the key identity fields (passport number and
	// name) were extracted.
	StatusSuccess Status = "success"

	// StatusPartial means at least one field was extracted but the key
	// identity fields are incomplete.
	StatusPartial Status = "partial"

	// StatusAllFailed means nothing usable came back; the caller should
	// route the operator to manual entry.
	StatusAllFailed Status = "all_failed"
)

// Outcome is the full result of one extraction request: the merged record,
// every attempt in order for diagnostics, and the overall status. The
// outcome belongs to the caller once returned; the pipeline keeps nothing.
type Outcome struct {
	RequestID string                  `json:"request_id"`
	Status    Status                  `json:"status"`
	Record    *models.ExtractedRecord `json:"record"`
	Results   []backend.Result        `json:"results"`
	MRZFound  bool                    `json:"mrz_found"`
}

// Progress is an advisory update emitted while the fallback chain runs, for
// UI consumption only.
type Progress struct {
	Backend  string
	Strategy string
	Percent  int
}

// Options tunes the orchestration policy. Zero values fall back to the
// deployment defaults.
type Options struct {
	// MaxSuccesses caps how many successful backend results are collected
	// before the chain stops.
	MaxSuccesses int

	// MinTextLength is the minimum raw text length for a result to count
	// as usable.
	MinTextLength int

	// PerCallTimeout bounds each backend call so one slow provider cannot
	// stall the whole chain.
	PerCallTimeout time.Duration

	// MaxImageBytes caps the accepted upload size.
	MaxImageBytes int64

	// OnProgress, if set, receives advisory progress updates.
	OnProgress func(Progress)
}

// Service drives the extraction pipeline over a fixed, ordered set of
// backend adapters.
type Service struct {
	adapters    []backend.Adapter
	descriptors []backend.Descriptor
	strategies  []preprocess.Strategy
	opts        Options
	log         zerolog.Logger
}

// NewService builds a Service from the startup configuration. Adapter
// availability is computed once here, not per request.
func NewService(ctx context.Context, cfg *config.Config, opts Options) *Service {
	adapters, descriptors := backend.BuildAdapters(ctx, cfg)
	if opts.MaxSuccesses == 0 {
		opts.MaxSuccesses = cfg.MaxSuccesses
	}
	if opts.MinTextLength == 0 {
		opts.MinTextLength = cfg.MinTextLength
	}
	if opts.PerCallTimeout == 0 {
		opts.PerCallTimeout = cfg.PerCallTimeout
	}
	if opts.MaxImageBytes == 0 {
		opts.MaxImageBytes = cfg.MaxImageBytes
	}
	return NewServiceWithAdapters(adapters, descriptors, opts)
}

// NewServiceWithAdapters builds a Service from explicit adapters (for
// testing, or for callers that manage their own registry).
func NewServiceWithAdapters(adapters []backend.Adapter, descriptors []backend.Descriptor, opts Options) *Service {
	if opts.MaxSuccesses <= 0 {
		opts.MaxSuccesses = 3
	}
	if opts.MinTextLength <= 0 {
		opts.MinTextLength = 20
	}
	if opts.PerCallTimeout <= 0 {
		opts.PerCallTimeout = 30 * time.Second
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = 10 * 1024 * 1024
	}
	return &Service{
		adapters:    adapters,
		descriptors: descriptors,
		strategies:  preprocess.Strategies,
		opts:        opts,
		log:         logger.WithComponent("pipeline"),
	}
}

// Descriptors returns the immutable backend capability table.
func (s *Service) Descriptors() []backend.Descriptor {
	return s.descriptors
}

// Extract runs the full pipeline on one uploaded image. The returned Outcome
// always carries the complete attempt list; when no backend produced usable
// text it is returned together with ErrAllBackendsFailed so the caller can
// both show diagnostics and route to manual entry. ErrInvalidInput is
// returned with no Outcome and zero backend attempts.
func (s *Service) Extract(ctx context.Context, image []byte) (*Outcome, error) {
	const op = "Extract"
	requestID := uuid.NewString()
	log := s.log.With().Str("request_id", requestID).Logger()

	if err := s.validateInput(image); err != nil {
		log.Warn().Err(err).Msg("input rejected before any backend attempt")
		return nil, WrapPipelineError(op, err, "")
	}

	outcome := &Outcome{RequestID: requestID, Record: &models.ExtractedRecord{}}

	successes, err := s.runFallbackChain(ctx, image, outcome, log)
	if err != nil {
		log.Warn().Err(err).Msg("input rejected before any backend attempt")
		return nil, WrapPipelineError(op, err, "")
	}
	if successes == 0 {
		outcome.Status = StatusAllFailed
		log.Warn().Int("attempts", len(outcome.Results)).Msg("every backend attempt failed")
		return outcome, WrapPipelineError(op, ErrAllBackendsFailed, "manual entry required")
	}

	best := s.bestResult(outcome.Results)
	fields := mrz.Parse(best.RawText)
	outcome.MRZFound = fields != nil

	outcome.Record = extract.Extract(best.RawText, fields)
	outcome.Status = statusFor(outcome.Record)

	log.Info().
		Str("status", string(outcome.Status)).
		Str("best_backend", best.BackendName).
		Str("best_strategy", best.StrategyName).
		Bool("mrz_found", outcome.MRZFound).
		Int("attempts", len(outcome.Results)).
		Msg("extraction completed")

	return outcome, nil
}

// validateInput applies the size and type gates. A rejected image never
// reaches any backend.
func (s *Service) validateInput(image []byte) error {
	if int64(len(image)) > s.opts.MaxImageBytes {
		return ErrImageTooLarge
	}
	if len(image) == 0 {
		return ErrNotAnImage
	}
	kind := mimetype.Detect(image)
	if !isRasterImage(kind.String()) {
		return ErrNotAnImage
	}
	return nil
}

func isRasterImage(mime string) bool {
	switch mime {
	case "image/jpeg", "image/png", "image/gif", "image/bmp", "image/tiff", "image/webp":
		return true
	}
	return false
}

// runFallbackChain walks backends in priority order. For each backend the
// preprocessing strategies are tried in order until one yields usable text;
// the chain stops early once MaxSuccesses usable results are collected.
// Attempts run strictly sequentially to respect provider rate limits and to
// short-circuit as soon as possible. A source that cannot be decoded at all
// aborts the chain with an error before any backend is consulted.
func (s *Service) runFallbackChain(ctx context.Context, image []byte, outcome *Outcome, log zerolog.Logger) (int, error) {
	variants := map[preprocess.Strategy][]byte{}
	successes := 0
	totalSteps := len(s.adapters) * len(s.strategies)
	step := 0

	for _, adapter := range s.adapters {
		if successes >= s.opts.MaxSuccesses {
			break
		}
		if ctx.Err() != nil {
			break
		}

		for _, strategy := range s.strategies {
			step++
			if ctx.Err() != nil {
				break
			}
			s.emitProgress(adapter.Name(), strategy, step, totalSteps)

			variant, ok := variants[strategy]
			if !ok {
				var err error
				variant, err = preprocess.Apply(image, strategy)
				if err != nil {
					// Decoding the source does not depend on the strategy,
					// so the first failure proves no variant can ever be
					// built. A file whose magic bytes fooled the type gate
					// is still invalid input.
					if errors.Is(err, preprocess.ErrUnsupportedImage) {
						return 0, fmt.Errorf("%w: %v", ErrNotAnImage, err)
					}
					return 0, err
				}
				variants[strategy] = variant
			}

			result := s.attempt(ctx, adapter, strategy, variant)
			outcome.Results = append(outcome.Results, result)

			if result.Succeeded && len(result.RawText) >= s.opts.MinTextLength {
				successes++
				log.Debug().
					Str("backend", result.BackendName).
					Str("strategy", result.StrategyName).
					Float64("confidence", result.Confidence).
					Msg("usable result collected")
				break // next backend
			}
		}
	}
	return successes, nil
}

// attempt runs one backend call under the per-call timeout.
func (s *Service) attempt(ctx context.Context, adapter backend.Adapter, strategy preprocess.Strategy, image []byte) backend.Result {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.PerCallTimeout)
	defer cancel()

	result := adapter.Recognize(callCtx, image)
	result.StrategyName = string(strategy)
	return result
}

// bestResult picks the highest-confidence usable result. Ties keep the
// earlier result, preserving the backend priority order.
func (s *Service) bestResult(results []backend.Result) backend.Result {
	var best backend.Result
	found := false
	for _, r := range results {
		if !r.Succeeded || len(r.RawText) < s.opts.MinTextLength {
			continue
		}
		if !found || r.Confidence > best.Confidence {
			best = r
			found = true
		}
	}
	return best
}

func (s *Service) emitProgress(backendName string, strategy preprocess.Strategy, step, total int) {
	if s.opts.OnProgress == nil {
		return
	}
	percent := 0
	if total > 0 {
		percent = step * 100 / total
	}
	s.opts.OnProgress(Progress{Backend: backendName, Strategy: string(strategy), Percent: percent})
}

func statusFor(rec *models.ExtractedRecord) Status {
	switch {
	case rec.IsEmpty():
		return StatusAllFailed
	case rec.HasIdentity():
		return StatusSuccess
	default:
		return StatusPartial
	}
}
