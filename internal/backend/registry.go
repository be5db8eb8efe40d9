package backend

import (
	"context"

	"github.com/adhuhaam/laraos-sub001/internal/config"
	"github.com/adhuhaam/laraos-sub001/internal/logger"
)

// BuildAdapters constructs the adapters for every backend named in the
// configured priority order and returns them alongside the full descriptor
// table. Availability is decided here, once per process: a backend whose
// credentials are missing (or whose client cannot be constructed) is listed
// as unavailable and never consulted again. The orchestrator receives only
// the available adapters, already in priority order.
func BuildAdapters(ctx context.Context, cfg *config.Config) ([]Adapter, []Descriptor) {
	log := logger.WithComponent("backend-registry")

	var adapters []Adapter
	var descriptors []Descriptor

	for _, name := range cfg.BackendOrder {
		adapter := buildAdapter(ctx, cfg, name)
		descriptors = append(descriptors, Descriptor{Name: name, Available: adapter != nil})
		if adapter != nil {
			adapters = append(adapters, adapter)
			log.Info().Str("backend", name).Msg("backend available")
		} else {
			log.Info().Str("backend", name).Msg("backend not configured, skipping")
		}
	}

	return adapters, descriptors
}

func buildAdapter(ctx context.Context, cfg *config.Config, name string) Adapter {
	log := logger.WithComponent("backend-registry")

	switch name {
	case "google-vision":
		if !config.HasGoogleCredentials() {
			return nil
		}
		b, err := NewGoogleVisionBackend(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Google Vision backend unavailable")
			return nil
		}
		return b

	case "document-ai":
		if !config.HasGoogleCredentials() || cfg.DocumentAIProcessorID == "" {
			return nil
		}
		b, err := NewDocumentAIBackend(ctx, DocumentAIConfig{
			ProjectID:   cfg.GoogleCloudProject,
			Location:    cfg.GoogleCloudLocation,
			ProcessorID: cfg.DocumentAIProcessorID,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Document AI backend unavailable")
			return nil
		}
		return b

	case "ocrspace":
		if len(cfg.OCRSpaceAPIKeys) == 0 {
			return nil
		}
		b, err := NewOCRSpaceBackend(cfg.OCRSpaceAPIKeys, cfg.OCRSpaceURL)
		if err != nil {
			log.Warn().Err(err).Msg("OCR.space backend unavailable")
			return nil
		}
		return b

	case "openai-vision":
		if cfg.OpenAIAPIKey == "" {
			return nil
		}
		b, err := NewOpenAIBackend(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			log.Warn().Err(err).Msg("OpenAI vision backend unavailable")
			return nil
		}
		return b

	case "tesseract":
		if !cfg.TesseractEnabled {
			return nil
		}
		return NewTesseractBackend()
	}

	return nil
}
