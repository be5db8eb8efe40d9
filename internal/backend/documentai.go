package backend

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/adhuhaam/laraos-sub001/internal/logger"
)

// DocumentAIConfig locates the Document AI processor used for text
// extraction.
type DocumentAIConfig struct {
	ProjectID   string
	Location    string
	ProcessorID string
}

// DocumentAIBackend recognizes text with a Google Document AI OCR processor.
type DocumentAIBackend struct {
	client *documentai.DocumentProcessorClient
	config DocumentAIConfig
	log    zerolog.Logger
}

// NewDocumentAIBackend creates the backend with credentials from the
// environment. A regional endpoint is selected for non-US locations.
func NewDocumentAIBackend(ctx context.Context, config DocumentAIConfig) (*DocumentAIBackend, error) {
	const op = "NewDocumentAIBackend"

	if config.ProjectID == "" || config.ProcessorID == "" {
		return nil, fmt.Errorf("%s: project ID and processor ID are required", op)
	}
	if config.Location == "" {
		config.Location = "us"
	}

	var opts []option.ClientOption
	if config.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		opts = append(opts, option.WithCredentialsFile(credFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create Document AI client for location %s: %w", op, config.Location, err)
	}

	return &DocumentAIBackend{
		client: client,
		config: config,
		log:    logger.WithComponent("document-ai"),
	}, nil
}

func (b *DocumentAIBackend) Name() string { return "document-ai" }

// Recognize sends the image to the configured processor as a raw document.
func (b *DocumentAIBackend) Recognize(ctx context.Context, image []byte) Result {
	start := time.Now()

	req := &documentaipb.ProcessRequest{
		Name: b.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  image,
				MimeType: "image/png",
			},
		},
	}

	resp, err := b.client.ProcessDocument(ctx, req)
	if err != nil {
		return failure(b.Name(), time.Since(start).Milliseconds(), classifyDocumentAIError(err))
	}
	if resp.Document == nil || strings.TrimSpace(resp.Document.Text) == "" {
		return failure(b.Name(), time.Since(start).Milliseconds(), "no text in Document AI response")
	}

	doc := resp.Document

	// Average the layout confidence of the detected pages (0-1).
	var sum float64
	var count int
	for _, page := range doc.Pages {
		if page.Layout != nil && page.Layout.Confidence > 0 {
			sum += float64(page.Layout.Confidence)
			count++
		}
	}
	confidence := lengthConfidence(doc.Text)
	if count > 0 {
		confidence = sum / float64(count) * 100
	}

	b.log.Debug().
		Int("text_length", len(doc.Text)).
		Float64("confidence", confidence).
		Msg("Document AI processing completed")

	return Result{
		BackendName:   b.Name(),
		RawText:       doc.Text,
		Confidence:    confidence,
		ElapsedMillis: time.Since(start).Milliseconds(),
		Succeeded:     true,
	}
}

func (b *DocumentAIBackend) processorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		b.config.ProjectID, b.config.Location, b.config.ProcessorID)
}

func classifyDocumentAIError(err error) string {
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "PERMISSION_DENIED"):
		return "insufficient permissions for Document AI"
	case strings.Contains(errStr, "QUOTA_EXCEEDED") || strings.Contains(errStr, "RESOURCE_EXHAUSTED"):
		return "Document AI quota exceeded"
	case strings.Contains(errStr, "NOT_FOUND"):
		return "Document AI processor not found"
	case strings.Contains(errStr, "INVALID_ARGUMENT"):
		return "image format not supported by Document AI"
	default:
		return fmt.Sprintf("Document AI call failed: %v", err)
	}
}

// Close closes the underlying Document AI client.
func (b *DocumentAIBackend) Close() error {
	if b.client != nil {
		return b.client.Close()
	}
	return nil
}
