package backend

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/adhuhaam/laraos-sub001/internal/logger"
)

// GoogleVisionBackend recognizes text with the Cloud Vision document text
// detection feature. It reports the API's own page confidence.
type GoogleVisionBackend struct {
	client *vision.ImageAnnotatorClient
	log    zerolog.Logger
}

// NewGoogleVisionBackend creates the backend with credentials from the
// environment: GOOGLE_CREDENTIALS inline JSON first, then a
// GOOGLE_APPLICATION_CREDENTIALS file path, then application default
// credentials.
func NewGoogleVisionBackend(ctx context.Context) (*GoogleVisionBackend, error) {
	const op = "NewGoogleVisionBackend"

	var opts []option.ClientOption
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		opts = append(opts, option.WithCredentialsFile(credFile))
	}

	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create Vision client: %w", op, err)
	}

	return &GoogleVisionBackend{
		client: client,
		log:    logger.WithComponent("google-vision"),
	}, nil
}

// NewGoogleVisionBackendWithClient creates the backend with an explicit
// client (for testing).
func NewGoogleVisionBackendWithClient(client *vision.ImageAnnotatorClient) *GoogleVisionBackend {
	return &GoogleVisionBackend{client: client, log: logger.WithComponent("google-vision")}
}

func (b *GoogleVisionBackend) Name() string { return "google-vision" }

// Recognize runs document text detection on one encoded image.
func (b *GoogleVisionBackend) Recognize(ctx context.Context, image []byte) Result {
	start := time.Now()

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: image},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := b.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return failure(b.Name(), time.Since(start).Milliseconds(), fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return failure(b.Name(), time.Since(start).Milliseconds(), "no response from Vision API")
	}

	imgResp := resp.Responses[0]
	if imgResp.Error != nil {
		return failure(b.Name(), time.Since(start).Milliseconds(), fmt.Sprintf("Vision API error: %s", imgResp.Error.Message))
	}

	annotation := imgResp.FullTextAnnotation
	if annotation == nil || strings.TrimSpace(annotation.Text) == "" {
		return failure(b.Name(), time.Since(start).Milliseconds(), "no text detected")
	}

	// Average the per-page confidence the API reports (0-1).
	var sum float64
	var count int
	for _, page := range annotation.Pages {
		if page.Confidence > 0 {
			sum += float64(page.Confidence)
			count++
		}
	}
	confidence := lengthConfidence(annotation.Text)
	if count > 0 {
		confidence = sum / float64(count) * 100
	}

	b.log.Debug().
		Int("text_length", len(annotation.Text)).
		Float64("confidence", confidence).
		Msg("Vision document text detection completed")

	return Result{
		BackendName:   b.Name(),
		RawText:       annotation.Text,
		Confidence:    confidence,
		ElapsedMillis: time.Since(start).Milliseconds(),
		Succeeded:     true,
	}
}

// Close closes the underlying Vision client.
func (b *GoogleVisionBackend) Close() error {
	if b.client != nil {
		return b.client.Close()
	}
	return nil
}
