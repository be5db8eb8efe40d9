package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"

	"github.com/adhuhaam/laraos-sub001/internal/logger"
)

// TesseractBackend recognizes text with a local tesseract install via
// gosseract. It needs no network or credentials, which makes it the final
// fallback when every hosted provider is down, but its accuracy on phone
// photos is the weakest of the chain.
type TesseractBackend struct {
	log zerolog.Logger
}

// NewTesseractBackend creates the local tesseract backend.
func NewTesseractBackend() *TesseractBackend {
	return &TesseractBackend{log: logger.WithComponent("tesseract")}
}

func (b *TesseractBackend) Name() string { return "tesseract" }

// Recognize runs tesseract over the image. A fresh client per call keeps the
// adapter stateless; gosseract clients are not safe for reuse across
// requests.
func (b *TesseractBackend) Recognize(ctx context.Context, image []byte) Result {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return failure(b.Name(), 0, fmt.Sprintf("canceled before tesseract run: %v", err))
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(image); err != nil {
		return failure(b.Name(), time.Since(start).Milliseconds(), fmt.Sprintf("tesseract rejected image: %v", err))
	}
	// The MRZ alphabet plus ordinary Latin text.
	if err := client.SetLanguage("eng"); err != nil {
		return failure(b.Name(), time.Since(start).Milliseconds(), fmt.Sprintf("tesseract language setup failed: %v", err))
	}

	text, err := client.Text()
	if err != nil {
		return failure(b.Name(), time.Since(start).Milliseconds(), fmt.Sprintf("tesseract recognition failed: %v", err))
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return failure(b.Name(), time.Since(start).Milliseconds(), "tesseract found no text")
	}

	b.log.Debug().Int("text_length", len(text)).Msg("tesseract recognition completed")

	return Result{
		BackendName:   b.Name(),
		RawText:       text,
		Confidence:    lengthConfidence(text),
		ElapsedMillis: time.Since(start).Milliseconds(),
		Succeeded:     true,
	}
}
