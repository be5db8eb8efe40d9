package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"

	"github.com/adhuhaam/laraos-sub001/internal/logger"
)

// OCRSpaceBackend recognizes text via the OCR.space HTTP API. Free-tier keys
// rate-limit aggressively, so the backend carries an ordered list of
// alternate API keys and reports failure only once every key is exhausted.
type OCRSpaceBackend struct {
	apiKeys    []string
	url        string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewOCRSpaceBackend creates the backend. At least one API key is required.
func NewOCRSpaceBackend(apiKeys []string, url string) (*OCRSpaceBackend, error) {
	if len(apiKeys) == 0 {
		return nil, fmt.Errorf("NewOCRSpaceBackend: at least one API key is required")
	}
	if url == "" {
		url = "https://api.ocr.space/parse/image"
	}
	return &OCRSpaceBackend{
		apiKeys:    apiKeys,
		url:        url,
		httpClient: &http.Client{},
		log:        logger.WithComponent("ocrspace"),
	}, nil
}

func (b *OCRSpaceBackend) Name() string { return "ocrspace" }

type ocrSpaceResponse struct {
	ParsedResults []struct {
		ParsedText        string `json:"ParsedText"`
		FileParseExitCode int    `json:"FileParseExitCode"`
	} `json:"ParsedResults"`
	OCRExitCode           int             `json:"OCRExitCode"`
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
}

// Recognize posts the image to OCR.space, walking the configured keys in
// order with one transient retry per key.
func (b *OCRSpaceBackend) Recognize(ctx context.Context, image []byte) Result {
	start := time.Now()

	var lastErr error
	for i, key := range b.apiKeys {
		var text string
		err := retry.Do(
			func() error {
				var callErr error
				text, callErr = b.call(ctx, key, image)
				return callErr
			},
			retry.Attempts(2),
			retry.Delay(500*time.Millisecond),
			retry.Context(ctx),
			retry.LastErrorOnly(true),
		)
		if err != nil {
			b.log.Debug().Err(err).Int("key_index", i).Msg("OCR.space key attempt failed")
			lastErr = err
			continue
		}
		return Result{
			BackendName:   b.Name(),
			RawText:       text,
			Confidence:    lengthConfidence(text),
			ElapsedMillis: time.Since(start).Milliseconds(),
			Succeeded:     true,
		}
	}

	return failure(b.Name(), time.Since(start).Milliseconds(),
		fmt.Sprintf("all %d API keys exhausted: %v", len(b.apiKeys), lastErr))
}

func (b *OCRSpaceBackend) call(ctx context.Context, apiKey string, image []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "document.png")
	if err != nil {
		return "", fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return "", fmt.Errorf("build multipart body: %w", err)
	}
	_ = writer.WriteField("language", "eng")
	_ = writer.WriteField("isOverlayRequired", "false")
	_ = writer.WriteField("OCREngine", "2")
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, &body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("apikey", apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("OCR.space request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OCR.space returned HTTP %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read OCR.space response: %w", err)
	}

	var parsed ocrSpaceResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("malformed OCR.space response: %w", err)
	}
	if parsed.IsErroredOnProcessing {
		return "", fmt.Errorf("OCR.space processing error: %s", string(parsed.ErrorMessage))
	}

	var texts []string
	for _, r := range parsed.ParsedResults {
		if strings.TrimSpace(r.ParsedText) != "" {
			texts = append(texts, r.ParsedText)
		}
	}
	if len(texts) == 0 {
		return "", fmt.Errorf("OCR.space returned no parsed text (exit code %d)", parsed.OCRExitCode)
	}
	return strings.Join(texts, "\n"), nil
}
