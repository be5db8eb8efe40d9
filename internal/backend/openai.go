package backend

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/adhuhaam/laraos-sub001/internal/logger"
)

// transcribePrompt asks for a verbatim transcription so the downstream MRZ
// parser and pattern rules see the document's own layout, not a summary.
const transcribePrompt = `Transcribe every piece of text visible in this identity document image, exactly as printed, one line of the document per line of output. Include the machine-readable zone characters verbatim if present. Do not describe the image, do not add commentary.`

// OpenAIBackend recognizes text by sending the image to an OpenAI vision
// model and asking for a verbatim transcription.
type OpenAIBackend struct {
	client *openai.Client
	model  string
	log    zerolog.Logger
}

// NewOpenAIBackend creates the backend from an API key and model name.
func NewOpenAIBackend(apiKey, model string) (*OpenAIBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("NewOpenAIBackend: API key is required")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIBackend{
		client: openai.NewClient(apiKey),
		model:  model,
		log:    logger.WithComponent("openai-vision"),
	}, nil
}

// NewOpenAIBackendWithClient creates the backend with an explicit client
// (for testing).
func NewOpenAIBackendWithClient(client *openai.Client, model string) *OpenAIBackend {
	return &OpenAIBackend{client: client, model: model, log: logger.WithComponent("openai-vision")}
}

func (b *OpenAIBackend) Name() string { return "openai-vision" }

// Recognize asks the vision model to transcribe the document image.
func (b *OpenAIBackend) Recognize(ctx context.Context, image []byte) Result {
	start := time.Now()

	dataURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       b.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: transcribePrompt,
					},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURI, Detail: openai.ImageURLDetailHigh},
					},
				},
			},
		},
	})
	if err != nil {
		return failure(b.Name(), time.Since(start).Milliseconds(), fmt.Sprintf("OpenAI call failed: %v", err))
	}
	if len(resp.Choices) == 0 {
		return failure(b.Name(), time.Since(start).Milliseconds(), "empty OpenAI response")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return failure(b.Name(), time.Since(start).Milliseconds(), "OpenAI returned no transcription")
	}

	b.log.Debug().
		Str("model", b.model).
		Int("text_length", len(text)).
		Msg("OpenAI transcription completed")

	return Result{
		BackendName:   b.Name(),
		RawText:       text,
		Confidence:    lengthConfidence(text),
		ElapsedMillis: time.Since(start).Milliseconds(),
		Succeeded:     true,
	}
}
