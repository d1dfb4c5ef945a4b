package backend

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"wordsmith/pkg/config"
	"wordsmith/pkg/errors"
	"wordsmith/pkg/logger"
	"wordsmith/pkg/models"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ChatCompletionsAdapter converts through an OpenAI-compatible
// /chat/completions endpoint with bearer authentication. The HTML is read
// from choices[0].message.content.
type ChatCompletionsAdapter struct {
	provider    string
	model       string
	apiKey      string
	temperature float64
	client      openai.Client
}

func NewChatCompletionsAdapter(cfg config.BackendConfig, httpClient *http.Client) *ChatCompletionsAdapter {
	baseURL := cfg.BaseURL
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
		// a failed attempt ends the cycle
		option.WithMaxRetries(0),
	)

	return &ChatCompletionsAdapter{
		provider:    cfg.Provider,
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		temperature: cfg.TemperatureOrDefault(),
		client:      client,
	}
}

func (a *ChatCompletionsAdapter) Name() string {
	return a.provider
}

func (a *ChatCompletionsAdapter) Convert(ctx context.Context, req models.ConversionRequest) (models.ConversionResult, error) {
	if a.apiKey == "" {
		return models.ConversionResult{}, errors.MissingKeyError(a.provider, config.KeyEnvVar(a.provider))
	}

	logger.Debug().
		Str("provider", a.provider).
		Str("model", a.model).
		Str("key", logger.MaskSecret(a.apiKey)).
		Int("input_length", len(req.RawText)).
		Msg("sending conversion request")

	start := time.Now()
	var httpResp *http.Response
	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: a.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(Instruction),
			openai.UserMessage(req.RawText),
		},
		Temperature: openai.Float(a.temperature),
	}, option.WithJSONSet("stream", false), option.WithResponseInto(&httpResp))
	if err != nil {
		return models.ConversionResult{}, a.classify(err, httpResp)
	}

	logger.Debug().
		Str("provider", a.provider).
		Dur("elapsed", time.Since(start)).
		Int("choices", len(resp.Choices)).
		Msg("conversion response received")

	if len(resp.Choices) == 0 {
		return models.ConversionResult{}, errors.EmptyResponseError(a.provider)
	}
	html := resp.Choices[0].Message.Content
	if strings.TrimSpace(html) == "" {
		return models.ConversionResult{}, errors.EmptyResponseError(a.provider)
	}

	return models.ConversionResult{
		HTML:     html,
		Provider: a.provider,
		Model:    a.model,
	}, nil
}

// classify maps SDK failures onto the error taxonomy. Only a call that got
// no response is a transport error. A failure status is a backend error even
// when its body is not JSON, and a success body that cannot be decoded
// yields no HTML.
func (a *ChatCompletionsAdapter) classify(err error, resp *http.Response) error {
	var apiErr *openai.Error
	if stderrors.As(err, &apiErr) {
		return errors.BackendError(a.provider, apiErr.StatusCode, apiErr.RawJSON())
	}
	if resp == nil || undelivered(err) {
		return errors.TransportError(a.provider, err)
	}
	if resp.StatusCode >= 400 {
		return errors.BackendError(a.provider, resp.StatusCode, err.Error())
	}
	logger.Debug().Err(err).Str("provider", a.provider).Int("status", resp.StatusCode).Msg("undecodable response body")
	return errors.EmptyResponseError(a.provider)
}
