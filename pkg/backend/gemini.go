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

	"google.golang.org/genai"
)

// GeminiAdapter converts through the Gemini generateContent endpoint using
// the genai SDK, which authenticates with the x-goog-api-key header. The
// HTML is the concatenation of the non-thought text parts of the first
// candidate.
type GeminiAdapter struct {
	model       string
	apiKey      string
	baseURL     string
	temperature float64
	httpClient  *http.Client
}

func NewGeminiAdapter(cfg config.BackendConfig, httpClient *http.Client) *GeminiAdapter {
	baseURL := cfg.BaseURL
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &GeminiAdapter{
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		temperature: cfg.TemperatureOrDefault(),
		httpClient:  httpClient,
	}
}

func (a *GeminiAdapter) Name() string {
	return config.ProviderGemini
}

// client builds the SDK client. The key is checked beforehand so the SDK
// never falls back to GEMINI_API_KEY or GOOGLE_API_KEY on its own.
func (a *GeminiAdapter) client(ctx context.Context) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     a.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: a.httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    a.baseURL,
			APIVersion: "v1beta",
		},
	})
	if err != nil {
		return nil, errors.ConfigurationError("invalid gemini client settings: " + err.Error())
	}
	return client, nil
}

func (a *GeminiAdapter) Convert(ctx context.Context, req models.ConversionRequest) (models.ConversionResult, error) {
	if a.apiKey == "" {
		return models.ConversionResult{}, errors.MissingKeyError(config.ProviderGemini, config.KeyEnvVar(config.ProviderGemini))
	}

	client, err := a.client(ctx)
	if err != nil {
		return models.ConversionResult{}, err
	}

	logger.Debug().
		Str("provider", config.ProviderGemini).
		Str("model", a.model).
		Str("key", logger.MaskSecret(a.apiKey)).
		Int("input_length", len(req.RawText)).
		Msg("sending conversion request")

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, a.model,
		[]*genai.Content{genai.NewContentFromText(req.RawText, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(Instruction)}},
			Temperature:       genai.Ptr(float32(a.temperature)),
		})
	if err != nil {
		return models.ConversionResult{}, classifyGemini(err)
	}

	logger.Debug().
		Str("provider", config.ProviderGemini).
		Dur("elapsed", time.Since(start)).
		Int("candidates", len(resp.Candidates)).
		Msg("conversion response received")

	html := candidateText(resp)
	if strings.TrimSpace(html) == "" {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			logger.Warn().Str("block_reason", string(resp.PromptFeedback.BlockReason)).Msg("gemini blocked the prompt")
		}
		return models.ConversionResult{}, errors.EmptyResponseError(config.ProviderGemini)
	}

	return models.ConversionResult{
		HTML:     html,
		Provider: config.ProviderGemini,
		Model:    a.model,
	}, nil
}

// classifyGemini maps SDK failures onto the error taxonomy. The SDK returns
// APIError by value for failure statuses and a plain error when a success
// body cannot be decoded.
func classifyGemini(err error) error {
	var apiErr genai.APIError
	if stderrors.As(err, &apiErr) {
		detail := apiErr.Message
		if detail == "" {
			detail = apiErr.Status
		}
		return errors.BackendError(config.ProviderGemini, apiErr.Code, detail)
	}
	if undelivered(err) {
		return errors.TransportError(config.ProviderGemini, err)
	}
	logger.Debug().Err(err).Str("provider", config.ProviderGemini).Msg("undecodable response body")
	return errors.EmptyResponseError(config.ProviderGemini)
}

// candidateText joins the text parts of the first candidate, skipping
// thought summaries.
func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}
