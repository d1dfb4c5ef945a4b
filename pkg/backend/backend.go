// Package backend sends raw text to a remote text-generation service together
// with the conversion instruction and returns the HTML fragment it produces.
//
// Two adapters exist: ChatCompletionsAdapter speaks the OpenAI-style
// chat-completions protocol (DeepSeek, OpenAI) through openai-go and
// GeminiAdapter calls generateContent through the genai SDK. Both satisfy
// Converter and map
// failures onto the same error kinds, so callers never care which one is
// configured.
package backend

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"wordsmith/pkg/config"
	"wordsmith/pkg/errors"
	"wordsmith/pkg/models"
)

// Converter turns one request into one result with exactly one outbound
// call. Failures are *errors.Error values with one of the codes
// ExitCodeConfig, ExitCodeTransport, ExitCodeTimeout, ExitCodeBackend or
// ExitCodeEmptyResponse. Converters never retry.
type Converter interface {
	Name() string
	Convert(ctx context.Context, req models.ConversionRequest) (models.ConversionResult, error)
}

type options struct {
	httpClient *http.Client
}

type Option func(*options)

// WithHTTPClient replaces the pooled client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

var sharedTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        10,
	MaxIdleConnsPerHost: 2,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: sharedTransport,
	}
}

// New returns the adapter for cfg.Provider.
func New(cfg config.BackendConfig, opts ...Option) (Converter, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.httpClient == nil {
		o.httpClient = newHTTPClient(cfg.Timeout)
	}

	switch cfg.Provider {
	case config.ProviderDeepSeek, config.ProviderOpenAI:
		return NewChatCompletionsAdapter(cfg, o.httpClient), nil
	case config.ProviderGemini:
		return NewGeminiAdapter(cfg, o.httpClient), nil
	default:
		return nil, errors.ConfigurationError(fmt.Sprintf("unknown provider '%s'", cfg.Provider))
	}
}

// undelivered reports whether err means no response ever arrived. Anything
// else that is not a status error happened while decoding a response.
func undelivered(err error) bool {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	var netErr net.Error
	return stderrors.As(err, &urlErr) || stderrors.As(err, &netErr)
}
