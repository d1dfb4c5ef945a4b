// Package lifecycle sequences conversion attempts and exposes their progress
// as a Status a display surface can render.
package lifecycle

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"wordsmith/pkg/backend"
	"wordsmith/pkg/errors"
	"wordsmith/pkg/logger"
	"wordsmith/pkg/models"
)

var (
	// ErrBlankInput is returned when the convert action is rejected because
	// the input has no visible characters.
	ErrBlankInput = stderrors.New("input text is blank")
	// ErrBusy is returned when a conversion is already Processing.
	ErrBusy = stderrors.New("a conversion is already in progress")
)

// State is what a Display sees after each transition.
type State struct {
	Status       Status
	HTML         string
	ErrorMessage string
	Provider     string
	Elapsed      time.Duration
}

// Display receives every transition. Render is called without the
// controller lock held.
type Display interface {
	Render(State)
}

type nopDisplay struct{}

func (nopDisplay) Render(State) {}

// Controller owns the single current-result slot. The slot is replaced only
// by a successful conversion; a failure leaves the last good HTML in place
// and sets the error message.
type Controller struct {
	converter backend.Converter
	display   Display

	mu       sync.Mutex
	status   Status
	result   models.ConversionResult
	hasHTML  bool
	errorMsg string
	elapsed  time.Duration
}

func NewController(converter backend.Converter, display Display) *Controller {
	if display == nil {
		display = nopDisplay{}
	}
	return &Controller{
		converter: converter,
		display:   display,
		status:    Idle,
	}
}

// Convert runs one conversion attempt. A rejected action returns ErrBlankInput
// or ErrBusy and leaves the state untouched. Otherwise the state moves to
// Processing and then to Success or Error, and the converter's error is
// returned unchanged.
func (c *Controller) Convert(ctx context.Context, rawText string) error {
	req := models.ConversionRequest{RawText: rawText}
	if req.IsBlank() {
		return ErrBlankInput
	}

	c.mu.Lock()
	if c.status == Processing {
		c.mu.Unlock()
		return ErrBusy
	}
	c.status = Processing
	c.errorMsg = ""
	c.elapsed = 0
	state := c.snapshotLocked()
	c.mu.Unlock()

	c.display.Render(state)

	start := time.Now()
	result, err := c.converter.Convert(ctx, req)
	elapsed := time.Since(start)

	c.mu.Lock()
	c.elapsed = elapsed
	if err != nil {
		c.status = Error
		c.errorMsg = errors.ErrMsgConversionFailed
	} else if strings.TrimSpace(result.HTML) == "" {
		err = errors.EmptyResponseError(c.converter.Name())
		c.status = Error
		c.errorMsg = errors.ErrMsgConversionFailed
	} else {
		c.status = Success
		c.result = result
		c.hasHTML = true
	}
	state = c.snapshotLocked()
	c.mu.Unlock()

	if err != nil {
		logFailure(c.converter.Name(), elapsed, err)
	} else {
		logger.Info().
			Str("provider", result.Provider).
			Str("model", result.Model).
			Dur("elapsed", elapsed).
			Int("html_length", len(result.HTML)).
			Msg("conversion succeeded")
	}

	c.display.Render(state)
	return err
}

func logFailure(provider string, elapsed time.Duration, err error) {
	event := logger.Error().
		Err(err).
		Str("provider", provider).
		Dur("elapsed", elapsed).
		Bool("transport", errors.IsTransport(err))
	if e, ok := errors.As(err); ok {
		event = event.Int("exit_code", int(e.Code))
		if e.StatusCode != 0 {
			event = event.Int("status", e.StatusCode)
		}
		if e.Detail != "" {
			event = event.Str("detail", e.Detail)
		}
	}
	event.Msg("conversion failed")
}

func (c *Controller) snapshotLocked() State {
	s := State{
		Status:       c.status,
		ErrorMessage: c.errorMsg,
		Elapsed:      c.elapsed,
	}
	if c.hasHTML {
		s.HTML = c.result.HTML
		s.Provider = c.result.Provider
	}
	return s
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Result returns the last successful result, which may predate a failure.
func (c *Controller) Result() (models.ConversionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result, c.hasHTML
}

// ClearResult empties the result slot. It has no effect while Processing.
func (c *Controller) ClearResult() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == Processing {
		return
	}
	c.result = models.ConversionResult{}
	c.hasHTML = false
}
