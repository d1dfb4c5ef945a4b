package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Spinner shows a message with an animated frame and the elapsed time. On a
// writer that is not a terminal it prints the message once instead.
type Spinner struct {
	mu         sync.Mutex
	writer     io.Writer
	animated   bool
	frames     []string
	frameIndex int
	message    string
	started    time.Time
	running    bool
	stopChan   chan struct{}
	wg         sync.WaitGroup
}

// NewSpinner creates a spinner writing to stderr.
func NewSpinner(message string) *Spinner {
	s := &Spinner{
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		message: message,
	}
	s.SetWriter(os.Stderr)
	return s
}

// SetWriter sets the output and re-detects whether it is a terminal.
func (s *Spinner) SetWriter(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = w
	s.animated = false
	if f, ok := w.(*os.File); ok {
		s.animated = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
}

func (s *Spinner) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.started = time.Now()
	s.stopChan = make(chan struct{})
	animated := s.animated
	message := s.message
	s.mu.Unlock()

	if !animated {
		fmt.Fprintf(s.writer, "%s\n", message)
		return
	}

	s.wg.Add(1)
	go s.animate()
}

// Stop ends the animation, clears the line and returns the elapsed time.
func (s *Spinner) Stop() time.Duration {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return 0
	}
	s.running = false
	close(s.stopChan)
	elapsed := time.Since(s.started)
	animated := s.animated
	s.mu.Unlock()

	s.wg.Wait()
	if animated {
		fmt.Fprint(s.writer, "\r\033[K")
	}
	return elapsed
}

func (s *Spinner) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Spinner) animate() {
	defer s.wg.Done()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.mu.Lock()
			if !s.running {
				s.mu.Unlock()
				return
			}
			frame := s.frames[s.frameIndex%len(s.frames)]
			line := fmt.Sprintf("\r%s %s (%s)", frame, s.message, FormatElapsed(time.Since(s.started)))
			s.frameIndex++
			s.mu.Unlock()

			fmt.Fprint(s.writer, line)
		}
	}
}

// FormatElapsed renders d as "850ms", "4.2s" or "1m05s".
func FormatElapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		m := int(d / time.Minute)
		sec := int((d % time.Minute) / time.Second)
		return fmt.Sprintf("%dm%02ds", m, sec)
	}
}
