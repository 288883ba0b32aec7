package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner animates a status line on w while a blocking call runs. It stops
// on Stop or when its context ends, whichever comes first.
type spinner struct {
	w       io.Writer
	message string
	ctx     context.Context

	mu       sync.Mutex
	stopOnce sync.Once
	stop     chan struct{}
	finished chan struct{}
}

func newSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	return &spinner{
		w:        w,
		message:  message,
		ctx:      ctx,
		stop:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// Start begins the animation in a background goroutine.
func (s *spinner) Start() {
	go func() {
		defer close(s.finished)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				s.mu.Lock()
				fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]), StyleDim.Render(s.message))
				s.mu.Unlock()
			}
		}
	}()
}

// Stop ends the animation and clears the line. It may be called more than
// once.
func (s *spinner) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.finished

	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}

// Cancelled reports whether the context ended the spinner.
func (s *spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}

func (s *spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

func (s *spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}
