package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/protocomposer/pkg/pdk"
)

// errInstallFailed is returned after an unsuccessful native_install outcome
// has been printed.
var errInstallFailed = errors.New("install failed")

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner animates a status line while a plugin call runs. It draws on
// stderr so stdout stays clean for tables and JSON.
type spinner struct {
	w       io.Writer
	ctx     context.Context
	cancel  context.CancelFunc
	halt    chan struct{}
	once    sync.Once
	stopped chan struct{}

	mu      sync.Mutex
	message string
	width   int
}

// startSpinner draws message on stderr until stopped or ctx is done.
func startSpinner(ctx context.Context, message string) *spinner {
	s := newSpinner(ctx, os.Stderr, message)
	s.start()
	return s
}

func newSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &spinner{
		w:       w,
		ctx:     sctx,
		cancel:  cancel,
		halt:    make(chan struct{}),
		stopped: make(chan struct{}),
		message: message,
	}
}

func (s *spinner) start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clear()
				return
			case <-s.halt:
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := fmt.Sprintf("\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
	if n := len(s.message) + 4; n > s.width {
		s.width = n
	}
	fmt.Fprint(s.w, line)
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	}
}

// stop halts the animation and clears the line. It is safe to call more
// than once.
func (s *spinner) stop() {
	s.once.Do(func() {
		close(s.halt)
		<-s.stopped
		s.cancel()
		s.clear()
	})
}

// cancelled reports whether the spinner ended because its context did.
func (s *spinner) cancelled() bool {
	select {
	case <-s.stopped:
	default:
		return false
	}
	return s.ctx.Err() != nil && !s.halted()
}

func (s *spinner) halted() bool {
	select {
	case <-s.halt:
		return true
	default:
		return false
	}
}

// finishInstall stops the spinner and reports a native_install outcome.
// An output with Installed=false prints the host's reason and returns
// errInstallFailed.
func (s *spinner) finishInstall(target string, out pdk.NativeInstallOutput) error {
	s.stop()
	if !out.Installed {
		reason := out.Error
		if reason == "" {
			reason = "installer reported no reason"
		}
		printError("Composer %s: %s", target, reason)
		return errInstallFailed
	}
	printSuccess("Installed Composer %s", StyleHighlight.Render(target))
	return nil
}
