package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler cancels a long-running command on Ctrl-C and tells the
// user what happened.
type InterruptHandler struct {
	writer      io.Writer
	cancel      context.CancelFunc
	task        string
	interrupted bool
	mu          sync.Mutex
}

// NewInterruptHandler creates a handler that reports to writer.
func NewInterruptHandler(writer io.Writer) *InterruptHandler {
	if writer == nil {
		writer = os.Stderr
	}
	return &InterruptHandler{writer: writer}
}

// HandleInterrupts returns a context canceled on SIGINT or SIGTERM. task
// names the work being interrupted in the message.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, task string) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	h.mu.Lock()
	h.cancel = cancel
	h.task = task
	h.mu.Unlock()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			h.interrupt()
		case <-ctx.Done():
		}
	}()

	return ctx
}

func (h *InterruptHandler) interrupt() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.interrupted {
		return
	}
	h.interrupted = true

	task := h.task
	if task == "" {
		task = "Command"
	}
	msg := "\n" + FormatWarning(task+" interrupted!") + "\n" +
		FormatInfo("Operations saved so far are kept; rerunning skips them.") + "\n"
	if _, err := fmt.Fprint(h.writer, msg); err != nil {
		slog.Warn("Failed to write interrupt message", "error", err)
	}

	if h.cancel != nil {
		h.cancel()
	}
}

// WasInterrupted returns true if a signal arrived.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
