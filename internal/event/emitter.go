package event

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Emitter receives notifications for committed calls.
type Emitter interface {
	Emit(ctx context.Context, e Event) error
}

// WriterEmitter writes each notification as a line to W.
type WriterEmitter struct {
	mu sync.Mutex
	W  io.Writer
}

// NewWriterEmitter returns an emitter writing lines to w.
func NewWriterEmitter(w io.Writer) *WriterEmitter {
	return &WriterEmitter{W: w}
}

func (w *WriterEmitter) Emit(_ context.Context, e Event) error {
	line, err := e.Line()
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := fmt.Fprintln(w.W, line); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// LogEmitter logs each notification through the context's zap logger.
type LogEmitter struct{}

func (LogEmitter) Emit(ctx context.Context, e Event) error {
	line, err := e.Line()
	if err != nil {
		return err
	}
	ctxzap.Extract(ctx).Info(line,
		zap.String("event", string(e.Event)),
		zap.String("owner", e.Data.Owner.String()),
		zap.String("data_id", e.Data.DataID),
	)
	return nil
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Emit(context.Context, Event) error { return nil }

// Recorder keeps every notification in memory, in emission order.
// Thread-safety: Recorder is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of the recorded notifications.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Reset drops all recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
