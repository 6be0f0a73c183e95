// Package watch re-runs the export whenever the workbook is saved.
// It watches the workbook's directory, so editors that replace the file on
// save are still seen, and collapses bursts of events into one run.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is the quiet period before a change is processed.
const DefaultDebounce = 500 * time.Millisecond

// Event is one processed change.
type Event struct {
	Time      time.Time `json:"time"`
	Path      string    `json:"path"`
	Operation string    `json:"operation"`
	Status    string    `json:"status"` // "processed", "error"
	Error     string    `json:"error,omitempty"`
}

// Handler is called once per burst of changes to the target file.
type Handler func(ctx context.Context, path string) error

// Status represents the current watcher status.
type Status struct {
	Running    bool   `json:"running"`
	Target     string `json:"target"`
	EventCount int    `json:"eventCount"`
	StartedAt  string `json:"startedAt,omitempty"`
}

// Watcher monitors one file for changes and runs Handler after each burst.
type Watcher struct {
	Target   string
	Debounce time.Duration
	Handler  Handler
	Logger   zerolog.Logger

	mu        sync.Mutex
	events    []Event
	timer     *time.Timer
	running   bool
	startedAt time.Time
	watcher   *fsnotify.Watcher
	// busy serialises handler runs so a slow export never overlaps the next.
	busy sync.Mutex
}

// New creates a Watcher for target.
func New(target string, handler Handler, logger zerolog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("could not resolve %s: %w", target, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create file watcher: %w", err)
	}
	return &Watcher{
		Target:   abs,
		Debounce: DefaultDebounce,
		Handler:  handler,
		Logger:   logger,
		watcher:  fsw,
	}, nil
}

// Start watches until ctx is cancelled. It blocks.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.Target)
	if err := w.watcher.Add(dir); err != nil {
		w.watcher.Close()
		return fmt.Errorf("could not watch %s: %w", dir, err)
	}

	w.mu.Lock()
	w.running = true
	w.startedAt = time.Now()
	w.mu.Unlock()

	w.Logger.Info().Str("file", w.Target).Dur("debounce", w.debounce()).Msg("watching")

	defer func() {
		w.mu.Lock()
		w.running = false
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info().Msg("stopping watcher")
			return w.watcher.Close()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.Logger.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) debounce() time.Duration {
	if w.Debounce <= 0 {
		return DefaultDebounce
	}
	return w.Debounce
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !w.matches(event) {
		return
	}

	op := event.Op.String()
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce(), func() {
		if ctx.Err() != nil {
			return
		}
		w.process(ctx, op)
	})
	w.mu.Unlock()
}

// matches reports whether event concerns the target file.
func (w *Watcher) matches(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(event.Name)
	if isLockFile(base) {
		return false
	}
	return samePath(event.Name, w.Target)
}

// isLockFile reports Office owner files and editor temp files.
func isLockFile(base string) bool {
	return strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".~")
}

func samePath(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	// Case-insensitive filesystems report the name as typed by the editor.
	return strings.EqualFold(filepath.Clean(a), filepath.Clean(b)) && sameFile(a, b)
}

func sameFile(a, b string) bool {
	ia, err := os.Stat(a)
	if err != nil {
		return false
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ia, ib)
}

func (w *Watcher) process(ctx context.Context, operation string) {
	w.busy.Lock()
	defer w.busy.Unlock()

	evt := Event{
		Time:      time.Now(),
		Path:      w.Target,
		Operation: operation,
		Status:    "processed",
	}

	if _, err := os.Stat(w.Target); err != nil {
		// Renamed away mid-save; the following create triggers another run.
		w.Logger.Debug().Str("file", w.Target).Msg("target missing, waiting for next event")
		return
	}

	if w.Handler != nil {
		if err := w.Handler(ctx, w.Target); err != nil {
			evt.Status = "error"
			evt.Error = err.Error()
			w.Logger.Error().Err(err).Str("file", w.Target).Msg("export failed")
		} else {
			w.Logger.Info().Str("file", w.Target).Msg("exported")
		}
	}

	w.mu.Lock()
	w.events = append(w.events, evt)
	w.mu.Unlock()
}

// GetStatus returns the current watcher status.
func (w *Watcher) GetStatus() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := Status{
		Running:    w.running,
		Target:     w.Target,
		EventCount: len(w.events),
	}
	if !w.startedAt.IsZero() {
		s.StartedAt = w.startedAt.Format(time.RFC3339)
	}
	return s
}

// GetEvents returns all recorded events.
func (w *Watcher) GetEvents() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	events := make([]Event, len(w.events))
	copy(events, w.events)
	return events
}
