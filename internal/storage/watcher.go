package storage

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"zynapse/internal/logging"
)

// ChangeKind classifies a settled filesystem event.
type ChangeKind int

const (
	ChangeCreate ChangeKind = iota
	ChangeModify
	ChangeRemove
)

// Change is a debounced note file event delivered to the watcher callback.
type Change struct {
	Path string
	Kind ChangeKind
}

// ChangeHandler receives settled changes. It runs on the watcher
// goroutine, so long work should be dispatched elsewhere.
type ChangeHandler func(Change)

// Watcher monitors the notes directory for external edits (editors,
// sync tools) and reports them after a debounce window, so rapid save
// bursts collapse into a single change.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	dir      string
	handler  ChangeHandler
	pending  map[string]pendingChange
	debounce time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

type pendingChange struct {
	kind ChangeKind
	at   time.Time
}

// NewWatcher creates a watcher over the store's notes directory.
func NewWatcher(s *Store, handler ChangeHandler) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:  fw,
		dir:      s.Root(),
		handler:  handler,
		pending:  make(map[string]pendingChange),
		debounce: 500 * time.Millisecond,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; events are delivered on a
// background goroutine until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		// No run goroutine started; Stop must not wait for one.
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	logging.Watcher("watching %s", w.dir)

	go w.run(ctx)
	return nil
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.Watcher("close failed: %v", err)
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.record(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Watcher("error: %v", err)
		case <-ticker.C:
			w.flush()
		}
	}
}

// record stores an event in the debounce map. Temp files from atomic
// writes and non-markdown files are ignored.
func (w *Watcher) record(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".md") {
		return
	}

	var kind ChangeKind
	switch {
	case event.Op&fsnotify.Create != 0:
		kind = ChangeCreate
	case event.Op&fsnotify.Write != 0:
		kind = ChangeModify
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		kind = ChangeRemove
	default:
		return
	}

	w.mu.Lock()
	prev, seen := w.pending[event.Name]
	// A create followed by writes is still a create from the caller's
	// point of view; a remove always wins.
	if seen && kind == ChangeModify && prev.kind == ChangeCreate {
		kind = ChangeCreate
	}
	w.pending[event.Name] = pendingChange{kind: kind, at: time.Now()}
	w.mu.Unlock()
}

// flush delivers changes that have settled past the debounce window.
func (w *Watcher) flush() {
	now := time.Now()

	w.mu.Lock()
	var settled []Change
	for path, p := range w.pending {
		if now.Sub(p.at) >= w.debounce {
			settled = append(settled, Change{Path: path, Kind: p.kind})
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, c := range settled {
		logging.Watcher("settled change: %s", c.Path)
		w.handler(c)
	}
}
