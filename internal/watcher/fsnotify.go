package watcher

import (
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher delivers debounced change events for a set of files.
type Watcher struct {
	cfg Config
	fsw *fsnotify.Watcher

	mu      sync.Mutex
	closed  bool
	targets map[string]string // file -> parent directory
	dirRefs map[string]int    // directory -> watched files inside it
	waiting map[string]*debounced

	events chan Event
	errs   chan error
	stop   chan struct{}
	loop   sync.WaitGroup
}

// debounced is an event held back until its file has been quiet for
// Config.Debounce.
type debounced struct {
	ev    Event
	timer *time.Timer
}

// New starts a watcher. Call Close to release it.
func New(opts ...Option) (*Watcher, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		cfg:     cfg,
		fsw:     fsw,
		targets: make(map[string]string),
		dirRefs: make(map[string]int),
		waiting: make(map[string]*debounced),
		events:  make(chan Event, cfg.BufferSize),
		errs:    make(chan error, cfg.BufferSize),
		stop:    make(chan struct{}),
	}
	w.loop.Add(1)
	go w.run()
	return w, nil
}

// Watch adds a file. The file may not exist yet; its directory must.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case w.closed:
		return ErrWatcherClosed
	case w.targets[abs] != "":
		return ErrAlreadyWatching
	}

	dir := filepath.Dir(abs)
	if w.dirRefs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirRefs[dir]++
	w.targets[abs] = dir
	return nil
}

// Unwatch removes a file. Unknown paths are ignored.
func (w *Watcher) Unwatch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}
	dir, ok := w.targets[abs]
	if !ok {
		return nil
	}
	delete(w.targets, abs)
	if w.dirRefs[dir]--; w.dirRefs[dir] > 0 {
		return nil
	}
	delete(w.dirRefs, dir)
	return w.fsw.Remove(dir)
}

// Events is closed by Close.
func (w *Watcher) Events() <-chan Event { return w.events }

// Errors is closed by Close.
func (w *Watcher) Errors() <-chan error { return w.errs }

// WatchedPaths returns the absolute paths being watched, sorted.
func (w *Watcher) WatchedPaths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	paths := make([]string, 0, len(w.targets))
	for p := range w.targets {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// PendingCount reports events still waiting out their debounce delay.
func (w *Watcher) PendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.waiting)
}

// Close stops the watcher. Events still being debounced are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for path, d := range w.waiting {
		d.timer.Stop()
		delete(w.waiting, path)
	}
	close(w.stop)
	w.mu.Unlock()

	w.loop.Wait()
	close(w.events)
	close(w.errs)
	return w.fsw.Close()
}

func (w *Watcher) run() {
	defer w.loop.Done()
	for {
		select {
		case <-w.stop:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.observe(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

// observe turns a directory notification into an event for a watched file.
func (w *Watcher) observe(raw fsnotify.Event) {
	op := translate(raw.Op)
	if op == 0 {
		return
	}
	path := filepath.Clean(raw.Name)
	now := time.Now()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || w.targets[path] == "" {
		return
	}

	if w.cfg.Debounce <= 0 {
		w.deliver(Event{Path: path, Op: op, Timestamp: now, Changes: 1})
		return
	}

	if d := w.waiting[path]; d != nil {
		d.ev.Op |= op
		d.ev.Timestamp = now
		d.ev.Changes++
		d.timer.Reset(w.cfg.Debounce)
		return
	}
	w.waiting[path] = &debounced{
		ev:    Event{Path: path, Op: op, Timestamp: now, Changes: 1},
		timer: time.AfterFunc(w.cfg.Debounce, func() { w.flush(path) }),
	}
}

// flush delivers the event for path once its debounce timer fires.
func (w *Watcher) flush(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	d := w.waiting[path]
	if d == nil || w.closed {
		return
	}
	delete(w.waiting, path)
	w.deliver(d.ev)
}

// deliver hands ev to the consumer, dropping it when the buffer is full.
// Callers hold w.mu so Close cannot close the channel concurrently.
func (w *Watcher) deliver(ev Event) {
	select {
	case w.events <- ev:
	default:
	}
}

var opTable = []struct {
	from fsnotify.Op
	to   Op
}{
	{fsnotify.Create, OpCreate},
	{fsnotify.Write, OpWrite},
	{fsnotify.Remove, OpRemove},
	{fsnotify.Rename, OpRename},
}

// translate maps fsnotify bits onto Op. Chmod alone maps to zero.
func translate(raw fsnotify.Op) Op {
	var op Op
	for _, t := range opTable {
		if raw.Has(t.from) {
			op |= t.to
		}
	}
	return op
}
