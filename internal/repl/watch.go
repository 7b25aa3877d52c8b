package repl

import (
	"context"
	"os"

	"github.com/dshills/stormrepl/internal/watcher"
)

// Watch runs path once, then again after every change, passing each
// result to fn. It returns when ctx is done. Changes that leave the file
// missing are skipped until it reappears.
func (s *Session) Watch(ctx context.Context, path string, fn func(*Result)) error {
	w, err := watcher.New(watcher.WithDebounce(s.opts.Debounce))
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(path); err != nil {
		return err
	}
	log := s.log.WithField("path", path)
	log.Debug("watching with %s debounce", s.opts.Debounce)

	fn(s.RunFile(ctx, path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			if _, err := os.Stat(path); err != nil {
				log.Debug("skipping %s event: %v", ev.Op, err)
				continue
			}
			log.Debug("%s event, re-running", ev.Op)
			fn(s.RunFile(ctx, path))

		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			log.Warn("watch error: %v", err)
		}
	}
}
