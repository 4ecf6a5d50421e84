package corpus

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// #region library
// Library holds the current corpus for a running process. Conversations take
// a snapshot of Current when they start and keep it for their lifetime, so
// a reload only affects conversations opened afterwards.
type Library struct {
	src      Source
	log      *zap.Logger
	current  atomic.Pointer[Corpus]
	onReload []func(*Corpus)
	debounce time.Duration
}

// LibraryOption configures a Library.
type LibraryOption func(*Library)

// WithReloadHook registers fn to run after every successful (re)load.
func WithReloadHook(fn func(*Corpus)) LibraryOption {
	return func(l *Library) { l.onReload = append(l.onReload, fn) }
}

// WithDebounce sets how long Watch waits for filesystem events to settle.
func WithDebounce(d time.Duration) LibraryOption {
	return func(l *Library) { l.debounce = d }
}

// NewLibrary creates an empty library over src. Nothing is read until
// Reload is called.
func NewLibrary(src Source, log *zap.Logger, opts ...LibraryOption) *Library {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Library{src: src, log: log.Named("corpus"), debounce: 200 * time.Millisecond}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Current returns the loaded corpus, or nil before the first Reload.
func (l *Library) Current() *Corpus {
	return l.current.Load()
}

// Corpus makes Library a corpus provider for the matcher.
func (l *Library) Corpus() *Corpus {
	return l.Current()
}

// #endregion library

// #region reload
// Reload reads and parses the source and swaps it in. On the first load a
// broken dataset still swaps in (as the empty corpus, or with bad records
// skipped). Once a corpus is loaded, a reload that yields nothing usable
// keeps it, so a file caught mid-save does not empty the library. The
// returned error is the diagnostic and is also logged.
func (l *Library) Reload(ctx context.Context) (*Corpus, error) {
	c, diag := Load(ctx, l.src)
	if diag != nil {
		if prev := l.current.Load(); prev != nil && c.Len() == 0 {
			l.log.Warn("dataset reload failed, keeping current corpus",
				zap.String("source", l.src.Name()),
				zap.Int("scenes", prev.Len()),
				zap.String("version", prev.Version()),
				zap.Error(diag))
			return prev, diag
		}
		l.log.Warn("dataset diagnostic",
			zap.String("source", l.src.Name()),
			zap.Error(diag))
	}
	l.current.Store(c)
	l.log.Info("dataset loaded",
		zap.String("source", l.src.Name()),
		zap.Int("scenes", c.Len()),
		zap.String("version", c.Version()))
	for _, fn := range l.onReload {
		fn(c)
	}
	return c, diag
}

// #endregion reload

// #region watch
// Watch reloads the library whenever the dataset file changes. It blocks
// until ctx is cancelled. Only FileSource datasets can be watched.
func (l *Library) Watch(ctx context.Context) error {
	fs, ok := l.src.(FileSource)
	if !ok {
		return fmt.Errorf("watch %s: source is not a file", l.src.Name())
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch the directory.
	target := filepath.Clean(fs.Path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", target, err)
	}
	l.log.Info("watching dataset", zap.String("path", target))

	var settle *time.Timer
	var settled <-chan time.Time
	defer func() {
		if settle != nil {
			settle.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			l.log.Debug("dataset changed", zap.String("op", ev.Op.String()))
			if settle == nil {
				settle = time.NewTimer(l.debounce)
			} else {
				settle.Reset(l.debounce)
			}
			settled = settle.C

		case <-settled:
			settled = nil
			_, _ = l.Reload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// #endregion watch
