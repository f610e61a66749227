package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrEthical07/goJWS/jwk"
	"github.com/MrEthical07/goJWS/jws"
	"github.com/MrEthical07/goJWS/jwt"
)

const defaultReloadDebounce = 500 * time.Millisecond

// FileOption customizes a [JWKSFile].
type FileOption func(*JWKSFile)

// WithDebounce sets how long the file must stay quiet before a reload.
func WithDebounce(d time.Duration) FileOption {
	return func(f *JWKSFile) {
		if d > 0 {
			f.debounce = d
		}
	}
}

// JWKSFile resolves keys from a JWKS document on disk. The document is read
// once at construction and again whenever the file changes. A reload that
// fails to parse keeps the previous keys.
type JWKSFile struct {
	path     string
	logger   *slog.Logger
	debounce time.Duration

	keys    atomic.Pointer[KeySet]
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
	closed  sync.Once
}

// NewJWKSFile loads path and starts watching it. Close stops the watcher.
func NewJWKSFile(path string, logger *slog.Logger, opts ...FileOption) (*JWKSFile, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	f := &JWKSFile{
		path:     abs,
		logger:   logger.With("component", "jwks_file", "path", abs),
		debounce: defaultReloadDebounce,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	if err := f.load(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory so editors that replace the file by rename keep
	// triggering reloads.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	f.watcher = watcher

	reload := make(chan struct{}, 1)
	f.wg.Add(2)
	go f.handleWatcher(reload)
	go f.scheduleReload(reload)
	return f, nil
}

// ResolveKey looks up the header kid in the current document.
func (f *JWKSFile) ResolveKey(ctx context.Context, h jws.Header, claims jwt.ClaimSet) (jwk.Key, error) {
	return f.keys.Load().ResolveKey(ctx, h, claims)
}

// KeySet returns the currently loaded keys.
func (f *JWKSFile) KeySet() *KeySet {
	return f.keys.Load()
}

// Reload reads the file now.
func (f *JWKSFile) Reload() error {
	return f.load()
}

// Close stops watching the file. It is safe to call more than once.
func (f *JWKSFile) Close() error {
	var err error
	f.closed.Do(func() {
		close(f.done)
		err = f.watcher.Close()
		f.wg.Wait()
	})
	return err
}

func (f *JWKSFile) load() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("read jwks: %w", err)
	}
	keys, err := jwk.ParseSet(data)
	if err != nil {
		return fmt.Errorf("parse jwks: %w", err)
	}
	set, err := NewKeySet(keys...)
	if err != nil {
		return fmt.Errorf("parse jwks: %w", err)
	}
	f.keys.Store(set)
	return nil
}

func (f *JWKSFile) handleWatcher(reload chan<- struct{}) {
	defer f.wg.Done()
	for {
		select {
		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if event.Has(fsnotify.Write | fsnotify.Create | fsnotify.Rename) {
				select {
				case reload <- struct{}{}:
				default:
				}
			}
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.logger.Warn("jwks watcher error", "error", err)
		}
	}
}

func (f *JWKSFile) scheduleReload(reload <-chan struct{}) {
	defer f.wg.Done()
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-f.done:
			return
		case <-reload:
			if timer != nil {
				timer.Reset(f.debounce)
			} else {
				timer = time.NewTimer(f.debounce)
				fire = timer.C
			}
		case <-fire:
			timer, fire = nil, nil
			if err := f.load(); err != nil {
				f.logger.Warn("jwks reload failed, keeping previous keys", "error", err)
				continue
			}
			f.logger.Info("jwks reloaded", "keys", f.keys.Load().Len())
		}
	}
}
