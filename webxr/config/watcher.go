package config

import (
	"errors"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/immerse/webxr/core"
)

// Watcher reloads a config file whenever it changes on disk and hands the
// fresh config to the registered callback.
type Watcher struct {
	path     string
	onChange func(*Config)

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

// Watch starts watching the named config file. onChange runs on the
// watcher's own goroutine; callers that feed the result into facade control
// calls must marshal it onto their main loop themselves.
func Watch(path string, onChange func(*Config)) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New("config watch requires a change callback")
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     path,
		onChange: onChange,
		done:     make(chan struct{}),
		fsnotify: fsWatch,
	}

	// Watch the directory: editors replace files on save, which drops a
	// watch placed on the file itself.
	if err := fsWatch.Add(filepath.Dir(path)); err != nil {
		_ = fsWatch.Close()
		return nil, err
	}

	go w.start()
	return w, nil
}

func (w *Watcher) start() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			config, err := Load(w.path)
			if err != nil {
				core.LogWarn("config reload failed: %s", err)
				continue
			}
			core.LogDebug("config reloaded from %s", w.path)
			w.onChange(config)
		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogWarn("config watcher: %s", err)
		}
	}
}

// Close stops watching. Safe to call more than once.
func (w *Watcher) Close() error {
	if w.isClosed {
		return nil
	}
	w.isClosed = true
	close(w.done)
	return w.fsnotify.Close()
}
