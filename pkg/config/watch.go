// pkg/config/watch.go
package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a tuning file whenever it changes on disk. Reloaded
// configs arrive on Configs; read, parse and validation failures arrive on
// Errors. Both channels are closed after Close.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	Configs  chan *TuningConfig
	Errors   chan error
	closeCh  chan struct{}
	done     chan struct{}
	once     sync.Once
}

// NewWatcher watches the directory containing path, so editors that
// replace the file by rename are still seen.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, err
	}

	watcher := &Watcher{
		watcher:  w,
		path:     abs,
		debounce: debounce,
		Configs:  make(chan *TuningConfig, 4),
		Errors:   make(chan error, 4),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

// run reloads once events for the file have been quiet for the debounce
// period, so a burst of writes yields one reload of the final contents.
func (w *Watcher) run() {
	defer close(w.done)
	defer close(w.Errors)
	defer close(w.Configs)

	// Each timer carries a generation; fires from superseded timers are
	// ignored.
	fire := make(chan uint64)
	var (
		timer *time.Timer
		gen   uint64
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			gen++
			current := gen
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- current:
				case <-w.closeCh:
				}
			})
		case g := <-fire:
			if g == gen {
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.send(nil, err)
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) reload() {
	config, err := LoadConfig(w.path)
	if err == nil {
		err = config.Validate()
	}
	if err != nil {
		w.send(nil, err)
		return
	}
	w.send(config, nil)
}

func (w *Watcher) send(config *TuningConfig, err error) {
	if err != nil {
		select {
		case w.Errors <- err:
		case <-w.closeCh:
		}
		return
	}
	select {
	case w.Configs <- config:
	case <-w.closeCh:
	}
}
