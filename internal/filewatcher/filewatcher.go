// Package filewatcher calls back when a single file changes on disk.
package filewatcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DefaultSettle is how long the watcher waits for writes to stop before calling back.
const DefaultSettle = 100 * time.Millisecond

// FileWatcher watches a file for changes and calls a callback function when the file is modified.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	target   string
	callback func()
	settle   time.Duration
	closeC   chan struct{}
	started  atomic.Bool
}

// New creates a watcher for path. The parent directory is watched so atomic
// rename-into-place writes and deletions are seen.
func New(path string, callback func()) *FileWatcher {
	return &FileWatcher{
		dir:      filepath.Dir(path),
		target:   filepath.Clean(path),
		callback: callback,
		settle:   DefaultSettle,
	}
}

func (fw *FileWatcher) Start() error {
	if !fw.started.CompareAndSwap(false, true) {
		log.Debug().Str("path", fw.target).Msg("file watcher already started")
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fw.started.Store(false)
		return fmt.Errorf("start watcher: %w", err)
	}
	if err = watcher.Add(fw.dir); err != nil {
		fw.started.Store(false)
		_ = watcher.Close()
		return fmt.Errorf("failed to add watcher: %w", err)
	}
	fw.watcher = watcher
	fw.closeC = make(chan struct{})
	go fw.watchLoop(fw.watcher, fw.closeC)
	return nil
}

func (fw *FileWatcher) Close() error {
	if !fw.started.CompareAndSwap(true, false) {
		return nil
	}
	close(fw.closeC)
	return fw.watcher.Close()
}

func (fw *FileWatcher) watchLoop(watcher *fsnotify.Watcher, closeC <-chan struct{}) {
	var (
		timer       *time.Timer
		timerAccess sync.Mutex
	)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.target {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("watched file changed")

			// Writes can arrive in bursts; fire once they settle.
			timerAccess.Lock()
			if timer == nil {
				timer = time.AfterFunc(fw.settle, func() {
					select {
					case <-closeC:
					default:
						fw.callback()
					}
					timerAccess.Lock()
					timer = nil
					timerAccess.Unlock()
				})
			} else {
				timer.Reset(fw.settle)
			}
			timerAccess.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Err(err).Str("path", fw.target).Msg("error watching file")
		case <-closeC:
			return
		}
	}
}
