package session

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-journal-client/internal/atomicfile"
	"github.com/jrsteele09/go-journal-client/internal/errors"
	"github.com/jrsteele09/go-journal-client/internal/events"
	"github.com/jrsteele09/go-journal-client/internal/filewatcher"
)

// DefaultKey is the entry name the credential is stored under.
const DefaultKey = "token"

// FileStore keeps the credential in a JSON file so it survives restarts and is shared by
// every client process pointed at the same data folder.
type FileStore struct {
	mu      sync.Mutex
	path    string
	key     string
	parser  koanf.Parser
	watcher *filewatcher.FileWatcher
	changes *events.Bus[Changed]
	last    State
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path, key string) *FileStore {
	if key == "" {
		key = DefaultKey
	}
	fs := &FileStore{
		path:    path,
		key:     key,
		parser:  json.Parser(),
		changes: events.NewBus[Changed](),
	}
	fs.last = StateOf(fs)
	return fs
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

// Get reads the file on every call so a logout in another process is seen immediately.
func (s *FileStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, err := s.load()
	if err != nil {
		log.Err(err).Str("path", s.path).Msg("reading session file")
		return "", false
	}
	token := k.String(s.key)
	return token, token != ""
}

func (s *FileStore) Set(token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.ErrInvalidToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := s.loadOrEmpty()
	if err := k.Set(s.key, token); err != nil {
		return errors.Wrapf(err, "could not set key %s", s.key)
	}
	if err := s.save(k); err != nil {
		return err
	}
	s.last = Authenticated
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, err := s.load()
	if err == nil && !k.Exists(s.key) {
		s.last = Anonymous
		return nil
	}
	if err != nil {
		// Unreadable contents cannot hold a usable credential; overwrite them.
		k = koanf.New(".")
	}
	k.Delete(s.key)
	if err := s.save(k); err != nil {
		return err
	}
	s.last = Anonymous
	return nil
}

// OnChange subscribes to changes made by other processes. Only delivered while watching.
func (s *FileStore) OnChange(callback func(Changed)) func() {
	sub := s.changes.Subscribe(callback)
	return func() { s.changes.Unsubscribe(sub) }
}

// Watch starts watching the session file for external changes. A failed Watch can be retried.
func (s *FileStore) Watch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrapf(err, "creating session folder")
	}
	w := filewatcher.New(s.path, s.reload)
	if err := w.Start(); err != nil {
		return errors.Wrapf(err, "starting session file watcher")
	}
	s.watcher = w
	return nil
}

// Close stops watching. The store remains usable.
func (s *FileStore) Close() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Close()
}

func (s *FileStore) reload() {
	current := StateOf(s)
	s.mu.Lock()
	changed := current != s.last
	s.last = current
	s.mu.Unlock()
	if !changed {
		return
	}
	log.Info().Str("state", current.String()).Msg("session changed outside this process")
	s.changes.Emit(Changed{State: current})
}

func (s *FileStore) load() (*koanf.Koanf, error) {
	k := koanf.New(".")
	raw, err := atomicfile.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return k, nil
		}
		return nil, errors.Wrapf(err, "loading session file")
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return k, nil
	}
	if err := k.Load(rawbytes.Provider(raw), s.parser); err != nil {
		return nil, errors.Wrapf(err, "parsing session file")
	}
	return k, nil
}

func (s *FileStore) loadOrEmpty() *koanf.Koanf {
	k, err := s.load()
	if err != nil {
		log.Err(err).Str("path", s.path).Msg("discarding unreadable session file")
		return koanf.New(".")
	}
	return k
}

func (s *FileStore) save(k *koanf.Koanf) error {
	out, err := k.Marshal(s.parser)
	if err != nil {
		return errors.Wrapf(err, "could not marshal session file")
	}
	if err := atomicfile.WriteFile(s.path, out, 0o600); err != nil {
		return errors.Wrapf(err, "could not write session file")
	}
	return nil
}
