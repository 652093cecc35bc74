package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/logger"
	"github.com/moby/sys/atomicwriter"
	"github.com/sirupsen/logrus"
)

const (
	FileName       = "settings.json"
	LegacyFileName = "emuchievements.json"

	KeyUsername = "username"
	KeyAPIKey   = "api_key"
	KeyHidden   = "hidden"
	KeyCache    = "cache"
)

// Default returns the document written when no settings file exists yet
func Default() map[string]any {
	return map[string]any{
		KeyUsername: "",
		KeyAPIKey:   "",
		KeyCache: map[string]any{
			"ids": map[string]any{},
		},
		KeyHidden: false,
	}
}

// Store is the JSON settings document on disk. Keys the application does
// not know about are kept as they are.
type Store struct {
	mu   sync.Mutex
	path string
	doc  map[string]any
}

func New(dir string) *Store {
	return &Store{
		path: filepath.Join(dir, FileName),
		doc:  Default(),
	}
}

func (s *Store) Path() string {
	return s.path
}

// Read loads the document from disk, creating the file with the default
// document when it does not exist
func (s *Store) Read() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *Store) read() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Log.WithField("path", s.path).Info("Settings file not found, writing defaults")
		doc := Default()
		if err := s.write(doc); err != nil {
			return err
		}
		s.doc = doc
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}

	doc, err := Decode(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	s.doc = doc
	return nil
}

// Commit writes the in-memory document to disk
func (s *Store) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(s.doc)
}

func (s *Store) write(doc map[string]any) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := atomicwriter.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	logger.Log.WithFields(logrus.Fields{
		"path":  s.path,
		"bytes": len(data),
	}).Debug("Settings written")
	return nil
}

// Get returns the value stored under key, or def when the key is missing
func (s *Store) Get(key string, def any) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.doc[key]; ok {
		return v
	}
	return def
}

func (s *Store) GetString(key, def string) string {
	if v, ok := s.Get(key, def).(string); ok {
		return v
	}
	return def
}

func (s *Store) GetBool(key string, def bool) bool {
	if v, ok := s.Get(key, def).(bool); ok {
		return v
	}
	return def
}

// Set changes one key in memory. Commit persists it.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc[key] = value
}

// Document reloads the file and returns a copy of the whole document
func (s *Store) Document() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.read(); err != nil {
		return nil, err
	}
	return copyMap(s.doc), nil
}

// ReplaceDocument swaps the whole document and writes it to disk
func (s *Store) ReplaceDocument(doc map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(doc); err != nil {
		return err
	}
	s.doc = copyMap(doc)
	return nil
}

// Encode serializes a settings document: tab indented, numbers as written
func Encode(doc map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "\t")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode parses a settings document keeping numbers as json.Number, so
// integers survive a round trip unchanged
func Decode(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("document is null")
	}
	return doc, nil
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return copyMap(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = copyValue(item)
		}
		return out
	}
	return v
}
