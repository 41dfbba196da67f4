package credfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"cambiototal/internal/core/ports"

	"gopkg.in/yaml.v3"
)

// fileDoc mirrors the on-disk YAML layout. Unknown top-level blocks are not
// modeled; the file is read and rewritten whole, so only these blocks exist.
type fileDoc struct {
	Credentials struct {
		Usernames map[string]fileEntry `yaml:"usernames"`
	} `yaml:"credentials"`
	Cookie struct {
		Name       string `yaml:"name"`
		Key        string `yaml:"key"`
		ExpiryDays int    `yaml:"expiry_days"`
	} `yaml:"cookie"`
	Preauthorized struct {
		Emails []string `yaml:"emails"`
	} `yaml:"preauthorized"`
}

type fileEntry struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
}

// Store implements ports.CredentialStore over a YAML file. Every mutation
// rewrites the file atomically (temp file + rename); the cookie and
// preauthorized blocks survive rewrites untouched.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a credential store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) load() (*fileDoc, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			doc := &fileDoc{}
			doc.Credentials.Usernames = map[string]fileEntry{}
			return doc, nil
		}
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing credentials file: %w", err)
	}
	if doc.Credentials.Usernames == nil {
		doc.Credentials.Usernames = map[string]fileEntry{}
	}
	return &doc, nil
}

func (s *Store) save(doc *fileDoc) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding credentials file: %w", err)
	}

	// Write to a temp file in the same directory, then rename over the
	// original so readers never observe a partial file.
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".credentials-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp credentials file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp credentials file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp credentials file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing credentials file: %w", err)
	}
	return nil
}

// Get returns the entry for username. The second return reports presence.
func (s *Store) Get(username string) (*ports.CredentialEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, false, err
	}
	e, ok := doc.Credentials.Usernames[username]
	if !ok {
		return nil, false, nil
	}
	return &ports.CredentialEntry{
		Email:        e.Email,
		Name:         e.Name,
		PasswordHash: e.Password,
	}, true, nil
}

// Put inserts or replaces the entry for username and rewrites the file.
func (s *Store) Put(username string, entry ports.CredentialEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Credentials.Usernames[username] = fileEntry{
		Email:    entry.Email,
		Name:     entry.Name,
		Password: entry.PasswordHash,
	}
	return s.save(doc)
}

// Remove deletes the entry for username and rewrites the file. Removing a
// missing entry is a no-op.
func (s *Store) Remove(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc.Credentials.Usernames[username]; !ok {
		return nil
	}
	delete(doc.Credentials.Usernames, username)
	return s.save(doc)
}

// CookieConfig returns the session-cookie block.
func (s *Store) CookieConfig() (ports.CookieConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return ports.CookieConfig{}, err
	}
	return ports.CookieConfig{
		Name:       doc.Cookie.Name,
		Key:        doc.Cookie.Key,
		ExpiryDays: doc.Cookie.ExpiryDays,
	}, nil
}
