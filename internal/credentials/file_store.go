package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/the-momentum/open-wearables-sync/models"
)

// ErrNoCredential is returned by [Store.Get] when no credential is stored.
var ErrNoCredential = errors.New("no credential stored")

type fileStore struct {
	path string

	mu sync.Mutex
}

// NewFileStore returns a [Store] backed by a single JSON file. Writes go
// through a temp file followed by rename, so a crash mid-write never leaves
// a torn credential file behind.
func NewFileStore(path string) Store {
	return &fileStore{path: path}
}

func (s *fileStore) Get() (models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Credential{}, ErrNoCredential
		}
		return models.Credential{}, fmt.Errorf("read credential file: %w", err)
	}

	var cred models.Credential
	if err = json.Unmarshal(data, &cred); err != nil {
		return models.Credential{}, fmt.Errorf("decode credential file: %w", err)
	}
	if cred.UserKey == "" {
		return models.Credential{}, ErrNoCredential
	}

	return cred, nil
}

func (s *fileStore) Set(cred models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}

	payload, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cred-*")
	if err != nil {
		return fmt.Errorf("create credential temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err = tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write credential temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close credential temp file: %w", err)
	}
	if err = os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod credential temp file: %w", err)
	}

	if err = os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace credential file: %w", err)
	}

	return nil
}

func (s *fileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}
