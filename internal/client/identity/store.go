package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const credentialsFile = "tasktracker/credentials.json"

// Credential is what survives between runs. The refresh token is the only secret kept;
// ID tokens are always minted fresh from it.
type Credential struct {
	Subject      string `json:"subject"`
	Email        string `json:"email,omitempty"`
	RefreshToken string `json:"refresh_token"`
}

type Store interface {
	// Load returns nil without error when nothing is stored.
	Load() (*Credential, error)
	Save(credential *Credential) error
	Delete() error
}

type FileStore struct {
	path string
}

// NewFileStore keeps the credential under the user's XDG config directory.
func NewFileStore() (*FileStore, error) {
	path, err := xdg.ConfigFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve credentials path: %w", err)
	}

	return NewFileStoreAt(path), nil
}

func NewFileStoreAt(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (*Credential, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil //nolint:nilnil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	credential := &Credential{}
	if err = json.Unmarshal(data, credential); err != nil {
		return nil, fmt.Errorf("failed to decode credentials: %w", err)
	}

	if credential.RefreshToken == "" {
		return nil, nil //nolint:nilnil
	}

	return credential, nil
}

func (s *FileStore) Save(credential *Credential) error {
	data, err := json.Marshal(credential)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	if err = os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}

	// WriteFile keeps the mode of an existing file.
	if err = os.Chmod(s.path, 0o600); err != nil {
		return fmt.Errorf("failed to restrict credentials: %w", err)
	}

	return nil
}

func (s *FileStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}

	return nil
}
