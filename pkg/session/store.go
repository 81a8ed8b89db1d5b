package session

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/chacha20poly1305"
)

// SnapshotVersion is the current version of the snapshot format.
const SnapshotVersion = 1

// Store errors.
var (
	ErrInvalidKeySize   = errors.New("store key must be 32 bytes")
	ErrSnapshotTooShort = errors.New("snapshot file truncated")
	ErrSnapshotVersion  = errors.New("unsupported snapshot version")
)

// snapshot is the persisted envelope.
type snapshot struct {
	// Version is the snapshot format version.
	Version int `json:"version"`

	// SavedAt is when the snapshot was written.
	SavedAt time.Time `json:"saved_at"`

	// Session fields
	SessionID    uuid.UUID `json:"session_id"`
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Store persists an encrypted session snapshot to local disk.
// Snapshots hold refresh material, so they are sealed with
// ChaCha20-Poly1305 under a caller-supplied 32-byte key.
type Store struct {
	mu   sync.Mutex
	path string
	key  []byte
}

// NewStore creates a session store writing to path with the given key.
func NewStore(path string, key []byte) (*Store, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrInvalidKeySize
	}
	return &Store{path: path, key: key}, nil
}

// Save seals and persists the session snapshot.
func (s *Store) Save(sess *Session) error {
	if sess == nil {
		return ErrNoSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		Version:      SnapshotVersion,
		SavedAt:      time.Now(),
		SessionID:    sess.ID,
		UserID:       sess.UserID,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    sess.ExpiresAt,
	}

	plaintext, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return fmt.Errorf("init cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}

	// File layout: nonce || ciphertext
	sealed := aead.Seal(nonce, nonce, plaintext, nil)

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(s.path, sealed, 0600)
}

// Load reads and opens the persisted snapshot.
// Returns nil, nil if no snapshot exists.
func (s *Store) Load() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sealed, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	if len(sealed) < aead.NonceSize() {
		return nil, ErrSnapshotTooShort
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(plaintext, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return nil, ErrSnapshotVersion
	}

	return &Session{
		ID:           snap.SessionID,
		UserID:       snap.UserID,
		AccessToken:  snap.AccessToken,
		RefreshToken: snap.RefreshToken,
		ExpiresAt:    snap.ExpiresAt,
	}, nil
}

// Clear removes the persisted snapshot.
// Clearing a store with no snapshot is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
