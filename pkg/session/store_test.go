package session

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testKey(b byte) []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = b
	}
	return key
}

func TestStoreKeySize(t *testing.T) {
	if _, err := NewStore("x", []byte("short")); err != ErrInvalidKeySize {
		t.Errorf("NewStore(short key) error = %v, want ErrInvalidKeySize", err)
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.bin")
	store, err := NewStore(path, testKey(1))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	original := &Session{
		ID:           uuid.New(),
		UserID:       "user-42",
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour).Truncate(time.Millisecond),
	}

	if err := store.Save(original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("Load returned nil session")
	}
	if loaded.ID != original.ID {
		t.Errorf("ID = %v, want %v", loaded.ID, original.ID)
	}
	if loaded.UserID != original.UserID {
		t.Errorf("UserID = %q, want %q", loaded.UserID, original.UserID)
	}
	if loaded.RefreshToken != original.RefreshToken {
		t.Errorf("RefreshToken = %q, want %q", loaded.RefreshToken, original.RefreshToken)
	}
	if !loaded.ExpiresAt.Equal(original.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", loaded.ExpiresAt, original.ExpiresAt)
	}
}

func TestStoreFileIsEncrypted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.bin")
	store, _ := NewStore(path, testKey(2))

	sess := &Session{
		ID:           uuid.New(),
		UserID:       "plaintext-user",
		AccessToken:  "secret-access-token",
		RefreshToken: "secret-refresh-token",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	if err := store.Save(sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if bytes.Contains(raw, []byte("secret-access-token")) || bytes.Contains(raw, []byte("plaintext-user")) {
		t.Error("snapshot file contains plaintext secrets")
	}
}

func TestStoreWrongKeyFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.bin")
	store, _ := NewStore(path, testKey(3))
	if err := store.Save(&Session{ID: uuid.New(), AccessToken: "t", ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	other, _ := NewStore(path, testKey(4))
	if _, err := other.Load(); err == nil {
		t.Error("Load with wrong key succeeded")
	}
}

func TestStoreLoadMissing(t *testing.T) {
	store, _ := NewStore(filepath.Join(t.TempDir(), "none.bin"), testKey(5))

	sess, err := store.Load()
	if err != nil {
		t.Fatalf("Load of missing file errored: %v", err)
	}
	if sess != nil {
		t.Error("Load of missing file returned a session")
	}
}

func TestStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.bin")
	store, _ := NewStore(path, testKey(6))

	if err := store.Clear(); err != nil {
		t.Errorf("Clear on empty store errored: %v", err)
	}

	_ = store.Save(&Session{ID: uuid.New(), AccessToken: "t", ExpiresAt: time.Now().Add(time.Hour)})
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	sess, err := store.Load()
	if err != nil || sess != nil {
		t.Errorf("Load after Clear = (%v, %v), want (nil, nil)", sess, err)
	}
}

func TestStoreSaveNil(t *testing.T) {
	store, _ := NewStore(filepath.Join(t.TempDir(), "s.bin"), testKey(7))
	if err := store.Save(nil); err != ErrNoSession {
		t.Errorf("Save(nil) error = %v, want ErrNoSession", err)
	}
}

func TestStoreTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.bin")
	if err := os.WriteFile(path, []byte("abc"), 0600); err != nil {
		t.Fatal(err)
	}

	store, _ := NewStore(path, testKey(8))
	if _, err := store.Load(); err != ErrSnapshotTooShort {
		t.Errorf("Load(truncated) error = %v, want ErrSnapshotTooShort", err)
	}
}
