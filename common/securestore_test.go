package common_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/guarzo/linkedinapi/common"
)

func testKey(b byte) []byte {
	key := make([]byte, common.KeySize)
	for i := range key {
		key[i] = b
	}
	return key
}

func TestFileSecureStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.bin")
	store, err := common.NewFileSecureStore(path, testKey(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.Set(common.StoreKeyAccessToken, "secret-token"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	value, found, err := store.Get(common.StoreKeyAccessToken)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !found || value != "secret-token" {
		t.Errorf("expected 'secret-token', got %q (found=%v)", value, found)
	}

	// a second instance over the same file and key sees the entry
	reopened, err := common.NewFileSecureStore(path, testKey(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	value, found, err = reopened.Get(common.StoreKeyAccessToken)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !found || value != "secret-token" {
		t.Errorf("expected 'secret-token' after reopen, got %q (found=%v)", value, found)
	}
}

func TestFileSecureStore_EncryptedAtRest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.bin")
	store, err := common.NewFileSecureStore(path, testKey(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Set(common.StoreKeyAccessToken, "plainly-visible?"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if bytes.Contains(raw, []byte("plainly-visible?")) {
		t.Error("secret appears in cleartext on disk")
	}

	// the wrong key must not decrypt
	wrongKey, err := common.NewFileSecureStore(path, testKey(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := wrongKey.Get(common.StoreKeyAccessToken); err == nil {
		t.Error("expected an unseal error with the wrong key")
	}
}

func TestFileSecureStore_Delete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.bin")
	store, err := common.NewFileSecureStore(path, testKey(4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// deleting from an empty store is a no-op
	if err := store.Delete(common.StoreKeyAccessToken); err != nil {
		t.Fatalf("delete on empty store failed: %v", err)
	}

	if err := store.Set(common.StoreKeyAccessToken, "tok"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := store.Delete(common.StoreKeyAccessToken); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, found, _ := store.Get(common.StoreKeyAccessToken); found {
		t.Error("expected entry to be gone")
	}

	// last entry removed, the file should be gone too
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected store file to be removed, stat err: %v", err)
	}
}

func TestFileSecureStore_BadKeySize(t *testing.T) {
	if _, err := common.NewFileSecureStore("ignored", []byte("short")); err == nil {
		t.Error("expected an error for a short key")
	}
}

func TestMemorySecureStore(t *testing.T) {
	store := common.NewMemorySecureStore()

	if err := store.Set("k", "v"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	value, found, err := store.Get("k")
	if err != nil || !found || value != "v" {
		t.Errorf("expected 'v', got %q (found=%v, err=%v)", value, found, err)
	}
	if err := store.Delete("k"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, found, _ := store.Get("k"); found {
		t.Error("expected 'k' to be deleted")
	}
}
