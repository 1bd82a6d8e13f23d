package wallet

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

const keychainService = "wlminter"

// KeystoreBackend stores private keys by reference.
type KeystoreBackend interface {
	Store(name, hexKey string) (string, error)
	Retrieve(ref string) (string, error)
	Delete(ref string) error
}

// KeystoreConfig selects where keys live. Passphrase unlocks the file
// backend; FileOnly skips the OS keychain entirely.
type KeystoreConfig struct {
	Dir        string
	Passphrase keyring.PromptFunc
	FileOnly   bool
}

// Keystore wraps OS keychain access.
type Keystore struct {
	ring keyring.Keyring
}

// OpenKeystore opens the OS keychain, or an encrypted file keyring under
// cfg.Dir/keys when no keychain is reachable.
func OpenKeystore(cfg KeystoreConfig) (*Keystore, error) {
	kc := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
		FileDir:                  filepath.Join(cfg.Dir, "keys"),
		FilePasswordFunc:         cfg.Passphrase,
	}

	switch {
	case cfg.FileOnly:
		kc.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	case runtime.GOOS == "linux":
		// Headless Linux usually has no secret service.
		kc.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(kc)
	if err != nil && !cfg.FileOnly {
		kc.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
		ring, err = keyring.Open(kc)
	}
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return &Keystore{ring: ring}, nil
}

// Store saves a private key for a wallet name and returns its reference.
func (k *Keystore) Store(name, hexKey string) (string, error) {
	ref := keyRef(name)
	err := k.ring.Set(keyring.Item{
		Key:         ref,
		Data:        []byte(normaliseHexKey(hexKey)),
		Label:       "wlminter wallet " + name,
		Description: "secp256k1 private key",
	})
	if err != nil {
		return "", fmt.Errorf("keychain store: %w", err)
	}
	return ref, nil
}

// Retrieve fetches a private key by its reference.
func (k *Keystore) Retrieve(ref string) (string, error) {
	item, err := k.ring.Get(ref)
	if err != nil {
		return "", fmt.Errorf("keychain retrieve %s: %w", ref, err)
	}
	return string(item.Data), nil
}

// Delete removes a stored key. Missing keys are not an error.
func (k *Keystore) Delete(ref string) error {
	err := k.ring.Remove(ref)
	if errors.Is(err, keyring.ErrKeyNotFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// InMemoryKeystore keeps keys in process memory. Used by tests and
// throwaway sessions.
type InMemoryKeystore struct {
	mu   sync.Mutex
	data map[string]string
}

// NewInMemoryKeystore creates an in-memory keystore.
func NewInMemoryKeystore() *InMemoryKeystore {
	return &InMemoryKeystore{data: make(map[string]string)}
}

func (k *InMemoryKeystore) Store(name, hexKey string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	ref := keyRef(name)
	k.data[ref] = normaliseHexKey(hexKey)
	return ref, nil
}

func (k *InMemoryKeystore) Retrieve(ref string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.data[ref]
	if !ok {
		return "", fmt.Errorf("key not found: %s", ref)
	}
	return v, nil
}

func (k *InMemoryKeystore) Delete(ref string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.data, ref)
	return nil
}

func keyRef(name string) string {
	return keychainService + "." + name
}

func normaliseHexKey(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s[2:]
	}
	return s
}
