// Package wallet manages named secp256k1 accounts whose keys live in the OS
// keychain (or an encrypted file keyring) and signs host transactions.
package wallet

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Mohsinsiddi/wlminter/internal/config"
)

// Wallet types.
const (
	TypeWatchOnly = "watch-only"
	TypeSigning   = "signing"
)

// Errors.
var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrWalletExists   = errors.New("wallet already exists")
	ErrInvalidKey     = errors.New("invalid private key")
	ErrWatchOnly      = errors.New("wallet is watch-only")
	ErrNoDefault      = errors.New("no default wallet")
)

// Wallet holds metadata for a single wallet.
type Wallet struct {
	Name      string
	Address   string
	Type      string
	KeyRef    string // keychain reference for signing wallets
	IsDefault bool
	CreatedAt string
}

// Store persists wallet metadata. Keys never go through it.
type Store interface {
	Load() ([]*Wallet, error)
	Save([]*Wallet) error
}

// Manager handles wallet CRUD.
type Manager struct {
	store   Store
	ks      KeystoreBackend
	now     func() time.Time
	wallets map[string]*Wallet
	loaded  bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithInMemoryStore uses an in-memory store (useful for tests).
func WithInMemoryStore() Option {
	return func(m *Manager) {
		m.store = &memStore{}
	}
}

// WithStore sets a custom store.
func WithStore(s Store) Option {
	return func(m *Manager) {
		m.store = s
	}
}

// WithKeystore sets where private keys are kept.
func WithKeystore(ks KeystoreBackend) Option {
	return func(m *Manager) {
		m.ks = ks
	}
}

// NewManager creates a new wallet manager. Without options it keeps both
// metadata and keys in memory.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		wallets: make(map[string]*Wallet),
		store:   &memStore{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.ks == nil {
		m.ks = NewInMemoryKeystore()
	}
	return m
}

// Add registers a watch-only (or pre-built) wallet.
func (m *Manager) Add(name string, w *Wallet) error {
	if err := m.load(); err != nil {
		return err
	}
	if _, exists := m.wallets[name]; exists {
		return ErrWalletExists
	}
	w.Name = name
	if w.Type == "" {
		w.Type = TypeWatchOnly
	}
	if w.CreatedAt == "" {
		w.CreatedAt = m.stamp()
	}
	m.wallets[name] = w
	return m.persist()
}

// AddWithKey imports a hex private key. The key goes to the keystore and
// only its reference is persisted.
func (m *Manager) AddWithKey(name, hexKey string) (*Wallet, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	if _, exists := m.wallets[name]; exists {
		return nil, ErrWalletExists
	}
	privKey, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return m.addSigning(name, hexutil.Encode(crypto.FromECDSA(privKey)), crypto.PubkeyToAddress(privKey.PublicKey).Hex())
}

// Generate creates a fresh key for name.
func (m *Manager) Generate(name string) (*Wallet, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	if _, exists := m.wallets[name]; exists {
		return nil, ErrWalletExists
	}
	privKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	return m.addSigning(name, hexutil.Encode(crypto.FromECDSA(privKey)), crypto.PubkeyToAddress(privKey.PublicKey).Hex())
}

func (m *Manager) addSigning(name, hexKey, addr string) (*Wallet, error) {
	ref, err := m.ks.Store(name, hexKey)
	if err != nil {
		return nil, fmt.Errorf("storing key: %w", err)
	}
	w := &Wallet{
		Name:      name,
		Address:   addr,
		Type:      TypeSigning,
		KeyRef:    ref,
		IsDefault: len(m.wallets) == 0,
		CreatedAt: m.stamp(),
	}
	m.wallets[name] = w
	if err := m.persist(); err != nil {
		return nil, err
	}
	return w, nil
}

// Get returns a wallet by name.
func (m *Manager) Get(name string) (*Wallet, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	w, ok := m.wallets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, name)
	}
	return w, nil
}

// Remove deletes a wallet and its stored key.
func (m *Manager) Remove(name string) error {
	if err := m.load(); err != nil {
		return err
	}
	w, ok := m.wallets[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrWalletNotFound, name)
	}
	if w.KeyRef != "" {
		if err := m.ks.Delete(w.KeyRef); err != nil {
			return fmt.Errorf("deleting key: %w", err)
		}
	}
	delete(m.wallets, name)
	return m.persist()
}

// List returns all wallets ordered by name.
func (m *Manager) List() ([]*Wallet, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	out := make([]*Wallet, 0, len(m.wallets))
	for _, w := range m.wallets {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SetDefault marks a wallet as the default.
func (m *Manager) SetDefault(name string) error {
	if err := m.load(); err != nil {
		return err
	}
	if _, ok := m.wallets[name]; !ok {
		return fmt.Errorf("%w: %s", ErrWalletNotFound, name)
	}
	for _, w := range m.wallets {
		w.IsDefault = w.Name == name
	}
	return m.persist()
}

// Default returns the default wallet. A lone wallet is the default even
// when unmarked.
func (m *Manager) Default() (*Wallet, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	for _, w := range m.wallets {
		if w.IsDefault {
			return w, nil
		}
	}
	if len(m.wallets) == 1 {
		for _, w := range m.wallets {
			return w, nil
		}
	}
	return nil, ErrNoDefault
}

// Signer unlocks the key of a signing wallet. An empty name picks the
// default wallet.
func (m *Manager) Signer(name string) (*Signer, error) {
	var (
		w   *Wallet
		err error
	)
	if name == "" {
		w, err = m.Default()
	} else {
		w, err = m.Get(name)
	}
	if err != nil {
		return nil, err
	}
	if w.Type != TypeSigning {
		return nil, fmt.Errorf("%w: %s", ErrWatchOnly, w.Name)
	}
	hexKey, err := m.ks.Retrieve(w.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}
	privKey, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return &Signer{wallet: w, key: privKey}, nil
}

// --- internal ---

func (m *Manager) stamp() string {
	return m.now().UTC().Format(time.RFC3339)
}

func (m *Manager) load() error {
	if m.loaded {
		return nil
	}
	wallets, err := m.store.Load()
	if err != nil {
		return fmt.Errorf("loading wallets: %w", err)
	}
	for _, w := range wallets {
		m.wallets[w.Name] = w
	}
	m.loaded = true
	return nil
}

func (m *Manager) persist() error {
	wallets := make([]*Wallet, 0, len(m.wallets))
	for _, w := range m.wallets {
		wallets = append(wallets, w)
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].Name < wallets[j].Name })
	return m.store.Save(wallets)
}

// --- in-memory store ---

type memStore struct {
	wallets []*Wallet
}

func (s *memStore) Load() ([]*Wallet, error) {
	return s.wallets, nil
}

func (s *memStore) Save(wallets []*Wallet) error {
	s.wallets = wallets
	return nil
}

// --- config-backed store ---

// ConfigStore persists wallets to wallets.json in the config dir.
type ConfigStore struct {
	cfg *config.Config
}

// NewConfigStore wraps cfg's wallets file.
func NewConfigStore(cfg *config.Config) *ConfigStore {
	return &ConfigStore{cfg: cfg}
}

func (s *ConfigStore) Load() ([]*Wallet, error) {
	wf, err := s.cfg.LoadWallets()
	if err != nil {
		return nil, err
	}
	out := make([]*Wallet, 0, len(wf.Wallets))
	for _, w := range wf.Wallets {
		out = append(out, &Wallet{
			Name:      w.Name,
			Address:   w.Address,
			Type:      w.Type,
			KeyRef:    w.KeyRef,
			IsDefault: w.IsDefault,
			CreatedAt: w.CreatedAt,
		})
	}
	return out, nil
}

func (s *ConfigStore) Save(wallets []*Wallet) error {
	wf := &config.WalletsFile{Wallets: make([]config.Wallet, 0, len(wallets))}
	for _, w := range wallets {
		wf.Wallets = append(wf.Wallets, config.Wallet{
			Name:      w.Name,
			Address:   w.Address,
			Type:      w.Type,
			KeyRef:    w.KeyRef,
			IsDefault: w.IsDefault,
			CreatedAt: w.CreatedAt,
		})
	}
	return s.cfg.SaveWallets(wf)
}
