package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

const (
	defaultChainID  = "wlminter-local"
	defaultDenom    = "aarch"
	defaultVariant  = "updatable"
	defaultLogLevel = "info"
	defaultKeyring  = "auto"

	configFile    = "config.json"
	walletsFile   = "wallets.json"
	contractsFile = "contracts.json"
	ledgerFile    = "ledger.db"
)

// Env holds the environment overrides. Empty values leave the file config
// untouched.
type Env struct {
	Home     string `env:"WLMINTER_HOME"`
	ChainID  string `env:"WLMINTER_CHAIN_ID"`
	Denom    string `env:"WLMINTER_DENOM"`
	LogLevel string `env:"WLMINTER_LOG_LEVEL"`
	Keyring  string `env:"WLMINTER_KEYRING"`

	KeyringPassphrase string `env:"WLMINTER_KEYRING_PASSPHRASE"`
}

// ParseEnv loads overrides from environment variables.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Load reads config from dir (or creates defaults), then applies
// environment overrides. dir defaults to $WLMINTER_HOME, then ~/.wlminter.
func Load(dir string) (*Config, error) {
	overrides, err := ParseEnv()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = overrides.Home
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".wlminter")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.configDir = dir
	cfg.apply(overrides)
	return cfg, nil
}

func (c *Config) apply(e Env) {
	if e.ChainID != "" {
		c.ChainID = e.ChainID
	}
	if e.Denom != "" {
		c.Denom = e.Denom
	}
	if e.LogLevel != "" {
		c.LogLevel = e.LogLevel
	}
	if e.Keyring != "" {
		c.Keyring = e.Keyring
	}
	c.KeyringPassphrase = e.KeyringPassphrase
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	return saveJSON(filepath.Join(c.configDir, configFile), c)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// LedgerPath is where the local host keeps its SQLite ledger.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.configDir, ledgerFile)
}

// ContractsPath is the contract alias book.
func (c *Config) ContractsPath() string {
	return filepath.Join(c.configDir, contractsFile)
}

// LoadWallets reads wallets.json.
func (c *Config) LoadWallets() (*WalletsFile, error) {
	return loadJSON[WalletsFile](filepath.Join(c.configDir, walletsFile))
}

// SaveWallets writes wallets.json.
func (c *Config) SaveWallets(wf *WalletsFile) error {
	return saveJSON(filepath.Join(c.configDir, walletsFile), wf)
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		ChainID:   defaultChainID,
		Denom:     defaultDenom,
		Variant:   defaultVariant,
		LogLevel:  defaultLogLevel,
		Keyring:   defaultKeyring,
		configDir: dir,
	}
}

func loadJSON[T any](path string) (*T, error) {
	var zero T
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &zero, nil
	}
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
