package config

// Config holds all wlminter configuration.
type Config struct {
	DefaultWallet string `json:"default_wallet"`
	ChainID       string `json:"chain_id"`
	Denom         string `json:"denom"`
	Variant       string `json:"variant"`   // "updatable" | "fixed"
	LogLevel      string `json:"log_level"` // zerolog level name
	Keyring       string `json:"keyring"`   // "auto" | "file"

	// KeyringPassphrase unlocks the file keyring. Env only, never saved.
	KeyringPassphrase string `json:"-"`

	// internal: config dir path used for Save()
	configDir string
}

// Wallet represents a stored wallet entry.
type Wallet struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Type      string `json:"type"`              // "watch-only" | "signing"
	KeyRef    string `json:"key_ref,omitempty"` // keychain reference for signing wallets
	IsDefault bool   `json:"is_default"`
	CreatedAt string `json:"created_at"`
}

// WalletsFile is the structure of wallets.json.
type WalletsFile struct {
	Wallets []Wallet `json:"wallets"`
}
