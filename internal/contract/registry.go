// Package contract keeps the local address book of deployed contracts,
// keyed by alias and chain id.
package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Mohsinsiddi/wlminter/internal/host"
)

// ErrContractNotFound is returned when an alias is not in the book.
var ErrContractNotFound = errors.New("contract not found")

// Entry is a stored contract.
type Entry struct {
	Name    string    `json:"name"`
	Chain   string    `json:"chain"`
	Address host.Addr `json:"address"`
	Code    string    `json:"code"`
	Label   string    `json:"label,omitempty"`
}

// Registry stores and retrieves contract entries.
type Registry struct {
	path      string
	contracts map[string]*Entry // key: "name@chain"
}

// NewRegistry creates a Registry backed by a JSON file.
func NewRegistry(path string) *Registry {
	return &Registry{
		path:      path,
		contracts: make(map[string]*Entry),
	}
}

// Open creates a Registry and loads it.
func Open(path string) (*Registry, error) {
	r := NewRegistry(path)
	if err := r.Load(); err != nil {
		return nil, err
	}
	return r, nil
}

// Load reads stored contracts from disk.
func (r *Registry) Load() error {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parsing %s: %w", r.path, err)
	}

	for i := range entries {
		e := &entries[i]
		r.contracts[key(e.Name, e.Chain)] = e
	}
	return nil
}

// Save writes all contracts to disk.
func (r *Registry) Save() error {
	entries := make([]Entry, 0, len(r.contracts))
	for _, e := range r.All() {
		entries = append(entries, *e)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o600)
}

// Add adds or updates a contract entry.
func (r *Registry) Add(e *Entry) {
	r.contracts[key(e.Name, e.Chain)] = e
}

// Get returns a contract by name and chain.
func (r *Registry) Get(name, chain string) (*Entry, error) {
	e, ok := r.contracts[key(name, chain)]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrContractNotFound, name, chain)
	}
	return e, nil
}

// Resolve turns an alias or a hex address into an address. Hex input is
// returned as is, without a lookup.
func (r *Registry) Resolve(ref, chain string) (host.Addr, error) {
	if common.IsHexAddress(ref) {
		return common.HexToAddress(ref), nil
	}
	e, err := r.Get(ref, chain)
	if err != nil {
		return host.Addr{}, err
	}
	return e.Address, nil
}

// All returns all registered contracts ordered by chain, then name.
func (r *Registry) All() []*Entry {
	out := make([]*Entry, 0, len(r.contracts))
	for _, e := range r.contracts {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Chain != out[j].Chain {
			return out[i].Chain < out[j].Chain
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Remove deletes a contract entry.
func (r *Registry) Remove(name, chain string) error {
	k := key(name, chain)
	if _, ok := r.contracts[k]; !ok {
		return fmt.Errorf("%w: %s on %s", ErrContractNotFound, name, chain)
	}
	delete(r.contracts, k)
	return nil
}

func key(name, chain string) string {
	return name + "@" + chain
}
