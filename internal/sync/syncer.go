// Package sync imports and exports deployment manifests: the contract
// book in a shareable form.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mohsinsiddi/wlminter/internal/contract"
	"github.com/Mohsinsiddi/wlminter/internal/host"
)

// ErrCodeMismatch is returned when a manifest entry disagrees with the
// ledger about which code runs at an address.
var ErrCodeMismatch = errors.New("manifest code does not match ledger")

// Manifest is the structure of a deployments.json manifest.
type Manifest struct {
	Contracts map[string]map[string]ManifestEntry `json:"contracts"` // alias -> chain -> entry
}

// ManifestEntry is a single contract deployment entry.
type ManifestEntry struct {
	Address host.Addr `json:"address"`
	Code    string    `json:"code"`
	Label   string    `json:"label,omitempty"`
}

// Ledger looks up contracts on the local chain.
type Ledger interface {
	ContractInfo(addr host.Addr) (host.ContractInfo, error)
}

// Syncer moves manifests in and out of the contract book.
type Syncer struct {
	reg     *contract.Registry
	ledger  Ledger
	chainID string
	client  *http.Client
	log     zerolog.Logger
}

// New creates a Syncer. Entries for chainID are checked against ledger.
func New(reg *contract.Registry, ledger Ledger, chainID string, log zerolog.Logger) *Syncer {
	return &Syncer{
		reg:     reg,
		ledger:  ledger,
		chainID: chainID,
		client:  &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

// Import reads the manifest at source (a file path or http(s) URL), adds
// every entry to the book and saves it. It returns how many entries were
// imported. Nothing is saved if a local entry fails verification.
func (s *Syncer) Import(ctx context.Context, source string) (int, error) {
	m, err := s.fetchManifest(ctx, source)
	if err != nil {
		return 0, fmt.Errorf("fetching manifest: %w", err)
	}

	var entries []*contract.Entry
	for name, chains := range m.Contracts {
		for chain, e := range chains {
			entry := &contract.Entry{Name: name, Chain: chain, Address: e.Address, Code: e.Code, Label: e.Label}
			if chain == s.chainID {
				if err := s.verify(entry); err != nil {
					return 0, err
				}
			}
			entries = append(entries, entry)
		}
	}

	for _, e := range entries {
		s.reg.Add(e)
		s.log.Debug().Str("alias", e.Name).Str("chain", e.Chain).Str("address", e.Address.Hex()).Msg("imported contract")
	}
	if err := s.reg.Save(); err != nil {
		return 0, fmt.Errorf("saving contracts: %w", err)
	}
	return len(entries), nil
}

// verify checks a local entry against the ledger and fills in the code
// when the manifest left it out.
func (s *Syncer) verify(e *contract.Entry) error {
	info, err := s.ledger.ContractInfo(e.Address)
	if err != nil {
		return fmt.Errorf("%s: %w", e.Name, err)
	}
	switch {
	case e.Code == "":
		e.Code = info.Code
	case e.Code != info.Code:
		return fmt.Errorf("%w: %s is %q, manifest says %q", ErrCodeMismatch, e.Name, info.Code, e.Code)
	}
	return nil
}

// Export builds a manifest from the whole book.
func (s *Syncer) Export() *Manifest {
	m := &Manifest{Contracts: make(map[string]map[string]ManifestEntry)}
	for _, e := range s.reg.All() {
		if m.Contracts[e.Name] == nil {
			m.Contracts[e.Name] = make(map[string]ManifestEntry)
		}
		m.Contracts[e.Name][e.Chain] = ManifestEntry{Address: e.Address, Code: e.Code, Label: e.Label}
	}
	return m
}

// WriteManifest writes m as indented JSON.
func WriteManifest(w io.Writer, m *Manifest) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// Aliases returns the manifest's aliases in order.
func (m *Manifest) Aliases() []string {
	out := make([]string, 0, len(m.Contracts))
	for name := range m.Contracts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *Syncer) fetchManifest(ctx context.Context, source string) (*Manifest, error) {
	var body []byte
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("GET %s: %s", source, resp.Status)
		}
		if body, err = io.ReadAll(resp.Body); err != nil {
			return nil, err
		}
	} else {
		var err error
		if body, err = os.ReadFile(source); err != nil {
			return nil, err
		}
	}

	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}
