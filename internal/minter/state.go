package minter

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/Mohsinsiddi/wlminter/internal/host"
)

// State is the minter's singleton configuration record.
type State struct {
	Owner                     host.Addr    `json:"owner"`
	Registry                  host.Addr    `json:"cw721"`
	Artist                    host.Addr    `json:"artist"`
	Supply                    uint64       `json:"supply"`
	Phase                     Phase        `json:"phase"`
	PrivateWhitelistAllowance uint64       `json:"private_whitelist_allowance"`
	PublicWhitelistAllowance  uint64       `json:"public_whitelist_allowance"`
	Price                     *uint256.Int `json:"price"`
	NamePrefix                string       `json:"name_prefix"`
}

// Allowance returns the per-address mint cap of track.
func (s State) Allowance(t Track) uint64 {
	if t == TrackPrivate {
		return s.PrivateWhitelistAllowance
	}
	return s.PublicWhitelistAllowance
}

// WhitelistMember is one address's membership record on a track.
type WhitelistMember struct {
	Whitelisted bool `json:"whitelisted"`
}

// Track selects one of the two whitelists.
type Track uint8

const (
	TrackPublic Track = iota
	TrackPrivate
)

func (t Track) String() string {
	if t == TrackPrivate {
		return "private"
	}
	return "public"
}

// ParseTrack parses "public" or "private".
func ParseTrack(s string) (Track, error) {
	switch s {
	case "public":
		return TrackPublic, nil
	case "private":
		return TrackPrivate, nil
	}
	return 0, fmt.Errorf("unknown whitelist track %q", s)
}

func (t Track) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Track) UnmarshalText(b []byte) error {
	v, err := ParseTrack(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ContractVersion identifies the code that last wrote the contract's state.
type ContractVersion struct {
	Contract string `json:"contract"`
	Version  string `json:"version"`
}

type whitelist struct {
	members  host.Map[host.Addr, WhitelistMember]
	counters host.Map[host.Addr, uint64]
}

var (
	stateItem   = host.NewItem[State]("state")
	versionItem = host.NewItem[ContractVersion]("contract_info")

	whitelists = [...]whitelist{
		TrackPublic: {
			members:  host.NewMap[host.Addr, WhitelistMember]("public_whitelist"),
			counters: host.NewMap[host.Addr, uint64]("public_whitelist_counter"),
		},
		TrackPrivate: {
			members:  host.NewMap[host.Addr, WhitelistMember]("private_whitelist"),
			counters: host.NewMap[host.Addr, uint64]("private_whitelist_counter"),
		},
	}
)

func whitelistOf(t Track) whitelist { return whitelists[t] }

// Minted returns how many tokens addr has minted on track.
func Minted(s host.Storage, t Track, addr host.Addr) (uint64, error) {
	n, err := whitelistOf(t).counters.MayLoad(s, addr)
	if err != nil || n == nil {
		return 0, err
	}
	return *n, nil
}
