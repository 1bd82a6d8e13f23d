// Package minter implements the whitelist minting contract: a phased sale
// that gates token creation in a separate registry contract.
package minter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"
	"golang.org/x/mod/semver"

	"github.com/Mohsinsiddi/wlminter/internal/host"
)

const (
	// ContractName is recorded in the version record and checked on migrate.
	ContractName = "whitelist-minter"
	// Version is the version this build writes.
	Version = "0.2.0"
	// DefaultDenom is the native denomination payments are made in.
	DefaultDenom = "aarch"
)

// Variant selects which optional entry points a deployment exposes.
type Variant int

const (
	// VariantUpdatable supports reveal and token status queries.
	VariantUpdatable Variant = iota
	// VariantFixed disables them.
	VariantFixed
)

func (v Variant) String() string {
	if v == VariantFixed {
		return "fixed"
	}
	return "updatable"
}

// ParseVariant parses "updatable" or "fixed".
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "", "updatable":
		return VariantUpdatable, nil
	case "fixed":
		return VariantFixed, nil
	}
	return 0, fmt.Errorf("unknown variant %q", s)
}

// Contract is the minter. It holds no state of its own: everything lives
// in the storage the host passes in.
type Contract struct {
	variant Variant
	denom   string
	version string
}

// Option configures a Contract.
type Option func(*Contract)

// WithVariant selects the deployment variant.
func WithVariant(v Variant) Option {
	return func(c *Contract) { c.variant = v }
}

// WithDenom sets the payment denomination.
func WithDenom(denom string) Option {
	return func(c *Contract) { c.denom = denom }
}

// WithVersion overrides the version the contract records.
func WithVersion(version string) Option {
	return func(c *Contract) { c.version = version }
}

// New returns a minter.
func New(opts ...Option) *Contract {
	c := &Contract{variant: VariantUpdatable, denom: DefaultDenom, version: Version}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Code returns a host code entry named name that builds minters with opts.
func Code(name string, opts ...Option) host.Code {
	return host.Code{Name: name, New: func() host.Contract { return New(opts...) }}
}

func (c *Contract) Instantiate(_ context.Context, deps host.Deps, _ host.Env, info host.MessageInfo, raw json.RawMessage) (*host.Response, error) {
	var msg InstantiateMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, invalidInput(err)
	}
	price := msg.Price
	if price == nil {
		price = new(uint256.Int)
	}
	state := State{
		Owner:                     info.Sender,
		Registry:                  msg.Registry,
		Artist:                    msg.ReservedRecipient,
		Supply:                    msg.Supply,
		Phase:                     PhaseDisabled,
		PrivateWhitelistAllowance: msg.PrivateWhitelistAllowance,
		PublicWhitelistAllowance:  msg.PublicWhitelistAllowance,
		Price:                     price,
		NamePrefix:                msg.NamingPrefix,
	}
	if err := versionItem.Save(deps.Storage, ContractVersion{Contract: ContractName, Version: c.version}); err != nil {
		return nil, err
	}
	if err := stateItem.Save(deps.Storage, state); err != nil {
		return nil, err
	}
	if err := addInitialMembers(deps.Storage, TrackPublic, msg.PublicWhitelistMembers); err != nil {
		return nil, err
	}
	if err := addInitialMembers(deps.Storage, TrackPrivate, msg.PrivateWhitelistMembers); err != nil {
		return nil, err
	}

	deps.Log.Info().
		Str("owner", info.Sender.Hex()).
		Str("cw721", msg.Registry.Hex()).
		Uint64("supply", msg.Supply).
		Msg("minter instantiated")
	return host.NewResponse().
		AddAttribute("action", "instantiate").
		AddAttribute("owner", info.Sender.Hex()).
		AddAttribute("cw721", msg.Registry.Hex()).
		AddAttribute("supply", fmt.Sprint(msg.Supply)), nil
}

func addInitialMembers(s host.Storage, t Track, members []host.Addr) error {
	wl := whitelistOf(t)
	for _, m := range members {
		if _, err := wl.members.Update(s, m, func(cur *WhitelistMember) (WhitelistMember, error) {
			if cur != nil {
				return WhitelistMember{}, newError(KindInvalidInput, fmt.Sprintf("duplicate %s whitelist member %s", t, m.Hex()))
			}
			return WhitelistMember{Whitelisted: true}, nil
		}); err != nil {
			return err
		}
	}
	return nil
}

func (c *Contract) Execute(ctx context.Context, deps host.Deps, _ host.Env, info host.MessageInfo, raw json.RawMessage) (*host.Response, error) {
	var msg ExecuteMsg
	if err := decodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	switch {
	case msg.Mint != nil:
		return c.mint(ctx, deps, info)
	case msg.Reveal != nil:
		return c.reveal(ctx, deps, msg.Reveal.TokenID)
	case msg.Withdraw != nil:
		return c.withdraw(deps, info, msg.Withdraw.Amount)
	case msg.Initialize != nil:
		return c.initialize(deps, info)
	case msg.EnableNormalWhitelist != nil:
		return c.transition(deps, info, PhaseNormalWhitelist)
	case msg.EnablePublicMint != nil:
		return c.transition(deps, info, PhasePublic)
	case msg.EnableReveal != nil:
		if c.variant == VariantFixed {
			return nil, newError(KindEntrypointDisabled, "")
		}
		return c.transition(deps, info, PhaseReveal)
	case msg.PublicWhitelistApprove != nil:
		return c.approve(deps, info, TrackPublic, msg.PublicWhitelistApprove.Members)
	case msg.PublicWhitelistRemove != nil:
		return c.remove(deps, info, TrackPublic, msg.PublicWhitelistRemove.Members)
	case msg.PrivateWhitelistApprove != nil:
		return c.approve(deps, info, TrackPrivate, msg.PrivateWhitelistApprove.Members)
	case msg.PrivateWhitelistRemove != nil:
		return c.remove(deps, info, TrackPrivate, msg.PrivateWhitelistRemove.Members)
	case msg.UpdateConfig != nil:
		return c.updateConfig(deps, info, msg.UpdateConfig.Config)
	default:
		return nil, invalidInput(errOneVariant)
	}
}

func (c *Contract) Query(ctx context.Context, deps host.Deps, _ host.Env, raw json.RawMessage) (json.RawMessage, error) {
	var msg QueryMsg
	if err := decodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	var (
		resp any
		err  error
	)
	switch {
	case msg.Config != nil:
		resp, err = c.queryConfig(deps)
	case msg.Whitelist != nil:
		track := TrackPublic
		if msg.Whitelist.Track != nil {
			track = *msg.Whitelist.Track
		}
		resp, err = queryWhitelist(deps, track, msg.Whitelist.Address)
	case msg.TokenStatuses != nil:
		resp, err = c.queryTokenStatuses(ctx, deps, msg.TokenStatuses.TokenIDs)
	default:
		return nil, invalidInput(errOneVariant)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(resp)
}

// Migrate accepts only state written by an older version of this contract.
func (c *Contract) Migrate(_ context.Context, deps host.Deps, _ host.Env, raw json.RawMessage) (*host.Response, error) {
	if len(raw) > 0 {
		var msg MigrateMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, invalidInput(err)
		}
	}
	stored, err := versionItem.Load(deps.Storage)
	if err != nil {
		return nil, err
	}
	if stored.Contract != ContractName {
		return nil, newError(KindInvalidInput, fmt.Sprintf("cannot migrate from contract %q", stored.Contract))
	}
	from, to := "v"+stored.Version, "v"+c.version
	if !semver.IsValid(from) || !semver.IsValid(to) {
		return nil, newError(KindInvalidInput, fmt.Sprintf("invalid version %q -> %q", stored.Version, c.version))
	}
	if semver.Compare(from, to) >= 0 {
		return nil, newError(KindInvalidInput, fmt.Sprintf("version %s is not newer than %s", c.version, stored.Version))
	}
	if err := versionItem.Save(deps.Storage, ContractVersion{Contract: ContractName, Version: c.version}); err != nil {
		return nil, err
	}
	deps.Log.Info().Str("from_version", stored.Version).Str("to_version", c.version).Msg("minter migrated")
	return host.NewResponse().
		AddAttribute("action", "migrate").
		AddAttribute("from_version", stored.Version).
		AddAttribute("to_version", c.version), nil
}

func loadState(s host.Storage) (State, error) {
	st, err := stateItem.Load(s)
	if err != nil {
		return State{}, fmt.Errorf("loading state: %w", err)
	}
	return st, nil
}
