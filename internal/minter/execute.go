package minter

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/holiman/uint256"

	"github.com/Mohsinsiddi/wlminter/internal/host"
	"github.com/Mohsinsiddi/wlminter/internal/registry"
)

// mint allocates the next registry token id to the sender. Order matters:
// phase, whitelist allowance, capacity, then payment.
func (c *Contract) mint(ctx context.Context, deps host.Deps, info host.MessageInfo) (*host.Response, error) {
	state, err := loadState(deps.Storage)
	if err != nil {
		return nil, err
	}

	switch state.Phase {
	case PhaseDisabled:
		return nil, newError(KindUnauthorized, "minting is not enabled")
	case PhaseReveal:
		return nil, newError(KindMintExpired, "")
	case PhasePrivateWhitelist:
		if err := enforceAllowance(deps.Storage, TrackPrivate, state, info.Sender); err != nil {
			return nil, err
		}
	case PhaseNormalWhitelist:
		if err := enforceAllowance(deps.Storage, TrackPublic, state, info.Sender); err != nil {
			return nil, err
		}
	case PhasePublic:
	default:
		return nil, fmt.Errorf("unknown phase %d", state.Phase)
	}

	count, err := host.QuerySmart[registry.NumTokensResponse](ctx, deps.Querier, state.Registry, registry.NumTokens())
	if err != nil {
		return nil, fmt.Errorf("querying registry token count: %w", err)
	}
	if count.Count >= state.Supply {
		return nil, newError(KindSoldOut, "")
	}
	tokenID := count.Count + 1

	if err := c.checkPayment(state.Price, info.Funds); err != nil {
		return nil, err
	}

	id := strconv.FormatUint(tokenID, 10)
	mintMsg, err := host.NewWasmExecute(state.Registry, registry.Mint(id, info.Sender), nil)
	if err != nil {
		return nil, err
	}

	deps.Log.Debug().
		Str("token_id", id).
		Str("owner", info.Sender.Hex()).
		Stringer("phase", state.Phase).
		Msg("mint accepted")
	return host.NewResponse().
		AddAttribute("action", "mint").
		AddAttribute("token_id", id).
		AddAttribute("owner", info.Sender.Hex()).
		AddMessage(mintMsg), nil
}

// enforceAllowance checks sender's membership on track and consumes one
// unit of its allowance. Nothing is written when the check fails.
func enforceAllowance(s host.Storage, t Track, state State, sender host.Addr) error {
	wl := whitelistOf(t)
	member, err := wl.members.Load(s, sender)
	if errors.Is(err, host.ErrNotFound) {
		return &ContractError{Kind: KindNotWhitelisted, Detail: t.String() + " whitelist", Err: err}
	}
	if err != nil {
		return err
	}
	if !member.Whitelisted {
		return newError(KindNotWhitelisted, t.String()+" whitelist")
	}
	allowance := state.Allowance(t)
	_, err = wl.counters.Update(s, sender, func(minted *uint64) (uint64, error) {
		var n uint64
		if minted != nil {
			n = *minted
		}
		if n >= allowance {
			return 0, &ContractError{Kind: KindWhitelistAllowance, Minted: n}
		}
		return n + 1, nil
	})
	return err
}

// checkPayment requires one attached coin of the contract's denom worth at
// least price. A zero price accepts anything.
func (c *Contract) checkPayment(price *uint256.Int, funds host.Coins) error {
	if price == nil || price.IsZero() {
		return nil
	}
	for _, coin := range funds {
		if coin.Denom == c.denom && coin.Amount != nil && !coin.Amount.Lt(price) {
			return nil
		}
	}
	return newError(KindUnauthorized, fmt.Sprintf("insufficient payment: need %s%s", price.Dec(), c.denom))
}

func (c *Contract) reveal(ctx context.Context, deps host.Deps, tokenID string) (*host.Response, error) {
	if c.variant == VariantFixed {
		return nil, newError(KindEntrypointDisabled, "")
	}
	state, err := loadState(deps.Storage)
	if err != nil {
		return nil, err
	}
	if state.Phase != PhaseReveal {
		return nil, newError(KindRevealDisabled, "")
	}
	nft, err := host.QuerySmart[registry.NftInfoResponse](ctx, deps.Querier, state.Registry, registry.NftInfo(tokenID))
	if err != nil {
		return nil, fmt.Errorf("querying registry token %s: %w", tokenID, err)
	}
	if nft.Extension != nil {
		return nil, &ContractError{Kind: KindMetadataRevealed, TokenID: tokenID}
	}
	return nil, newError(KindEntrypointDisabled, "no metadata source is configured")
}

func (c *Contract) withdraw(deps host.Deps, info host.MessageInfo, amount *uint256.Int) (*host.Response, error) {
	state, err := loadState(deps.Storage)
	if err != nil {
		return nil, err
	}
	if info.Sender != state.Artist {
		return nil, newError(KindUnauthorized, "only the artist may withdraw")
	}
	if amount == nil {
		return nil, newError(KindInvalidInput, "missing amount")
	}
	send := host.BankSend{
		ToAddress: info.Sender,
		Amount:    host.Coins{{Denom: c.denom, Amount: amount}},
	}
	deps.Log.Info().Str("artist", info.Sender.Hex()).Str("amount", amount.Dec()).Msg("withdraw")
	return host.NewResponse().
		AddAttribute("action", "withdraw").
		AddAttribute("amount", amount.Dec()).
		AddMessage(send), nil
}

func (c *Contract) initialize(deps host.Deps, info host.MessageInfo) (*host.Response, error) {
	state, err := loadState(deps.Storage)
	if err != nil {
		return nil, err
	}
	if info.Sender != state.Owner {
		return nil, newError(KindUnauthorized, "")
	}
	if state.Phase != PhaseDisabled {
		return nil, newError(KindInitialized, "")
	}
	return setPhase(deps, state, PhasePrivateWhitelist, "initialize")
}

var transitions = map[Phase]struct {
	already ErrorKind
	action  string
}{
	PhaseNormalWhitelist: {KindPublicWhitelistMintEnabled, "enable_normal_whitelist"},
	PhasePublic:          {KindPublicMintEnabled, "enable_public_mint"},
	PhaseReveal:          {KindRevealEnabled, "enable_reveal"},
}

// transition moves an initialized contract forward to target.
func (c *Contract) transition(deps host.Deps, info host.MessageInfo, target Phase) (*host.Response, error) {
	tr, ok := transitions[target]
	if !ok {
		return nil, fmt.Errorf("no transition to phase %s", target)
	}
	state, err := loadState(deps.Storage)
	if err != nil {
		return nil, err
	}
	if info.Sender != state.Owner {
		return nil, newError(KindUnauthorized, "")
	}
	if state.Phase == PhaseDisabled {
		return nil, newError(KindUnauthorized, "contract is not initialized")
	}
	if state.Phase >= target {
		return nil, newError(tr.already, "")
	}
	return setPhase(deps, state, target, tr.action)
}

func setPhase(deps host.Deps, state State, to Phase, action string) (*host.Response, error) {
	from := state.Phase
	state.Phase = to
	if err := stateItem.Save(deps.Storage, state); err != nil {
		return nil, err
	}
	deps.Log.Info().Stringer("from", from).Stringer("to", to).Msg("phase changed")
	return host.NewResponse().AddAttribute("action", action), nil
}

func (c *Contract) approve(deps host.Deps, info host.MessageInfo, t Track, members []host.Addr) (*host.Response, error) {
	if err := requireOwner(deps.Storage, info.Sender); err != nil {
		return nil, err
	}
	wl := whitelistOf(t)
	for _, m := range members {
		if err := wl.members.Save(deps.Storage, m, WhitelistMember{Whitelisted: true}); err != nil {
			return nil, err
		}
	}
	return host.NewResponse().
		AddAttribute("action", t.String()+"_whitelist_approve").
		AddAttribute("count", strconv.Itoa(len(members))), nil
}

func (c *Contract) remove(deps host.Deps, info host.MessageInfo, t Track, members []host.Addr) (*host.Response, error) {
	if err := requireOwner(deps.Storage, info.Sender); err != nil {
		return nil, err
	}
	wl := whitelistOf(t)
	for _, m := range members {
		if err := wl.members.Remove(deps.Storage, m); err != nil {
			return nil, err
		}
	}
	return host.NewResponse().
		AddAttribute("action", t.String()+"_whitelist_remove").
		AddAttribute("count", strconv.Itoa(len(members))), nil
}

// updateConfig replaces the whole state record. Fields are not validated.
func (c *Contract) updateConfig(deps host.Deps, info host.MessageInfo, config State) (*host.Response, error) {
	if err := requireOwner(deps.Storage, info.Sender); err != nil {
		return nil, err
	}
	if err := stateItem.Save(deps.Storage, config); err != nil {
		return nil, err
	}
	deps.Log.Info().Str("owner", config.Owner.Hex()).Stringer("phase", config.Phase).Msg("config replaced")
	return host.NewResponse().AddAttribute("action", "update_config"), nil
}

func requireOwner(s host.Storage, sender host.Addr) error {
	state, err := loadState(s)
	if err != nil {
		return err
	}
	if sender != state.Owner {
		return newError(KindUnauthorized, "")
	}
	return nil
}
