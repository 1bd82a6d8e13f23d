package minter

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/wlminter/internal/host"
	"github.com/Mohsinsiddi/wlminter/internal/registry"
)

func (c *Contract) queryConfig(deps host.Deps) (ConfigResponse, error) {
	state, err := loadState(deps.Storage)
	if err != nil {
		return ConfigResponse{}, err
	}
	return ConfigResponse{
		Owner:                     state.Owner,
		Registry:                  state.Registry,
		Artist:                    state.Artist,
		Supply:                    state.Supply,
		WhitelistAllowance:        state.PublicWhitelistAllowance,
		PrivateWhitelistAllowance: state.PrivateWhitelistAllowance,
		Price:                     state.Price,
		NamePrefix:                state.NamePrefix,
		Denom:                     c.denom,
		Initialized:               state.Phase != PhaseDisabled,
		PublicWhitelist:           state.Phase == PhaseNormalWhitelist,
		PublicMint:                state.Phase == PhasePublic,
		Reveal:                    state.Phase == PhaseReveal,
	}, nil
}

func queryWhitelist(deps host.Deps, t Track, addr host.Addr) (WhitelistMember, error) {
	m, err := whitelistOf(t).members.MayLoad(deps.Storage, addr)
	if err != nil || m == nil {
		return WhitelistMember{}, err
	}
	return *m, nil
}

// queryTokenStatuses asks the registry about each id in turn and splits the
// answers on whether metadata is attached.
func (c *Contract) queryTokenStatuses(ctx context.Context, deps host.Deps, ids []string) (TokenStatusesResponse, error) {
	if c.variant == VariantFixed {
		return TokenStatusesResponse{}, newError(KindEntrypointDisabled, "")
	}
	state, err := loadState(deps.Storage)
	if err != nil {
		return TokenStatusesResponse{}, err
	}
	out := TokenStatusesResponse{Revealed: []TokenStatus{}, Unrevealed: []TokenStatus{}}
	for _, id := range ids {
		nft, err := host.QuerySmart[registry.NftInfoResponse](ctx, deps.Querier, state.Registry, registry.NftInfo(id))
		if err != nil {
			return TokenStatusesResponse{}, fmt.Errorf("querying registry token %s: %w", id, err)
		}
		status := TokenStatus{TokenID: id, TokenURI: nft.TokenURI, Extension: nft.Extension}
		if status.Extension != nil {
			out.Revealed = append(out.Revealed, status)
		} else {
			out.Unrevealed = append(out.Unrevealed, status)
		}
	}
	return out, nil
}
