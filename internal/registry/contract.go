package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/wlminter/internal/host"
)

// CodeName is the name the registry is stored under on the host.
const CodeName = "registry"

// Registry errors.
var (
	ErrUnauthorized  = errors.New("registry: unauthorized")
	ErrTokenClaimed  = errors.New("registry: token already claimed")
	ErrTokenNotFound = errors.New("registry: token not found")
	ErrBadMessage    = errors.New("registry: expected exactly one message variant")
)

type token struct {
	Owner     host.Addr `json:"owner"`
	TokenURI  *string   `json:"token_uri"`
	Extension *Metadata `json:"extension"`
}

var (
	info      = host.NewItem[InstantiateMsg]("registry_info")
	numTokens = host.NewItem[uint64]("num_tokens")
	tokens    = host.NewMap[host.StrKey, token]("tokens")
)

// Contract is a minimal NFT registry with a single minter. Token ids are
// opaque strings chosen by the minter.
type Contract struct{}

// Code returns the host code entry for the registry.
func Code() host.Code {
	return host.Code{Name: CodeName, New: func() host.Contract { return Contract{} }}
}

func (Contract) Instantiate(_ context.Context, deps host.Deps, _ host.Env, _ host.MessageInfo, raw json.RawMessage) (*host.Response, error) {
	var msg InstantiateMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("decoding instantiate msg: %w", err)
	}
	if err := info.Save(deps.Storage, msg); err != nil {
		return nil, err
	}
	if err := numTokens.Save(deps.Storage, 0); err != nil {
		return nil, err
	}
	return host.NewResponse().
		AddAttribute("action", "instantiate").
		AddAttribute("minter", msg.Minter.Hex()), nil
}

func (Contract) Execute(_ context.Context, deps host.Deps, _ host.Env, mi host.MessageInfo, raw json.RawMessage) (*host.Response, error) {
	var msg ExecuteMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("decoding execute msg: %w", err)
	}
	cfg, err := info.Load(deps.Storage)
	if err != nil {
		return nil, err
	}
	if mi.Sender != cfg.Minter {
		return nil, fmt.Errorf("%w: %s is not the minter", ErrUnauthorized, mi.Sender.Hex())
	}

	switch {
	case msg.Mint != nil && msg.SetExtension == nil:
		m := msg.Mint
		if _, err := tokens.Update(deps.Storage, host.StrKey(m.TokenID), func(cur *token) (token, error) {
			if cur != nil {
				return token{}, fmt.Errorf("%w: %s", ErrTokenClaimed, m.TokenID)
			}
			return token{Owner: m.Owner, TokenURI: m.TokenURI, Extension: m.Extension}, nil
		}); err != nil {
			return nil, err
		}
		n, err := numTokens.Load(deps.Storage)
		if err != nil {
			return nil, err
		}
		if err := numTokens.Save(deps.Storage, n+1); err != nil {
			return nil, err
		}
		deps.Log.Debug().Str("token_id", m.TokenID).Str("owner", m.Owner.Hex()).Msg("token minted")
		return host.NewResponse().
			AddAttribute("action", "mint").
			AddAttribute("minter", mi.Sender.Hex()).
			AddAttribute("owner", m.Owner.Hex()).
			AddAttribute("token_id", m.TokenID), nil

	case msg.SetExtension != nil && msg.Mint == nil:
		m := msg.SetExtension
		if _, err := tokens.Update(deps.Storage, host.StrKey(m.TokenID), func(cur *token) (token, error) {
			if cur == nil {
				return token{}, fmt.Errorf("%w: %s", ErrTokenNotFound, m.TokenID)
			}
			cur.Extension = m.Extension
			return *cur, nil
		}); err != nil {
			return nil, err
		}
		return host.NewResponse().
			AddAttribute("action", "set_extension").
			AddAttribute("token_id", m.TokenID), nil

	default:
		return nil, ErrBadMessage
	}
}

func (Contract) Query(_ context.Context, deps host.Deps, _ host.Env, raw json.RawMessage) (json.RawMessage, error) {
	var msg QueryMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("decoding query msg: %w", err)
	}

	var resp any
	switch {
	case msg.NumTokens != nil:
		n, err := numTokens.Load(deps.Storage)
		if err != nil {
			return nil, err
		}
		resp = NumTokensResponse{Count: n}
	case msg.NftInfo != nil:
		t, err := loadToken(deps.Storage, msg.NftInfo.TokenID)
		if err != nil {
			return nil, err
		}
		resp = NftInfoResponse{TokenURI: t.TokenURI, Extension: t.Extension}
	case msg.OwnerOf != nil:
		t, err := loadToken(deps.Storage, msg.OwnerOf.TokenID)
		if err != nil {
			return nil, err
		}
		resp = OwnerOfResponse{Owner: t.Owner}
	case msg.ContractInfo != nil:
		cfg, err := info.Load(deps.Storage)
		if err != nil {
			return nil, err
		}
		resp = ContractInfoResponse{Name: cfg.Name, Symbol: cfg.Symbol}
	default:
		return nil, ErrBadMessage
	}
	return json.Marshal(resp)
}

func (Contract) Migrate(context.Context, host.Deps, host.Env, json.RawMessage) (*host.Response, error) {
	return host.NewResponse().AddAttribute("action", "migrate"), nil
}

func loadToken(s host.Storage, id string) (token, error) {
	t, err := tokens.MayLoad(s, host.StrKey(id))
	if err != nil {
		return token{}, err
	}
	if t == nil {
		return token{}, fmt.Errorf("%w: %s", ErrTokenNotFound, id)
	}
	return *t, nil
}
