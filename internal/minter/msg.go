package minter

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/holiman/uint256"

	"github.com/Mohsinsiddi/wlminter/internal/host"
	"github.com/Mohsinsiddi/wlminter/internal/registry"
)

// InstantiateMsg configures a new minter. The sender becomes the owner.
type InstantiateMsg struct {
	Registry                  host.Addr    `json:"cw721" toml:"cw721"`
	Supply                    uint64       `json:"supply" toml:"supply"`
	PublicWhitelistAllowance  uint64       `json:"public_whitelist_allowance" toml:"public_whitelist_allowance"`
	PublicWhitelistMembers    []host.Addr  `json:"public_whitelist_members" toml:"public_whitelist_members"`
	PrivateWhitelistAllowance uint64       `json:"private_whitelist_allowance" toml:"private_whitelist_allowance"`
	PrivateWhitelistMembers   []host.Addr  `json:"private_whitelist_members" toml:"private_whitelist_members"`
	ReservedRecipient         host.Addr    `json:"reserved_recipient" toml:"reserved_recipient"`
	Price                     *uint256.Int `json:"price" toml:"price"`
	NamingPrefix              string       `json:"naming_prefix" toml:"naming_prefix"`
}

type Empty struct{}

type RevealMsg struct {
	TokenID string `json:"token_id"`
}

type WithdrawMsg struct {
	Amount *uint256.Int `json:"amount"`
}

type WhitelistMsg struct {
	Members []host.Addr `json:"whitelist_members"`
}

type UpdateConfigMsg struct {
	Config State `json:"config"`
}

// ExecuteMsg is the execute surface. Exactly one field is set.
type ExecuteMsg struct {
	Mint                    *Empty           `json:"mint,omitempty"`
	Reveal                  *RevealMsg       `json:"reveal,omitempty"`
	Withdraw                *WithdrawMsg     `json:"withdraw,omitempty"`
	Initialize              *Empty           `json:"initialize,omitempty"`
	EnableNormalWhitelist   *Empty           `json:"enable_normal_whitelist,omitempty"`
	EnablePublicMint        *Empty           `json:"enable_public_mint,omitempty"`
	EnableReveal            *Empty           `json:"enable_reveal,omitempty"`
	PublicWhitelistApprove  *WhitelistMsg    `json:"public_whitelist_approve,omitempty"`
	PublicWhitelistRemove   *WhitelistMsg    `json:"public_whitelist_remove,omitempty"`
	PrivateWhitelistApprove *WhitelistMsg    `json:"private_whitelist_approve,omitempty"`
	PrivateWhitelistRemove  *WhitelistMsg    `json:"private_whitelist_remove,omitempty"`
	UpdateConfig            *UpdateConfigMsg `json:"update_config,omitempty"`
}

type WhitelistQuery struct {
	Address host.Addr `json:"address"`
	Track   *Track    `json:"track,omitempty"`
}

type TokenStatusesQuery struct {
	TokenIDs []string `json:"token_ids"`
}

// QueryMsg is the query surface. Exactly one field is set.
type QueryMsg struct {
	Config        *Empty              `json:"config,omitempty"`
	Whitelist     *WhitelistQuery     `json:"whitelist,omitempty"`
	TokenStatuses *TokenStatusesQuery `json:"token_statuses,omitempty"`
}

// MigrateMsg carries no parameters.
type MigrateMsg struct{}

// ConfigResponse is the public projection of State. The phase is exposed
// as four flags.
type ConfigResponse struct {
	Owner                     host.Addr    `json:"owner"`
	Registry                  host.Addr    `json:"cw721"`
	Artist                    host.Addr    `json:"artist"`
	Supply                    uint64       `json:"supply"`
	WhitelistAllowance        uint64       `json:"whitelist_allowance"`
	PrivateWhitelistAllowance uint64       `json:"private_whitelist_allowance"`
	Price                     *uint256.Int `json:"price"`
	NamePrefix                string       `json:"name_prefix"`
	Denom                     string       `json:"denom"`
	Initialized               bool         `json:"initialized"`
	PublicWhitelist           bool         `json:"public_whitelist"`
	PublicMint                bool         `json:"public_mint"`
	Reveal                    bool         `json:"reveal"`
}

// TokenStatus is one token's metadata as reported by the registry.
type TokenStatus struct {
	TokenID   string             `json:"token_id"`
	TokenURI  *string            `json:"token_uri"`
	Extension *registry.Metadata `json:"extension"`
}

// TokenStatusesResponse partitions tokens by whether metadata is attached.
type TokenStatusesResponse struct {
	Revealed   []TokenStatus `json:"revealed"`
	Unrevealed []TokenStatus `json:"unrevealed"`
}

var errOneVariant = errors.New("expected exactly one message variant")

// decodeMsg decodes an externally tagged message into out, rejecting
// anything that is not an object with exactly one key.
func decodeMsg(raw json.RawMessage, out any) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return invalidInput(err)
	}
	if len(probe) != 1 {
		return invalidInput(errOneVariant)
	}
	for _, v := range probe {
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return invalidInput(errOneVariant)
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return invalidInput(err)
	}
	return nil
}
