// Package registry holds the token-registry messages the minter speaks and a
// small in-process registry contract for local runs and tests.
package registry

import "github.com/Mohsinsiddi/wlminter/internal/host"

// Trait is one metadata attribute.
type Trait struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// Metadata is the on-chain description of a revealed token.
type Metadata struct {
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	Image       string  `json:"image,omitempty"`
	Attributes  []Trait `json:"attributes,omitempty"`
}

// InstantiateMsg configures a registry. Only Minter may mint.
type InstantiateMsg struct {
	Name   string    `json:"name"`
	Symbol string    `json:"symbol"`
	Minter host.Addr `json:"minter"`
}

// MintMsg creates token TokenID owned by Owner.
type MintMsg struct {
	TokenID   string    `json:"token_id"`
	Owner     host.Addr `json:"owner"`
	TokenURI  *string   `json:"token_uri"`
	Extension *Metadata `json:"extension"`
}

// SetExtensionMsg attaches metadata to an existing token. Only the
// registry's minter may send it and the whitelist minter never does.
type SetExtensionMsg struct {
	TokenID   string    `json:"token_id"`
	Extension *Metadata `json:"extension"`
}

// ExecuteMsg is the registry's execute surface. Exactly one field is set.
type ExecuteMsg struct {
	Mint         *MintMsg         `json:"mint,omitempty"`
	SetExtension *SetExtensionMsg `json:"set_extension,omitempty"`
}

// Empty is a variant without fields.
type Empty struct{}

// TokenIDMsg names a token.
type TokenIDMsg struct {
	TokenID string `json:"token_id"`
}

// QueryMsg is the registry's query surface. Exactly one field is set.
type QueryMsg struct {
	NumTokens    *Empty      `json:"num_tokens,omitempty"`
	NftInfo      *TokenIDMsg `json:"nft_info,omitempty"`
	OwnerOf      *TokenIDMsg `json:"owner_of,omitempty"`
	ContractInfo *Empty      `json:"contract_info,omitempty"`
}

// NumTokensResponse answers NumTokens.
type NumTokensResponse struct {
	Count uint64 `json:"count"`
}

// NftInfoResponse answers NftInfo.
type NftInfoResponse struct {
	TokenURI  *string   `json:"token_uri"`
	Extension *Metadata `json:"extension"`
}

// OwnerOfResponse answers OwnerOf.
type OwnerOfResponse struct {
	Owner host.Addr `json:"owner"`
}

// ContractInfoResponse answers ContractInfo.
type ContractInfoResponse struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// Mint builds the execute message that mints tokenID to owner.
func Mint(tokenID string, owner host.Addr) ExecuteMsg {
	return ExecuteMsg{Mint: &MintMsg{TokenID: tokenID, Owner: owner}}
}

// NumTokens builds the token count query.
func NumTokens() QueryMsg { return QueryMsg{NumTokens: &Empty{}} }

// NftInfo builds the metadata query for tokenID.
func NftInfo(tokenID string) QueryMsg { return QueryMsg{NftInfo: &TokenIDMsg{TokenID: tokenID}} }

// OwnerOf builds the owner query for tokenID.
func OwnerOf(tokenID string) QueryMsg { return QueryMsg{OwnerOf: &TokenIDMsg{TokenID: tokenID}} }
