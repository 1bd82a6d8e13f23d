package minter

import "fmt"

// ErrorKind classifies a contract failure.
type ErrorKind int

const (
	KindUnauthorized ErrorKind = iota + 1
	KindInvalidInput
	KindInitialized
	KindMintExpired
	KindPublicWhitelistMintEnabled
	KindPublicMintEnabled
	KindRevealEnabled
	KindRevealDisabled
	KindWhitelistAllowance
	KindNotWhitelisted
	KindSoldOut
	KindMetadataRevealed
	KindEntrypointDisabled
)

var kindMessages = map[ErrorKind]string{
	KindUnauthorized:               "unauthorized",
	KindInvalidInput:               "invalid input",
	KindInitialized:                "contract already initialized",
	KindMintExpired:                "minting period expired",
	KindPublicWhitelistMintEnabled: "public whitelist minting already enabled",
	KindPublicMintEnabled:          "public minting already enabled",
	KindRevealEnabled:              "revealing already enabled",
	KindRevealDisabled:             "revealing not enabled",
	KindWhitelistAllowance:         "whitelist allowance exceeded",
	KindNotWhitelisted:             "must be whitelisted to mint before public minting",
	KindSoldOut:                    "all tokens distributed",
	KindMetadataRevealed:           "metadata of token already revealed",
	KindEntrypointDisabled:         "this entrypoint is disabled and cannot be used",
}

func (k ErrorKind) String() string {
	if m, ok := kindMessages[k]; ok {
		return m
	}
	return fmt.Sprintf("error kind %d", int(k))
}

// ContractError is every business-rule failure the minter reports.
// Minted is set for KindWhitelistAllowance and TokenID for
// KindMetadataRevealed.
type ContractError struct {
	Kind    ErrorKind
	Minted  uint64
	TokenID string
	Detail  string
	Err     error
}

func (e *ContractError) Error() string {
	msg := e.Kind.String()
	switch e.Kind {
	case KindWhitelistAllowance:
		msg = fmt.Sprintf("%s (minted %d)", msg, e.Minted)
	case KindMetadataRevealed:
		msg = fmt.Sprintf("%s (token %s)", msg, e.TokenID)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ContractError) Unwrap() error { return e.Err }

// Is matches any ContractError of the same kind, so the package sentinels
// work with errors.Is.
func (e *ContractError) Is(target error) bool {
	t, ok := target.(*ContractError)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrUnauthorized               = &ContractError{Kind: KindUnauthorized}
	ErrInvalidInput               = &ContractError{Kind: KindInvalidInput}
	ErrInitialized                = &ContractError{Kind: KindInitialized}
	ErrMintExpired                = &ContractError{Kind: KindMintExpired}
	ErrPublicWhitelistMintEnabled = &ContractError{Kind: KindPublicWhitelistMintEnabled}
	ErrPublicMintEnabled          = &ContractError{Kind: KindPublicMintEnabled}
	ErrRevealEnabled              = &ContractError{Kind: KindRevealEnabled}
	ErrRevealDisabled             = &ContractError{Kind: KindRevealDisabled}
	ErrWhitelistAllowance         = &ContractError{Kind: KindWhitelistAllowance}
	ErrNotWhitelisted             = &ContractError{Kind: KindNotWhitelisted}
	ErrSoldOut                    = &ContractError{Kind: KindSoldOut}
	ErrMetadataRevealed           = &ContractError{Kind: KindMetadataRevealed}
	ErrEntrypointDisabled         = &ContractError{Kind: KindEntrypointDisabled}
)

func newError(kind ErrorKind, detail string) *ContractError {
	return &ContractError{Kind: kind, Detail: detail}
}

func invalidInput(err error) *ContractError {
	return &ContractError{Kind: KindInvalidInput, Err: err}
}
