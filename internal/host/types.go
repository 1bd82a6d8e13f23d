package host

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Addr identifies an account or a contract on the host.
type Addr = common.Address

// ParseAddr parses a 0x-prefixed hex address.
func ParseAddr(s string) (Addr, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return Addr{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// Coin is an amount of one native denomination.
type Coin struct {
	Denom  string       `json:"denom"`
	Amount *uint256.Int `json:"amount"`
}

// NewCoin builds a coin from a uint64 amount.
func NewCoin(amount uint64, denom string) Coin {
	return Coin{Denom: denom, Amount: uint256.NewInt(amount)}
}

func (c Coin) String() string {
	if c.Amount == nil {
		return "0" + c.Denom
	}
	return c.Amount.Dec() + c.Denom
}

// IsZero reports whether the coin carries no value.
func (c Coin) IsZero() bool {
	return c.Amount == nil || c.Amount.IsZero()
}

// Coins is a list of coins attached to a call.
type Coins []Coin

func (cs Coins) String() string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, ",")
}

// AmountOf returns the total of denom in cs.
func (cs Coins) AmountOf(denom string) *uint256.Int {
	total := new(uint256.Int)
	for _, c := range cs {
		if c.Denom == denom && c.Amount != nil {
			total.Add(total, c.Amount)
		}
	}
	return total
}

var coinPattern = regexp.MustCompile(`^([0-9]+)([a-zA-Z][a-zA-Z0-9/._-]{1,127})$`)

// ParseCoins parses "100aarch,5uatom". An empty string yields no coins.
func ParseCoins(s string) (Coins, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out Coins
	for _, raw := range strings.Split(s, ",") {
		m := coinPattern.FindStringSubmatch(strings.TrimSpace(raw))
		if m == nil {
			return nil, fmt.Errorf("invalid coin %q: expected <amount><denom>", raw)
		}
		amount, err := uint256.FromDecimal(m[1])
		if err != nil {
			return nil, fmt.Errorf("invalid coin amount %q: %w", m[1], err)
		}
		out = append(out, Coin{Denom: m[2], Amount: amount})
	}
	return out, nil
}

// BlockInfo is the host's view of the current block.
type BlockInfo struct {
	Height  uint64 `json:"height"`
	Time    int64  `json:"time"` // unix seconds
	ChainID string `json:"chain_id"`
}

// Env describes where a contract call runs.
type Env struct {
	Block    BlockInfo `json:"block"`
	Contract Addr      `json:"contract"`
}

// MessageInfo carries the caller and the funds it attached.
type MessageInfo struct {
	Sender Addr  `json:"sender"`
	Funds  Coins `json:"funds"`
}

// Attribute is one key/value pair emitted by a contract for observers.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Instruction is a side effect a contract asks the host to perform after the
// contract's own writes are final. The contract never observes its outcome.
type Instruction interface {
	instruction()
	// Kind names the instruction for logs and receipts.
	Kind() string
}

// BankSend moves native funds from the emitting contract to ToAddress.
type BankSend struct {
	ToAddress Addr  `json:"to_address"`
	Amount    Coins `json:"amount"`
}

func (BankSend) instruction() {}
func (BankSend) Kind() string { return "bank_send" }

// WasmExecute calls another contract's execute entry point.
type WasmExecute struct {
	ContractAddr Addr            `json:"contract_addr"`
	Msg          json.RawMessage `json:"msg"`
	Funds        Coins           `json:"funds"`
}

func (WasmExecute) instruction() {}
func (WasmExecute) Kind() string { return "wasm_execute" }

// NewWasmExecute encodes msg and wraps it in a WasmExecute instruction.
func NewWasmExecute(contract Addr, msg any, funds Coins) (WasmExecute, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return WasmExecute{}, fmt.Errorf("encoding execute msg: %w", err)
	}
	return WasmExecute{ContractAddr: contract, Msg: raw, Funds: funds}, nil
}

// Response is what a contract entry point returns on success.
type Response struct {
	Attributes []Attribute     `json:"attributes"`
	Messages   []Instruction   `json:"-"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// NewResponse returns an empty response.
func NewResponse() *Response {
	return &Response{}
}

// AddAttribute appends a key/value attribute.
func (r *Response) AddAttribute(key, value string) *Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

// AddMessage queues an instruction for the host.
func (r *Response) AddMessage(msg Instruction) *Response {
	r.Messages = append(r.Messages, msg)
	return r
}

// Attribute returns the first value stored under key.
func (r *Response) Attribute(key string) (string, bool) {
	for _, a := range r.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}
