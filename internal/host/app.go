package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"
)

// App errors.
var (
	ErrUnknownContract = errors.New("unknown contract")
	ErrUnknownCode     = errors.New("unknown code")
	ErrNotAdmin        = errors.New("sender is not the contract admin")
	ErrCallDepth       = errors.New("call depth exceeded")
)

const (
	defaultChainID = "wlminter-local"
	maxCallDepth   = 10
)

// ContractInfo is the host's record of one contract instance.
type ContractInfo struct {
	Address       Addr   `json:"address"`
	Code          string `json:"code"`
	Creator       Addr   `json:"creator"`
	Admin         Addr   `json:"admin"`
	Label         string `json:"label"`
	CreatedHeight uint64 `json:"created_height"`
}

// Event records one contract call or instruction executed inside a tx.
type Event struct {
	Type       string      `json:"type"`
	Contract   Addr        `json:"contract"`
	Attributes []Attribute `json:"attributes,omitempty"`
}

// Attribute returns the first value stored under key.
func (e Event) Attribute(key string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Receipt is the outcome of a committed transaction.
type Receipt struct {
	Height   uint64          `json:"height"`
	TxHash   common.Hash     `json:"tx_hash"`
	Contract Addr            `json:"contract"`
	Events   []Event         `json:"events"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// Attribute searches every event, in order, for key.
func (r *Receipt) Attribute(key string) (string, bool) {
	for _, e := range r.Events {
		if v, ok := e.Attribute(key); ok {
			return v, true
		}
	}
	return "", false
}

var (
	contracts   = NewMap[Addr, ContractInfo]("contracts")
	instanceSeq = NewItem[uint64]("instance_seq")
	blockHeight = NewItem[uint64]("block_height")
)

// App is a single-node host: it owns the ledger, runs contracts one
// transaction at a time and executes the instructions they return.
type App struct {
	mu      sync.Mutex
	root    Storage
	codes   map[string]Code
	chainID string
	log     zerolog.Logger
	now     func() time.Time
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the host logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *App) { a.log = l }
}

// WithChainID sets the chain id transactions must carry.
func WithChainID(id string) Option {
	return func(a *App) { a.chainID = id }
}

// WithClock overrides the block time source.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// NewApp creates a host over root.
func NewApp(root Storage, opts ...Option) *App {
	a := &App{
		root:    root,
		codes:   make(map[string]Code),
		chainID: defaultChainID,
		log:     zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ChainID returns the chain id.
func (a *App) ChainID() string { return a.chainID }

// StoreCode registers a contract implementation under its name.
func (a *App) StoreCode(code Code) {
	a.mu.Lock()
	a.codes[code.Name] = code
	a.mu.Unlock()
}

// ContractInfo returns the record of the contract at addr.
func (a *App) ContractInfo(addr Addr) (ContractInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	info, err := contracts.Load(a.root, addr)
	if errors.Is(err, ErrNotFound) {
		return ContractInfo{}, fmt.Errorf("%w: %s", ErrUnknownContract, addr.Hex())
	}
	return info, err
}

// Instantiate creates a new contract from code. The sender becomes its admin.
func (a *App) Instantiate(ctx context.Context, code string, sender Addr, msg any, funds Coins, label string) (*Receipt, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding instantiate msg: %w", err)
	}
	return a.run(ctx, string(TxInstantiate), common.Hash{}, func(t *txn) (*Receipt, error) {
		return t.instantiate(ctx, code, sender, raw, funds, label)
	})
}

// Execute calls contract's execute entry point on behalf of sender.
func (a *App) Execute(ctx context.Context, sender, contract Addr, msg any, funds Coins) (*Receipt, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding execute msg: %w", err)
	}
	return a.run(ctx, string(TxExecute), common.Hash{}, func(t *txn) (*Receipt, error) {
		return t.executeTop(ctx, sender, contract, raw, funds)
	})
}

// Migrate switches contract to code and runs the new code's migrate entry
// point. Only the contract admin may migrate.
func (a *App) Migrate(ctx context.Context, sender, contract Addr, code string, msg any) (*Receipt, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding migrate msg: %w", err)
	}
	return a.run(ctx, string(TxMigrate), common.Hash{}, func(t *txn) (*Receipt, error) {
		return t.migrate(ctx, sender, contract, code, raw)
	})
}

// Deliver authenticates a signed transaction and runs it.
func (a *App) Deliver(ctx context.Context, stx SignedTx) (*Receipt, error) {
	tx := stx.Tx
	if tx.ChainID != a.chainID {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrWrongChain, tx.ChainID, a.chainID)
	}
	if err := stx.Verify(); err != nil {
		return nil, err
	}
	hash, err := tx.Hash()
	if err != nil {
		return nil, err
	}
	return a.run(ctx, string(tx.Kind), hash, func(t *txn) (*Receipt, error) {
		acct, err := accounts.MayLoad(t.store, tx.Sender)
		if err != nil {
			return nil, err
		}
		var seq uint64
		if acct != nil {
			seq = acct.Sequence
		}
		if tx.Sequence != seq {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrBadSequence, tx.Sequence, seq)
		}
		if err := accounts.Save(t.store, tx.Sender, Account{Sequence: seq + 1}); err != nil {
			return nil, err
		}
		switch tx.Kind {
		case TxInstantiate:
			return t.instantiate(ctx, tx.Code, tx.Sender, tx.Msg, tx.Funds, tx.Label)
		case TxExecute:
			return t.executeTop(ctx, tx.Sender, tx.Contract, tx.Msg, tx.Funds)
		case TxMigrate:
			return t.migrate(ctx, tx.Sender, tx.Contract, tx.Code, tx.Msg)
		default:
			return nil, fmt.Errorf("unknown tx kind %q", tx.Kind)
		}
	})
}

// Sequence returns the next expected sequence for sender.
func (a *App) Sequence(sender Addr) (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	acct, err := accounts.MayLoad(a.root, sender)
	if err != nil || acct == nil {
		return 0, err
	}
	return acct.Sequence, nil
}

// Query runs contract's query entry point against committed state.
func (a *App) Query(ctx context.Context, contract Addr, msg any) (json.RawMessage, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	t := &txn{app: a, store: ReadOnly(a.root), block: a.currentBlock(a.root)}
	return t.QueryWasmSmart(ctx, contract, raw)
}

// QueryJSON runs a query and decodes the answer into out.
func (a *App) QueryJSON(ctx context.Context, contract Addr, msg, out any) error {
	raw, err := a.Query(ctx, contract, msg)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding query response: %w", err)
	}
	return nil
}

// Mint creates native funds out of thin air. It stands in for a faucet.
func (a *App) Mint(ctx context.Context, to Addr, coins Coins) error {
	_, err := a.run(ctx, "bank_mint", common.Hash{}, func(t *txn) (*Receipt, error) {
		if err := credit(t.store, to, coins); err != nil {
			return nil, err
		}
		return &Receipt{Events: []Event{{
			Type:       "bank_mint",
			Contract:   to,
			Attributes: []Attribute{{Key: "amount", Value: coins.String()}},
		}}}, nil
	})
	return err
}

// Balance returns owner's committed balance of denom.
func (a *App) Balance(owner Addr, denom string) (*uint256.Int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return balanceOf(a.root, owner, denom)
}

func (a *App) currentBlock(s Storage) BlockInfo {
	h, _ := blockHeight.MayLoad(s)
	var height uint64
	if h != nil {
		height = *h
	}
	return BlockInfo{Height: height, Time: a.now().Unix(), ChainID: a.chainID}
}

// run executes fn inside one transaction. Every write fn makes, including
// those of instructions it triggers, commits together or not at all.
func (a *App) run(ctx context.Context, kind string, hash common.Hash, fn func(*txn) (*Receipt, error)) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	cache := NewCacheStore(a.root)
	block := a.currentBlock(cache)
	block.Height++
	if err := blockHeight.Save(cache, block.Height); err != nil {
		return nil, err
	}

	t := &txn{app: a, store: cache, block: block}
	receipt, err := fn(t)
	if err != nil {
		cache.Discard()
		a.log.Warn().Err(err).Str("kind", kind).Uint64("height", block.Height).Msg("tx rejected")
		return nil, err
	}
	if err := cache.Commit(); err != nil {
		return nil, fmt.Errorf("committing tx: %w", err)
	}
	receipt.Height = block.Height
	receipt.TxHash = hash
	if len(receipt.Events) == 0 {
		receipt.Events = t.events
	}
	a.log.Info().
		Str("kind", kind).
		Uint64("height", block.Height).
		Str("tx_hash", hash.Hex()).
		Str("contract", receipt.Contract.Hex()).
		Int("events", len(receipt.Events)).
		Msg("tx committed")
	return receipt, nil
}

// txn is the state of one in-flight transaction.
type txn struct {
	app    *App
	store  Storage
	block  BlockInfo
	events []Event
	depth  int
}

func (t *txn) lookup(addr Addr) (ContractInfo, Contract, error) {
	info, err := contracts.MayLoad(t.store, addr)
	if err != nil {
		return ContractInfo{}, nil, err
	}
	if info == nil {
		return ContractInfo{}, nil, fmt.Errorf("%w: %s", ErrUnknownContract, addr.Hex())
	}
	code, ok := t.app.codes[info.Code]
	if !ok {
		return ContractInfo{}, nil, fmt.Errorf("%w: %s", ErrUnknownCode, info.Code)
	}
	return *info, code.New(), nil
}

func contractNamespace(addr Addr) []byte {
	return []byte("contract/" + addr.Hex() + "/")
}

func (t *txn) deps(info ContractInfo, store Storage) Deps {
	return Deps{
		Storage: Prefixed(store, contractNamespace(info.Address)),
		Querier: t,
		Log: t.app.log.With().
			Str("module", "x/"+info.Code).
			Str("contract", info.Address.Hex()).
			Logger(),
	}
}

func (t *txn) env(addr Addr) Env {
	return Env{Block: t.block, Contract: addr}
}

func (t *txn) instantiate(ctx context.Context, codeName string, sender Addr, msg json.RawMessage, funds Coins, label string) (*Receipt, error) {
	code, ok := t.app.codes[codeName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCode, codeName)
	}
	seq, err := instanceSeq.MayLoad(t.store)
	if err != nil {
		return nil, err
	}
	var next uint64 = 1
	if seq != nil {
		next = *seq + 1
	}
	if err := instanceSeq.Save(t.store, next); err != nil {
		return nil, err
	}
	addr := crypto.CreateAddress(sender, next)
	info := ContractInfo{
		Address:       addr,
		Code:          codeName,
		Creator:       sender,
		Admin:         sender,
		Label:         label,
		CreatedHeight: t.block.Height,
	}
	if err := contracts.Save(t.store, addr, info); err != nil {
		return nil, err
	}
	if err := transfer(t.store, sender, addr, funds); err != nil {
		return nil, err
	}
	res, err := code.New().Instantiate(ctx, t.deps(info, t.store), t.env(addr), MessageInfo{Sender: sender, Funds: funds}, msg)
	if err != nil {
		return nil, err
	}
	if err := t.finish(ctx, "instantiate", addr, res); err != nil {
		return nil, err
	}
	return &Receipt{Contract: addr, Data: res.Data}, nil
}

func (t *txn) executeTop(ctx context.Context, sender, contract Addr, msg json.RawMessage, funds Coins) (*Receipt, error) {
	res, err := t.execute(ctx, sender, contract, msg, funds)
	if err != nil {
		return nil, err
	}
	return &Receipt{Contract: contract, Data: res.Data}, nil
}

func (t *txn) execute(ctx context.Context, sender, contract Addr, msg json.RawMessage, funds Coins) (*Response, error) {
	if t.depth >= maxCallDepth {
		return nil, ErrCallDepth
	}
	t.depth++
	defer func() { t.depth-- }()

	info, impl, err := t.lookup(contract)
	if err != nil {
		return nil, err
	}
	if err := transfer(t.store, sender, contract, funds); err != nil {
		return nil, err
	}
	res, err := impl.Execute(ctx, t.deps(info, t.store), t.env(contract), MessageInfo{Sender: sender, Funds: funds}, msg)
	if err != nil {
		return nil, err
	}
	if err := t.finish(ctx, "execute", contract, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (t *txn) migrate(ctx context.Context, sender, contract Addr, codeName string, msg json.RawMessage) (*Receipt, error) {
	info, _, err := t.lookup(contract)
	if err != nil {
		return nil, err
	}
	if info.Admin != sender {
		return nil, fmt.Errorf("%w: %s", ErrNotAdmin, sender.Hex())
	}
	if codeName == "" {
		codeName = info.Code
	}
	code, ok := t.app.codes[codeName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCode, codeName)
	}
	info.Code = codeName
	if err := contracts.Save(t.store, contract, info); err != nil {
		return nil, err
	}
	res, err := code.New().Migrate(ctx, t.deps(info, t.store), t.env(contract), msg)
	if err != nil {
		return nil, err
	}
	if err := t.finish(ctx, "migrate", contract, res); err != nil {
		return nil, err
	}
	return &Receipt{Contract: contract, Data: res.Data}, nil
}

// finish records the call and executes the instructions it returned, in
// order, after the call's own writes.
func (t *txn) finish(ctx context.Context, kind string, contract Addr, res *Response) error {
	if res == nil {
		return nil
	}
	t.events = append(t.events, Event{Type: kind, Contract: contract, Attributes: res.Attributes})
	for _, msg := range res.Messages {
		switch m := msg.(type) {
		case BankSend:
			if err := transfer(t.store, contract, m.ToAddress, m.Amount); err != nil {
				return fmt.Errorf("executing %s: %w", m.Kind(), err)
			}
			t.events = append(t.events, Event{
				Type:     m.Kind(),
				Contract: contract,
				Attributes: []Attribute{
					{Key: "recipient", Value: m.ToAddress.Hex()},
					{Key: "amount", Value: m.Amount.String()},
				},
			})
		case WasmExecute:
			if _, err := t.execute(ctx, contract, m.ContractAddr, m.Msg, m.Funds); err != nil {
				return fmt.Errorf("executing %s on %s: %w", m.Kind(), m.ContractAddr.Hex(), err)
			}
		default:
			return fmt.Errorf("unsupported instruction %T", msg)
		}
	}
	return nil
}

// QueryWasmSmart answers a contract's blocking query against the state of the
// current transaction. The queried contract cannot write.
func (t *txn) QueryWasmSmart(ctx context.Context, contract Addr, msg []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t.depth >= maxCallDepth {
		return nil, ErrCallDepth
	}
	t.depth++
	defer func() { t.depth-- }()

	info, impl, err := t.lookup(contract)
	if err != nil {
		return nil, err
	}
	return impl.Query(ctx, t.deps(info, ReadOnly(t.store)), t.env(contract), msg)
}
