package host

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// Querier performs blocking, read-only calls into other contracts. The
// calling contract is suspended until the answer is available.
type Querier interface {
	QueryWasmSmart(ctx context.Context, contract Addr, msg []byte) ([]byte, error)
}

// QuerySmart encodes req, queries contract and decodes the answer into T.
func QuerySmart[T any](ctx context.Context, q Querier, contract Addr, req any) (T, error) {
	var out T
	raw, err := json.Marshal(req)
	if err != nil {
		return out, fmt.Errorf("encoding query: %w", err)
	}
	resp, err := q.QueryWasmSmart(ctx, contract, raw)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(resp, &out); err != nil {
		return out, fmt.Errorf("decoding query response: %w", err)
	}
	return out, nil
}

// Deps is what the host lends a contract for one call.
type Deps struct {
	Storage Storage
	Querier Querier
	Log     zerolog.Logger
}

// Contract is the raw entry-point surface the host drives. Messages arrive
// as JSON; implementations decode them into their own types.
type Contract interface {
	Instantiate(ctx context.Context, deps Deps, env Env, info MessageInfo, msg json.RawMessage) (*Response, error)
	Execute(ctx context.Context, deps Deps, env Env, info MessageInfo, msg json.RawMessage) (*Response, error)
	Query(ctx context.Context, deps Deps, env Env, msg json.RawMessage) (json.RawMessage, error)
	Migrate(ctx context.Context, deps Deps, env Env, msg json.RawMessage) (*Response, error)
}

// Code is a named contract implementation the host can instantiate.
type Code struct {
	Name string
	New  func() Contract
}
