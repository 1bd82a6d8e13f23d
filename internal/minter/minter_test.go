package minter_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/wlminter/internal/host"
	"github.com/Mohsinsiddi/wlminter/internal/minter"
	"github.com/Mohsinsiddi/wlminter/internal/registry"
)

var (
	owner      = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	artist     = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	alice      = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	bob        = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	carol      = common.HexToAddress("0x00000000000000000000000000000000000000b3")
	registryID = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	minterID   = common.HexToAddress("0x00000000000000000000000000000000000000c2")
)

// fakeRegistry answers the registry queries the minter makes.
type fakeRegistry struct {
	count   uint64
	infos   map[string]registry.NftInfoResponse
	err     error
	queried []host.Addr
}

func (f *fakeRegistry) QueryWasmSmart(_ context.Context, contract host.Addr, msg []byte) ([]byte, error) {
	f.queried = append(f.queried, contract)
	if f.err != nil {
		return nil, f.err
	}
	var q registry.QueryMsg
	if err := json.Unmarshal(msg, &q); err != nil {
		return nil, err
	}
	switch {
	case q.NumTokens != nil:
		return json.Marshal(registry.NumTokensResponse{Count: f.count})
	case q.NftInfo != nil:
		info, ok := f.infos[q.NftInfo.TokenID]
		if !ok {
			return nil, registry.ErrTokenNotFound
		}
		return json.Marshal(info)
	}
	return nil, errors.New("unexpected query")
}

type harness struct {
	t     *testing.T
	c     *minter.Contract
	store *host.MemStore
	reg   *fakeRegistry
}

func defaultInstantiate() minter.InstantiateMsg {
	return minter.InstantiateMsg{
		Registry:                  registryID,
		Supply:                    10,
		PublicWhitelistAllowance:  2,
		PublicWhitelistMembers:    []host.Addr{alice},
		PrivateWhitelistAllowance: 1,
		PrivateWhitelistMembers:   []host.Addr{carol},
		ReservedRecipient:         artist,
		Price:                     uint256.NewInt(10),
		NamingPrefix:              "Archie",
	}
}

func newHarness(t *testing.T, opts ...minter.Option) *harness {
	t.Helper()
	return newHarnessWith(t, defaultInstantiate(), opts...)
}

func newHarnessWith(t *testing.T, msg minter.InstantiateMsg, opts ...minter.Option) *harness {
	t.Helper()
	h := &harness{
		t:     t,
		c:     minter.New(opts...),
		store: host.NewMemStore(),
		reg:   &fakeRegistry{infos: map[string]registry.NftInfoResponse{}},
	}
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	_, err = h.c.Instantiate(context.Background(), h.deps(h.store), h.env(), host.MessageInfo{Sender: owner}, raw)
	require.NoError(t, err)
	return h
}

func (h *harness) deps(s host.Storage) host.Deps {
	return host.Deps{Storage: s, Querier: h.reg, Log: zerolog.Nop()}
}

func (h *harness) env() host.Env {
	return host.Env{Contract: minterID}
}

// exec runs one execute call inside a write buffer that is only committed
// on success, the way the host runs transactions.
func (h *harness) exec(sender host.Addr, msg minter.ExecuteMsg, funds ...host.Coin) (*host.Response, error) {
	h.t.Helper()
	raw, err := json.Marshal(msg)
	require.NoError(h.t, err)
	return h.execRaw(sender, raw, funds...)
}

func (h *harness) execRaw(sender host.Addr, raw json.RawMessage, funds ...host.Coin) (*host.Response, error) {
	h.t.Helper()
	cache := host.NewCacheStore(h.store)
	res, err := h.c.Execute(context.Background(), h.deps(cache), h.env(), host.MessageInfo{Sender: sender, Funds: funds}, raw)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	require.NoError(h.t, cache.Commit())
	return res, nil
}

func (h *harness) query(msg minter.QueryMsg, out any) error {
	h.t.Helper()
	raw, err := json.Marshal(msg)
	require.NoError(h.t, err)
	resp, err := h.c.Query(context.Background(), h.deps(host.ReadOnly(h.store)), h.env(), raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(resp, out)
}

func (h *harness) state() minter.State {
	h.t.Helper()
	st, err := host.NewItem[minter.State]("state").Load(h.store)
	require.NoError(h.t, err)
	return st
}

func (h *harness) setPhase(p minter.Phase) {
	h.t.Helper()
	st := h.state()
	st.Phase = p
	require.NoError(h.t, host.NewItem[minter.State]("state").Save(h.store, st))
}

func (h *harness) minted(t minter.Track, addr host.Addr) uint64 {
	h.t.Helper()
	n, err := minter.Minted(h.store, t, addr)
	require.NoError(h.t, err)
	return n
}

func mintMsg() minter.ExecuteMsg { return minter.ExecuteMsg{Mint: &minter.Empty{}} }

func pay(n uint64) host.Coin { return host.NewCoin(n, minter.DefaultDenom) }

func TestInstantiate(t *testing.T) {
	h := newHarness(t)

	var cfg minter.ConfigResponse
	require.NoError(t, h.query(minter.QueryMsg{Config: &minter.Empty{}}, &cfg))
	assert.Equal(t, owner, cfg.Owner)
	assert.Equal(t, registryID, cfg.Registry)
	assert.Equal(t, artist, cfg.Artist)
	assert.Equal(t, uint64(10), cfg.Supply)
	assert.Equal(t, uint64(2), cfg.WhitelistAllowance)
	assert.Equal(t, uint64(1), cfg.PrivateWhitelistAllowance)
	assert.Equal(t, "10", cfg.Price.Dec())
	assert.Equal(t, "Archie", cfg.NamePrefix)
	assert.Equal(t, "aarch", cfg.Denom)
	assert.False(t, cfg.Initialized)
	assert.False(t, cfg.PublicWhitelist)
	assert.False(t, cfg.PublicMint)
	assert.False(t, cfg.Reveal)

	assert.Equal(t, minter.PhaseDisabled, h.state().Phase)

	version, err := host.NewItem[minter.ContractVersion]("contract_info").Load(h.store)
	require.NoError(t, err)
	assert.Equal(t, minter.ContractVersion{Contract: "whitelist-minter", Version: minter.Version}, version)
}

func TestInstantiateDuplicateMember(t *testing.T) {
	msg := defaultInstantiate()
	msg.PublicWhitelistMembers = []host.Addr{alice, bob, alice}

	c := minter.New()
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	_, err = c.Instantiate(context.Background(), host.Deps{Storage: host.NewMemStore(), Log: zerolog.Nop()},
		host.Env{}, host.MessageInfo{Sender: owner}, raw)
	assert.ErrorIs(t, err, minter.ErrInvalidInput)
}

func TestInstantiateSameMemberOnBothTracks(t *testing.T) {
	msg := defaultInstantiate()
	msg.PrivateWhitelistMembers = []host.Addr{alice}
	h := newHarnessWith(t, msg)

	var m minter.WhitelistMember
	private := minter.TrackPrivate
	require.NoError(t, h.query(minter.QueryMsg{Whitelist: &minter.WhitelistQuery{Address: alice, Track: &private}}, &m))
	assert.True(t, m.Whitelisted)
}

func TestPhaseTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    minter.Phase
		sender  host.Addr
		msg     minter.ExecuteMsg
		want    minter.Phase
		wantErr error
	}{
		{"initialize", minter.PhaseDisabled, owner, minter.ExecuteMsg{Initialize: &minter.Empty{}}, minter.PhasePrivateWhitelist, nil},
		{"initialize twice", minter.PhasePrivateWhitelist, owner, minter.ExecuteMsg{Initialize: &minter.Empty{}}, 0, minter.ErrInitialized},
		{"initialize by stranger", minter.PhaseDisabled, alice, minter.ExecuteMsg{Initialize: &minter.Empty{}}, 0, minter.ErrUnauthorized},
		{"initialize by stranger after init", minter.PhasePublic, alice, minter.ExecuteMsg{Initialize: &minter.Empty{}}, 0, minter.ErrUnauthorized},

		{"normal whitelist from disabled", minter.PhaseDisabled, owner, minter.ExecuteMsg{EnableNormalWhitelist: &minter.Empty{}}, 0, minter.ErrUnauthorized},
		{"normal whitelist", minter.PhasePrivateWhitelist, owner, minter.ExecuteMsg{EnableNormalWhitelist: &minter.Empty{}}, minter.PhaseNormalWhitelist, nil},
		{"normal whitelist again", minter.PhaseNormalWhitelist, owner, minter.ExecuteMsg{EnableNormalWhitelist: &minter.Empty{}}, 0, minter.ErrPublicWhitelistMintEnabled},
		{"normal whitelist from public", minter.PhasePublic, owner, minter.ExecuteMsg{EnableNormalWhitelist: &minter.Empty{}}, 0, minter.ErrPublicWhitelistMintEnabled},
		{"normal whitelist by stranger", minter.PhasePrivateWhitelist, bob, minter.ExecuteMsg{EnableNormalWhitelist: &minter.Empty{}}, 0, minter.ErrUnauthorized},

		{"public from disabled", minter.PhaseDisabled, owner, minter.ExecuteMsg{EnablePublicMint: &minter.Empty{}}, 0, minter.ErrUnauthorized},
		{"public skipping normal", minter.PhasePrivateWhitelist, owner, minter.ExecuteMsg{EnablePublicMint: &minter.Empty{}}, minter.PhasePublic, nil},
		{"public", minter.PhaseNormalWhitelist, owner, minter.ExecuteMsg{EnablePublicMint: &minter.Empty{}}, minter.PhasePublic, nil},
		{"public again", minter.PhasePublic, owner, minter.ExecuteMsg{EnablePublicMint: &minter.Empty{}}, 0, minter.ErrPublicMintEnabled},
		{"public from reveal", minter.PhaseReveal, owner, minter.ExecuteMsg{EnablePublicMint: &minter.Empty{}}, 0, minter.ErrPublicMintEnabled},
		{"public by stranger", minter.PhaseNormalWhitelist, alice, minter.ExecuteMsg{EnablePublicMint: &minter.Empty{}}, 0, minter.ErrUnauthorized},

		{"reveal from disabled", minter.PhaseDisabled, owner, minter.ExecuteMsg{EnableReveal: &minter.Empty{}}, 0, minter.ErrUnauthorized},
		{"reveal", minter.PhasePublic, owner, minter.ExecuteMsg{EnableReveal: &minter.Empty{}}, minter.PhaseReveal, nil},
		{"reveal again", minter.PhaseReveal, owner, minter.ExecuteMsg{EnableReveal: &minter.Empty{}}, 0, minter.ErrRevealEnabled},
		{"reveal by stranger", minter.PhasePublic, carol, minter.ExecuteMsg{EnableReveal: &minter.Empty{}}, 0, minter.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.setPhase(tt.from)

			res, err := h.exec(tt.sender, tt.msg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.from, h.state().Phase)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, h.state().Phase)
			_, ok := res.Attribute("action")
			assert.True(t, ok)
		})
	}
}

func TestTransitionAttributes(t *testing.T) {
	h := newHarness(t)
	steps := []struct {
		msg    minter.ExecuteMsg
		action string
	}{
		{minter.ExecuteMsg{Initialize: &minter.Empty{}}, "initialize"},
		{minter.ExecuteMsg{EnableNormalWhitelist: &minter.Empty{}}, "enable_normal_whitelist"},
		{minter.ExecuteMsg{EnablePublicMint: &minter.Empty{}}, "enable_public_mint"},
		{minter.ExecuteMsg{EnableReveal: &minter.Empty{}}, "enable_reveal"},
	}
	for _, s := range steps {
		res, err := h.exec(owner, s.msg)
		require.NoError(t, err)
		action, _ := res.Attribute("action")
		assert.Equal(t, s.action, action)
	}

	var cfg minter.ConfigResponse
	require.NoError(t, h.query(minter.QueryMsg{Config: &minter.Empty{}}, &cfg))
	assert.True(t, cfg.Initialized)
	assert.True(t, cfg.Reveal)
	assert.False(t, cfg.PublicMint)
}

func TestFixedVariant(t *testing.T) {
	h := newHarness(t, minter.WithVariant(minter.VariantFixed))
	h.setPhase(minter.PhasePublic)

	_, err := h.exec(owner, minter.ExecuteMsg{EnableReveal: &minter.Empty{}})
	assert.ErrorIs(t, err, minter.ErrEntrypointDisabled)
	assert.Equal(t, minter.PhasePublic, h.state().Phase)

	_, err = h.exec(alice, minter.ExecuteMsg{Reveal: &minter.RevealMsg{TokenID: "1"}})
	assert.ErrorIs(t, err, minter.ErrEntrypointDisabled)

	var out minter.TokenStatusesResponse
	err = h.query(minter.QueryMsg{TokenStatuses: &minter.TokenStatusesQuery{TokenIDs: []string{"1"}}}, &out)
	assert.ErrorIs(t, err, minter.ErrEntrypointDisabled)
}

func TestMintByPhase(t *testing.T) {
	tests := []struct {
		phase   minter.Phase
		sender  host.Addr
		wantErr error
	}{
		{minter.PhaseDisabled, alice, minter.ErrUnauthorized},
		{minter.PhaseReveal, alice, minter.ErrMintExpired},
		{minter.PhasePrivateWhitelist, carol, nil},
		{minter.PhasePrivateWhitelist, alice, minter.ErrNotWhitelisted},
		{minter.PhaseNormalWhitelist, alice, nil},
		{minter.PhaseNormalWhitelist, carol, minter.ErrNotWhitelisted},
		{minter.PhasePublic, bob, nil},
	}
	for _, tt := range tests {
		t.Run(tt.phase.String(), func(t *testing.T) {
			h := newHarness(t)
			h.setPhase(tt.phase)

			_, err := h.exec(tt.sender, mintMsg(), pay(10))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestMintEmitsRegistryMint(t *testing.T) {
	h := newHarness(t)
	h.setPhase(minter.PhasePublic)
	h.reg.count = 3

	res, err := h.exec(bob, mintMsg(), pay(10))
	require.NoError(t, err)

	id, _ := res.Attribute("token_id")
	assert.Equal(t, "4", id)
	got, _ := res.Attribute("owner")
	assert.Equal(t, bob.Hex(), got)
	action, _ := res.Attribute("action")
	assert.Equal(t, "mint", action)

	require.Len(t, res.Messages, 1)
	wasm, ok := res.Messages[0].(host.WasmExecute)
	require.True(t, ok)
	assert.Equal(t, registryID, wasm.ContractAddr)
	assert.Empty(t, wasm.Funds)

	var msg registry.ExecuteMsg
	require.NoError(t, json.Unmarshal(wasm.Msg, &msg))
	require.NotNil(t, msg.Mint)
	assert.Equal(t, "4", msg.Mint.TokenID)
	assert.Equal(t, bob, msg.Mint.Owner)
	assert.Nil(t, msg.Mint.TokenURI)
	assert.Nil(t, msg.Mint.Extension)
	assert.Contains(t, string(wasm.Msg), `"token_uri":null`)
	assert.Equal(t, []host.Addr{registryID}, h.reg.queried)
}

func TestMintAllowance(t *testing.T) {
	h := newHarness(t)
	h.setPhase(minter.PhaseNormalWhitelist)

	for i := 0; i < 2; i++ {
		_, err := h.exec(alice, mintMsg(), pay(10))
		require.NoError(t, err)
		h.reg.count++
	}
	assert.Equal(t, uint64(2), h.minted(minter.TrackPublic, alice))

	_, err := h.exec(alice, mintMsg(), pay(10))
	require.ErrorIs(t, err, minter.ErrWhitelistAllowance)
	var ce *minter.ContractError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, uint64(2), ce.Minted)
	assert.Equal(t, uint64(2), h.minted(minter.TrackPublic, alice))
}

func TestMintTracksCountIndependently(t *testing.T) {
	msg := defaultInstantiate()
	msg.PrivateWhitelistMembers = []host.Addr{alice}
	h := newHarnessWith(t, msg)

	h.setPhase(minter.PhasePrivateWhitelist)
	_, err := h.exec(alice, mintMsg(), pay(10))
	require.NoError(t, err)
	_, err = h.exec(alice, mintMsg(), pay(10))
	require.ErrorIs(t, err, minter.ErrWhitelistAllowance)

	h.setPhase(minter.PhaseNormalWhitelist)
	_, err = h.exec(alice, mintMsg(), pay(10))
	require.NoError(t, err)

	assert.Equal(t, uint64(1), h.minted(minter.TrackPrivate, alice))
	assert.Equal(t, uint64(1), h.minted(minter.TrackPublic, alice))
}

func TestMintZeroAllowance(t *testing.T) {
	msg := defaultInstantiate()
	msg.PublicWhitelistAllowance = 0
	h := newHarnessWith(t, msg)
	h.setPhase(minter.PhaseNormalWhitelist)

	_, err := h.exec(alice, mintMsg(), pay(10))
	assert.ErrorIs(t, err, minter.ErrWhitelistAllowance)
	assert.Zero(t, h.minted(minter.TrackPublic, alice))
}

func TestMintNotWhitelisted(t *testing.T) {
	h := newHarness(t)
	h.setPhase(minter.PhaseNormalWhitelist)

	_, err := h.exec(bob, mintMsg(), pay(10))
	assert.ErrorIs(t, err, minter.ErrNotWhitelisted)
	assert.ErrorIs(t, err, host.ErrNotFound)

	_, err = h.exec(owner, minter.ExecuteMsg{PublicWhitelistApprove: &minter.WhitelistMsg{Members: []host.Addr{bob}}})
	require.NoError(t, err)
	_, err = h.exec(bob, mintMsg(), pay(10))
	assert.NoError(t, err)
}

func TestMintMemberMarkedNotWhitelisted(t *testing.T) {
	h := newHarness(t)
	h.setPhase(minter.PhaseNormalWhitelist)
	require.NoError(t, host.NewMap[host.Addr, minter.WhitelistMember]("public_whitelist").
		Save(h.store, bob, minter.WhitelistMember{Whitelisted: false}))

	_, err := h.exec(bob, mintMsg(), pay(10))
	assert.ErrorIs(t, err, minter.ErrNotWhitelisted)
	assert.NotErrorIs(t, err, host.ErrNotFound)
}

func TestMintSoldOutLeavesCounter(t *testing.T) {
	h := newHarness(t)
	h.setPhase(minter.PhaseNormalWhitelist)
	h.reg.count = 10

	_, err := h.exec(alice, mintMsg(), pay(10))
	assert.ErrorIs(t, err, minter.ErrSoldOut)
	assert.Zero(t, h.minted(minter.TrackPublic, alice))
}

func TestMintSoldOutBeforePayment(t *testing.T) {
	h := newHarness(t)
	h.setPhase(minter.PhasePublic)
	h.reg.count = 10

	_, err := h.exec(bob, mintMsg())
	assert.ErrorIs(t, err, minter.ErrSoldOut)
}

func TestMintRegistryCountAtMax(t *testing.T) {
	h := newHarness(t)
	h.setPhase(minter.PhasePublic)
	h.reg.count = math.MaxUint64

	res, err := h.exec(bob, mintMsg(), pay(10))
	assert.ErrorIs(t, err, minter.ErrSoldOut)
	assert.Nil(t, res)
}

func TestMintCorruptMembershipPassesThrough(t *testing.T) {
	h := newHarness(t)
	h.setPhase(minter.PhaseNormalWhitelist)
	require.NoError(t, host.NewMap[host.Addr, string]("public_whitelist").Save(h.store, bob, "garbage"))

	_, err := h.exec(bob, mintMsg(), pay(10))
	require.Error(t, err)
	assert.NotErrorIs(t, err, minter.ErrNotWhitelisted)
	assert.NotErrorIs(t, err, host.ErrNotFound)
	assert.Zero(t, h.minted(minter.TrackPublic, bob))
}

func TestMintLastToken(t *testing.T) {
	h := newHarness(t)
	h.setPhase(minter.PhasePublic)
	h.reg.count = 9

	res, err := h.exec(bob, mintMsg(), pay(10))
	require.NoError(t, err)
	id, _ := res.Attribute("token_id")
	assert.Equal(t, "10", id)
}

func TestMintRegistryQueryFails(t *testing.T) {
	h := newHarness(t)
	h.setPhase(minter.PhaseNormalWhitelist)
	h.reg.err = errors.New("registry unavailable")

	_, err := h.exec(alice, mintMsg(), pay(10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry unavailable")
	assert.Zero(t, h.minted(minter.TrackPublic, alice))
}

func TestMintPayment(t *testing.T) {
	tests := []struct {
		name  string
		funds []host.Coin
		ok    bool
	}{
		{"no funds", nil, false},
		{"wrong denom", []host.Coin{host.NewCoin(10, "uatom")}, false},
		{"short", []host.Coin{pay(9)}, false},
		{"exact", []host.Coin{pay(10)}, true},
		{"over", []host.Coin{pay(11)}, true},
		{"mixed", []host.Coin{host.NewCoin(1, "uatom"), pay(10)}, true},
		{"split across coins", []host.Coin{pay(5), pay(5)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.setPhase(minter.PhaseNormalWhitelist)

			_, err := h.exec(alice, mintMsg(), tt.funds...)
			if tt.ok {
				assert.NoError(t, err)
				assert.Equal(t, uint64(1), h.minted(minter.TrackPublic, alice))
				return
			}
			assert.ErrorIs(t, err, minter.ErrUnauthorized)
			assert.Contains(t, err.Error(), "insufficient payment")
			assert.Zero(t, h.minted(minter.TrackPublic, alice))
		})
	}
}

func TestMintFreeAcceptsNoFunds(t *testing.T) {
	msg := defaultInstantiate()
	msg.Price = nil
	h := newHarnessWith(t, msg)
	h.setPhase(minter.PhasePublic)

	_, err := h.exec(bob, mintMsg())
	assert.NoError(t, err)
}

func TestMintCustomDenom(t *testing.T) {
	h := newHarness(t, minter.WithDenom("aconst"))
	h.setPhase(minter.PhasePublic)

	_, err := h.exec(bob, mintMsg(), pay(10))
	assert.ErrorIs(t, err, minter.ErrUnauthorized)
	_, err = h.exec(bob, mintMsg(), host.NewCoin(10, "aconst"))
	assert.NoError(t, err)
}

func TestWithdraw(t *testing.T) {
	h := newHarness(t)

	_, err := h.exec(owner, minter.ExecuteMsg{Withdraw: &minter.WithdrawMsg{Amount: uint256.NewInt(50)}})
	assert.ErrorIs(t, err, minter.ErrUnauthorized)

	res, err := h.exec(artist, minter.ExecuteMsg{Withdraw: &minter.WithdrawMsg{Amount: uint256.NewInt(50)}})
	require.NoError(t, err)
	amount, _ := res.Attribute("amount")
	assert.Equal(t, "50", amount)

	require.Len(t, res.Messages, 1)
	send, ok := res.Messages[0].(host.BankSend)
	require.True(t, ok)
	assert.Equal(t, artist, send.ToAddress)
	assert.Equal(t, "50aarch", send.Amount.String())
}

func TestWithdrawMissingAmount(t *testing.T) {
	h := newHarness(t)
	_, err := h.execRaw(artist, json.RawMessage(`{"withdraw":{}}`))
	assert.ErrorIs(t, err, minter.ErrInvalidInput)
}

func TestWhitelistApproveRemove(t *testing.T) {
	h := newHarness(t)
	private := minter.TrackPrivate

	lookup := func(addr host.Addr, track *minter.Track) bool {
		var m minter.WhitelistMember
		require.NoError(t, h.query(minter.QueryMsg{Whitelist: &minter.WhitelistQuery{Address: addr, Track: track}}, &m))
		return m.Whitelisted
	}

	assert.True(t, lookup(alice, nil))
	assert.False(t, lookup(bob, nil))
	assert.True(t, lookup(carol, &private))
	assert.False(t, lookup(carol, nil))

	_, err := h.exec(alice, minter.ExecuteMsg{PrivateWhitelistApprove: &minter.WhitelistMsg{Members: []host.Addr{bob}}})
	assert.ErrorIs(t, err, minter.ErrUnauthorized)

	res, err := h.exec(owner, minter.ExecuteMsg{PrivateWhitelistApprove: &minter.WhitelistMsg{Members: []host.Addr{bob, alice}}})
	require.NoError(t, err)
	action, _ := res.Attribute("action")
	assert.Equal(t, "private_whitelist_approve", action)
	count, _ := res.Attribute("count")
	assert.Equal(t, "2", count)
	assert.True(t, lookup(bob, &private))
	assert.False(t, lookup(bob, nil))

	_, err = h.exec(owner, minter.ExecuteMsg{PublicWhitelistRemove: &minter.WhitelistMsg{Members: []host.Addr{alice, bob}}})
	require.NoError(t, err)
	assert.False(t, lookup(alice, nil))
	assert.True(t, lookup(alice, &private))
}

func TestRemoveKeepsCounter(t *testing.T) {
	h := newHarness(t)
	h.setPhase(minter.PhaseNormalWhitelist)

	_, err := h.exec(alice, mintMsg(), pay(10))
	require.NoError(t, err)
	_, err = h.exec(owner, minter.ExecuteMsg{PublicWhitelistRemove: &minter.WhitelistMsg{Members: []host.Addr{alice}}})
	require.NoError(t, err)
	_, err = h.exec(alice, mintMsg(), pay(10))
	assert.ErrorIs(t, err, minter.ErrNotWhitelisted)

	_, err = h.exec(owner, minter.ExecuteMsg{PublicWhitelistApprove: &minter.WhitelistMsg{Members: []host.Addr{alice}}})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), h.minted(minter.TrackPublic, alice))
	_, err = h.exec(alice, mintMsg(), pay(10))
	require.NoError(t, err)
	_, err = h.exec(alice, mintMsg(), pay(10))
	assert.ErrorIs(t, err, minter.ErrWhitelistAllowance)
}

func TestUpdateConfig(t *testing.T) {
	h := newHarness(t)
	h.setPhase(minter.PhasePublic)

	next := h.state()
	next.Registry = common.HexToAddress("0x00000000000000000000000000000000000000c9")
	next.Phase = minter.PhasePrivateWhitelist
	next.Price = uint256.NewInt(99)

	_, err := h.exec(artist, minter.ExecuteMsg{UpdateConfig: &minter.UpdateConfigMsg{Config: next}})
	assert.ErrorIs(t, err, minter.ErrUnauthorized)

	_, err = h.exec(owner, minter.ExecuteMsg{UpdateConfig: &minter.UpdateConfigMsg{Config: next}})
	require.NoError(t, err)
	assert.Equal(t, next, h.state())
}

func TestQueryTokenStatuses(t *testing.T) {
	h := newHarness(t)
	uri := "ipfs://token/2"
	h.reg.infos["1"] = registry.NftInfoResponse{}
	h.reg.infos["2"] = registry.NftInfoResponse{TokenURI: &uri, Extension: &registry.Metadata{Name: "Archie #2"}}
	h.reg.infos["3"] = registry.NftInfoResponse{}

	var out minter.TokenStatusesResponse
	require.NoError(t, h.query(minter.QueryMsg{TokenStatuses: &minter.TokenStatusesQuery{TokenIDs: []string{"1", "2", "3"}}}, &out))
	require.Len(t, out.Revealed, 1)
	assert.Equal(t, "2", out.Revealed[0].TokenID)
	assert.Equal(t, "Archie #2", out.Revealed[0].Extension.Name)
	require.Len(t, out.Unrevealed, 2)
	assert.Equal(t, "1", out.Unrevealed[0].TokenID)
	assert.Equal(t, "3", out.Unrevealed[1].TokenID)

	err := h.query(minter.QueryMsg{TokenStatuses: &minter.TokenStatusesQuery{TokenIDs: []string{"7"}}}, &out)
	assert.ErrorIs(t, err, registry.ErrTokenNotFound)
}

func TestReveal(t *testing.T) {
	h := newHarness(t)
	h.reg.infos["1"] = registry.NftInfoResponse{Extension: &registry.Metadata{Name: "Archie #1"}}
	h.reg.infos["2"] = registry.NftInfoResponse{}
	reveal := func(id string) error {
		_, err := h.exec(alice, minter.ExecuteMsg{Reveal: &minter.RevealMsg{TokenID: id}})
		return err
	}

	h.setPhase(minter.PhasePublic)
	assert.ErrorIs(t, reveal("1"), minter.ErrRevealDisabled)

	h.setPhase(minter.PhaseReveal)
	err := reveal("1")
	require.ErrorIs(t, err, minter.ErrMetadataRevealed)
	var ce *minter.ContractError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "1", ce.TokenID)

	assert.ErrorIs(t, reveal("2"), minter.ErrEntrypointDisabled)
}

func TestMigrate(t *testing.T) {
	tests := []struct {
		name    string
		stored  minter.ContractVersion
		running string
		wantErr bool
	}{
		{"upgrade", minter.ContractVersion{Contract: "whitelist-minter", Version: "0.1.0"}, "0.2.0", false},
		{"patch upgrade", minter.ContractVersion{Contract: "whitelist-minter", Version: "0.1.9"}, "0.1.10", false},
		{"same version", minter.ContractVersion{Contract: "whitelist-minter", Version: "0.2.0"}, "0.2.0", true},
		{"downgrade", minter.ContractVersion{Contract: "whitelist-minter", Version: "1.0.0"}, "0.2.0", true},
		{"other contract", minter.ContractVersion{Contract: "crates.io:cw721-base", Version: "0.1.0"}, "0.2.0", true},
		{"garbage version", minter.ContractVersion{Contract: "whitelist-minter", Version: "one"}, "0.2.0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := host.NewMemStore()
			require.NoError(t, host.NewItem[minter.ContractVersion]("contract_info").Save(store, tt.stored))

			c := minter.New(minter.WithVersion(tt.running))
			res, err := c.Migrate(context.Background(), host.Deps{Storage: store, Log: zerolog.Nop()}, host.Env{}, json.RawMessage(`{}`))
			if tt.wantErr {
				assert.ErrorIs(t, err, minter.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			to, _ := res.Attribute("to_version")
			assert.Equal(t, tt.running, to)

			got, err := host.NewItem[minter.ContractVersion]("contract_info").Load(store)
			require.NoError(t, err)
			assert.Equal(t, tt.running, got.Version)
		})
	}
}

func TestMalformedMessages(t *testing.T) {
	h := newHarness(t)
	for _, raw := range []string{
		`{}`,
		`not json`,
		`{"mint":null}`,
		`{"mint":{},"initialize":{}}`,
		`{"burn":{}}`,
		`{"withdraw":{"amount":"-1"}}`,
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := h.execRaw(owner, json.RawMessage(raw))
			assert.ErrorIs(t, err, minter.ErrInvalidInput)
		})
	}
}

func TestStateJSON(t *testing.T) {
	st := minter.State{Phase: minter.PhaseNormalWhitelist, Price: uint256.NewInt(1_000)}
	raw, err := json.Marshal(st)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"phase":"normal_whitelist"`)
	assert.Contains(t, string(raw), `"price":"1000"`)

	var back minter.State
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, minter.PhaseNormalWhitelist, back.Phase)

	assert.Error(t, json.Unmarshal([]byte(`{"phase":"closed"}`), &back))
}

func TestPhaseOrder(t *testing.T) {
	order := []minter.Phase{
		minter.PhaseDisabled,
		minter.PhasePrivateWhitelist,
		minter.PhaseNormalWhitelist,
		minter.PhasePublic,
		minter.PhaseReveal,
	}
	for i := 1; i < len(order); i++ {
		assert.Less(t, order[i-1], order[i])
	}
	for _, p := range order {
		parsed, err := minter.ParsePhase(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}
}
