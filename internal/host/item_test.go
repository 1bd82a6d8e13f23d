package host_test

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/wlminter/internal/host"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestItem(t *testing.T) {
	s := host.NewMemStore()
	item := host.NewItem[record]("config")

	_, err := item.Load(s)
	assert.ErrorIs(t, err, host.ErrNotFound)
	got, err := item.MayLoad(s)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, item.Save(s, record{Name: "a", Count: 1}))
	r, err := item.Load(s)
	require.NoError(t, err)
	assert.Equal(t, record{Name: "a", Count: 1}, r)

	raw, err := s.Get([]byte("config"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"a","count":1}`, string(raw))

	require.NoError(t, item.Remove(s))
	_, err = item.Load(s)
	assert.ErrorIs(t, err, host.ErrNotFound)
}

func TestItemCorrupt(t *testing.T) {
	s := host.NewMemStore()
	require.NoError(t, s.Set([]byte("config"), []byte("{")))
	_, err := host.NewItem[record]("config").Load(s)
	require.Error(t, err)
	assert.NotErrorIs(t, err, host.ErrNotFound)
	assert.Contains(t, err.Error(), "decoding config")
}

func TestMap(t *testing.T) {
	s := host.NewMemStore()
	m := host.NewMap[common.Address, uint64]("counter")
	addr := common.HexToAddress("0x01")

	ok, err := m.Has(s, addr)
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = m.Load(s, addr)
	assert.ErrorIs(t, err, host.ErrNotFound)

	require.NoError(t, m.Save(s, addr, 7))
	n, err := m.Load(s, addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), n)
	ok, err = m.Has(s, addr)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, m.Remove(s, addr))
	require.NoError(t, m.Remove(s, addr))
	ok, err = m.Has(s, addr)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMapNamespacesDoNotCollide(t *testing.T) {
	s := host.NewMemStore()
	short := host.NewMap[host.StrKey, string]("ab")
	long := host.NewMap[host.StrKey, string]("a")

	require.NoError(t, short.Save(s, "c", "short"))
	require.NoError(t, long.Save(s, "bc", "long"))

	v, err := short.Load(s, "c")
	require.NoError(t, err)
	assert.Equal(t, "short", v)
	v, err = long.Load(s, "bc")
	require.NoError(t, err)
	assert.Equal(t, "long", v)
	assert.Equal(t, 2, s.Len())
}

func TestMapUpdate(t *testing.T) {
	s := host.NewMemStore()
	m := host.NewMap[host.StrKey, uint64]("counter")
	incr := func(limit uint64) func(*uint64) (uint64, error) {
		return func(cur *uint64) (uint64, error) {
			var n uint64
			if cur != nil {
				n = *cur
			}
			if n >= limit {
				return 0, errors.New("limit reached")
			}
			return n + 1, nil
		}
	}

	n, err := m.Update(s, "k", incr(2))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
	n, err = m.Update(s, "k", incr(2))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)

	_, err = m.Update(s, "k", incr(2))
	assert.EqualError(t, err, "limit reached")
	n, err = m.Load(s, "k")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
}
