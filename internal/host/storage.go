package host

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"cosmossdk.io/store/cachekv"
	"cosmossdk.io/store/dbadapter"
	"cosmossdk.io/store/prefix"
	storetypes "cosmossdk.io/store/types"
	dbm "github.com/cosmos/cosmos-db"
)

// ErrNotFound is returned when a ledger record does not exist.
var ErrNotFound = errors.New("not found")

// ErrReadOnly is returned when a query path tries to write.
var ErrReadOnly = errors.New("storage is read-only")

var errNoIteration = errors.New("storage does not support iteration")

// Storage is the key-value ledger a contract reads and writes.
// Get returns a nil value when the key is absent.
type Storage interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
}

// Op is one pending write. A nil Value deletes Key.
type Op struct {
	Key   []byte
	Value []byte
}

// Batcher is implemented by stores that can apply many writes atomically.
type Batcher interface {
	WriteBatch(ops []Op) error
}

// storeError carries a Storage error through the panicking KVStore API.
type storeError struct{ err error }

func recoverStore(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if se, ok := r.(storeError); ok {
		*err = se.err
		return
	}
	*err = fmt.Errorf("store: %v", r)
}

// kvStorage exposes a cosmos KVStore as Storage.
type kvStorage struct {
	kv storetypes.KVStore
}

func (s kvStorage) Get(key []byte) (v []byte, err error) {
	defer recoverStore(&err)
	return bytes.Clone(s.kv.Get(key)), nil
}

func (s kvStorage) Set(key, value []byte) (err error) {
	defer recoverStore(&err)
	if value == nil {
		value = []byte{}
	}
	s.kv.Set(bytes.Clone(key), bytes.Clone(value))
	return nil
}

func (s kvStorage) Delete(key []byte) (err error) {
	defer recoverStore(&err)
	s.kv.Delete(key)
	return nil
}

// kvAdapter presents a Storage to the cosmos store wrappers. While sink is
// set, writes are collected instead of applied.
type kvAdapter struct {
	s    Storage
	sink *[]Op
}

func (a *kvAdapter) GetStoreType() storetypes.StoreType { return storetypes.StoreTypeDB }

func (a *kvAdapter) CacheWrap() storetypes.CacheWrap { return cachekv.NewStore(a) }

func (a *kvAdapter) CacheWrapWithTrace(io.Writer, storetypes.TraceContext) storetypes.CacheWrap {
	return cachekv.NewStore(a)
}

func (a *kvAdapter) Get(key []byte) []byte {
	v, err := a.s.Get(key)
	if err != nil {
		panic(storeError{err})
	}
	return v
}

func (a *kvAdapter) Has(key []byte) bool { return a.Get(key) != nil }

func (a *kvAdapter) Set(key, value []byte) {
	if a.sink != nil {
		*a.sink = append(*a.sink, Op{Key: bytes.Clone(key), Value: bytes.Clone(value)})
		return
	}
	if err := a.s.Set(key, value); err != nil {
		panic(storeError{err})
	}
}

func (a *kvAdapter) Delete(key []byte) {
	if a.sink != nil {
		*a.sink = append(*a.sink, Op{Key: bytes.Clone(key)})
		return
	}
	if err := a.s.Delete(key); err != nil {
		panic(storeError{err})
	}
}

func (a *kvAdapter) Iterator(_, _ []byte) storetypes.Iterator {
	panic(storeError{errNoIteration})
}

func (a *kvAdapter) ReverseIterator(_, _ []byte) storetypes.Iterator {
	panic(storeError{errNoIteration})
}

// MemStore is an in-memory Storage backed by a cosmos-db MemDB.
type MemStore struct {
	kvStorage
	db *dbm.MemDB
}

// NewMemStore constructs an empty in-memory store.
func NewMemStore() *MemStore {
	db := dbm.NewMemDB()
	return &MemStore{kvStorage: kvStorage{kv: &dbadapter.Store{DB: db}}, db: db}
}

// WriteBatch applies ops in one MemDB batch.
func (s *MemStore) WriteBatch(ops []Op) error {
	batch := s.db.NewBatch()
	defer batch.Close()
	for _, op := range ops {
		var err error
		if op.Value == nil {
			err = batch.Delete(op.Key)
		} else {
			err = batch.Set(op.Key, op.Value)
		}
		if err != nil {
			return err
		}
	}
	return batch.Write()
}

// Len returns the number of stored keys.
func (s *MemStore) Len() int {
	it, err := s.db.Iterator(nil, nil)
	if err != nil {
		return 0
	}
	defer it.Close()
	n := 0
	for ; it.Valid(); it.Next() {
		n++
	}
	return n
}

// CacheStore buffers writes over a parent store in a cachekv store. Reads
// see the buffered writes first. Nothing reaches the parent until Commit.
type CacheStore struct {
	kvStorage
	parent *kvAdapter
	cache  *cachekv.Store
}

// NewCacheStore wraps parent in a write buffer.
func NewCacheStore(parent Storage) *CacheStore {
	c := &CacheStore{parent: &kvAdapter{s: parent}}
	c.Discard()
	return c
}

// Commit flushes the buffered writes to the parent in key order and resets
// the buffer. A Batcher parent receives every write in a single batch.
func (c *CacheStore) Commit() (err error) {
	var ops []Op
	c.parent.sink = &ops
	func() {
		defer recoverStore(&err)
		defer func() { c.parent.sink = nil }()
		c.cache.Write()
	}()
	if err != nil {
		return err
	}

	if b, ok := c.parent.s.(Batcher); ok {
		return b.WriteBatch(ops)
	}
	for _, op := range ops {
		if op.Value == nil {
			err = c.parent.s.Delete(op.Key)
		} else {
			err = c.parent.s.Set(op.Key, op.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Discard drops every buffered write.
func (c *CacheStore) Discard() {
	c.cache = cachekv.NewStore(c.parent)
	c.kvStorage = kvStorage{kv: c.cache}
}

// Prefixed returns a view of parent where every key is prefixed with ns.
func Prefixed(parent Storage, ns []byte) Storage {
	return kvStorage{kv: prefix.NewStore(&kvAdapter{s: parent}, bytes.Clone(ns))}
}

// readOnly rejects writes. Queries run against it.
type readOnly struct {
	Storage
}

func (readOnly) Set([]byte, []byte) error { return ErrReadOnly }
func (readOnly) Delete([]byte) error      { return ErrReadOnly }

// ReadOnly wraps s so that Set and Delete fail.
func ReadOnly(s Storage) Storage {
	return readOnly{Storage: s}
}
