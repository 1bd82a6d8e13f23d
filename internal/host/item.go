package host

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// Item is a single JSON record stored under a fixed key.
type Item[T any] struct {
	key []byte
}

// NewItem declares an item stored under key.
func NewItem[T any](key string) Item[T] {
	return Item[T]{key: []byte(key)}
}

// Load reads the item. A missing record wraps ErrNotFound.
func (i Item[T]) Load(s Storage) (T, error) {
	var zero T
	v, err := i.MayLoad(s)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, i.key)
	}
	return *v, nil
}

// MayLoad reads the item, returning nil when absent.
func (i Item[T]) MayLoad(s Storage) (*T, error) {
	return loadJSON[T](s, i.key, string(i.key))
}

// Save writes the item.
func (i Item[T]) Save(s Storage, v T) error {
	return saveJSON(s, i.key, v, string(i.key))
}

// Remove deletes the item.
func (i Item[T]) Remove(s Storage) error {
	return s.Delete(i.key)
}

// Key is anything usable as a map key.
type Key interface {
	Bytes() []byte
}

// StrKey adapts a string to Key.
type StrKey string

func (k StrKey) Bytes() []byte { return []byte(k) }

// Map is a namespace of JSON records keyed by K.
//
// Keys are laid out as len(ns) (2 bytes, big endian) || ns || key so that
// no namespace is a prefix of another.
type Map[K Key, V any] struct {
	ns     string
	prefix []byte
}

// NewMap declares a map under namespace ns.
func NewMap[K Key, V any](ns string) Map[K, V] {
	prefix := make([]byte, 2, 2+len(ns))
	binary.BigEndian.PutUint16(prefix, uint16(len(ns)))
	prefix = append(prefix, ns...)
	return Map[K, V]{ns: ns, prefix: prefix}
}

func (m Map[K, V]) key(k K) []byte {
	kb := k.Bytes()
	out := make([]byte, 0, len(m.prefix)+len(kb))
	out = append(out, m.prefix...)
	return append(out, kb...)
}

// Load reads the value under k. A missing record wraps ErrNotFound.
func (m Map[K, V]) Load(s Storage, k K) (V, error) {
	var zero V
	v, err := m.MayLoad(s, k)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, fmt.Errorf("%w: %s[%x]", ErrNotFound, m.ns, k.Bytes())
	}
	return *v, nil
}

// MayLoad reads the value under k, returning nil when absent.
func (m Map[K, V]) MayLoad(s Storage, k K) (*V, error) {
	return loadJSON[V](s, m.key(k), m.ns)
}

// Has reports whether k has a value.
func (m Map[K, V]) Has(s Storage, k K) (bool, error) {
	raw, err := s.Get(m.key(k))
	if err != nil {
		return false, err
	}
	return raw != nil, nil
}

// Save writes v under k.
func (m Map[K, V]) Save(s Storage, k K, v V) error {
	return saveJSON(s, m.key(k), v, m.ns)
}

// Remove deletes k. Removing a missing key is a no-op.
func (m Map[K, V]) Remove(s Storage, k K) error {
	return s.Delete(m.key(k))
}

// Update reads the value under k (nil when absent), passes it to fn and
// saves the result. When fn fails nothing is written and its error is
// returned unchanged.
func (m Map[K, V]) Update(s Storage, k K, fn func(*V) (V, error)) (V, error) {
	var zero V
	cur, err := m.MayLoad(s, k)
	if err != nil {
		return zero, err
	}
	next, err := fn(cur)
	if err != nil {
		return zero, err
	}
	if err := m.Save(s, k, next); err != nil {
		return zero, err
	}
	return next, nil
}

func loadJSON[T any](s Storage, key []byte, name string) (*T, error) {
	raw, err := s.Get(key)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if raw == nil {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return &v, nil
}

func saveJSON(s Storage, key []byte, v any, name string) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := s.Set(key, raw); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
