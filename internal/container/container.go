// Package container implements the in-memory typed key-value container that
// keycrate persists to the Keychain as a single record.
//
// A Container maps string keys to exactly one tagged value of kind bool,
// int32, int64, float32, float64 or bytes. Getters follow the comma-ok
// convention: a missing key or a kind mismatch returns the zero value and
// false, never an error — "key not set" is the expected path, not an
// exceptional one.
//
// A Container is not safe for concurrent mutation. Callers sharing one
// across goroutines must serialize access themselves.
package container

import "sort"

// Kind tags the type of a stored value.
type Kind uint8

const (
	KindBool Kind = iota + 1
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindBytes
)

// String returns the wire name of the kind, as used by the codec.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

type value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	data []byte
}

// Container is a mutable mapping from string keys to tagged values.
// Last write wins: setting an existing key replaces both kind and value.
type Container struct {
	entries map[string]value
	rev     uint64
}

// New returns an empty Container.
func New() *Container {
	return &Container{entries: make(map[string]value)}
}

// Revision returns a counter that increments on every mutation. Callers can
// compare revisions to detect unsaved changes.
func (c *Container) Revision() uint64 {
	return c.rev
}

// Len returns the number of keys.
func (c *Container) Len() int {
	return len(c.entries)
}

// Has reports whether key is set, regardless of kind.
func (c *Container) Has(key string) bool {
	_, ok := c.entries[key]
	return ok
}

// Kind returns the kind stored under key, or 0 and false if the key is absent.
func (c *Container) Kind(key string) (Kind, bool) {
	v, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	return v.kind, true
}

// Keys returns all keys in sorted order.
func (c *Container) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clear removes all keys.
func (c *Container) Clear() {
	c.entries = make(map[string]value)
	c.rev++
}

// Delete removes key. Deleting an absent key is a no-op but still counts as
// a mutation.
func (c *Container) Delete(key string) {
	delete(c.entries, key)
	c.rev++
}

func (c *Container) set(key string, v value) {
	c.entries[key] = v
	c.rev++
}

// SetBool stores a bool under key.
func (c *Container) SetBool(key string, v bool) {
	c.set(key, value{kind: KindBool, b: v})
}

// SetInt32 stores an int32 under key.
func (c *Container) SetInt32(key string, v int32) {
	c.set(key, value{kind: KindInt32, i: int64(v)})
}

// SetInt64 stores an int64 under key.
func (c *Container) SetInt64(key string, v int64) {
	c.set(key, value{kind: KindInt64, i: v})
}

// SetFloat32 stores a float32 under key.
func (c *Container) SetFloat32(key string, v float32) {
	c.set(key, value{kind: KindFloat32, f: float64(v)})
}

// SetFloat64 stores a float64 under key.
func (c *Container) SetFloat64(key string, v float64) {
	c.set(key, value{kind: KindFloat64, f: v})
}

// SetBytes stores a copy of v under key. The caller keeps ownership of v;
// later changes to it do not affect the container.
func (c *Container) SetBytes(key string, v []byte) {
	cp := make([]byte, len(v))
	copy(cp, v)
	c.set(key, value{kind: KindBytes, data: cp})
}

// Bool returns the bool stored under key. The second result is false if the
// key is absent or holds a different kind.
func (c *Container) Bool(key string) (bool, bool) {
	v, ok := c.entries[key]
	if !ok || v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// Int32 returns the int32 stored under key, comma-ok.
func (c *Container) Int32(key string) (int32, bool) {
	v, ok := c.entries[key]
	if !ok || v.kind != KindInt32 {
		return 0, false
	}
	return int32(v.i), true
}

// Int64 returns the int64 stored under key, comma-ok.
func (c *Container) Int64(key string) (int64, bool) {
	v, ok := c.entries[key]
	if !ok || v.kind != KindInt64 {
		return 0, false
	}
	return v.i, true
}

// Float32 returns the float32 stored under key, comma-ok.
func (c *Container) Float32(key string) (float32, bool) {
	v, ok := c.entries[key]
	if !ok || v.kind != KindFloat32 {
		return 0, false
	}
	return float32(v.f), true
}

// Float64 returns the float64 stored under key, comma-ok.
func (c *Container) Float64(key string) (float64, bool) {
	v, ok := c.entries[key]
	if !ok || v.kind != KindFloat64 {
		return 0, false
	}
	return v.f, true
}

// Bytes returns a copy of the bytes stored under key, comma-ok. The returned
// slice is the caller's to keep; mutating it does not affect the container.
func (c *Container) Bytes(key string) ([]byte, bool) {
	v, ok := c.entries[key]
	if !ok || v.kind != KindBytes {
		return nil, false
	}
	cp := make([]byte, len(v.data))
	copy(cp, v.data)
	return cp, true
}

// Equal reports whether both containers hold the same keys with the same
// kinds and values. Revisions are not compared.
func (c *Container) Equal(other *Container) bool {
	if len(c.entries) != len(other.entries) {
		return false
	}
	for k, v := range c.entries {
		o, ok := other.entries[k]
		if !ok || o.kind != v.kind {
			return false
		}
		switch v.kind {
		case KindBool:
			if o.b != v.b {
				return false
			}
		case KindInt32, KindInt64:
			if o.i != v.i {
				return false
			}
		case KindFloat32, KindFloat64:
			if o.f != v.f {
				return false
			}
		case KindBytes:
			if string(o.data) != string(v.data) {
				return false
			}
		}
	}
	return true
}
