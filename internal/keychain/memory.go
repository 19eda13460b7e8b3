package keychain

import "sync"

// MemoryBackend is an in-memory Backend for tests and non-darwin platforms.
// It reproduces the vault's real primitive semantics: Insert fails against
// an existing address and Update fails against a missing one, so the
// Gateway's upsert protocol is exercised for real rather than papered over.
type MemoryBackend struct {
	mu      sync.Mutex
	records map[string]*memoryRecord
}

type memoryRecord struct {
	attrs Attributes
	data  []byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[string]*memoryRecord)}
}

// address derives the record address from a query. Records are keyed by the
// (account, service) pair, matching the vault's addressing invariant.
func address(q Attributes) string {
	account, _ := q[AttrAccount].(string)
	service, _ := q[AttrService].(string)
	return account + "\x00" + service
}

func (m *MemoryBackend) Probe(query Attributes) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[address(query)]; !ok {
		return ErrNotFound
	}
	return nil
}

func (m *MemoryBackend) Fetch(query Attributes) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[address(query)]
	if !ok {
		return nil, ErrNotFound
	}
	data := make([]byte, len(rec.data))
	copy(data, rec.data)
	return data, nil
}

func (m *MemoryBackend) Insert(attrs Attributes) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	addr := address(attrs)
	if _, ok := m.records[addr]; ok {
		return ErrDuplicate
	}
	rec := &memoryRecord{attrs: attrs.Clone()}
	if data, ok := attrs[AttrData].([]byte); ok {
		rec.data = append([]byte(nil), data...)
		delete(rec.attrs, AttrData)
	}
	m.records[addr] = rec
	return nil
}

func (m *MemoryBackend) Update(query, attrs Attributes) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[address(query)]
	if !ok {
		return ErrNotFound
	}
	for k, v := range attrs {
		if k == AttrData {
			data := v.([]byte)
			rec.data = append([]byte(nil), data...)
			continue
		}
		rec.attrs[k] = v
	}
	return nil
}

func (m *MemoryBackend) Remove(query Attributes) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	addr := address(query)
	if _, ok := m.records[addr]; !ok {
		return ErrNotFound
	}
	delete(m.records, addr)
	return nil
}

// Count returns the number of stored records. Test helper.
func (m *MemoryBackend) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// Record returns the stored attributes for the record addressed by query,
// comma-ok. Test helper; the returned map is a copy.
func (m *MemoryBackend) Record(query Attributes) (Attributes, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[address(query)]
	if !ok {
		return nil, false
	}
	return rec.attrs.Clone(), true
}
