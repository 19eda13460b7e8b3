package keychain

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func testIdentity() Identity {
	return Identity{
		Account: "player-1",
		Service: "com.keycrate.test",
	}
}

// recordingBackend wraps a MemoryBackend and logs which primitives ran, so
// tests can assert on the upsert protocol's branch decisions.
type recordingBackend struct {
	*MemoryBackend
	calls []string
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{MemoryBackend: NewMemoryBackend()}
}

func (r *recordingBackend) Probe(q Attributes) error {
	r.calls = append(r.calls, "probe")
	return r.MemoryBackend.Probe(q)
}

func (r *recordingBackend) Insert(a Attributes) error {
	r.calls = append(r.calls, "insert")
	return r.MemoryBackend.Insert(a)
}

func (r *recordingBackend) Update(q, a Attributes) error {
	r.calls = append(r.calls, "update")
	return r.MemoryBackend.Update(q, a)
}

// faultyBackend fails every primitive with the same error, standing in for
// vault statuses outside the success/not-found buckets.
type faultyBackend struct{ err error }

func (f *faultyBackend) Probe(Attributes) error           { return f.err }
func (f *faultyBackend) Fetch(Attributes) ([]byte, error) { return nil, f.err }
func (f *faultyBackend) Insert(Attributes) error          { return f.err }
func (f *faultyBackend) Update(_, _ Attributes) error     { return f.err }
func (f *faultyBackend) Remove(Attributes) error          { return f.err }

func TestUpsertInsertsWhenAbsent(t *testing.T) {
	be := newRecordingBackend()
	gw := NewGateway(be, zerolog.Nop())
	id := testIdentity()

	if err := gw.Upsert(id, []byte("v1")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	want := []string{"probe", "insert"}
	if len(be.calls) != 2 || be.calls[0] != want[0] || be.calls[1] != want[1] {
		t.Errorf("calls = %v, want %v", be.calls, want)
	}

	data, err := gw.Fetch(id)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "v1" {
		t.Errorf("payload = %q, want v1", data)
	}
}

func TestUpsertUpdatesWhenPresent(t *testing.T) {
	be := newRecordingBackend()
	gw := NewGateway(be, zerolog.Nop())
	id := testIdentity()

	if err := gw.Upsert(id, []byte("v1")); err != nil {
		t.Fatalf("first Upsert: %v", err)
	}
	be.calls = nil

	if err := gw.Upsert(id, []byte("v2")); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	want := []string{"probe", "update"}
	if len(be.calls) != 2 || be.calls[0] != want[0] || be.calls[1] != want[1] {
		t.Errorf("calls = %v, want %v", be.calls, want)
	}

	// Still exactly one record: the second save updated, it did not duplicate.
	if n := be.Count(); n != 1 {
		t.Errorf("record count = %d, want 1", n)
	}

	data, _ := gw.Fetch(id)
	if string(data) != "v2" {
		t.Errorf("payload = %q, want v2", data)
	}
}

func TestUpsertShortCircuitsOnProbeFailure(t *testing.T) {
	vaultErr := errors.New("keychain locked")
	gw := NewGateway(&faultyBackend{err: vaultErr}, zerolog.Nop())

	err := gw.Upsert(testIdentity(), []byte("v"))
	var serr *StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if serr.Op != "probe" {
		t.Errorf("op = %q, want probe", serr.Op)
	}
	if !errors.Is(err, vaultErr) {
		t.Error("expected wrapped vault error")
	}
}

func TestExists(t *testing.T) {
	gw := NewGateway(NewMemoryBackend(), zerolog.Nop())
	id := testIdentity()

	ok, err := gw.Exists(id)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Error("expected absent record")
	}

	gw.Upsert(id, []byte("v"))

	ok, err = gw.Exists(id)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !ok {
		t.Error("expected record to exist")
	}
}

func TestExistsReportsVaultError(t *testing.T) {
	gw := NewGateway(&faultyBackend{err: errors.New("boom")}, zerolog.Nop())

	ok, err := gw.Exists(testIdentity())
	if ok {
		t.Error("expected false on vault error")
	}
	var serr *StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
}

func TestFetchAbsentIsNotFound(t *testing.T) {
	gw := NewGateway(NewMemoryBackend(), zerolog.Nop())

	_, err := gw.Fetch(testIdentity())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	gw := NewGateway(NewMemoryBackend(), zerolog.Nop())
	id := testIdentity()

	// Deleting an absent record is a no-op success.
	if err := gw.Delete(id); err != nil {
		t.Fatalf("Delete of absent record: %v", err)
	}

	gw.Upsert(id, []byte("v"))
	if err := gw.Delete(id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := gw.Delete(id); err != nil {
		t.Fatalf("repeat Delete: %v", err)
	}

	_, err := gw.Fetch(id)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestUpsertWritesMetadataAttributes(t *testing.T) {
	pinCapabilities(t, false, true)
	be := NewMemoryBackend()
	gw := NewGateway(be, zerolog.Nop())
	id := Identity{
		Account:        "player-1",
		Service:        "com.keycrate.test",
		Label:          "Save Slot",
		Synchronizable: true,
	}

	if err := gw.Upsert(id, []byte("v")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	attrs, ok := be.Record(BaseQuery(id))
	if !ok {
		t.Fatal("expected stored record")
	}
	if attrs[AttrLabel] != "Save Slot" {
		t.Errorf("label = %v", attrs[AttrLabel])
	}
	if _, ok := attrs[AttrDescription]; ok {
		t.Error("unset description must not be stored")
	}
	if v, _ := attrs[AttrSynchronizable].(bool); !v {
		t.Error("expected synchronizable attribute")
	}
}

func TestIdentitiesWithDistinctAddressesDoNotCollide(t *testing.T) {
	gw := NewGateway(NewMemoryBackend(), zerolog.Nop())
	a := Identity{Account: "alice", Service: "svc"}
	b := Identity{Account: "bob", Service: "svc"}

	gw.Upsert(a, []byte("for-alice"))
	gw.Upsert(b, []byte("for-bob"))

	data, err := gw.Fetch(a)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "for-alice" {
		t.Errorf("payload = %q, want for-alice", data)
	}
}
