package crate

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keycrate/keycrate/internal/keychain"
)

func testIdentity() keychain.Identity {
	return keychain.Identity{
		Account: "player-1",
		Service: "com.keycrate.test",
	}
}

func newTestCrate(t *testing.T) (*Crate, *keychain.MemoryBackend) {
	t.Helper()
	be := keychain.NewMemoryBackend()
	gw := keychain.NewGateway(be, zerolog.Nop())
	return New(gw, testIdentity()), be
}

// failingVault fails Upsert and Fetch, standing in for vault trouble.
type failingVault struct{ err error }

func (f *failingVault) Exists(keychain.Identity) (bool, error)  { return false, f.err }
func (f *failingVault) Fetch(keychain.Identity) ([]byte, error) { return nil, f.err }
func (f *failingVault) Upsert(keychain.Identity, []byte) error  { return f.err }
func (f *failingVault) Delete(keychain.Identity) error          { return f.err }

func TestStateTransitions(t *testing.T) {
	cr, _ := newTestCrate(t)
	assert.Equal(t, StateEmpty, cr.State())

	cr.Container().SetInt32("level", 7)
	assert.Equal(t, StateDirty, cr.State())

	require.NoError(t, cr.Save())
	assert.Equal(t, StatePersisted, cr.State())

	cr.Container().SetBool("seen", true)
	assert.Equal(t, StateDirty, cr.State())

	require.NoError(t, cr.Load())
	assert.Equal(t, StateLoaded, cr.State())
}

func TestSaveThenLoadInNewCrate(t *testing.T) {
	cr, be := newTestCrate(t)

	c := cr.Container()
	c.SetInt32("level", 7)
	c.SetBool("tutorial-done", true)
	c.SetBytes("snapshot", []byte{9, 8, 7})
	require.NoError(t, cr.Save())

	// A fresh crate over the same backend stands in for a new process.
	other := New(keychain.NewGateway(be, zerolog.Nop()), testIdentity())
	require.NoError(t, other.Load())

	level, ok := other.Container().Int32("level")
	require.True(t, ok)
	assert.Equal(t, int32(7), level)

	// Same key read with the wrong kind is (zero, false), not an error.
	f, ok := other.Container().Float32("level")
	assert.False(t, ok)
	assert.Zero(t, f)

	snap, ok := other.Container().Bytes("snapshot")
	require.True(t, ok)
	assert.Equal(t, []byte{9, 8, 7}, snap)
}

func TestDoubleSaveLeavesOneRecord(t *testing.T) {
	cr, be := newTestCrate(t)
	cr.Container().SetInt64("score", 100)

	require.NoError(t, cr.Save())
	require.NoError(t, cr.Save())

	assert.Equal(t, 1, be.Count())
}

func TestLoadAbsentRecordLeavesContainerUnchanged(t *testing.T) {
	cr, _ := newTestCrate(t)
	cr.Container().SetBool("local-only", true)

	err := cr.Load()
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, StateLoadFailed, cr.State())

	v, ok := cr.Container().Bool("local-only")
	require.True(t, ok, "container must survive a failed load")
	assert.True(t, v)
}

func TestLoadCorruptArchiveFails(t *testing.T) {
	be := keychain.NewMemoryBackend()
	gw := keychain.NewGateway(be, zerolog.Nop())
	id := testIdentity()
	require.NoError(t, gw.Upsert(id, []byte("not an archive")))

	cr := New(gw, id)
	cr.Container().SetInt32("kept", 1)

	err := cr.Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, StateLoadFailed, cr.State())

	v, ok := cr.Container().Int32("kept")
	require.True(t, ok)
	assert.Equal(t, int32(1), v)
}

func TestSaveFailureKeepsContainer(t *testing.T) {
	cr := New(&failingVault{err: errors.New("vault down")}, testIdentity())
	cr.Container().SetFloat64("pi", 3.14)

	err := cr.Save()
	require.Error(t, err)
	assert.Equal(t, StateSaveFailed, cr.State())

	v, ok := cr.Container().Float64("pi")
	require.True(t, ok)
	assert.Equal(t, 3.14, v)

	// Mutating after a failed save reads as dirty again.
	cr.Container().SetBool("retry", true)
	assert.Equal(t, StateDirty, cr.State())
}

func TestDeleteStoreDecouplesContainer(t *testing.T) {
	cr, _ := newTestCrate(t)
	cr.Container().SetInt32("level", 3)
	require.NoError(t, cr.Save())

	require.NoError(t, cr.DeleteStore())

	// The record is gone...
	ok, err := cr.Exists()
	require.NoError(t, err)
	assert.False(t, ok)

	err = cr.Load()
	assert.ErrorIs(t, err, ErrNotFound)

	// ...but the in-memory container was not implicitly cleared.
	v, ok2 := cr.Container().Int32("level")
	require.True(t, ok2)
	assert.Equal(t, int32(3), v)
}

func TestDeleteStoreOfAbsentRecordSucceeds(t *testing.T) {
	cr, _ := newTestCrate(t)
	assert.NoError(t, cr.DeleteStore())
}
