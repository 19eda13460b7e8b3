// Package crate ties a typed container, the codec and the keychain gateway
// into one persistable unit: mutate the container in memory, then Save,
// Load or DeleteStore the whole thing as a single vault record.
package crate

import (
	"errors"
	"fmt"

	"github.com/keycrate/keycrate/internal/codec"
	"github.com/keycrate/keycrate/internal/container"
	"github.com/keycrate/keycrate/internal/keychain"
)

// ErrNotFound is returned by Load when no record exists for the identity.
var ErrNotFound = keychain.ErrNotFound

// Vault is the record-level persistence surface the crate drives. Satisfied
// by *keychain.Gateway and *keychain.AuditedGateway.
type Vault interface {
	Exists(id keychain.Identity) (bool, error)
	Fetch(id keychain.Identity) ([]byte, error)
	Upsert(id keychain.Identity, archive []byte) error
	Delete(id keychain.Identity) error
}

// State describes where a crate is in its save/load lifecycle.
type State int

const (
	// StateEmpty is a fresh crate with no mutations and no persistence yet.
	StateEmpty State = iota
	// StateDirty means the container changed since the last Save or Load.
	StateDirty
	// StatePersisted means the container was written to the vault as-is.
	StatePersisted
	// StateLoaded means the container was replaced by decoded vault contents.
	StateLoaded
	// StateSaveFailed means the last Save failed; the container is unchanged.
	StateSaveFailed
	// StateLoadFailed means the last Load failed; the container is unchanged.
	StateLoadFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateDirty:
		return "dirty"
	case StatePersisted:
		return "persisted"
	case StateLoaded:
		return "loaded"
	case StateSaveFailed:
		return "save-failed"
	case StateLoadFailed:
		return "load-failed"
	default:
		return "unknown"
	}
}

// Crate binds one Identity to one Container and persists it through a Vault.
// Operations are synchronous and blocking. A single Crate (and a single
// Identity generally) must not be driven from multiple goroutines without
// external serialization: the vault's upsert protocol is not atomic across
// its probe and write.
type Crate struct {
	id    keychain.Identity
	vault Vault
	c     *container.Container

	state   State
	syncRev uint64 // container revision at the last successful Save/Load
}

// New returns an empty crate for id.
func New(vault Vault, id keychain.Identity) *Crate {
	return &Crate{
		id:    id,
		vault: vault,
		c:     container.New(),
		state: StateEmpty,
	}
}

// Identity returns the identity the crate persists under.
func (cr *Crate) Identity() keychain.Identity {
	return cr.id
}

// Container returns the in-memory container for mutation. Mutations made
// through it are observed by State via the container's revision counter.
func (cr *Crate) Container() *container.Container {
	return cr.c
}

// State returns the crate's lifecycle state. Container mutations since the
// last successful Save or Load read as StateDirty.
func (cr *Crate) State() State {
	if cr.c.Revision() != cr.syncRev {
		return StateDirty
	}
	return cr.state
}

// Save encodes the container and upserts it as the record for the crate's
// identity. On encode or vault failure the container is left unchanged and
// the crate reads StateSaveFailed (until the next mutation or retry).
func (cr *Crate) Save() error {
	archive, err := codec.Encode(cr.c)
	if err != nil {
		cr.state = StateSaveFailed
		cr.syncRev = cr.c.Revision()
		return fmt.Errorf("crate save: %w", err)
	}
	if err := cr.vault.Upsert(cr.id, archive); err != nil {
		cr.state = StateSaveFailed
		cr.syncRev = cr.c.Revision()
		return fmt.Errorf("crate save: %w", err)
	}
	cr.state = StatePersisted
	cr.syncRev = cr.c.Revision()
	return nil
}

// Load fetches and decodes the record for the crate's identity, replacing
// the in-memory container with the decoded contents. On absence or decode
// failure the container is left unchanged; absence surfaces as ErrNotFound.
func (cr *Crate) Load() error {
	archive, err := cr.vault.Fetch(cr.id)
	if err != nil {
		cr.state = StateLoadFailed
		cr.syncRev = cr.c.Revision()
		if errors.Is(err, keychain.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("crate load: %w", err)
	}
	decoded, err := codec.Decode(archive)
	if err != nil {
		cr.state = StateLoadFailed
		cr.syncRev = cr.c.Revision()
		return fmt.Errorf("crate load: %w", err)
	}
	cr.c = decoded
	cr.state = StateLoaded
	cr.syncRev = cr.c.Revision()
	return nil
}

// DeleteStore removes the persisted record. The in-memory container is not
// cleared: after this call the container and the vault are decoupled until
// the next Save or Load.
func (cr *Crate) DeleteStore() error {
	if err := cr.vault.Delete(cr.id); err != nil {
		return fmt.Errorf("crate delete: %w", err)
	}
	return nil
}

// Exists reports whether a record is currently persisted for the identity.
func (cr *Crate) Exists() (bool, error) {
	return cr.vault.Exists(cr.id)
}
