// Package keychain persists keycrate records in the macOS Keychain.
//
// A record is addressed by an Identity and stored as a generic password
// whose payload is a codec archive. Record attributes:
//   - Service/Account: the address — at most one record per pair
//   - Label/Description: caller metadata, not part of the address
//   - Synchronizable: whether the record may sync across devices
//
// The Gateway is the only component that talks to the vault. Every vault
// status it sees falls into one of three buckets: success, not-found
// (benign, never logged) and everything else (logged to the injected
// diagnostic sink and surfaced as a *StatusError).
package keychain

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned when no record exists for an Identity.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned by Backend.Insert when a record already exists at
// the address. The vault's insert primitive is not an upsert.
var ErrDuplicate = errors.New("record already exists")

// StatusError wraps a vault status outside the success/not-found buckets.
type StatusError struct {
	Op  string
	Err error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("keychain %s: %v", e.Op, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// Identity addresses exactly one record in the vault. The (Account, Service)
// pair is the address; Label and Description are metadata only. Identities
// are plain values, constructed once and not mutated afterwards.
type Identity struct {
	Account        string
	Service        string
	Label          string
	Description    string
	Synchronizable bool
	ProtectedVault bool
}

// Backend exposes the vault's raw primitives. Insert and Update are not
// idempotent substitutes for each other: Insert fails with ErrDuplicate
// against an existing address, Update fails with ErrNotFound against a
// missing one. The Gateway's upsert protocol exists to reconcile that.
type Backend interface {
	// Probe checks for a record matching the query without reading its
	// payload. Returns nil, ErrNotFound, or a vault error.
	Probe(query Attributes) error
	// Fetch returns the payload of the record matching the query.
	Fetch(query Attributes) ([]byte, error)
	// Insert creates a new record from the attribute set.
	Insert(attrs Attributes) error
	// Update rewrites attributes and payload of the record matching the query.
	Update(query, attrs Attributes) error
	// Remove deletes the record matching the query.
	Remove(query Attributes) error
}

// Gateway classifies backend statuses and implements the upsert protocol.
type Gateway struct {
	be  Backend
	log zerolog.Logger
}

// NewGateway returns a Gateway over be. Diagnostics for non-benign vault
// statuses go to log; pass zerolog.Nop() to discard them.
func NewGateway(be Backend, log zerolog.Logger) *Gateway {
	return &Gateway{be: be, log: log}
}

// Exists reports whether a record exists for id. A vault status outside
// success/not-found is logged and returned as an error.
func (g *Gateway) Exists(id Identity) (bool, error) {
	err := g.be.Probe(BaseQuery(id))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, g.fail("probe", id, err)
	}
}

// Fetch returns the archive stored for id, or ErrNotFound if no record
// exists. Absence is benign and never logged.
func (g *Gateway) Fetch(id Identity) ([]byte, error) {
	data, err := g.be.Fetch(BaseQuery(id))
	switch {
	case err == nil:
		return data, nil
	case errors.Is(err, ErrNotFound):
		return nil, ErrNotFound
	default:
		return nil, g.fail("fetch", id, err)
	}
}

// Upsert writes archive as the record for id, inserting or updating as
// needed. The vault offers no single insert-or-update primitive, so the
// decision is made by an existence probe first: present means update against
// the base query, absent means insert with the write attributes merged into
// the base query. The two calls are not atomic together; concurrent writers
// to the same Identity need external serialization.
func (g *Gateway) Upsert(id Identity, archive []byte) error {
	base := BaseQuery(id)

	err := g.be.Probe(base)
	switch {
	case err == nil:
		if err := g.be.Update(base, WriteAttributes(id, archive)); err != nil {
			return g.fail("update", id, err)
		}
		return nil
	case errors.Is(err, ErrNotFound):
		attrs := base.Clone()
		attrs.Merge(WriteAttributes(id, archive))
		if err := g.be.Insert(attrs); err != nil {
			return g.fail("insert", id, err)
		}
		return nil
	default:
		return g.fail("probe", id, err)
	}
}

// Delete removes the record for id. Deleting an absent record is a no-op
// success: delete is idempotent.
func (g *Gateway) Delete(id Identity) error {
	err := g.be.Remove(BaseQuery(id))
	switch {
	case err == nil, errors.Is(err, ErrNotFound):
		return nil
	default:
		return g.fail("delete", id, err)
	}
}

func (g *Gateway) fail(op string, id Identity, err error) error {
	g.log.Error().
		Err(err).
		Str("op", op).
		Str("account", id.Account).
		Str("service", id.Service).
		Msg("keychain operation failed")
	return &StatusError{Op: op, Err: err}
}
