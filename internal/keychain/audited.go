package keychain

import (
	"errors"

	"github.com/keycrate/keycrate/internal/audit"
)

// AuditedGateway wraps a Gateway and records every save, load and delete to
// an audit log. Probes are not audited: existence checks carry no payload.
type AuditedGateway struct {
	inner *Gateway
	audit *audit.Logger
	actor string
}

// NewAuditedGateway wraps gw with audit logging attributed to actor.
func NewAuditedGateway(gw *Gateway, auditLog *audit.Logger, actor string) *AuditedGateway {
	return &AuditedGateway{
		inner: gw,
		audit: auditLog,
		actor: actor,
	}
}

func (a *AuditedGateway) Exists(id Identity) (bool, error) {
	return a.inner.Exists(id)
}

func (a *AuditedGateway) Fetch(id Identity) ([]byte, error) {
	data, err := a.inner.Fetch(id)
	// Absence is benign and still worth the audit trail; vault errors are
	// recorded with the failure attached. Audit logging is best-effort and
	// never blocks the operation.
	a.audit.Log(a.entry(audit.ActionRecordLoad, id, err))
	return data, err
}

func (a *AuditedGateway) Upsert(id Identity, archive []byte) error {
	err := a.inner.Upsert(id, archive)
	a.audit.Log(a.entry(audit.ActionRecordSave, id, err))
	return err
}

func (a *AuditedGateway) Delete(id Identity) error {
	err := a.inner.Delete(id)
	a.audit.Log(a.entry(audit.ActionRecordDelete, id, err))
	return err
}

func (a *AuditedGateway) entry(action audit.Action, id Identity, err error) audit.Entry {
	e := audit.Entry{
		Action:  action,
		Account: id.Account,
		Service: id.Service,
		Actor:   a.actor,
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		e.Error = err.Error()
	}
	return e
}
