package keychain

// Attributes is a backend-neutral vault attribute set. Query building stays
// pure and testable on any platform; the darwin backend translates an
// Attributes into a Security-framework item at the call boundary.
type Attributes map[string]any

// Attribute keys. Values are string for the text attributes, bool for the
// flags, []byte for the payload.
const (
	AttrClass          = "class"
	AttrService        = "service"
	AttrAccount        = "account"
	AttrLabel          = "label"
	AttrDescription    = "description"
	AttrSynchronizable = "synchronizable"
	AttrDataProtection = "data-protection"
	AttrData           = "data"
)

// ClassGenericPassword is the record class for all keycrate records.
const ClassGenericPassword = "generic-password"

// Capability probes, resolved per platform and consulted every time a query
// is built. Package variables so tests can pin either capability.
var (
	supportsDataProtectionKeychain = hasDataProtectionKeychain
	supportsSynchronizable         = hasSynchronizable
)

// Clone returns a shallow copy of a.
func (a Attributes) Clone() Attributes {
	cp := make(Attributes, len(a))
	for k, v := range a {
		cp[k] = v
	}
	return cp
}

// Merge copies every entry of other into a, overwriting on collision.
func (a Attributes) Merge(other Attributes) {
	for k, v := range other {
		a[k] = v
	}
}

// BaseQuery derives the lookup filter for id. The record class is always
// present; account and service only when non-empty. The data-protection
// attribute is included only when the running OS exposes that capability —
// on older systems it is silently omitted, never an error.
func BaseQuery(id Identity) Attributes {
	q := Attributes{AttrClass: ClassGenericPassword}
	if id.Account != "" {
		q[AttrAccount] = id.Account
	}
	if id.Service != "" {
		q[AttrService] = id.Service
	}
	if supportsDataProtectionKeychain() {
		q[AttrDataProtection] = id.ProtectedVault
	}
	return q
}

// WriteAttributes derives the attribute set written on insert or update:
// label and description when present, the synchronizable flag when the OS
// exposes it, and the payload itself.
func WriteAttributes(id Identity, archive []byte) Attributes {
	a := Attributes{AttrData: archive}
	if id.Label != "" {
		a[AttrLabel] = id.Label
	}
	if id.Description != "" {
		a[AttrDescription] = id.Description
	}
	if supportsSynchronizable() {
		a[AttrSynchronizable] = id.Synchronizable
	}
	return a
}
