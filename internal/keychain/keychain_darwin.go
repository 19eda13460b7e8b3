//go:build darwin

package keychain

import (
	"errors"

	gokeychain "github.com/keybase/go-keychain"
)

// SystemBackend talks to the macOS Keychain through the Security framework.
type SystemBackend struct{}

// NewSystemBackend returns the Keychain-backed Backend.
func NewSystemBackend() *SystemBackend {
	return &SystemBackend{}
}

func (s *SystemBackend) Probe(query Attributes) error {
	q := itemFromAttributes(query)
	q.SetMatchLimit(gokeychain.MatchLimitOne)
	q.SetReturnAttributes(true)
	results, err := gokeychain.QueryItem(q)
	if err != nil {
		return mapError(err)
	}
	if len(results) == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SystemBackend) Fetch(query Attributes) ([]byte, error) {
	q := itemFromAttributes(query)
	q.SetMatchLimit(gokeychain.MatchLimitOne)
	q.SetReturnData(true)
	results, err := gokeychain.QueryItem(q)
	if err != nil {
		return nil, mapError(err)
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return results[0].Data, nil
}

func (s *SystemBackend) Insert(attrs Attributes) error {
	return mapError(gokeychain.AddItem(itemFromAttributes(attrs)))
}

func (s *SystemBackend) Update(query, attrs Attributes) error {
	return mapError(gokeychain.UpdateItem(itemFromAttributes(query), itemFromAttributes(attrs)))
}

func (s *SystemBackend) Remove(query Attributes) error {
	return mapError(gokeychain.DeleteItem(itemFromAttributes(query)))
}

// itemFromAttributes translates the neutral attribute set into a
// Security-framework item. Absent attributes stay absent in the item.
func itemFromAttributes(a Attributes) gokeychain.Item {
	item := gokeychain.NewItem()
	if _, ok := a[AttrClass]; ok {
		item.SetSecClass(gokeychain.SecClassGenericPassword)
	}
	if v, ok := a[AttrService].(string); ok {
		item.SetService(v)
	}
	if v, ok := a[AttrAccount].(string); ok {
		item.SetAccount(v)
	}
	if v, ok := a[AttrLabel].(string); ok {
		item.SetLabel(v)
	}
	if v, ok := a[AttrDescription].(string); ok {
		item.SetDescription(v)
	}
	if v, ok := a[AttrSynchronizable].(bool); ok {
		if v {
			item.SetSynchronizable(gokeychain.SynchronizableYes)
			item.SetAccessible(gokeychain.AccessibleWhenUnlocked)
		} else {
			item.SetSynchronizable(gokeychain.SynchronizableNo)
			item.SetAccessible(gokeychain.AccessibleWhenUnlockedThisDeviceOnly)
		}
	}
	if v, ok := a[AttrDataProtection].(bool); ok {
		item.SetUseDataProtectionKeychain(v)
	}
	if v, ok := a[AttrData].([]byte); ok {
		item.SetData(v)
	}
	return item
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gokeychain.ErrorItemNotFound):
		return ErrNotFound
	case errors.Is(err, gokeychain.ErrorDuplicateItem):
		return ErrDuplicate
	default:
		return err
	}
}
