//go:build !darwin

package keychain

// The data-protection keychain does not exist off macOS. The in-memory
// fallback backend accepts the synchronizable attribute as plain data, so
// that capability reads as present.

func hasDataProtectionKeychain() bool {
	return false
}

func hasSynchronizable() bool {
	return true
}
