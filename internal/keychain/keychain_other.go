//go:build !darwin

package keychain

// NewSystemBackend returns a MemoryBackend on non-darwin platforms. The
// macOS Keychain is not available outside of macOS; records are stored in
// memory only and will not persist across restarts.
func NewSystemBackend() *MemoryBackend {
	return NewMemoryBackend()
}
