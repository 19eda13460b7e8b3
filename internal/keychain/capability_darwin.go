//go:build darwin

package keychain

import (
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// hasDataProtectionKeychain reports whether the OS supports the
// data-protection keychain attribute (macOS 10.15+). A failed version read
// means the capability is treated as absent, not as an error.
func hasDataProtectionKeychain() bool {
	major, minor, ok := osProductVersion()
	if !ok {
		return false
	}
	return major > 10 || (major == 10 && minor >= 15)
}

// hasSynchronizable reports whether the OS supports the synchronizable
// attribute. Present on every macOS version keycrate runs on.
func hasSynchronizable() bool {
	return true
}

func osProductVersion() (major, minor int, ok bool) {
	v, err := unix.Sysctl("kern.osproductversion")
	if err != nil {
		return 0, 0, false
	}
	parts := strings.Split(v, ".")
	if len(parts) == 0 {
		return 0, 0, false
	}
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	if len(parts) > 1 {
		// Ignore a malformed minor component; major alone still gates.
		minor, _ = strconv.Atoi(parts[1])
	}
	return major, minor, true
}
