//go:build !linux

package hidraw

import "fmt"

// ReadDescriptor is unsupported outside Linux: hidraw is a Linux-only kernel
// interface (no macOS/Windows equivalent exists), so `hidc verify` reports a
// clear error on other platforms rather than silently doing nothing.
func ReadDescriptor(path string) ([]byte, error) {
	return nil, fmt.Errorf("hidraw: live descriptor verification is only supported on linux")
}
