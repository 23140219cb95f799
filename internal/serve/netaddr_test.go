package serve

import (
	"net"
	"testing"
)

// TestDetectBindAddr verifies the result is always a usable IP literal,
// whether auto-detection found a LAN address or fell back to loopback.
func TestDetectBindAddr(t *testing.T) {
	addr := DetectBindAddr()
	if net.ParseIP(addr) == nil {
		t.Fatalf("DetectBindAddr() = %q, not an IP literal", addr)
	}
}
