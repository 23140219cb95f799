package serve

import (
	"net"
)

// DetectBindAddr returns the machine's LAN address by opening a UDP
// "connection" to an arbitrary non-local address — no packet is sent, the
// kernel just picks the outbound interface. Falls back to loopback when
// the machine has no route.
func DetectBindAddr() string {
	conn, err := net.Dial("udp", "10.255.255.255:1")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()

	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return "127.0.0.1"
}
