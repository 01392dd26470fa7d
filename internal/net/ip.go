package net

import (
	"log/slog"
	"net"
)

// GetOutgoingIP finds the preferred local IP address for the host to share.
func GetOutgoingIP(logger *slog.Logger) string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// Offline networks: fall back to the interfaces.
		ip := firstIPv4()
		if ip.IsLoopback() && logger != nil {
			logger.Warn("no suitable local IP found, advertising loopback")
		}
		return ip.String()
	}
	defer conn.Close()

	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}
