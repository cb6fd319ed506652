package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ParseListen parses a listen argument of the form "port", "host:port" or
// "[ipv6]:port" and returns an address for net.Listen. An empty argument
// listens on DefaultPort on all interfaces.
func ParseListen(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return net.JoinHostPort("", strconv.Itoa(DefaultPort)), nil
	}

	host, portStr := "", s
	if strings.Contains(s, ":") {
		var err error
		host, portStr, err = net.SplitHostPort(s)
		if err != nil {
			return "", fmt.Errorf("invalid listen address %q: %w", s, err)
		}
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", fmt.Errorf("invalid listen port %q in %q", portStr, s)
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}
