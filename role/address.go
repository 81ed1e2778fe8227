package role

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/nokia/twampy/endpoint"
)

// Endpoint is a resolved address/port pair plus the address family it
// should bind or connect with.
type Endpoint struct {
	Host string
	Port int
	V6   bool
}

// ParseAddress accepts the syntaxes the spec's address parser supports:
// "[v6]:port", "[v6]", a bare v6 literal, "v4:port", "v4", or the empty
// string (defaults to the wildcard IPv4 address at defaultPort).
func ParseAddress(addr string, defaultPort int) (Endpoint, error) {
	if addr == "" {
		return Endpoint{Host: "", Port: defaultPort, V6: false}, nil
	}

	v6 := endpoint.IsIPv6Literal(addr)

	if strings.HasPrefix(addr, "[") {
		host, portStr, err := net.SplitHostPort(addr)
		if err != nil {
			// "[v6]" with no port
			host = strings.TrimSuffix(strings.TrimPrefix(addr, "["), "]")
			return Endpoint{Host: host, Port: defaultPort, V6: true}, nil
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Endpoint{}, fmt.Errorf("role: invalid port in %q: %w", addr, err)
		}
		return Endpoint{Host: host, Port: port, V6: true}, nil
	}

	if v6 {
		// bare v6 literal, no port
		return Endpoint{Host: addr, Port: defaultPort, V6: true}, nil
	}

	if strings.Contains(addr, ":") {
		host, portStr, err := net.SplitHostPort(addr)
		if err != nil {
			return Endpoint{}, fmt.Errorf("role: invalid address %q: %w", addr, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Endpoint{}, fmt.Errorf("role: invalid port in %q: %w", addr, err)
		}
		return Endpoint{Host: host, Port: port, V6: false}, nil
	}

	return Endpoint{Host: addr, Port: defaultPort, V6: false}, nil
}

// String renders e the way net.JoinHostPort would, bracketing IPv6.
func (e Endpoint) String() string {
	host := e.Host
	if e.V6 && host != "" {
		return fmt.Sprintf("[%s]:%d", host, e.Port)
	}
	return net.JoinHostPort(host, strconv.Itoa(e.Port))
}

// EitherV6 reports whether either endpoint requires the IPv6 family,
// per the rule that the socket family follows if any side is v6.
func EitherV6(a, b Endpoint) bool { return a.V6 || b.V6 }
