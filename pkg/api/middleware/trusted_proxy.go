package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ClientIPResolver finds the client address of a request. Forwarding
// headers are honored only when the direct peer is a trusted proxy.
type ClientIPResolver struct {
	trusted []*net.IPNet
}

// NewClientIPResolver parses CIDR ranges or bare IPs. An empty list trusts
// no proxy.
func NewClientIPResolver(proxies []string) (*ClientIPResolver, error) {
	networks, err := ParseTrustedProxies(proxies)
	if err != nil {
		return nil, err
	}
	return &ClientIPResolver{trusted: networks}, nil
}

// ParseTrustedProxies parses CIDR ranges; bare IPs become /32 or /128.
func ParseTrustedProxies(proxies []string) ([]*net.IPNet, error) {
	var networks []*net.IPNet

	for _, cidr := range proxies {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}

		if !strings.Contains(cidr, "/") {
			ip := net.ParseIP(cidr)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy IP %q", cidr)
			}
			if ip.To4() != nil {
				cidr += "/32"
			} else {
				cidr += "/128"
			}
		}

		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy CIDR %q: %w", cidr, err)
		}
		networks = append(networks, network)
	}

	return networks, nil
}

func hostOf(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

func (c *ClientIPResolver) isTrusted(remoteAddr string) bool {
	if c == nil || len(c.trusted) == 0 {
		return false
	}
	ip := net.ParseIP(hostOf(remoteAddr))
	if ip == nil {
		return false
	}
	for _, network := range c.trusted {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns X-Real-IP, then the leftmost X-Forwarded-For entry, when
// the peer is trusted; otherwise the peer address.
func (c *ClientIPResolver) ClientIP(r *http.Request) string {
	if c.isTrusted(r.RemoteAddr) {
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip.String()
		}
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
				return ip.String()
			}
		}
	}
	return hostOf(r.RemoteAddr)
}
