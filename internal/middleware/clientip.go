package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIPExtractor identifies the client of a request. Without trusted
// proxies only RemoteAddr is used, so X-Forwarded-For cannot be spoofed.
type ClientIPExtractor struct {
	trusted []netip.Prefix
}

// NewClientIPExtractor creates an extractor trusting the given proxy IPs
// or CIDRs. Entries that parse as neither are skipped.
func NewClientIPExtractor(trustedProxies []string) *ClientIPExtractor {
	prefixes := make([]netip.Prefix, 0, len(trustedProxies))
	for _, proxy := range trustedProxies {
		if prefix, err := netip.ParsePrefix(proxy); err == nil {
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(proxy); err == nil {
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return &ClientIPExtractor{trusted: prefixes}
}

// Extract returns the client IP. When the peer is a trusted proxy,
// X-Forwarded-For is walked right to left and the first untrusted hop is
// the client.
func (e *ClientIPExtractor) Extract(r *http.Request) string {
	remoteIP := stripPort(r.RemoteAddr)
	if len(e.trusted) == 0 || !e.isTrusted(remoteIP) {
		return remoteIP
	}

	xff := r.Header.Get(HeaderXForwardedFor)
	if xff == "" {
		return remoteIP
	}

	hops := strings.Split(xff, ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !e.isTrusted(hop) {
			return hop
		}
	}
	return remoteIP
}

func (e *ClientIPExtractor) isTrusted(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range e.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// stripPort removes the port from host:port or [v6]:port.
func stripPort(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
