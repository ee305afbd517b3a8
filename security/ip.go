package security

import (
	"net"
	"net/http"
	"strings"
)

// GetClientIP extracts the real client IP address from the request.
// Supports X-Forwarded-For and X-Real-IP headers when behind a proxy.
//
// Only enable trustProxy when the process sits behind a reverse proxy you
// control (nginx, haproxy, a cloud load balancer). trustedProxyCount is how
// many proxies to trust counting from the right of X-Forwarded-For; anything
// further left was supplied by the client and is spoofable.
func GetClientIP(r *http.Request, trustProxy bool, trustedProxyCount int) string {
	if trustProxy {
		if ip := extractIPFromXFF(r.Header.Get("X-Forwarded-For"), trustedProxyCount); ip != "" {
			return ip
		}
		if ip := extractIPFromXRealIP(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}
	return extractIPFromRemoteAddr(r.RemoteAddr)
}

// extractIPFromXFF parses the X-Forwarded-For header and extracts the client IP.
// Format is "client-ip, untrusted-proxy, trusted-proxy2, trusted-proxy1": the
// rightmost entries are the proxies we control, so the client address sits at
// len(ips) - trustedProxyCount - 1.
func extractIPFromXFF(xff string, trustedProxyCount int) string {
	if xff == "" {
		return ""
	}

	ips := strings.Split(xff, ",")
	if len(ips) == 0 {
		return ""
	}

	clientIndex := calculateClientIPIndex(len(ips), trustedProxyCount)
	clientIP := strings.TrimSpace(ips[clientIndex])

	if net.ParseIP(clientIP) != nil {
		return clientIP
	}
	return ""
}

// calculateClientIPIndex determines the index of the client IP in the
// X-Forwarded-For list. A trustedProxyCount of 0 is treated as 1 trusted
// proxy. If the list is shorter than the proxy count implies, the leftmost
// entry is used.
func calculateClientIPIndex(numIPs, trustedProxyCount int) int {
	proxyCount := trustedProxyCount
	if proxyCount == 0 {
		proxyCount = 1
	}

	clientIndex := numIPs - proxyCount - 1
	if clientIndex < 0 {
		return 0
	}
	return clientIndex
}

// extractIPFromXRealIP parses the X-Real-IP header (set by some proxies).
func extractIPFromXRealIP(xri string) string {
	if xri == "" {
		return ""
	}
	if net.ParseIP(xri) != nil {
		return xri
	}
	return ""
}

// extractIPFromRemoteAddr extracts the IP from RemoteAddr for direct
// connections. Without a trusted proxy this is the only address that cannot
// be forged by the client.
func extractIPFromRemoteAddr(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// IPClass is the network classification of a client address. Session
// IP-mismatch events record the classification of both addresses so
// operators can tell carrier NAT churn (public→public) from odder shifts
// (public→private) when reviewing the trail.
type IPClass int

const (
	// IPClassPublic is a publicly routable address.
	IPClassPublic IPClass = iota
	// IPClassLoopback is 127.0.0.0/8 or ::1.
	IPClassLoopback
	// IPClassPrivate is an RFC 1918 or ULA address.
	IPClassPrivate
	// IPClassLinkLocal is 169.254.0.0/16 or fe80::/10.
	IPClassLinkLocal
	// IPClassUnspecified is 0.0.0.0 or ::.
	IPClassUnspecified
	// IPClassInvalid means the string did not parse as an IP address.
	IPClassInvalid
)

// String returns a human-readable name for the classification.
func (c IPClass) String() string {
	switch c {
	case IPClassPublic:
		return "public"
	case IPClassLoopback:
		return "loopback"
	case IPClassPrivate:
		return "private"
	case IPClassLinkLocal:
		return "link_local"
	case IPClassUnspecified:
		return "unspecified"
	default:
		return "invalid"
	}
}

// ClassifyIP returns the network classification of an address string.
func ClassifyIP(addr string) IPClass {
	ip := net.ParseIP(addr)
	if ip == nil {
		return IPClassInvalid
	}

	switch {
	case ip.IsUnspecified():
		return IPClassUnspecified
	case ip.IsLoopback():
		return IPClassLoopback
	case ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast():
		return IPClassLinkLocal
	case ip.IsPrivate():
		return IPClassPrivate
	default:
		return IPClassPublic
	}
}
