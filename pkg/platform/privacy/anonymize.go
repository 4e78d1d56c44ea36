// Package privacy reduces request metadata to forms safe to log.
package privacy

import (
	"fmt"
	"net"
)

// AnonymizeIP truncates an IP address to its network prefix.
//
// IPv4 addresses keep the /24 network ("192.168.1.47" -> "192.168.1.0").
// IPv6 addresses keep the /48 prefix ("2001:db8:85a3::8a2e:370:7334" -> "2001:0db8:85a3::").
//
// Returns "invalid" for unparseable input and "unknown" for empty strings.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "invalid"
	}

	// IPv4-mapped IPv6 addresses land here too.
	if v4 := parsed.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.0", v4[0], v4[1], v4[2])
	}

	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::",
		parsed[0], parsed[1],
		parsed[2], parsed[3],
		parsed[4], parsed[5])
}

// AnonymizeRemoteAddr accepts an http.Request RemoteAddr ("host:port" or a
// bare host) and anonymizes the host part.
func AnonymizeRemoteAddr(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	return AnonymizeIP(host)
}
