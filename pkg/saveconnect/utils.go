package saveconnect

import (
	"net"
	"strconv"
	"strings"
)

// UnescapeRFC6763Label unescapes a DNS-SD label per RFC 6763 section 6.4
func UnescapeRFC6763Label(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			// \DDD decimal escape
			if i+3 < len(s) && isDigit(s[i+1]) && isDigit(s[i+2]) && isDigit(s[i+3]) {
				if val, err := strconv.Atoi(s[i+1 : i+4]); err == nil && val < 256 {
					b.WriteByte(byte(val))
					i += 3
					continue
				}
			}
			i++
			b.WriteByte(s[i])
		} else {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// urlHost formats host for use in a URL authority. Bare IPv6 addresses are
// bracketed; anything else, including host:port, is returned unchanged.
func urlHost(host string) string {
	if strings.HasPrefix(host, "[") {
		return host
	}
	if ip := net.ParseIP(host); ip != nil && ip.To4() == nil {
		return "[" + host + "]"
	}
	return host
}
