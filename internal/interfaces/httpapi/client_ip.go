package httpapi

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// resolveClientIP is for access logs only; forwarded headers are not trusted for auth.
func resolveClientIP(r *http.Request) string {
	for _, raw := range []string{r.Header.Get("X-Forwarded-For"), r.Header.Get("X-Real-IP"), r.RemoteAddr} {
		if ip := normalizeIP(raw); ip != "" {
			return ip
		}
	}
	return ""
}

func normalizeIP(raw string) string {
	first, _, _ := strings.Cut(raw, ",")
	first = strings.TrimSpace(first)
	if host, _, err := net.SplitHostPort(first); err == nil {
		first = host
	}
	addr, err := netip.ParseAddr(first)
	if err != nil {
		return ""
	}
	return addr.Unmap().String()
}
