package middleware

import (
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextKeyRealIP holds the resolved client address.
const ContextKeyRealIP = "real_ip"

// proxy headers in priority order; X-Forwarded-For uses its left-most entry
var realIPHeaders = []string{"CF-Connecting-IP", "X-Real-IP", "X-Forwarded-For"}

// RealIP stores the client address under ContextKeyRealIP. Headers that do
// not parse as an IP are skipped; c.ClientIP() is the fallback.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyRealIP, resolveIP(c))
		c.Next()
	}
}

func resolveIP(c *gin.Context) string {
	for _, h := range realIPHeaders {
		v := c.GetHeader(h)
		if first, _, found := strings.Cut(v, ","); found {
			v = first
		}
		if addr, err := netip.ParseAddr(strings.TrimSpace(v)); err == nil {
			return addr.Unmap().String()
		}
	}
	return c.ClientIP()
}
