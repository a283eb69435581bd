package middleware

import (
	"net/netip"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP bypasses the limiter for loopback, RFC 1918 / ULA and
// link-local clients. Unparseable addresses are limited.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		addr, err := netip.ParseAddr(ipFromCtx(c))
		if err != nil {
			return false
		}
		addr = addr.Unmap()
		return addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast()
	}
}
