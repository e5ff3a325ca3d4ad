package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// identityKey is the Gin context key under which the caller ID is stored.
	identityKey = "userID"
	// identityHeader carries the opaque per-install identifier. The value is
	// minted on the client at first launch; there is no account system.
	identityHeader = "X-User-ID"
	// maxIdentityLen bounds the accepted identifier length.
	maxIdentityLen = 128
)

// Identity extracts the caller identifier from the X-User-ID header and
// stores it in the Gin context. Requests without a usable identifier are
// rejected with 401 since every resource in the API is scoped to a caller.
//
// The identifier is treated as opaque: no format beyond a non-empty,
// length-bounded token is enforced.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader(identityHeader))
		if uid == "" || len(uid) > maxIdentityLen {
			rid, _ := c.Get(requestIDKey)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": asString(rid),
				"code":       "missing_identity",
				"message":    "a valid " + identityHeader + " header is required",
			})
			return
		}
		c.Set(identityKey, uid)
		c.Next()
	}
}
