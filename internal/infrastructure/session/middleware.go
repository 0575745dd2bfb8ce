package session

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	messaging "github.com/EyobKifle/agrihub-messaging/internal/pkg/messaging/application/domain"
)

const principalKey = "session.principal"

// Middleware authenticates requests through the session store. The token comes
// from the Authorization bearer header, or from the "token" query parameter
// for websocket upgrades where custom headers are awkward for browser clients.
func Middleware(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("token")
		}

		principal, err := store.Resolve(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// CurrentPrincipal returns the authenticated principal stored by Middleware.
func CurrentPrincipal(c *gin.Context) (messaging.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return messaging.Principal{}, false
	}
	p, ok := v.(messaging.Principal)
	return p, ok && p.Valid()
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
