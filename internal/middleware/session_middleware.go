package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionContextKey = "cart_session"

// Cart sessions are anonymous: a browser gets a random id on first contact
// and keeps it for a year. The id only scopes a cart and its orders; it
// carries no identity and needs no authentication.
const sessionMaxAge = 365 * 24 * 60 * 60

// CartSessionMiddleware assigns a cart session cookie when missing and puts
// the session id on the gin context.
func CartSessionMiddleware(cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(cookieName)
		if err != nil || sessionID == "" {
			sessionID = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookieName, sessionID, sessionMaxAge, "/", "", false, true)
		}
		c.Set(sessionContextKey, sessionID)
		c.Next()
	}
}

// GetCartSession retrieves the cart session id from the gin context.
func GetCartSession(c *gin.Context) (string, bool) {
	sessionID := c.GetString(sessionContextKey)
	return sessionID, sessionID != ""
}
