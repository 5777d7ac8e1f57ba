package router

import (
	"errors"
	"net/http"

	"cogscreen/internal/handlers"
	"cogscreen/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CspNonceContextKey = handlers.CSPNonceContextKey

// NonceMiddleware keeps one CSP nonce per session and adds it to the Gin
// context for use in headers and templates.
func NonceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		nonce, ok := session.Get(CspNonceContextKey).(string)
		if !ok {
			var err error
			nonce, err = utils.GenerateSecureToken(32)
			if err != nil {
				c.AbortWithError(http.StatusInternalServerError, errors.New("failed to generate CSP nonce"))
				return
			}
			session.Set(CspNonceContextKey, nonce)
			if err := session.Save(); err != nil {
				c.AbortWithError(http.StatusInternalServerError, errors.New("failed to save session"))
				return
			}
		}

		c.Set(CspNonceContextKey, nonce)
		c.Next()
	}
}

// ContentSecurityPolicy sends a CSP that admits scripts from the app, the
// echarts CDN and the session nonce.
func ContentSecurityPolicy() gin.HandlerFunc {
	return func(c *gin.Context) {
		nonce := c.GetString(CspNonceContextKey)
		c.Header("Content-Security-Policy",
			"default-src 'self'; script-src 'self' https://cdn.jsdelivr.net 'nonce-"+nonce+"'; "+
				"style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		c.Next()
	}
}
