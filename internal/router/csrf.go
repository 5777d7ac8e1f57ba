package router

import (
	"errors"
	"net/http"

	"cogscreen/internal/handlers"
	"cogscreen/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Define keys for storing the token in the session and context.
const (
	csrfTokenSessionKey = "csrf_token"
	csrfTokenFormKey    = "_csrf"
	csrfTokenContextKey = handlers.CSRFTokenContextKey
	csrfTokenHeaderKey  = "X-CSRF-Token"
)

// CSRFProtection keeps a token per session and requires it on unsafe methods,
// either as the _csrf form field or the X-CSRF-Token header. The token is
// echoed in the X-CSRF-Token response header.
func CSRFProtection() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		token, ok := session.Get(csrfTokenSessionKey).(string)
		if !ok {
			newToken, err := utils.GenerateSecureToken(32)
			if err != nil {
				c.AbortWithError(http.StatusInternalServerError, errors.New("failed to generate CSRF token"))
				return
			}
			token = newToken
			session.Set(csrfTokenSessionKey, token)
			if err := session.Save(); err != nil {
				c.AbortWithError(http.StatusInternalServerError, errors.New("failed to save session"))
				return
			}
		}

		c.Set(csrfTokenContextKey, token)
		c.Header(csrfTokenHeaderKey, token)

		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			// A freshly minted token cannot have been sent by the client.
			if !ok {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "CSRF token not found in session"})
				return
			}

			// Header first (fetch requests), then the form field.
			submitted := c.GetHeader(csrfTokenHeaderKey)
			if submitted == "" {
				submitted = c.PostForm(csrfTokenFormKey)
			}
			if !utils.TokensEqual(submitted, token) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid CSRF token"})
				return
			}
		}

		c.Next()
	}
}
