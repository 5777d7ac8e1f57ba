package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct{}

func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// Show returns the anonymous subject bound to the cookie and the CSRF token
// the client has to echo on unsafe requests.
func (h *SessionHandler) Show(c *gin.Context) {
	subj, ok := currentSubject(c)
	if !ok {
		return
	}
	token, _ := c.Get(CSRFTokenContextKey)
	c.JSON(http.StatusOK, gin.H{
		"subject":   subj.ID,
		"csrfToken": token,
		"createdAt": subj.CreatedAt(),
	})
}
