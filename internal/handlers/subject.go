package handlers

import (
	"errors"
	"net/http"

	"cogscreen/internal/analysis"
	"cogscreen/internal/attention"
	"cogscreen/internal/memory"
	"cogscreen/internal/problem"
	"cogscreen/internal/repository"

	"github.com/gin-gonic/gin"
)

// Context keys shared with the router middleware.
const (
	SubjectContextKey   = "subject"
	CSRFTokenContextKey = "csrf_token"
	CSPNonceContextKey  = "csp_nonce"
)

// currentSubject returns the subject loaded by the router. A missing subject
// is a wiring error and answers 500.
func currentSubject(c *gin.Context) (*repository.Subject, bool) {
	v, ok := c.Get(SubjectContextKey)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No subject session"})
		return nil, false
	}
	subj, ok := v.(*repository.Subject)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No subject session"})
		return nil, false
	}
	return subj, true
}

// statusFor maps game errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, attention.ErrAlreadyRunning),
		errors.Is(err, memory.ErrAlreadyRunning),
		errors.Is(err, problem.ErrAlreadyRunning),
		errors.Is(err, attention.ErrNotRunning),
		errors.Is(err, problem.ErrNotRunning),
		errors.Is(err, memory.ErrNotRecalling):
		return http.StatusConflict
	case errors.Is(err, attention.ErrStaleTarget),
		errors.Is(err, attention.ErrNoTarget),
		errors.Is(err, memory.ErrUnknownColour),
		errors.Is(err, problem.ErrUnknownOption),
		errors.Is(err, analysis.ErrEmptySample):
		return http.StatusUnprocessableEntity
	case errors.Is(err, repository.ErrSubjectNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// abortWithError answers err as JSON. body, when not nil, is sent as the
// "state" field so clients can resynchronise.
func abortWithError(c *gin.Context, err error, body any) {
	h := gin.H{"error": err.Error()}
	if body != nil {
		h["state"] = body
	}
	c.AbortWithStatusJSON(statusFor(err), h)
}
