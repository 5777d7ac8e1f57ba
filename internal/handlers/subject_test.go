package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"cogscreen/internal/analysis"
	"cogscreen/internal/attention"
	"cogscreen/internal/memory"
	"cogscreen/internal/problem"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	unknownColour := fmt.Errorf("%w: %q", memory.ErrUnknownColour, "mauve")
	cases := []struct {
		err  error
		want int
	}{
		{attention.ErrAlreadyRunning, http.StatusConflict},
		{attention.ErrNotRunning, http.StatusConflict},
		{memory.ErrNotRecalling, http.StatusConflict},
		{problem.ErrAlreadyRunning, http.StatusConflict},
		{attention.ErrStaleTarget, http.StatusUnprocessableEntity},
		{attention.ErrNoTarget, http.StatusUnprocessableEntity},
		{unknownColour, http.StatusUnprocessableEntity},
		{analysis.ErrEmptySample, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}
