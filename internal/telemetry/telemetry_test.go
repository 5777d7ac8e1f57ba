package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cogscreen/internal/attention"
	"cogscreen/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserverCountsAttentionEvents(t *testing.T) {
	m := New()
	obs := m.Observer()

	obs(attention.Event{Type: attention.EventTargetHit, Trial: &attention.Trial{ReactionTimeMs: 250}})
	obs(attention.Event{Type: attention.EventTargetHit, Trial: &attention.Trial{ReactionTimeMs: 300}})
	obs(attention.Event{Type: attention.EventTargetMissed})
	obs(attention.Event{Type: attention.EventSessionCompleted, Result: &models.AttentionResult{Indicator: 27.5}})
	obs(attention.Event{Type: attention.EventSessionStopped})
	obs(attention.Event{Type: attention.EventTargetShown})

	assert.InDelta(t, 2, testutil.ToFloat64(m.trials.WithLabelValues("hit")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.trials.WithLabelValues("miss")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.sessions.WithLabelValues("attention", "completed")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.sessions.WithLabelValues("attention", "stopped")), 1e-9)
	assert.Equal(t, 1, testutil.CollectAndCount(m.reaction))
}

func TestCompletedAndAnalysis(t *testing.T) {
	m := New()
	m.Completed("memory", 40)
	m.Analysis("speech", nil)
	m.Analysis("speech", context.Canceled)
	m.Analysis("handwriting", errors.New("boom"))

	assert.InDelta(t, 1, testutil.ToFloat64(m.sessions.WithLabelValues("memory", "completed")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.analyses.WithLabelValues("speech", "ok")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.analyses.WithLabelValues("speech", "cancelled")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.analyses.WithLabelValues("handwriting", "error")), 1e-9)
}

func TestHandlerExposesGaugesAndRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	m.Gauge("subjects", "Subjects held in memory.", func() float64 { return 3 })

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "cogscreen_subjects 3")
	assert.Contains(t, body, `cogscreen_http_request_duration_seconds_count{method="GET",route="/ping",status="200"} 1`)
}
