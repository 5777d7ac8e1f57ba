package handlers

import (
	"net/http"

	"cogscreen/internal/memory"
	"cogscreen/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MemoryHandler struct {
	log     *zap.Logger
	metrics *telemetry.Metrics
}

func NewMemoryHandler(log *zap.Logger, metrics *telemetry.Metrics) *MemoryHandler {
	return &MemoryHandler{log: log, metrics: metrics}
}

type selectRequest struct {
	Color string `json:"color" binding:"required"`
}

func (h *MemoryHandler) Start(c *gin.Context) {
	subj, ok := currentSubject(c)
	if !ok {
		return
	}
	state, err := subj.Memory.Start()
	if err != nil {
		abortWithError(c, err, state)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *MemoryHandler) Select(c *gin.Context) {
	subj, ok := currentSubject(c)
	if !ok {
		return
	}

	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	state, err := subj.Memory.Select(req.Color)
	if err != nil {
		abortWithError(c, err, state)
		return
	}
	if state.Phase == memory.Completed && state.Last != nil {
		h.metrics.Completed("memory", state.Last.Indicator)
		h.log.Info("Memory test completed",
			zap.String("subject", subj.ID),
			zap.Int("accuracy", state.Last.Accuracy),
		)
	}
	c.JSON(http.StatusOK, state)
}

func (h *MemoryHandler) Stop(c *gin.Context) {
	subj, ok := currentSubject(c)
	if !ok {
		return
	}
	stopped := subj.Memory.Stop()
	c.JSON(http.StatusOK, gin.H{"stopped": stopped, "state": subj.Memory.State()})
}

func (h *MemoryHandler) State(c *gin.Context) {
	subj, ok := currentSubject(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, subj.Memory.State())
}
