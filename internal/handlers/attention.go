package handlers

import (
	"net/http"

	"cogscreen/internal/live"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AttentionHandler struct {
	log *zap.Logger
	hub *live.Hub
}

func NewAttentionHandler(log *zap.Logger, hub *live.Hub) *AttentionHandler {
	return &AttentionHandler{log: log, hub: hub}
}

type clickRequest struct {
	// Trial is a pointer so that trial 0 passes the required check.
	Trial *int `json:"trial" binding:"required"`
}

func (h *AttentionHandler) Start(c *gin.Context) {
	subj, ok := currentSubject(c)
	if !ok {
		return
	}
	if err := subj.Attention.Start(); err != nil {
		abortWithError(c, err, subj.Attention.Snapshot())
		return
	}
	c.JSON(http.StatusOK, subj.Attention.Snapshot())
}

func (h *AttentionHandler) Click(c *gin.Context) {
	subj, ok := currentSubject(c)
	if !ok {
		return
	}

	var req clickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	trial, err := subj.Attention.Click(*req.Trial)
	if err != nil {
		h.log.Debug("Click rejected",
			zap.String("subject", subj.ID),
			zap.Int("trial", *req.Trial),
			zap.Error(err),
		)
		abortWithError(c, err, subj.Attention.Snapshot())
		return
	}
	c.JSON(http.StatusOK, gin.H{"trial": trial, "state": subj.Attention.Snapshot()})
}

func (h *AttentionHandler) Stop(c *gin.Context) {
	subj, ok := currentSubject(c)
	if !ok {
		return
	}
	stopped := subj.Attention.Stop()
	c.JSON(http.StatusOK, gin.H{"stopped": stopped, "state": subj.Attention.Snapshot()})
}

func (h *AttentionHandler) State(c *gin.Context) {
	subj, ok := currentSubject(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, subj.Attention.Snapshot())
}

// Live streams the subject's attention events over a websocket.
func (h *AttentionHandler) Live(c *gin.Context) {
	subj, ok := currentSubject(c)
	if !ok {
		return
	}
	h.hub.ServeWS(c.Writer, c.Request, subj.ID)
}
