package handlers

import (
	"net/http"

	"cogscreen/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProblemHandler struct {
	log     *zap.Logger
	metrics *telemetry.Metrics
}

func NewProblemHandler(log *zap.Logger, metrics *telemetry.Metrics) *ProblemHandler {
	return &ProblemHandler{log: log, metrics: metrics}
}

type answerRequest struct {
	Value *int `json:"value" binding:"required"`
}

func (h *ProblemHandler) Start(c *gin.Context) {
	subj, ok := currentSubject(c)
	if !ok {
		return
	}
	state, err := subj.Quiz.Start()
	if err != nil {
		abortWithError(c, err, state)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *ProblemHandler) Answer(c *gin.Context) {
	subj, ok := currentSubject(c)
	if !ok {
		return
	}

	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	state, err := subj.Quiz.Answer(*req.Value)
	if err != nil {
		abortWithError(c, err, state)
		return
	}
	if !state.Active && state.Last != nil {
		h.metrics.Completed("problem-solving", state.Last.Indicator)
		h.log.Info("Problem solving test completed",
			zap.String("subject", subj.ID),
			zap.Int("correct", state.Last.CorrectPatterns),
		)
	}
	c.JSON(http.StatusOK, state)
}

func (h *ProblemHandler) Stop(c *gin.Context) {
	subj, ok := currentSubject(c)
	if !ok {
		return
	}
	stopped := subj.Quiz.Stop()
	c.JSON(http.StatusOK, gin.H{"stopped": stopped, "state": subj.Quiz.State()})
}

func (h *ProblemHandler) State(c *gin.Context) {
	subj, ok := currentSubject(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, subj.Quiz.State())
}
