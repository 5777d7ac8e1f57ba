package handlers

import (
	"errors"
	"net/http"

	"cogscreen/internal/report"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReportHandler struct {
	log     *zap.Logger
	reports *report.Renderer
}

func NewReportHandler(log *zap.Logger, reports *report.Renderer) *ReportHandler {
	return &ReportHandler{log: log, reports: reports}
}

// Show renders the latest report for the :test kind as markdown and HTML,
// together with the subject's combined indicator.
func (h *ReportHandler) Show(c *gin.Context) {
	subj, ok := currentSubject(c)
	if !ok {
		return
	}

	results := subj.Results()
	doc, err := h.reports.For(c.Param("test"), results)
	switch {
	case errors.Is(err, report.ErrUnknownKind):
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown test"})
		return
	case errors.Is(err, report.ErrNoResult):
		c.JSON(http.StatusNotFound, gin.H{"error": "Test not completed yet"})
		return
	case err != nil:
		h.log.Error("Failed to render report", zap.Error(err), zap.String("test", c.Param("test")))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render report"})
		return
	}

	html, err := report.HTML(doc)
	if err != nil {
		h.log.Error("Failed to convert report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render report"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"kind":      doc.Kind,
		"title":     doc.Title,
		"markdown":  doc.Markdown,
		"html":      html,
		"indicator": results.Indicator,
	})
}
