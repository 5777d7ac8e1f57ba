package handlers

import (
	"errors"
	"io"
	"net/http"

	"cogscreen/internal/analysis"
	"cogscreen/internal/models"
	"cogscreen/internal/report"
	"cogscreen/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sampleFormKey = "sample"

// AnalysisHandler accepts handwriting and speech samples for the simulated
// analyser.
type AnalysisHandler struct {
	log      *zap.Logger
	analyzer *analysis.Analyzer
	reports  *report.Renderer
	metrics  *telemetry.Metrics
	maxBytes func() int64
}

func NewAnalysisHandler(log *zap.Logger, analyzer *analysis.Analyzer, reports *report.Renderer, metrics *telemetry.Metrics, maxBytes func() int64) *AnalysisHandler {
	return &AnalysisHandler{log: log, analyzer: analyzer, reports: reports, metrics: metrics, maxBytes: maxBytes}
}

func (h *AnalysisHandler) Handwriting(c *gin.Context) {
	subj, ok := currentSubject(c)
	if !ok {
		return
	}
	sample, ok := h.readSample(c)
	if !ok {
		return
	}

	res, err := h.analyzer.Handwriting(c.Request.Context(), sample)
	h.metrics.Analysis(models.KindHandwriting, err)
	if err != nil {
		h.fail(c, models.KindHandwriting, err)
		return
	}
	subj.SaveHandwriting(res)

	doc, err := h.reports.Handwriting(res)
	h.respond(c, res, doc, err)
}

func (h *AnalysisHandler) Speech(c *gin.Context) {
	subj, ok := currentSubject(c)
	if !ok {
		return
	}
	sample, ok := h.readSample(c)
	if !ok {
		return
	}

	res, err := h.analyzer.Speech(c.Request.Context(), sample)
	h.metrics.Analysis(models.KindSpeech, err)
	if err != nil {
		h.fail(c, models.KindSpeech, err)
		return
	}
	subj.SaveSpeech(res)

	doc, err := h.reports.Speech(res)
	h.respond(c, res, doc, err)
}

// readSample reads the multipart sample file, bounded by the configured size.
func (h *AnalysisHandler) readSample(c *gin.Context) ([]byte, bool) {
	limit := h.maxBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+(1<<10))

	fh, err := c.FormFile(sampleFormKey)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Sample too large"})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing sample file"})
		return nil, false
	}
	if fh.Size > limit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Sample too large"})
		return nil, false
	}

	f, err := fh.Open()
	if err != nil {
		h.log.Error("Failed to open sample", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read sample"})
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit))
	if err != nil {
		h.log.Error("Failed to read sample", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read sample"})
		return nil, false
	}
	return data, true
}

func (h *AnalysisHandler) fail(c *gin.Context, kind string, err error) {
	if errors.Is(err, analysis.ErrEmptySample) {
		abortWithError(c, err, nil)
		return
	}
	// The client went away while the analyser was waiting.
	if c.Request.Context().Err() != nil {
		h.log.Debug("Analysis cancelled", zap.String("kind", kind), zap.Error(err))
		c.Status(499)
		return
	}
	h.log.Error("Analysis failed", zap.String("kind", kind), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed"})
}

func (h *AnalysisHandler) respond(c *gin.Context, result any, doc report.Document, err error) {
	if err != nil {
		h.log.Error("Failed to render report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render report"})
		return
	}
	html, err := report.HTML(doc)
	if err != nil {
		h.log.Error("Failed to convert report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render report"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result, "markdown": doc.Markdown, "html": html})
}
