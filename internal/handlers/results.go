// internal/handlers/results.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"cogscreen/internal/report"
	"cogscreen/internal/repository"
	"cogscreen/views"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var metricLabels = map[string]string{
	repository.MetricReactionTime: "Average Reaction Time (ms)",
	repository.MetricHitRate:      "Hit Rate (%)",
	repository.MetricIndicator:    "Indicator",
}

type ResultsHandler struct {
	log     *zap.Logger
	reports *report.Renderer
}

func NewResultsHandler(log *zap.Logger, reports *report.Renderer) *ResultsHandler {
	return &ResultsHandler{log: log, reports: reports}
}

// ShowResults renders every available report with the attention charts.
func (h *ResultsHandler) ShowResults(c *gin.Context) {
	subj, ok := currentSubject(c)
	if !ok {
		return
	}

	metricKey := c.Query("metric")
	metricLabel, valid := metricLabels[metricKey]
	if !valid {
		metricKey = repository.MetricReactionTime
		metricLabel = metricLabels[metricKey]
	}

	results := subj.Results()
	data := views.ResultsData{Indicator: results.Indicator}
	for _, kind := range report.Kinds {
		doc, err := h.reports.For(kind, results)
		if errors.Is(err, report.ErrNoResult) {
			continue
		}
		if err != nil {
			h.log.Error("Failed to render report", zap.Error(err), zap.String("kind", kind))
			c.String(http.StatusInternalServerError, "Failed to render results")
			return
		}
		html, err := report.HTML(doc)
		if err != nil {
			h.log.Error("Failed to convert report", zap.Error(err), zap.String("kind", kind))
			c.String(http.StatusInternalServerError, "Failed to render results")
			return
		}
		data.Sections = append(data.Sections, views.ReportSection{Title: doc.Title, HTML: html})
	}

	if reactionTimes := repository.LastReactionTimes(subj); len(reactionTimes) > 0 {
		barJSON, err := json.Marshal(generateReactionChart(reactionTimes).JSON())
		if err != nil {
			h.log.Error("Failed to encode reaction chart", zap.Error(err))
		} else {
			data.Charts = append(data.Charts, views.Chart{ID: "reaction-chart", OptionsJSON: string(barJSON)})
		}
	}
	if timeline := repository.AttentionTimeline(subj, metricKey); len(timeline) > 1 {
		lineJSON, err := json.Marshal(generateTimelineChart(timeline, metricLabel).JSON())
		if err != nil {
			h.log.Error("Failed to encode timeline chart", zap.Error(err), zap.String("metricKey", metricKey))
		} else {
			data.Charts = append(data.Charts, views.Chart{ID: "timeline-chart", OptionsJSON: string(lineJSON)})
		}
	}

	render(c, "Results", views.Results(data))
}

func generateReactionChart(reactionTimes []int) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Reaction Times",
			Subtitle: "Latest attention session, hits only",
		}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "ms"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	labels := make([]string, 0, len(reactionTimes))
	items := make([]opts.BarData, 0, len(reactionTimes))
	for i, rt := range reactionTimes {
		labels = append(labels, "#"+strconv.Itoa(i+1))
		items = append(items, opts.BarData{Value: rt})
	}

	bar.SetXAxis(labels).AddSeries("Reaction time", items)
	return bar
}

func generateTimelineChart(data []repository.TimelineDataPoint, metricLabel string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Attention Over Time",
			Subtitle: metricLabel,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "time",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	// Data points in the format [date, value]
	items := make([]opts.LineData, 0, len(data))
	for _, point := range data {
		items = append(items, opts.LineData{Value: []interface{}{point.Date, point.Value}})
	}

	line.AddSeries(metricLabel, items).SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}
