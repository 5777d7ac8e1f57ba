// Package report turns test results into markdown documents and renders them
// as HTML or terminal output.
package report

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"cogscreen/internal/metrics"
	"cogscreen/internal/models"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.md.tmpl
var templateFS embed.FS

var (
	ErrNoResult    = errors.New("no result for report")
	ErrUnknownKind = errors.New("unknown report kind")
)

// Kinds lists the report kinds in page order.
var Kinds = []string{
	models.KindAttention,
	models.KindMemory,
	models.KindProblemSolving,
	models.KindHandwriting,
	models.KindSpeech,
}

// Document is a rendered markdown report for one test kind.
type Document struct {
	Kind     string `json:"kind"`
	Title    string `json:"title"`
	Markdown string `json:"markdown"`
}

var titles = map[string]string{
	models.KindAttention:      "Attention Assessment",
	models.KindMemory:         "Memory Assessment",
	models.KindProblemSolving: "Problem Solving Assessment",
	models.KindHandwriting:    "Handwriting Analysis",
	models.KindSpeech:         "Speech Evaluation",
}

var templateNames = map[string]string{
	models.KindAttention:      "attention.md.tmpl",
	models.KindMemory:         "memory.md.tmpl",
	models.KindProblemSolving: "problem.md.tmpl",
	models.KindHandwriting:    "handwriting.md.tmpl",
	models.KindSpeech:         "speech.md.tmpl",
}

// Renderer executes the report templates. It is safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates. Numbers are formatted for tag.
func NewRenderer(tag language.Tag) (*Renderer, error) {
	p := message.NewPrinter(tag)
	funcs := template.FuncMap{
		"num1":    func(v float64) string { return p.Sprintf("%.1f", v) },
		"int":     func(v int) string { return p.Sprintf("%d", v) },
		"percent": func(v float64) string { return p.Sprintf("%.1f", v*100) },
		"band":    func(v float64) string { return string(metrics.BandFor(v)) },
	}

	tmpl, err := template.New("report").Funcs(funcs).ParseFS(templateFS, "templates/*.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse report templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) Attention(res *models.AttentionResult) (Document, error) {
	if res == nil {
		return Document{}, ErrNoResult
	}
	return r.render(models.KindAttention, res)
}

func (r *Renderer) Memory(res *models.MemoryResult) (Document, error) {
	if res == nil {
		return Document{}, ErrNoResult
	}
	return r.render(models.KindMemory, res)
}

func (r *Renderer) ProblemSolving(res *models.ProblemSolvingResult) (Document, error) {
	if res == nil {
		return Document{}, ErrNoResult
	}
	return r.render(models.KindProblemSolving, res)
}

func (r *Renderer) Handwriting(res *models.HandwritingResult) (Document, error) {
	if res == nil {
		return Document{}, ErrNoResult
	}
	return r.render(models.KindHandwriting, res)
}

func (r *Renderer) Speech(res *models.SpeechResult) (Document, error) {
	if res == nil {
		return Document{}, ErrNoResult
	}
	return r.render(models.KindSpeech, res)
}

// For renders the report of one kind from a subject's latest results.
func (r *Renderer) For(kind string, res models.Results) (Document, error) {
	switch kind {
	case models.KindAttention:
		return r.Attention(res.Attention)
	case models.KindMemory:
		return r.Memory(res.Memory)
	case models.KindProblemSolving:
		return r.ProblemSolving(res.ProblemSolving)
	case models.KindHandwriting:
		return r.Handwriting(res.Handwriting)
	case models.KindSpeech:
		return r.Speech(res.Speech)
	}
	return Document{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func (r *Renderer) render(kind string, data any) (Document, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, templateNames[kind], data); err != nil {
		return Document{}, fmt.Errorf("failed to render %s report: %w", kind, err)
	}
	return Document{
		Kind:     kind,
		Title:    titles[kind],
		Markdown: strings.TrimSpace(buf.String()) + "\n",
	}, nil
}

// HTML converts the document markdown to an HTML fragment.
func HTML(doc Document) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(doc.Markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert %s report: %w", doc.Kind, err)
	}
	return buf.String(), nil
}

// Terminal renders the document for a terminal of the given width.
func Terminal(doc Document, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("notty"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(doc.Markdown)
}
