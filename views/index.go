package views

import (
	"context"
	"fmt"
	"io"

	"cogscreen/internal/models"

	"github.com/a-h/templ"
)

// Index lists the catalog grouped by category, in file order.
func Index(categories []string, groups map[string][]models.Assessment) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<h1 class="page-title">Screening Assessments</h1>`); err != nil {
			return err
		}
		for _, cat := range categories {
			if _, err := fmt.Fprintf(w, `<section class="category"><h2>%s</h2><div class="cards">`, e(cat)); err != nil {
				return err
			}
			for _, a := range groups[cat] {
				_, err := fmt.Fprintf(w,
					`<a class="card" href="/tests/%s"><h3>%s</h3><p>%s</p></a>`,
					e(a.ID), e(a.Title), e(a.Description))
				if err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</div></section>`); err != nil {
				return err
			}
		}
		return nil
	})
}

// TestPage is the shell of one assessment. The client script fills the
// widget according to data-kind.
func TestPage(a models.Assessment) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<h1 class="page-title">%s</h1>
<p class="instructions">%s</p>
<div class="test-grid">
<div class="widget" id="widget" data-kind="%s"></div>
<div class="report" id="report"><p class="muted">No analysis results yet.</p></div>
</div>`, e(a.Title), e(a.Instructions), e(a.Kind))
		return err
	})
}
