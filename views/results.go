package views

import (
	"context"
	"fmt"
	"io"

	"cogscreen/internal/metrics"

	"github.com/a-h/templ"
)

// ReportSection is one rendered report. HTML comes from the report renderer
// and is written unescaped.
type ReportSection struct {
	Title string
	HTML  string
}

// Chart is an echarts option document rendered client-side.
type Chart struct {
	ID          string
	OptionsJSON string
}

type ResultsData struct {
	Indicator *float64
	Sections  []ReportSection
	Charts    []Chart
}

func Results(data ResultsData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<h1 class="page-title">Results</h1>`); err != nil {
			return err
		}
		if data.Indicator != nil {
			if err := IndicatorBar(*data.Indicator).Render(ctx, w); err != nil {
				return err
			}
		}
		if len(data.Sections) == 0 {
			_, err := io.WriteString(w, `<p class="muted">Complete one of the tests to see your results here.</p>`)
			return err
		}
		for _, c := range data.Charts {
			_, err := fmt.Fprintf(w, `<div class="chart" id="%s" data-options="%s"></div>`, e(c.ID), e(c.OptionsJSON))
			if err != nil {
				return err
			}
		}
		for _, s := range data.Sections {
			if _, err := fmt.Fprintf(w, `<article class="report"><h2>%s</h2>`, e(s.Title)); err != nil {
				return err
			}
			if err := templ.Raw(s.HTML).Render(ctx, w); err != nil {
				return err
			}
			if _, err := io.WriteString(w, `</article>`); err != nil {
				return err
			}
		}
		return nil
	})
}

// IndicatorBar draws the combined indicator on the 10 to 90 scale.
func IndicatorBar(value float64) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		band := metrics.BandFor(value)
		_, err := fmt.Fprintf(w, `<div class="indicator">
<h3>Indicator</h3>
<div class="bar"><div class="fill band-%s" style="width: %.0f%%"></div></div>
<div class="scale"><span>Low (10%%)</span><span>Moderate (50%%)</span><span>High (90%%)</span></div>
<p>%.1f (%s)</p>
</div>`, band, value, value, band)
		return err
	})
}
