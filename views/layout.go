// Package views renders the HTML pages as templ components.
package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// e escapes s for HTML text and attribute values.
func e(s string) string {
	return templ.EscapeString(s)
}

// Layout wraps the children of ctx in the page shell. nonce is the CSP nonce
// for inline and external scripts; csrfToken is exposed to the client script.
func Layout(title, csrfToken, nonce string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="csrf-token" content="%s">
<title>%s | CogScreen</title>
<link rel="stylesheet" href="/assets/style.css">
<script nonce="%s" src="https://cdn.jsdelivr.net/npm/echarts@5/dist/echarts.min.js"></script>
<script nonce="%s" src="/assets/app.js" defer></script>
</head>
<body>
`, e(csrfToken), e(title), e(nonce), e(nonce))
		if err != nil {
			return err
		}
		if err := Nav().Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<main class="container">`); err != nil {
			return err
		}
		if err := templ.GetChildren(ctx).Render(ctx, w); err != nil {
			return err
		}
		_, err = io.WriteString(w, `</main>
<footer class="footer">Screening results are simulated and are not a diagnosis.</footer>
</body>
</html>
`)
		return err
	})
}

func Nav() templ.Component {
	return templ.Raw(`<nav class="nav"><a href="/" class="brand">CogScreen</a><a href="/results">Results</a></nav>`)
}
