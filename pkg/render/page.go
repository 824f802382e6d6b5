package render

import (
	"fmt"
	"io"

	"github.com/vango-dev/recipebox/pkg/vdom"
)

// PageData contains all data needed to render a complete HTML page.
type PageData struct {
	// Body is the root VNode for the page content
	Body *vdom.VNode

	// Title is the page title
	Title string

	// Lang is the language attribute for the html element
	// Defaults to "en" if not specified
	Lang string

	// StyleSheets contains paths to external stylesheets
	StyleSheets []string

	// Scripts contains paths to external scripts, loaded before the client
	Scripts []string

	// ClientScript is the path to the thin client JavaScript
	ClientScript string
}

// RenderPage renders a complete HTML document to the given writer.
func RenderPage(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	if _, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html lang=\"%s\">\n<head>\n", escapeAttr(lang)); err != nil {
		return err
	}
	if _, err := io.WriteString(w, `  <meta charset="utf-8">`+"\n"+
		`  <meta name="viewport" content="width=device-width, initial-scale=1">`+"\n"); err != nil {
		return err
	}
	if page.Title != "" {
		if _, err := fmt.Fprintf(w, "  <title>%s</title>\n", escapeHTML(page.Title)); err != nil {
			return err
		}
	}
	for _, href := range page.StyleSheets {
		if _, err := fmt.Fprintf(w, `  <link rel="stylesheet" href="%s">`+"\n", escapeAttr(href)); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "</head>\n<body>\n"); err != nil {
		return err
	}

	if err := RenderToWriter(w, page.Body); err != nil {
		return err
	}

	for _, src := range page.Scripts {
		if _, err := fmt.Fprintf(w, "\n<script src=\"%s\"></script>", escapeAttr(src)); err != nil {
			return err
		}
	}
	if page.ClientScript != "" {
		if _, err := fmt.Fprintf(w, "\n<script src=\"%s\" defer></script>", escapeAttr(page.ClientScript)); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "\n</body>\n</html>\n")
	return err
}
