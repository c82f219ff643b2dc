// ABOUTME: HTML and plain-text output for tables and form controls
// ABOUTME: html/template partials for the console, text/tabwriter for the CLI

package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"text/tabwriter"
)

//go:embed templates/*.html
var templateFS embed.FS

var partials = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type tableData struct {
	Table
	CSRFToken string
}

// RenderHTML writes the table partial. csrfToken is embedded in delete forms.
func RenderHTML(w io.Writer, t Table, csrfToken string) error {
	return partials.ExecuteTemplate(w, "table", tableData{Table: t, CSRFToken: csrfToken})
}

// TableHTML renders the table partial for inclusion in a page template.
func TableHTML(t Table, csrfToken string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, t, csrfToken); err != nil {
		return "", fmt.Errorf("rendering table: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// ControlHTML renders one form control.
func ControlHTML(c Control) (template.HTML, error) {
	var buf bytes.Buffer
	if err := partials.ExecuteTemplate(&buf, "control", c); err != nil {
		return "", fmt.Errorf("rendering control %s: %w", c.Name, err)
	}
	return template.HTML(buf.String()), nil
}

// RenderText writes the table as aligned columns.
func RenderText(w io.Writer, t Table) error {
	if t.Empty {
		_, err := fmt.Fprintln(w, NoDataText)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headers := make([]string, 0, len(t.Headers))
	rules := make([]string, 0, len(t.Headers))
	for _, h := range t.Headers {
		if h == ActionsTitle {
			continue
		}
		headers = append(headers, strings.ToUpper(h))
		rules = append(rules, strings.Repeat("-", len(h)))
	}
	fmt.Fprintln(tw, "  "+strings.Join(headers, "\t"))
	fmt.Fprintln(tw, "  "+strings.Join(rules, "\t"))

	for _, row := range t.Rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = strings.ReplaceAll(c, "\n", " ")
		}
		fmt.Fprintln(tw, "  "+strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
