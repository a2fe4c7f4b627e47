// Package render turns an assembled Report into a self-contained HTML
// document with inline-encoded images.
package render

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"strings"

	"github.com/brieflab/brief/internal/report"
)

//go:embed report.html.tmpl
var templateFS embed.FS

var funcs = template.FuncMap{
	"dataURI": func(img *report.GeneratedImage) template.URL {
		if img == nil || len(img.Data) == 0 {
			return ""
		}
		mime := "image/webp"
		if img.Format != "" {
			mime = "image/" + img.Format
		}
		return template.URL(fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(img.Data)))
	},
	"paragraphs": func(s string) []string {
		var out []string
		for _, p := range strings.Split(s, "\n\n") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	},
}

var reportTemplate = template.Must(
	template.New("report.html.tmpl").Funcs(funcs).ParseFS(templateFS, "report.html.tmpl"),
)

// Render produces the final HTML document for a report. Images are embedded
// as data URIs so the output is portable; sections without an image render
// text-only, and degraded parts render an explicit unavailable notice.
func Render(r *report.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, r); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}
