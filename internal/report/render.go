// Package report renders batch outcomes for the terminal and the log file.
package report

import (
	"bytes"
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"

	"github.com/verkeep/verkeep/internal/batch"
)

// reportTemplate formats the final per-site outcome table. One line per
// input site, in input order, with the failure reason where there is one.
const reportTemplate = `{{ .Action }} — run {{ .RunID }}
started {{ .Started.Format "2006-01-02 15:04:05" }}, took {{ .Took }}

{{ range .Results -}}
{{ if eq (printf "%s" .Outcome) "success" -}}
  ok      {{ .Site | trunc 72 }}  ({{ .Attempts }} attempt{{ if ne .Attempts 1 }}s{{ end }}){{ if .Message }} — {{ .Message }}{{ end }}
{{ else -}}
  {{ printf "%-7s" .Outcome }} {{ .Site | trunc 72 }}  [{{ .Kind }}]{{ if .Err }} — {{ .Err }}{{ end }}
{{ end -}}
{{ end }}
{{ .Succeeded }} succeeded, {{ .Failed }} failed of {{ len .Results }} sites
`

type view struct {
	*batch.Report
	Took string
}

// Write renders the report to w.
func Write(w io.Writer, r *batch.Report) error {
	tmpl, err := template.New("report").Funcs(sprig.TxtFuncMap()).Parse(reportTemplate)
	if err != nil {
		return fmt.Errorf("report template: %w", err)
	}

	v := view{Report: r, Took: r.Finished.Sub(r.Started).Round(time.Millisecond).String()}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, v); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}
