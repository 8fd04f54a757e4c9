package terminal

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/template"

	"github.com/granafy/reports/pkg/models/domain"
)

type TableConfig struct {
	NameWidth  int
	ValueWidth int
	CountWidth int
	ExtraWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:  36,
		ValueWidth: 14,
		CountWidth: 12,
		ExtraWidth: 14,
	}
}

// Reporter renders a generated report as a formatted text table.
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

type reportView struct {
	Label       string
	GeneratedAt string
	FromCache   bool
	Rows        []domain.ReportRow
	Summary     [][2]string
}

func (c *Reporter) Handle(report *domain.GeneratedReport) error {
	funcMap := template.FuncMap{
		"formatRow": func(row domain.ReportRow) string {
			name := row.Name
			if name == "" {
				name = row.Period
			}
			extra := row.Percentage.StringFixed(2) + "%"
			if row.Variation != nil {
				extra = row.Variation.StringFixed(2) + "%"
			}
			return fmt.Sprintf("| %-*s | %*s | %*d | %*s |",
				c.config.NameWidth, name,
				c.config.ValueWidth, row.Value.StringFixed(2),
				c.config.CountWidth, row.Count,
				c.config.ExtraWidth, extra)
		},
		"header": func() string {
			return fmt.Sprintf("| %-*s | %*s | %*s | %*s |",
				c.config.NameWidth, "Name",
				c.config.ValueWidth, "Value",
				c.config.CountWidth, "Count",
				c.config.ExtraWidth, "Pct/Var")
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat("-", c.config.ValueWidth+2),
				strings.Repeat("-", c.config.CountWidth+2),
				strings.Repeat("-", c.config.ExtraWidth+2))
		},
	}

	tmpl := `
{{.Label}}

Generated at: {{.GeneratedAt}}{{if .FromCache}} (cached){{end}}

{{separator}}
{{header}}
{{separator}}
{{range .Rows}}{{formatRow .}}
{{end}}{{separator}}

{{range .Summary}}{{index . 0}}: {{index . 1}}
{{end}}`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, buildView(report))
}

func buildView(report *domain.GeneratedReport) reportView {
	keys := make([]string, 0, len(report.Summary))
	for k := range report.Summary {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	summary := make([][2]string, 0, len(keys))
	for _, k := range keys {
		summary = append(summary, [2]string{k, fmt.Sprintf("%v", report.Summary[k])})
	}

	return reportView{
		Label:       report.Metadata.ReportLabel,
		GeneratedAt: report.Metadata.GeneratedAt.Format("2006-01-02 15:04:05"),
		FromCache:   report.FromCache,
		Rows:        report.Data,
		Summary:     summary,
	}
}
