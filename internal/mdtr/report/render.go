package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	vfs "github.com/redhat-openshift-ecosystem/markdown-test-report/internal/assets"
	"github.com/redhat-openshift-ecosystem/markdown-test-report/internal/mdtr/summary"
)

const (
	ReportTemplateBasePath = "templates/report"
	reportTemplateName     = "report"

	frontMatterDelimiter = "---\n"
	excerptSeparator     = "<!--more-->"
	frontMatterTimestamp = "2006-01-02 15:04 UTC"
)

// funcMap extends the sprig functions with the Markdown helpers.
func funcMap() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	funcs["cell"] = escapeCell
	funcs["md"] = escapeMarkdown
	funcs["code"] = codeSpan
	funcs["anchor"] = MakeAnchor
	return funcs
}

var (
	lineFolder      = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
	markdownEscaper = strings.NewReplacer(
		`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`,
		"[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`, "#", `\#`,
	)
)

// foldLines keeps s on a single line.
func foldLines(s string) string {
	return lineFolder.Replace(s)
}

// escapeCell keeps a value inside a single table cell.
func escapeCell(s string) string {
	return strings.ReplaceAll(foldLines(s), "|", `\|`)
}

// escapeMarkdown makes s render as literal inline text on a single line.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(foldLines(s))
}

// codeSpan wraps s in a code span whose fence is longer than any backtick
// run inside it.
func codeSpan(s string) string {
	s = foldLines(s)
	longest, run := 0, 0
	for _, r := range s {
		if r != '`' {
			run = 0
			continue
		}
		run++
		if run > longest {
			longest = run
		}
	}
	// renderers strip one space on each side when both are present
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") ||
		(strings.HasPrefix(s, " ") && strings.HasSuffix(s, " ") && strings.Trim(s, " ") != "") {
		s = " " + s + " "
	}
	fence := strings.Repeat("`", longest+1)
	return fence + s + fence
}

func loadTemplates() (*template.Template, error) {
	tmpl, err := template.New(reportTemplateName).
		Funcs(funcMap()).
		ParseFS(vfs.GetData(), ReportTemplateBasePath+"/*.md.tmpl")
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load templates from %s", ReportTemplateBasePath)
	}
	return tmpl, nil
}

// Render produces the Markdown document of the run.
func Render(run *summary.TestRun, cfg *Config) (string, error) {
	var buf bytes.Buffer
	if err := RenderTo(&buf, run, cfg); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderTo writes the Markdown document of the run to w.
func RenderTo(w io.Writer, run *summary.TestRun, cfg *Config) error {
	tmpl, err := loadTemplates()
	if err != nil {
		return err
	}

	if cfg.IncludeFrontMatter {
		fm, err := FrontMatter(run, cfg)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, fm); err != nil {
			return errors.Wrap(err, "unable to write front matter")
		}
	}

	if err := tmpl.ExecuteTemplate(w, reportTemplateName, Populate(run, cfg)); err != nil {
		return errors.Wrap(err, "unable to process report template")
	}
	return nil
}

// FrontMatter returns the YAML header, delimiters and trailing blank line
// included, used by static site generators to index the report.
func FrontMatter(run *summary.TestRun, cfg *Config) (string, error) {
	title := cfg.Title
	if title == "" {
		title = DefaultTitle
	}
	ts := cfg.GeneratedAt.UTC()

	fm := yaml.MapSlice{
		{Key: "title", Value: fmt.Sprintf("%s %s %s", run.Summary.Outcome.Marker(), title, ts.Format(frontMatterTimestamp))},
		{Key: "date", Value: ts.Format(time.RFC3339)},
		{Key: "categories", Value: "test-report"},
		{Key: "excerpt_separator", Value: excerptSeparator},
	}
	if gi := cfg.Git; gi != nil {
		for _, kv := range []yaml.MapItem{
			{Key: "repository", Value: gi.Repository},
			{Key: "branch", Value: gi.Branch},
			{Key: "commit", Value: gi.Commit},
		} {
			if kv.Value != "" {
				fm = append(fm, kv)
			}
		}
	}

	buf, err := yaml.Marshal(fm)
	if err != nil {
		return "", errors.Wrap(err, "unable to marshal front matter")
	}
	return frontMatterDelimiter + string(buf) + frontMatterDelimiter + "\n", nil
}
