// Package report renders an aggregated test run as a Markdown document.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/samber/lo"

	"github.com/redhat-openshift-ecosystem/markdown-test-report/internal/mdtr/archive"
	"github.com/redhat-openshift-ecosystem/markdown-test-report/internal/mdtr/summary"
)

const (
	DefaultTitle = "Test Result"

	// missingValue is rendered wherever a value was not reported.
	missingValue = "-"
)

// Config holds everything the renderer needs besides the test run, so the
// output depends only on its inputs.
type Config struct {
	IncludeFrontMatter bool
	SummaryOnly        bool

	// Git is nil when repository metadata is unavailable or disabled.
	Git *GitInfo

	// GeneratedAt stamps the front matter.
	GeneratedAt time.Time

	// JobURL links the CI job which produced the run, when known.
	JobURL string

	Title string
}

// GitInfo is the repository metadata shown in the report header.
type GitInfo struct {
	Repository string
	Branch     string
	Commit     string
	Remote     string
	Ref        string
	Author     string
	Date       string
	Message    string
}

// MessageLines returns the commit message lines without trailing blanks.
func (gi *GitInfo) MessageLines() []string {
	msg := strings.TrimRight(gi.Message, "\n ")
	if msg == "" {
		return nil
	}
	return strings.Split(msg, "\n")
}

// Report is the view of a test run consumed by the templates.
type Report struct {
	Summary     *ReportSummary
	Git         *GitInfo
	JobURL      string
	SummaryOnly bool
	Timing      *ReportTiming
	FailureTags string
	Tests       []*ReportTest
	Incomplete  []string
}

type ReportSummary struct {
	Status      string
	Total       uint64
	Passed      uint64
	Failed      uint64
	Ignored     uint64
	Measured    uint64
	FilteredOut uint64
	Duration    string
}

// ReportTiming describes the distribution of the measured test durations.
type ReportTiming struct {
	Count  int
	Min    string
	Median string
	Mean   string
	P90    string
	Max    string
}

type ReportTest struct {
	Name       string
	Status     string
	Heading    string
	Anchor     string
	Duration   string
	Message    string
	ErrorHints string
	Stdout     string
}

// Populate builds the template view of the run.
func Populate(run *summary.TestRun, cfg *Config) *Report {
	re := &Report{
		Summary: &ReportSummary{
			Status:      status(run.Summary.Outcome),
			Total:       run.Summary.Total,
			Passed:      run.Summary.Passed,
			Failed:      run.Summary.Failed,
			Ignored:     run.Summary.Ignored,
			Measured:    run.Summary.Measured,
			FilteredOut: run.Summary.FilteredOut,
			Duration:    formatElapsed(run.Summary.Elapsed),
		},
		Git:         cfg.Git,
		JobURL:      cfg.JobURL,
		SummaryOnly: cfg.SummaryOnly,
	}
	if cfg.SummaryOnly {
		return re
	}

	re.Timing = populateTiming(run.Tests)
	if tags := summary.NewFailureTags(run); tags.HasTags() {
		re.FailureTags = tags.ShowSorted()
	}
	re.Incomplete = run.Incomplete

	anchors := anchorSet{}
	re.Tests = make([]*ReportTest, 0, len(run.Tests))
	for _, rec := range run.Tests {
		// the anchor follows the heading text as displayed
		heading := fmt.Sprintf("%s %s", rec.Outcome.Marker(), foldLines(rec.Name))
		rt := &ReportTest{
			Name:     rec.Name,
			Status:   status(rec.Outcome),
			Heading:  heading,
			Anchor:   anchors.unique(heading),
			Duration: formatElapsed(rec.Elapsed),
		}
		if rec.Message != nil {
			rt.Message = *rec.Message
		}
		if rec.Stdout != nil {
			rt.Stdout = strings.TrimRight(*rec.Stdout, "\n")
			rt.ErrorHints = errorHints(rec.Stdout)
		}
		re.Tests = append(re.Tests, rt)
	}
	return re
}

func status(o summary.Outcome) string {
	return fmt.Sprintf("%s %s", o.Marker(), o)
}

func formatElapsed(elapsed *float64) string {
	if elapsed == nil {
		return missingValue
	}
	return formatSeconds(*elapsed)
}

func formatSeconds(s float64) string {
	return fmt.Sprintf("%.3fs", s)
}

// populateTiming returns nil when no test reported a duration.
func populateTiming(tests []summary.TestRecord) *ReportTiming {
	data := stats.Float64Data(lo.FilterMap(tests, func(rec summary.TestRecord, _ int) (float64, bool) {
		if rec.Elapsed == nil {
			return 0, false
		}
		return *rec.Elapsed, true
	}))
	if data.Len() == 0 {
		return nil
	}

	// errors are only returned for empty input.
	fastest, _ := stats.Min(data)
	median, _ := stats.Median(data)
	mean, _ := stats.Mean(data)
	p90, _ := stats.Percentile(data, 90)
	slowest, _ := stats.Max(data)

	return &ReportTiming{
		Count:  data.Len(),
		Min:    formatSeconds(fastest),
		Median: formatSeconds(median),
		Mean:   formatSeconds(mean),
		P90:    formatSeconds(p90),
		Max:    formatSeconds(slowest),
	}
}

// errorHints summarizes the failure signatures found in the test output.
func errorHints(stdout *string) string {
	counter := archive.NewErrorCounter(stdout, archive.CommonErrorPatterns)
	if counter == nil {
		return ""
	}
	hints := []string{}
	for _, pattern := range counter.Patterns() {
		hints = append(hints, fmt.Sprintf("`%s` (%d)", pattern, counter[pattern]))
	}
	return strings.Join(hints, ", ")
}
