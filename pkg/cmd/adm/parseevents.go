package adm

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/redhat-openshift-ecosystem/markdown-test-report/internal/mdtr/archive"
	"github.com/redhat-openshift-ecosystem/markdown-test-report/internal/mdtr/event"
	"github.com/redhat-openshift-ecosystem/markdown-test-report/internal/mdtr/summary"
)

type parseEventsInput struct {
	skipPassed  bool
	skipFailed  bool
	skipIgnored bool
}

func newParseEventsCmd() *cobra.Command {
	parseEventsArgs := parseEventsInput{}
	cmd := &cobra.Command{
		Use:     "parse-events FILE",
		Example: "markdown-test-report adm parse-events test-output.json",
		Short:   "Parse a JSON test output file and print what was recognized.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return parseEventsRun(cmd, args[0], &parseEventsArgs)
		},
	}
	cmd.Flags().BoolVar(&parseEventsArgs.skipPassed, "skip-passed", false, "Skip printing on stdout the passed test names.")
	cmd.Flags().BoolVar(&parseEventsArgs.skipFailed, "skip-failed", false, "Skip printing on stdout the failed test names.")
	cmd.Flags().BoolVar(&parseEventsArgs.skipIgnored, "skip-ignored", false, "Skip printing on stdout the ignored test names.")
	return cmd
}

func parseEventsRun(cmd *cobra.Command, file string, opts *parseEventsInput) error {
	var src io.ReadCloser
	var err error
	if file == archive.StdinName {
		src, err = archive.Decompress(io.NopCloser(cmd.InOrStdin()), "")
	} else {
		src, err = archive.Open(file)
	}
	if err != nil {
		return err
	}
	defer src.Close()

	logger := log.StandardLogger()
	parser := event.NewParser(src, logger)
	run, err := summary.Aggregate(parser, logger)
	if err != nil {
		return errors.Wrapf(err, "error parsing events file %s", file)
	}

	out := cmd.OutOrStdout()
	s := run.Summary
	fmt.Fprintln(out, "Summary:")
	fmt.Fprintf(out, "- File: %s\n", file)
	fmt.Fprintf(out, "- Lines: %d\n", parser.Lines())
	fmt.Fprintf(out, "- Ignored lines: %d\n", parser.Skipped())
	fmt.Fprintf(out, "- Outcome: %s\n", s.Outcome)
	fmt.Fprintf(out, "- Total: %d\n", s.Total)
	fmt.Fprintf(out, "- Passed: %d\n", s.Passed)
	fmt.Fprintf(out, "- Failed: %d\n", s.Failed)
	fmt.Fprintf(out, "- Ignored: %d\n", s.Ignored)
	fmt.Fprintf(out, "- Measured: %d\n", s.Measured)
	fmt.Fprintf(out, "- Filtered out: %d\n", s.FilteredOut)
	if s.Elapsed != nil {
		fmt.Fprintf(out, "- Duration: %.3fs\n", *s.Elapsed)
	}
	if run.Expected != nil {
		fmt.Fprintf(out, "- Expected: %d\n", *run.Expected)
	}
	fmt.Fprintf(out, "- Derived: %t\n", s.Derived)

	tags := summary.NewFailureTags(run)
	if tags.HasTags() {
		fmt.Fprintf(out, "- Failure tags: %s\n", tags.ShowSorted())
	}
	var counters *archive.ErrorCounter
	for _, rec := range run.Failures() {
		ec := archive.NewErrorCounter(rec.Stdout, archive.CommonErrorPatterns)
		counters = archive.MergeErrorCounters(counters, &ec)
	}
	if counters != nil && counters.Total() > 0 {
		patterns := []string{}
		for _, p := range counters.Patterns() {
			patterns = append(patterns, fmt.Sprintf("%s=%d", p, (*counters)[p]))
		}
		fmt.Fprintf(out, "- Error patterns: %s\n", strings.Join(patterns, ", "))
	}

	passed, failed, ignored := []string{}, []string{}, []string{}
	for _, rec := range run.Tests {
		switch rec.Outcome {
		case summary.OutcomeOk:
			passed = append(passed, rec.Name)
		case summary.OutcomeFailed:
			failed = append(failed, rec.Name)
		case summary.OutcomeTimeout:
			failed = append(failed, rec.Name+" (timeout)")
		case summary.OutcomeIgnored:
			ignored = append(ignored, rec.Name)
		}
	}

	if !opts.skipPassed {
		fmt.Fprintf(out, "\n#> Passed tests (%d): \n%s\n", len(passed), strings.Join(passed, "\n"))
	}
	if !opts.skipFailed {
		fmt.Fprintf(out, "\n#> Failed tests (%d): \n%s\n", len(failed), strings.Join(failed, "\n"))
	}
	if !opts.skipIgnored {
		fmt.Fprintf(out, "\n#> Ignored tests (%d): \n%s\n", len(ignored), strings.Join(ignored, "\n"))
	}
	if len(run.Incomplete) > 0 {
		fmt.Fprintf(out, "\n#> Incomplete tests (%d): \n%s\n", len(run.Incomplete), strings.Join(run.Incomplete, "\n"))
	}
	return nil
}
