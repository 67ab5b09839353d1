package adm

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	mdtrapi "github.com/redhat-openshift-ecosystem/markdown-test-report/pkg/api"
)

type parseJUnitInput struct {
	skipFailed  bool
	skipPassed  bool
	skipSkipped bool
}

func newParseJUnitCmd() *cobra.Command {
	parseJUnitArgs := parseJUnitInput{}
	cmd := &cobra.Command{
		Use:     "parse-junit FILE",
		Example: "markdown-test-report adm parse-junit junit.xml",
		Short:   "Parse JUnit file.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return parseJUnitRun(cmd, args[0], &parseJUnitArgs)
		},
	}
	cmd.Flags().BoolVar(&parseJUnitArgs.skipFailed, "skip-failed", false, "Skip printing on stdout the failed test names.")
	cmd.Flags().BoolVar(&parseJUnitArgs.skipPassed, "skip-passed", false, "Skip printing on stdout the passed test names.")
	cmd.Flags().BoolVar(&parseJUnitArgs.skipSkipped, "skip-skipped", false, "Skip printing on stdout the skipped test names.")
	return cmd
}

func parseJUnitRun(cmd *cobra.Command, junitFile string, opts *parseJUnitInput) error {
	parser, err := mdtrapi.NewJUnitXMLParser(junitFile)
	if err != nil {
		return fmt.Errorf("error parsing JUnit file: %v", err)
	}
	out := cmd.OutOrStdout()

	// Printing summary
	fmt.Fprintln(out, "Summary:")
	fmt.Fprintf(out, "- File: %s\n", parser.XMLFile)
	fmt.Fprintf(out, "- Total: %d\n", parser.Counters.Total)
	fmt.Fprintf(out, "- Pass: %d\n", parser.Counters.Pass)
	fmt.Fprintf(out, "- Skipped: %d\n", parser.Counters.Skipped)
	fmt.Fprintf(out, "- Failures: %d\n", parser.Counters.Failures)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "JUnit Attributes:")
	fmt.Fprintf(out, "- Name: %s\n", parser.Parsed.Name)
	fmt.Fprintf(out, "- Tests: %d\n", parser.Parsed.Tests)
	fmt.Fprintf(out, "- Skipped: %d\n", parser.Parsed.Skipped)
	fmt.Fprintf(out, "- Failures: %d\n", parser.Parsed.Failures)
	fmt.Fprintf(out, "- Time: %s\n", parser.Parsed.Time)
	if parser.Parsed.Properties != nil {
		for _, prop := range parser.Parsed.Properties.Property {
			fmt.Fprintf(out, "- Property: %s=%s\n", prop.Name, prop.Value)
		}
	}

	passed := []string{}
	skipped := []string{}
	for _, testcase := range parser.Cases {
		if testcase.Status == mdtrapi.TestStatusPass {
			passed = append(passed, testcase.Name)
		}
		if testcase.Status == mdtrapi.TestStatusSkipped {
			skipped = append(skipped, testcase.Name)
		}
	}

	if !opts.skipPassed {
		fmt.Fprintf(out, "\n#> Passed tests (%d): \n%s\n", len(passed), strings.Join(passed, "\n"))
	}
	if !opts.skipFailed {
		fmt.Fprintf(out, "\n#> Failed tests (%d): \n%s\n", len(parser.Failures), strings.Join(parser.Failures, "\n"))
	}
	if !opts.skipSkipped {
		fmt.Fprintf(out, "\n#> Skipped tests (%d): \n%s\n", len(skipped), strings.Join(skipped, "\n"))
	}
	return nil
}
