package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/redhat-openshift-ecosystem/markdown-test-report/internal/assets"
	"github.com/redhat-openshift-ecosystem/markdown-test-report/internal/ci"
	"github.com/redhat-openshift-ecosystem/markdown-test-report/internal/git"
	"github.com/redhat-openshift-ecosystem/markdown-test-report/internal/mdtr/archive"
	"github.com/redhat-openshift-ecosystem/markdown-test-report/internal/mdtr/event"
	"github.com/redhat-openshift-ecosystem/markdown-test-report/internal/mdtr/report"
	"github.com/redhat-openshift-ecosystem/markdown-test-report/internal/mdtr/summary"
	"github.com/redhat-openshift-ecosystem/markdown-test-report/internal/metrics"
	"github.com/redhat-openshift-ecosystem/markdown-test-report/internal/publish"
	"github.com/redhat-openshift-ecosystem/markdown-test-report/pkg/api"
)

const (
	DefaultInput  = "test-output.json"
	StdoutName    = "-"
	reportExt     = ".md"
	markdownMedia = "text/markdown; charset=utf-8"

	flagOutput        = "output"
	flagNoFrontMatter = "no-front-matter"
	flagSummary       = "summary"
	flagGit           = "git"
	flagNoGit         = "no-git"
	flagTitle         = "title"
	flagJUnit         = "junit"
	flagFailuresXlsx  = "failures-xlsx"
	flagS3Region      = "s3-region"
	flagDryRun        = "dry-run"
	flagTemplates     = "templates"
)

type Input struct {
	input         string
	output        string
	noFrontMatter bool
	summaryOnly   bool
	gitPath       string
	gitExplicit   bool
	noGit         bool
	title         string
	junit         string
	failuresXlsx  string
	s3Region      string
	dryRun        bool
	templatesDir  string
}

// newPublisher creates the S3 sink, replaced in tests.
var newPublisher = func(region string, dryRun bool, logger log.FieldLogger) (*publish.Publisher, error) {
	return publish.NewPublisher(region, dryRun, logger)
}

// NewCmdReport creates the report command, used as the root command of the CLI.
func NewCmdReport() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "markdown-test-report [INPUT]",
		Short: "Create a Markdown report from JSON test output.",
		Long: `Create a Markdown report from the line-delimited JSON events written by a test runner.
Lines which are not recognized events are ignored. INPUT defaults to ` + DefaultInput + `,
use - to read standard input. Files ending in .gz or .xz are decompressed.`,
		Example: `  cargo test -- -Z unstable-options --format json --report-time | tee test-output.json
  markdown-test-report
  markdown-test-report -s -o - test-output.json
  markdown-test-report --junit junit.xml -o s3://reports/main/latest.md test-output.json.gz`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			data := newInput(cmd, args)
			if err := processResult(cmd.Context(), data, cmd.InOrStdin(), cmd.OutOrStdout(), log.StandardLogger()); err != nil {
				return errors.Wrapf(err, "could not create report from %s", data.input)
			}
			return nil
		},
	}

	cmd.Flags().StringP(flagOutput, "o", "",
		"The name of the output file, - for stdout, or s3://bucket/key. Default: <input name>.md")
	cmd.Flags().BoolP(flagNoFrontMatter, "d", false, "Disable report metadata (front matter)")
	cmd.Flags().BoolP(flagSummary, "s", false, "Show only the summary section")
	cmd.Flags().StringP(flagGit, "g", ".", "Git top-level location")
	cmd.Flags().BoolP(flagNoGit, "n", false, "Disable extracting git information")
	cmd.Flags().String(flagTitle, report.DefaultTitle, "Title of the report in the front matter")
	cmd.Flags().String(flagJUnit, "", "Also save the test run as JUnit XML to this path")
	cmd.Flags().String(flagFailuresXlsx, "", "Also save the failed tests as a spreadsheet to this path")
	cmd.Flags().String(flagS3Region, publish.DefaultRegion, "Region of the bucket when the output is s3://")
	cmd.Flags().Bool(flagDryRun, false, "Do not upload to S3, only log the destination")
	cmd.Flags().String(flagTemplates, "", "Directory holding custom templates/report/*.md.tmpl")
	cmd.MarkFlagsMutuallyExclusive(flagGit, flagNoGit)

	for _, flag := range []string{
		flagOutput, flagNoFrontMatter, flagSummary, flagGit, flagNoGit, flagTitle,
		flagJUnit, flagFailuresXlsx, flagS3Region, flagDryRun, flagTemplates,
	} {
		if err := viper.BindPFlag(flag, cmd.Flags().Lookup(flag)); err != nil {
			log.Warnf("Unable to bind flag %s", flag)
		}
	}

	return cmd
}

// newInput reads the flags through viper, so config files and environment
// variables apply too.
func newInput(cmd *cobra.Command, args []string) *Input {
	data := &Input{
		input:         DefaultInput,
		output:        viper.GetString(flagOutput),
		noFrontMatter: viper.GetBool(flagNoFrontMatter),
		summaryOnly:   viper.GetBool(flagSummary),
		gitPath:       viper.GetString(flagGit),
		gitExplicit:   cmd.Flags().Changed(flagGit),
		noGit:         viper.GetBool(flagNoGit),
		title:         viper.GetString(flagTitle),
		junit:         viper.GetString(flagJUnit),
		failuresXlsx:  viper.GetString(flagFailuresXlsx),
		s3Region:      viper.GetString(flagS3Region),
		dryRun:        viper.GetBool(flagDryRun),
		templatesDir:  viper.GetString(flagTemplates),
	}
	if len(args) > 0 {
		data.input = args[0]
	}
	data.output = resolveOutput(data.input, data.output)
	return data
}

// resolveOutput returns the report destination: the explicit one, stdout when
// reading stdin, or the input file name with the .md extension.
func resolveOutput(input, output string) string {
	if output != "" {
		return output
	}
	if input == archive.StdinName {
		return StdoutName
	}
	stem := filepath.Base(input)
	for _, ext := range []string{".gz", ".xz"} {
		stem = strings.TrimSuffix(stem, ext)
	}
	return strings.TrimSuffix(stem, filepath.Ext(stem)) + reportExt
}

// processResult reads the test output and writes the report and exports.
func processResult(ctx context.Context, input *Input, stdin io.Reader, stdout io.Writer, logger log.FieldLogger) error {
	timers := metrics.NewTimers()
	timers.Add("total")
	logger.Debugf("Reading from: %s", input.input)
	logger.Debugf("Writing to: %s", input.output)

	if input.templatesDir != "" {
		assets.UpdateData(os.DirFS(input.templatesDir))
	}

	timers.Set("parse")
	run, err := readRun(input, stdin, logger)
	if err != nil {
		return err
	}

	timers.Set("metadata")
	cfg := &report.Config{
		IncludeFrontMatter: !input.noFrontMatter,
		SummaryOnly:        input.summaryOnly,
		Git:                gitInfo(input, logger),
		GeneratedAt:        time.Now().UTC(),
		JobURL:             ci.JobURL(nil),
		Title:              input.title,
	}

	timers.Set("render")
	var buf bytes.Buffer
	if err := report.RenderTo(&buf, run, cfg); err != nil {
		return err
	}

	timers.Set("write")
	if err := writeReport(ctx, input, run, buf.Bytes(), stdout, logger); err != nil {
		return err
	}

	timers.Set("export")
	if err := exportRun(input, run, logger); err != nil {
		return err
	}
	timers.Add("export")
	timers.Add("total")

	logger.Debugf("Timers: %s", timers.String())
	return nil
}

func readRun(input *Input, stdin io.Reader, logger log.FieldLogger) (*summary.TestRun, error) {
	var src io.ReadCloser
	var err error
	if input.input == archive.StdinName {
		src, err = archive.Decompress(io.NopCloser(stdin), "")
	} else {
		src, err = archive.Open(input.input)
	}
	if err != nil {
		return nil, err
	}
	defer src.Close()

	parser := event.NewParser(src, logger)
	run, err := summary.Aggregate(parser, logger)
	if err != nil {
		return nil, err
	}
	logger.Infof("Read %d lines, %d ignored, %d tests", parser.Lines(), parser.Skipped(), len(run.Tests))
	return run, nil
}

// gitInfo collects the repository metadata. Failures are never fatal, and
// only reported above debug level when a path was asked for explicitly.
func gitInfo(input *Input, logger log.FieldLogger) *report.GitInfo {
	if input.noGit {
		return nil
	}
	ri, err := git.GetRepoInfo(input.gitPath, logger)
	if err != nil {
		if input.gitExplicit {
			logger.Warnf("Skipping git information: %v", err)
		} else {
			logger.Debugf("Skipping git information: %v", err)
		}
		return nil
	}

	gi := &report.GitInfo{
		Repository: ri.RepoName,
		Branch:     ri.Branch,
		Commit:     ri.Commit,
		Remote:     ri.RepoURL,
		Ref:        ri.Ref,
		Author:     ri.Author,
		Message:    ri.Message,
	}
	if !ri.Date.IsZero() {
		gi.Date = ri.Date.Format(time.RFC1123Z)
	}
	return gi
}

func writeReport(ctx context.Context, input *Input, run *summary.TestRun, buf []byte, stdout io.Writer, logger log.FieldLogger) error {
	switch {
	case input.output == StdoutName:
		if _, err := stdout.Write(buf); err != nil {
			return errors.Wrap(err, "unable to write report to stdout")
		}
	case publish.IsS3URI(input.output):
		loc, err := publish.ParseLocation(input.output)
		if err != nil {
			return err
		}
		publisher, err := newPublisher(input.s3Region, input.dryRun, logger)
		if err != nil {
			return err
		}
		_, err = publisher.Publish(ctx, &publish.Object{
			Location:    loc,
			Body:        bytes.NewReader(buf),
			ContentType: markdownMedia,
			Metadata: map[string]string{
				"outcome": string(run.Summary.Outcome),
				"total":   fmt.Sprintf("%d", run.Summary.Total),
				"failed":  fmt.Sprintf("%d", run.Summary.Failed),
			},
		})
		if err != nil {
			return err
		}
	default:
		if err := os.WriteFile(input.output, buf, 0644); err != nil {
			return errors.Wrapf(err, "unable to write report %s", input.output)
		}
		logger.Infof("Report saved to %s", input.output)
	}
	return nil
}

func exportRun(input *Input, run *summary.TestRun, logger log.FieldLogger) error {
	if input.junit != "" {
		if err := api.NewJUnitFromRun(run, "").Save(input.junit); err != nil {
			return err
		}
		logger.Infof("JUnit saved to %s", input.junit)
	}
	if input.failuresXlsx != "" {
		if err := run.SaveFailuresIndex(input.failuresXlsx); err != nil {
			return err
		}
		logger.Infof("Failures index saved to %s", input.failuresXlsx)
	}
	return nil
}
