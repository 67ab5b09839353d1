package api

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"

	"github.com/redhat-openshift-ecosystem/markdown-test-report/internal/mdtr/event"
	"github.com/redhat-openshift-ecosystem/markdown-test-report/internal/mdtr/summary"
)

func TestNewJUnitXMLParser(t *testing.T) {
	// Create a fake JUnit XML file
	xmlFile := createFakeJUnitXMLFile(t, `<?xml version="1.0" encoding="UTF-8"?>
	<testsuite name="cargo-tests" tests="3" skipped="1" failures="1" time="2568">
		<properties>
			<property name="outcome" value="failed"></property>
		</properties>
		<testcase name="test_case_name_1" time="test_case_time_1">
			<system-out>test_case_system_out_1</system-out>
		</testcase>
		<testcase name="test_case_name_2" time="test_case_time_2">
			<system-out>test_case_system_out_2</system-out>
			<skipped message="test_case_skipped_message_2"/>
		</testcase>
		<testcase name="test_case_name_3" time="test_case_time_3">
			<system-out>test_case_system_out_3</system-out>
			<failure>test_case_failure_3</failure>
		</testcase>
	</testsuite>`)

	parser, err := NewJUnitXMLParser(xmlFile)
	assert.NoError(t, err)
	assert.NotNil(t, parser)

	// Assert the parsed test suite
	assert.Equal(t, "cargo-tests", parser.Parsed.Name)
	assert.Equal(t, 3, parser.Parsed.Tests)
	assert.Equal(t, 1, parser.Parsed.Skipped)
	assert.Equal(t, 1, parser.Parsed.Failures)
	require.NotNil(t, parser.Parsed.Properties)
	assert.Equal(t, []Property{{Name: "outcome", Value: "failed"}}, parser.Parsed.Properties.Property)

	// Assert the parsed test cases
	assert.Len(t, parser.Cases, 3)

	// Assert the pass test case
	assert.Equal(t, "test_case_name_1", parser.Cases[0].Name)
	assert.Equal(t, "test_case_time_1", parser.Cases[0].Time)
	assert.Equal(t, "test_case_system_out_1", parser.Cases[0].SystemOut)
	assert.Equal(t, TestStatusPass, parser.Cases[0].Status)

	// Assert the skipped test case
	assert.Equal(t, "test_case_name_2", parser.Cases[1].Name)
	assert.Equal(t, TestStatusSkipped, parser.Cases[1].Status)
	assert.Equal(t, "test_case_skipped_message_2", parser.Cases[1].Skipped.Message)

	// Assert the failed test case
	assert.Equal(t, "test_case_name_3", parser.Cases[2].Name)
	assert.Equal(t, TestStatusFail, parser.Cases[2].Status)
	assert.Equal(t, "test_case_failure_3", parser.Cases[2].Failure.Text)
	assert.Equal(t, []string{`"test_case_name_3"`}, parser.Failures)

	// Assert the counters
	assert.Equal(t, 3, parser.Counters.Total)
	assert.Equal(t, 1, parser.Counters.Skipped)
	assert.Equal(t, 1, parser.Counters.Failures)
	assert.Equal(t, 1, parser.Counters.Pass)
}

func TestNewJUnitXMLParserErrors(t *testing.T) {
	_, err := NewJUnitXMLParser(filepath.Join(t.TempDir(), "missing.xml"))
	assert.ErrorContains(t, err, "error reading XML file")

	_, err = NewJUnitXMLParser(createFakeJUnitXMLFile(t, "<not-junit"))
	assert.ErrorContains(t, err, "error parsing XML data")
}

func sampleRun() *summary.TestRun {
	a := summary.NewAggregator(nil)
	for _, ev := range []event.Event{
		event.SuiteStarted{TestCount: 5},
		event.TestOk{Name: "registry::create", Elapsed: ptr.To(0.5)},
		event.TestFailed{Name: "registry::delete", Elapsed: ptr.To(1.25), Stdout: ptr.To("panicked at <x>")},
		event.TestIgnored{Name: "net::slow", Message: ptr.To("needs network")},
		event.TestTimeout{Name: "stuck"},
		event.TestStarted{Name: "hung"},
	} {
		a.Add(ev)
	}
	return a.Result()
}

func TestNewJUnitFromRun(t *testing.T) {
	doc := NewJUnitFromRun(sampleRun(), "")

	assert.Equal(t, 4, doc.Tests)
	assert.Equal(t, 2, doc.Failures)
	assert.Equal(t, "1.750", doc.Time)

	suite := doc.TestSuite
	assert.Equal(t, DefaultSuiteName, suite.Name)
	assert.Equal(t, 1, suite.Skipped)
	assert.Equal(t, []Property{
		{Name: "outcome", Value: "failed"},
		{Name: "expected", Value: "5"},
		{Name: "incomplete", Value: "hung"},
	}, suite.Properties.Property)

	require.Len(t, suite.TestCases, 4)
	assert.Equal(t, TestCase{Name: "registry::create", Classname: "registry", Time: "0.500"}, suite.TestCases[0])
	assert.Equal(t, &Failure{Message: "test failed", Type: "failed"}, suite.TestCases[1].Failure)
	assert.Equal(t, "panicked at <x>", suite.TestCases[1].SystemOut)
	assert.Equal(t, &Skipped{Message: "needs network"}, suite.TestCases[2].Skipped)
	assert.Equal(t, &Failure{Message: "test timed out", Type: "timeout"}, suite.TestCases[3].Failure)
	assert.Empty(t, suite.TestCases[3].Classname)
	assert.Empty(t, suite.TestCases[3].Time)
}

func TestJUnitSaveAndParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junit.xml")

	require.NoError(t, NewJUnitFromRun(sampleRun(), "nightly").Save(path))

	parser, err := NewJUnitXMLParser(path)
	require.NoError(t, err)
	assert.Equal(t, "nightly", parser.Parsed.Name)
	assert.Equal(t, &JUnitCounter{Total: 4, Skipped: 1, Failures: 2, Pass: 1}, parser.Counters)
	assert.Equal(t, []string{`"registry::delete"`, `"stuck"`}, parser.Failures)
	assert.Equal(t, "panicked at <x>", parser.Cases[1].SystemOut)
}

func TestJUnitWrite(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewJUnitFromRun(sampleRun(), "").Write(&buf))

	out := buf.String()
	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, out, `<testsuites tests="4" disabled="0" errors="0" failures="2" time="1.750">`)
	assert.Contains(t, out, `<system-out>panicked at &lt;x&gt;</system-out>`)
	assert.NotContains(t, out, "<failure></failure>")
}

func createFakeJUnitXMLFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "junit.xml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
