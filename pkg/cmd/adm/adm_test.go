package adm

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const events = `{ "type": "suite", "event": "started", "test_count": 4 }
{ "type": "test", "name": "registry::create", "event": "ok", "exec_time": 0.25 }
{ "type": "test", "name": "registry::delete", "event": "failed", "stdout": "thread panicked at src/lib.rs:1:1\nassertion failed: ok\n" }
{ "type": "test", "name": "net::connect", "event": "timeout" }
{ "type": "test", "event": "ignored", "name": "net::slow" }
{ "type": "test", "event": "started", "name": "hung" }
noise
`

func runAdm(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewCmdAdm()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func TestParseEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test-output.json")
	require.NoError(t, os.WriteFile(path, []byte(events), 0o644))

	out, err := runAdm(t, "", "parse-events", path)

	require.NoError(t, err)
	assert.Contains(t, out, "- Lines: 7\n- Ignored lines: 1\n")
	assert.Contains(t, out, "- Outcome: failed\n- Total: 4\n- Passed: 1\n- Failed: 2\n- Ignored: 1\n")
	assert.Contains(t, out, "- Expected: 4\n- Derived: true\n")
	assert.Contains(t, out, "- Failure tags: [total=2] [net=1 (50.00%)] [registry=1 (50.00%)]\n")
	assert.Contains(t, out, "- Error patterns: assertion( .+)? failed=1, panicked at=1\n")
	assert.Contains(t, out, "\n#> Passed tests (1): \nregistry::create\n")
	assert.Contains(t, out, "\n#> Failed tests (2): \nregistry::delete\nnet::connect (timeout)\n")
	assert.Contains(t, out, "\n#> Ignored tests (1): \nnet::slow\n")
	assert.Contains(t, out, "\n#> Incomplete tests (1): \nhung\n")
}

func TestParseEventsSkipLists(t *testing.T) {
	out, err := runAdm(t, events, "parse-events", "-", "--skip-passed", "--skip-failed", "--skip-ignored")

	require.NoError(t, err)
	assert.Contains(t, out, "- File: -\n")
	assert.NotContains(t, out, "Passed tests")
	assert.NotContains(t, out, "Failed tests")
	assert.NotContains(t, out, "Ignored tests")
}

func TestParseEventsMissingFile(t *testing.T) {
	_, err := runAdm(t, "", "parse-events", filepath.Join(t.TempDir(), "missing.json"))

	assert.ErrorContains(t, err, "unable to open input")
}

func TestParseJUnit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junit.xml")
	require.NoError(t, os.WriteFile(path, []byte(`<?xml version="1.0" encoding="UTF-8"?>
<testsuites tests="2" disabled="0" errors="0" failures="1">
  <testsuite name="nightly" tests="2" skipped="0" failures="1">
    <properties><property name="outcome" value="failed"></property></properties>
    <testcase name="a"></testcase>
    <testcase name="b"><failure message="test failed"></failure></testcase>
  </testsuite>
</testsuites>`), 0o644))

	out, err := runAdm(t, "", "parse-junit", path, "--skip-skipped")

	require.NoError(t, err)
	assert.Contains(t, out, "- Total: 2\n- Pass: 1\n- Skipped: 0\n- Failures: 1\n")
	assert.Contains(t, out, "- Name: nightly\n")
	assert.Contains(t, out, "- Property: outcome=failed\n")
	assert.Contains(t, out, "\n#> Failed tests (1): \n\"b\"\n")
	assert.NotContains(t, out, "Skipped tests")
}
