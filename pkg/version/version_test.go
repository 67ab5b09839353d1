package version

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionString(t *testing.T) {
	vc := VersionContext{Name: "markdown-test-report", Version: "v1.2.0", Commit: "abc123"}

	assert.Equal(t, "markdown-test-report: v1.2.0+abc123", vc.String())
}

func TestNewCmdVersion(t *testing.T) {
	var out bytes.Buffer
	cmd := NewCmdVersion()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "markdown-test-report: unknown+unknown\n")
	assert.Contains(t, out.String(), "Go: go")
}
