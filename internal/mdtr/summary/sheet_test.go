package summary

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"k8s.io/utils/ptr"

	"github.com/redhat-openshift-ecosystem/markdown-test-report/internal/mdtr/event"
)

func TestSaveFailuresIndex(t *testing.T) {
	run := aggregate(
		event.TestOk{Name: "fine"},
		event.TestFailed{Name: "broken", Elapsed: ptr.To(1.5)},
		event.TestTimeout{Name: "stuck"},
	)
	path := filepath.Join(t.TempDir(), "failures.xlsx")

	require.NoError(t, run.SaveFailuresIndex(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(failuresSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Index", "Test_Name", "Result", "Duration_Seconds", "Notes_Review"}, rows[0])
	assert.Equal(t, []string{"1", "broken", "failed", "1.5"}, rows[1])
	assert.Equal(t, []string{"2", "stuck", "timeout"}, rows[2])
}

func TestSaveFailuresIndexBadPath(t *testing.T) {
	run := aggregate(event.TestFailed{Name: "broken"})

	err := run.SaveFailuresIndex(filepath.Join(t.TempDir(), "missing", "dir", "f.xlsx"))

	assert.Error(t, err)
}
