package data_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/redhat-openshift-ecosystem/markdown-test-report/data"
	efs "github.com/redhat-openshift-ecosystem/markdown-test-report/internal/assets"
)

// TestDataTemplatesReport asserts required report templates are present in EFS.
func TestDataTemplatesReport(t *testing.T) {
	type testCase struct {
		name   string
		assert func(tc *testCase)
	}
	cases := []testCase{
		{
			name: "report-templates-required",
			assert: func(tc *testCase) {
				want := []string{
					"templates/report/details.md.tmpl",
					"templates/report/report.md.tmpl",
					"templates/report/summary.md.tmpl",
				}
				got, err := efs.GetAllFilenames(efs.GetData(), "templates/report")
				if err != nil {
					t.Fatalf("failed to read efs: %v", err)
				}
				assert.Equal(t, want, got, "report template files are present")
			},
		},
		{
			name: "report-templates-readable",
			assert: func(tc *testCase) {
				templates, err := efs.GetAllFilenames(efs.GetData(), "templates/report")
				if err != nil {
					t.Fatalf("failed to read efs: %v", err)
				}
				for _, m := range templates {
					buf, err := efs.ReadFile(m)
					if err != nil {
						t.Fatalf("unable to read template %s: %v", m, err)
					}
					if len(buf) == 0 {
						t.Fatalf("empty template %s", m)
					}
				}
			},
		},
	}

	efs.UpdateData(data.Templates)

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.assert(&tc)
		})
	}
}
