package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeAnchor(t *testing.T) {
	cases := map[string]string{
		"✅ tests::registry::test_registry_create_and_delete": "-testsregistrytest_registry_create_and_delete",
		"❌ Module::Mixed_Case":                              "-modulemixed_case",
		"⏭️ spaced  out\tname":                              "-spaced-out-name",
		"⏱️ a-b - c":                                        "-a-b-c",
		"plain":                                             "plain",
		"":                                                  "",
	}
	for heading, want := range cases {
		t.Run(heading, func(t *testing.T) {
			assert.Equal(t, want, MakeAnchor(heading))
		})
	}
}

func TestAnchorSetUnique(t *testing.T) {
	as := anchorSet{}

	got := []string{
		as.unique("✅ a::b"),
		as.unique("✅ ab"),
		as.unique("❌ a-b"),
		as.unique("❌ a::b"),
		as.unique("✅ -ab-1"),
	}

	assert.Equal(t, []string{"-ab", "-ab-1", "-a-b", "-ab-2", "-ab-1-1"}, got)
}
