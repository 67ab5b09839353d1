package ci

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobURL(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "github actions",
			env:  map[string]string{"GITHUB_REPOSITORY": "acme/widgets", "GITHUB_RUN_ID": "42"},
			want: "https://github.com/acme/widgets/actions/runs/42",
		},
		{
			name: "github enterprise",
			env: map[string]string{
				"GITHUB_REPOSITORY": "acme/widgets",
				"GITHUB_RUN_ID":     "42",
				"GITHUB_SERVER_URL": "https://git.example.com/",
			},
			want: "https://git.example.com/acme/widgets/actions/runs/42",
		},
		{
			name: "github without run id",
			env:  map[string]string{"GITHUB_REPOSITORY": "acme/widgets"},
			want: "",
		},
		{
			name: "gitlab",
			env:  map[string]string{"CI_JOB_URL": "https://gitlab.com/acme/widgets/-/jobs/7"},
			want: "https://gitlab.com/acme/widgets/-/jobs/7",
		},
		{
			name: "no ci",
			env:  map[string]string{},
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := JobURL(func(key string) string { return tc.env[key] })
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestJobURLDefaultsToProcessEnv(t *testing.T) {
	t.Setenv("GITHUB_REPOSITORY", "acme/widgets")
	t.Setenv("GITHUB_RUN_ID", "9")
	t.Setenv("GITHUB_SERVER_URL", "")

	assert.Equal(t, "https://github.com/acme/widgets/actions/runs/9", JobURL(nil))
}
