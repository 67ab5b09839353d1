// Package ci links a report to the CI job which produced it.
package ci

import (
	"os"
	"strings"
)

const defaultGitHubServerURL = "https://github.com"

// Getenv looks up an environment variable, os.Getenv by default.
type Getenv func(string) string

// JobURL returns the web address of the running CI job, or an empty string
// outside of a supported CI system.
func JobURL(getenv Getenv) string {
	if getenv == nil {
		getenv = os.Getenv
	}
	if url := gitHubJobURL(getenv); url != "" {
		return url
	}
	// GitLab exposes the job address directly.
	return getenv("CI_JOB_URL")
}

// gitHubJobURL builds the actions run address from the workflow environment.
func gitHubJobURL(getenv Getenv) string {
	repo := getenv("GITHUB_REPOSITORY")
	runID := getenv("GITHUB_RUN_ID")
	if repo == "" || runID == "" {
		return ""
	}

	serverURL := strings.TrimRight(getenv("GITHUB_SERVER_URL"), "/")
	if serverURL == "" {
		serverURL = defaultGitHubServerURL
	}
	return serverURL + "/" + repo + "/actions/runs/" + runID
}
