// Package git reads the repository metadata shown in the report header.
package git

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	giturl "github.com/kubescape/go-git-url"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/redhat-openshift-ecosystem/markdown-test-report/internal/mdtr/logging"
)

const defaultRemote = "origin"

// RepoInfo describes the state of a local repository.
type RepoInfo struct {
	LocalRepoPath string

	// RepoURL is the first URL of the origin remote, empty without one.
	RepoURL   string
	RepoOwner string
	RepoName  string
	RepoHost  string

	// Ref is the full name HEAD points to, or "HEAD" when detached.
	Ref    string
	Branch string

	// Commit fields are empty on a repository without commits.
	Commit  string
	Author  string
	Date    time.Time
	Message string
}

// GetLocalRepo opens the repository containing path.
func GetLocalRepo(path string) (*git.Repository, error) {
	localRepo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open git repository at %s", path)
	}
	return localRepo, nil
}

// GetRepoInfo collects the remote, HEAD and commit metadata of the
// repository containing path.
func GetRepoInfo(path string, logger log.FieldLogger) (*RepoInfo, error) {
	logger = logging.OrDiscard(logger)

	localRepo, err := GetLocalRepo(path)
	if err != nil {
		return nil, err
	}

	info := &RepoInfo{LocalRepoPath: path}
	if wt, err := localRepo.Worktree(); err == nil {
		info.LocalRepoPath = wt.Filesystem.Root()
	}

	if err := info.loadRemote(localRepo, logger); err != nil {
		return nil, err
	}
	if err := info.loadHead(localRepo); err != nil {
		return nil, err
	}
	return info, nil
}

func (ri *RepoInfo) loadRemote(repo *git.Repository, logger log.FieldLogger) error {
	remote, err := repo.Remote(defaultRemote)
	switch {
	case errors.Is(err, git.ErrRemoteNotFound):
		logger.Debugf("repository %s has no %s remote", ri.LocalRepoPath, defaultRemote)
	case err != nil:
		return errors.Wrapf(err, "unable to read remote %s", defaultRemote)
	case len(remote.Config().URLs) > 0:
		ri.RepoURL = remote.Config().URLs[0]
	}

	if ri.RepoURL != "" {
		gitURL, err := giturl.NewGitURL(ri.RepoURL)
		if err == nil {
			ri.RepoOwner = gitURL.GetOwnerName()
			ri.RepoName = gitURL.GetRepoName()
			ri.RepoHost = gitURL.GetHostName()
		} else {
			logger.Debugf("unable to parse remote url %s: %v", ri.RepoURL, err)
			ri.RepoName = nameFromURL(ri.RepoURL)
		}
	}
	if ri.RepoName == "" {
		ri.RepoName = filepath.Base(ri.LocalRepoPath)
	}
	return nil
}

func (ri *RepoInfo) loadHead(repo *git.Repository) error {
	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		// unborn branch, HEAD still names it
		sym, err := repo.Storer.Reference(plumbing.HEAD)
		if err == nil && sym.Type() == plumbing.SymbolicReference {
			ri.Ref = sym.Target().String()
			ri.Branch = sym.Target().Short()
		}
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "unable to resolve HEAD")
	}

	ri.Ref = head.Name().String()
	if head.Name().IsBranch() {
		ri.Branch = head.Name().Short()
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return errors.Wrapf(err, "unable to read commit %s", head.Hash())
	}
	ri.Commit = commit.Hash.String()
	ri.Author = fmt.Sprintf("%s <%s>", commit.Author.Name, commit.Author.Email)
	ri.Date = commit.Author.When
	ri.Message = commit.Message
	return nil
}

// nameFromURL takes the last path segment of a remote url.
func nameFromURL(url string) string {
	url = strings.TrimSuffix(strings.TrimRight(url, "/"), ".git")
	if idx := strings.LastIndexAny(url, "/:"); idx >= 0 {
		url = url[idx+1:]
	}
	return url
}
