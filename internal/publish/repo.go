package publish

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNotRepository means no git repository encloses the directory.
var ErrNotRepository = errors.New("not a git repository")

// Remote is a configured git remote.
type Remote struct {
	Name string   `json:"name"`
	URLs []string `json:"urls"`
}

// RepoInfo describes the repository enclosing a directory.
type RepoInfo struct {
	Root    string   `json:"root"`
	Branch  string   `json:"branch,omitempty"`
	Remotes []Remote `json:"remotes"`
	Clean   bool     `json:"clean"`
}

func open(dir string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, dir)
		}
		return nil, fmt.Errorf("could not open repository at %s: %w", dir, err)
	}
	return repo, nil
}

// Root returns the top-level directory of the working tree enclosing dir.
func Root(dir string) (string, error) {
	repo, err := open(dir)
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("could not open worktree: %w", err)
	}
	return wt.Filesystem.Root(), nil
}

// IsClean reports whether the working tree enclosing dir has no staged,
// modified or untracked files.
func IsClean(dir string) (bool, error) {
	repo, err := open(dir)
	if err != nil {
		return false, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("could not open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("could not read status: %w", err)
	}
	return status.IsClean(), nil
}

// Inspect returns the root, current branch, remotes and cleanliness of the
// repository enclosing dir.
func Inspect(dir string) (*RepoInfo, error) {
	repo, err := open(dir)
	if err != nil {
		return nil, err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("could not open worktree: %w", err)
	}
	info := &RepoInfo{Root: wt.Filesystem.Root()}

	head, err := repo.Head()
	switch {
	case err == nil:
		if head.Name().IsBranch() {
			info.Branch = head.Name().Short()
		}
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		// Unborn branch in a fresh repository.
	default:
		return nil, fmt.Errorf("could not resolve HEAD: %w", err)
	}

	remotes, err := repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("could not list remotes: %w", err)
	}
	for _, r := range remotes {
		cfg := r.Config()
		info.Remotes = append(info.Remotes, Remote{Name: cfg.Name, URLs: cfg.URLs})
	}

	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("could not read status: %w", err)
	}
	info.Clean = status.IsClean()

	return info, nil
}
