package git

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// DefaultRevision is used when no revision is given
const DefaultRevision = "HEAD"

// RealClient implements Client using go-git
type RealClient struct{}

// NewClient creates a new RealClient
func NewClient() *RealClient {
	return &RealClient{}
}

// ReadFile returns the contents of path at rev
func (c *RealClient) ReadFile(ctx context.Context, repoPath, rev, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree, prefix, err := c.tree(repoPath, rev)
	if err != nil {
		return nil, err
	}

	full := path.Join(prefix, p)
	f, err := tree.File(full)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, fmt.Errorf("%w: %s@%s", ErrFileNotFound, full, revOrHead(rev))
		}
		return nil, err
	}

	contents, err := f.Contents()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", full, err)
	}
	return []byte(contents), nil
}

// ListFiles returns the names of regular files directly under dir at rev
func (c *RealClient) ListFiles(ctx context.Context, repoPath, rev, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree, prefix, err := c.tree(repoPath, rev)
	if err != nil {
		return nil, err
	}

	if sub := path.Join(prefix, dir); sub != "." && sub != "" {
		tree, err = tree.Tree(sub)
		if err != nil {
			if errors.Is(err, object.ErrDirectoryNotFound) {
				return nil, fmt.Errorf("%w: %s@%s", ErrFileNotFound, sub, revOrHead(rev))
			}
			return nil, err
		}
	}

	var names []string
	for _, e := range tree.Entries {
		if e.Mode.IsFile() {
			names = append(names, e.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// tree opens the repository containing repoPath and returns the tree of rev
// together with repoPath relative to the work tree root.
func (c *RealClient) tree(repoPath, rev string) (*object.Tree, string, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, "", err
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, "", fmt.Errorf("open repository at %s: %w", repoPath, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, "", fmt.Errorf("open worktree at %s: %w", repoPath, err)
	}

	prefix, err := relativeTo(wt.Filesystem.Root(), abs)
	if err != nil {
		return nil, "", err
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(revOrHead(rev)))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", ErrRevisionNotFound, revOrHead(rev), err)
	}

	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, "", fmt.Errorf("load commit %s: %w", hash, err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, "", fmt.Errorf("load tree of %s: %w", hash, err)
	}
	return tree, prefix, nil
}

func relativeTo(root, p string) (string, error) {
	if r, err := filepath.EvalSymlinks(root); err == nil {
		root = r
	}
	if r, err := filepath.EvalSymlinks(p); err == nil {
		p = r
	}
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return "", nil
	}
	return rel, nil
}

func revOrHead(rev string) string {
	if rev == "" {
		return DefaultRevision
	}
	return rev
}
