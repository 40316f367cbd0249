package manifest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quantmind-br/manifestctl/internal/git"
	"github.com/quantmind-br/manifestctl/internal/utils"
)

// Source supplies manifest text by name. A manifest's file name is its name.
type Source interface {
	// Read returns the text of the named manifest
	Read(ctx context.Context, name string) ([]byte, error)
	// List returns the available manifest names in sorted order
	List(ctx context.Context) ([]string, error)
	// String describes the source for logs and messages
	String() string
}

// checkName rejects names that would escape the manifests directory
func checkName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || utils.IsHidden(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// DirSource reads manifests from a directory on disk
type DirSource struct {
	dir string
}

// NewDirSource creates a DirSource for dir
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: utils.ExpandPath(dir)}
}

// Dir returns the directory manifests are read from
func (s *DirSource) Dir() string {
	return s.dir
}

// Read returns the text of the named manifest
func (s *DirSource) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkName(name); err != nil {
		return nil, err
	}

	p := filepath.Join(s.dir, name)
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, p)
		}
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}
	return data, nil
}

// List returns the names of regular files in the directory, skipping hidden
// files and subdirectories
func (s *DirSource) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: directory %s", ErrManifestNotFound, s.dir)
		}
		return nil, fmt.Errorf("failed to list manifests: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || utils.IsHidden(e.Name()) || !e.Type().IsRegular() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *DirSource) String() string {
	return s.dir
}

// GitSource reads manifests from a directory of a git repository at a fixed
// revision, ignoring uncommitted changes in the work tree
type GitSource struct {
	client git.Client
	dir    string
	rev    string
}

// NewGitSource creates a GitSource. dir may be any directory inside a work
// tree; an empty rev means HEAD.
func NewGitSource(client git.Client, dir, rev string) *GitSource {
	if rev == "" {
		rev = git.DefaultRevision
	}
	return &GitSource{
		client: client,
		dir:    utils.ExpandPath(dir),
		rev:    rev,
	}
}

// Revision returns the revision manifests are read at
func (s *GitSource) Revision() string {
	return s.rev
}

// Read returns the text of the named manifest at the revision
func (s *GitSource) Read(ctx context.Context, name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	data, err := s.client.ReadFile(ctx, s.dir, s.rev, name)
	if err != nil {
		if errors.Is(err, git.ErrFileNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, s.describe(name))
		}
		return nil, err
	}
	return data, nil
}

// List returns the manifest names committed at the revision
func (s *GitSource) List(ctx context.Context) ([]string, error) {
	names, err := s.client.ListFiles(ctx, s.dir, s.rev, "")
	if err != nil {
		if errors.Is(err, git.ErrFileNotFound) {
			return nil, fmt.Errorf("%w: directory %s", ErrManifestNotFound, s.String())
		}
		return nil, err
	}

	out := make([]string, 0, len(names))
	for _, n := range names {
		if !utils.IsHidden(n) {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *GitSource) describe(name string) string {
	return path.Join(filepath.ToSlash(s.dir), name) + "@" + s.rev
}

func (s *GitSource) String() string {
	return s.dir + "@" + s.rev
}
