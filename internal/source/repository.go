package source

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/ricesearch/bugeval/internal/config"
	"github.com/ricesearch/bugeval/internal/pkg/errors"
)

// ErrFileNotFound is wrapped by every error for a path missing at a commit.
var ErrFileNotFound = stderrors.New("file does not exist at commit")

// Repository reads project files at a given commit.
type Repository interface {
	ReadFile(ctx context.Context, commit, path string) ([]byte, error)
}

// GitRepository reads files straight from a repository's object store. No
// worktree is checked out, so one repository can serve many commits at once.
type GitRepository struct {
	path string
	repo *git.Repository
	mu   sync.Mutex
}

// OpenGitRepository opens the git repository at path.
func OpenGitRepository(path string) (*GitRepository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, errors.SourceError(fmt.Sprintf("open repository %s", path), err)
	}
	return &GitRepository{path: path, repo: repo}, nil
}

// ReadFile returns the content of path in the tree of commit. commit may be a
// full or abbreviated hash or any revision go-git can resolve.
func (g *GitRepository) ReadFile(ctx context.Context, commit, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	hash, err := g.repo.ResolveRevision(plumbing.Revision(commit))
	if err != nil {
		return nil, errors.SourceError(fmt.Sprintf("resolve commit %s in %s", commit, g.path), err)
	}
	c, err := g.repo.CommitObject(*hash)
	if err != nil {
		return nil, errors.SourceError(fmt.Sprintf("load commit %s", commit), err)
	}

	f, err := c.File(filepath.ToSlash(path))
	if stderrors.Is(err, object.ErrFileNotFound) || stderrors.Is(err, object.ErrDirectoryNotFound) {
		return nil, errors.Wrap(errors.CodeNotFound, path, ErrFileNotFound).WithDetail("commit", commit)
	}
	if err != nil {
		return nil, errors.SourceError(fmt.Sprintf("read %s at %s", path, commit), err)
	}

	contents, err := f.Contents()
	if err != nil {
		return nil, errors.SourceError(fmt.Sprintf("read %s at %s", path, commit), err)
	}
	return []byte(contents), nil
}

// DirRepository reads files from a plain directory, typically a tree already
// checked out at the right commit. The commit argument is ignored.
type DirRepository struct {
	root string
}

// NewDirRepository creates a repository rooted at root.
func NewDirRepository(root string) *DirRepository {
	return &DirRepository{root: root}
}

// ReadFile reads root/path.
func (d *DirRepository) ReadFile(ctx context.Context, commit, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return nil, errors.ValidationError(fmt.Sprintf("path escapes repository: %s", path))
	}

	data, err := os.ReadFile(filepath.Join(d.root, clean))
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.CodeNotFound, path, ErrFileNotFound)
	}
	if err != nil {
		return nil, errors.SourceError(fmt.Sprintf("read %s", path), err)
	}
	return data, nil
}

// OpenRepository opens the repository described by cfg.
func OpenRepository(cfg config.RepositoryConfig) (Repository, error) {
	switch cfg.Source {
	case "dir":
		return NewDirRepository(cfg.RepoPath), nil
	case "git", "":
		return OpenGitRepository(cfg.RepoPath)
	default:
		return nil, errors.ValidationError(fmt.Sprintf("unknown repository source: %s", cfg.Source))
	}
}
