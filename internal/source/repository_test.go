package source

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricesearch/bugeval/internal/config"
	"github.com/ricesearch/bugeval/internal/pkg/errors"
)

// commitFile writes content to path inside the worktree and commits it.
func commitFile(t *testing.T, repo *git.Repository, dir, path, content string) string {
	t.Helper()

	full := filepath.Join(dir, filepath.FromSlash(path))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(path)
	require.NoError(t, err)

	hash, err := wt.Commit("update "+path, &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash.String()
}

func newTestRepo(t *testing.T) (dir string, repo *git.Repository) {
	t.Helper()
	dir = t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return dir, repo
}

func TestGitRepository_ReadFileAtCommit(t *testing.T) {
	dir, repo := newTestRepo(t)
	first := commitFile(t, repo, dir, "src/a/Foo.java", "class Foo { void bar() { old(); } }")
	second := commitFile(t, repo, dir, "src/a/Foo.java", "class Foo { void bar() { fixed(); } }")

	g, err := OpenGitRepository(dir)
	require.NoError(t, err)
	ctx := context.Background()

	data, err := g.ReadFile(ctx, first, "src/a/Foo.java")
	require.NoError(t, err)
	assert.Contains(t, string(data), "old()")

	data, err = g.ReadFile(ctx, second, "src/a/Foo.java")
	require.NoError(t, err)
	assert.Contains(t, string(data), "fixed()")
}

func TestGitRepository_Errors(t *testing.T) {
	dir, repo := newTestRepo(t)
	commit := commitFile(t, repo, dir, "src/a/Foo.java", "class Foo {}")

	g, err := OpenGitRepository(dir)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = g.ReadFile(ctx, commit, "src/a/Missing.java")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrFileNotFound))
	assert.True(t, errors.IsNotFound(err))

	_, err = g.ReadFile(ctx, "0000000000000000000000000000000000000000", "src/a/Foo.java")
	require.Error(t, err)
	assert.Equal(t, errors.CodeSource, errors.CodeOf(err))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = g.ReadFile(cancelled, commit, "src/a/Foo.java")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenGitRepository_NotARepo(t *testing.T) {
	_, err := OpenGitRepository(t.TempDir())
	require.Error(t, err)
	assert.Equal(t, errors.CodeSource, errors.CodeOf(err))
}

func TestDirRepository(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "a"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "a", "Foo.java"), []byte("class Foo {}"), 0644))

	d := NewDirRepository(root)
	ctx := context.Background()

	data, err := d.ReadFile(ctx, "ignored", "src/a/Foo.java")
	require.NoError(t, err)
	assert.Equal(t, "class Foo {}", string(data))

	_, err = d.ReadFile(ctx, "ignored", "src/a/Bar.java")
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = d.ReadFile(ctx, "ignored", "../outside.java")
	assert.True(t, errors.IsValidation(err))
}

func TestOpenRepository(t *testing.T) {
	repo, err := OpenRepository(config.RepositoryConfig{RepoPath: t.TempDir(), Source: "dir"})
	require.NoError(t, err)
	assert.IsType(t, &DirRepository{}, repo)

	_, err = OpenRepository(config.RepositoryConfig{RepoPath: t.TempDir(), Source: "svn"})
	assert.True(t, errors.IsValidation(err))
}
