package source

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricesearch/bugeval/internal/ast"
	"github.com/ricesearch/bugeval/internal/cache"
	"github.com/ricesearch/bugeval/internal/pkg/errors"
)

const fooJava = `package a;

public class Foo {
    public void bar() {
        first();
    }

    public void bar(int x) {
        second(x);
    }
}
`

type countingRepo struct {
	Repository
	reads int
}

func (c *countingRepo) ReadFile(ctx context.Context, commit, path string) ([]byte, error) {
	c.reads++
	return c.Repository.ReadFile(ctx, commit, path)
}

func newDirFixture(t *testing.T) *countingRepo {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "a"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "a", "Foo.java"), []byte(fooJava), 0644))
	return &countingRepo{Repository: NewDirRepository(root)}
}

func TestMethodResolver_Resolve(t *testing.T) {
	repo := newDirFixture(t)
	r := NewMethodResolver(repo, ast.NewExtractor(), nil, nil)

	ref, err := r.Resolve(context.Background(), "c1", "src.a.Foo.bar")
	require.NoError(t, err)
	assert.Equal(t, "src/a/Foo.java", ref.Path)
	assert.Equal(t, "bar", ref.Method)
	assert.Contains(t, ref.Body, "first();")
	assert.NotContains(t, ref.Body, "second(x)", "first overload only")
	assert.Equal(t, 4, ref.StartLine)
}

func TestMethodResolver_NotFound(t *testing.T) {
	repo := newDirFixture(t)
	r := NewMethodResolver(repo, ast.NewExtractor(), nil, nil)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "c1", "src.a.Foo.baz")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrMethodNotFound))
	assert.True(t, errors.IsNotFound(err))

	_, err = r.Resolve(ctx, "c1", "src.a.Missing.bar")
	assert.True(t, stderrors.Is(err, ErrFileNotFound))

	_, err = r.Resolve(ctx, "c1", "bar")
	assert.True(t, errors.IsValidation(err))
}

func TestMethodResolver_Cache(t *testing.T) {
	repo := newDirFixture(t)
	r := NewMethodResolver(repo, ast.NewExtractor(), cache.NewMemoryCache(10), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ref, err := r.Resolve(ctx, "c1", "src.a.Foo.bar")
		require.NoError(t, err)
		assert.Contains(t, ref.Body, "first();")
	}
	assert.Equal(t, 1, repo.reads, "file read once, then served from cache")

	_, err := r.Resolve(ctx, "c2", "src.a.Foo.bar")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.reads, "different commit is a different cache entry")
}
