package source

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/ricesearch/bugeval/internal/ast"
	"github.com/ricesearch/bugeval/internal/cache"
	"github.com/ricesearch/bugeval/internal/matching"
	"github.com/ricesearch/bugeval/internal/pkg/errors"
	"github.com/ricesearch/bugeval/internal/pkg/hash"
	"github.com/ricesearch/bugeval/internal/pkg/logger"
)

// ErrMethodNotFound is wrapped when a file holds no method of the wanted name.
var ErrMethodNotFound = stderrors.New("method not found in file")

// Reference is the ground-truth method body a candidate is scored against.
type Reference struct {
	Path      string
	Method    string
	Body      string
	StartLine int
	EndLine   int
}

// MethodResolver maps ground-truth method names to their bodies at a commit.
type MethodResolver struct {
	repo      Repository
	extractor ast.Extractor
	cache     cache.Cache // optional
	log       *logger.Logger
}

// NewMethodResolver creates a resolver. c may be nil to disable caching.
func NewMethodResolver(repo Repository, extractor ast.Extractor, c cache.Cache, log *logger.Logger) *MethodResolver {
	if log == nil {
		log = logger.Discard()
	}
	return &MethodResolver{repo: repo, extractor: extractor, cache: c, log: log}
}

// Resolve finds the body of the fully qualified method groundTruth at commit.
// The file is derived from the name (a.b.Foo.bar -> a/b/Foo.java) and the first
// method called bar in it is returned. Missing files wrap ErrFileNotFound and
// missing methods wrap ErrMethodNotFound; both carry the NOT_FOUND code.
func (r *MethodResolver) Resolve(ctx context.Context, commit, groundTruth string) (Reference, error) {
	path, method, ok := matching.ToSourcePath(groundTruth)
	if !ok {
		return Reference{}, errors.ValidationError(fmt.Sprintf("not a qualified method name: %s", groundTruth))
	}

	methods, err := r.Methods(ctx, commit, path)
	if err != nil {
		return Reference{Path: path, Method: method}, err
	}

	m, found := ast.FindMethod(methods, method)
	if !found || m.Body == "" {
		return Reference{Path: path, Method: method},
			errors.Wrap(errors.CodeNotFound, fmt.Sprintf("%s in %s", method, path), ErrMethodNotFound)
	}

	return Reference{
		Path:      path,
		Method:    method,
		Body:      m.Body,
		StartLine: m.StartLine,
		EndLine:   m.EndLine,
	}, nil
}

// Methods returns every method declared in path at commit, from the cache when
// possible. Cache failures are logged and fall through to a fresh parse.
func (r *MethodResolver) Methods(ctx context.Context, commit, path string) ([]ast.Method, error) {
	key := hash.SourceKey(commit, path) + ":" + r.extractor.Name()

	if r.cache != nil {
		data, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			r.log.WithError(err).Warn("method cache read failed", "path", path)
		} else if ok {
			var methods []ast.Method
			if err := json.Unmarshal(data, &methods); err == nil {
				return methods, nil
			}
			r.log.Warn("discarding undecodable cache entry", "path", path)
		}
	}

	content, err := r.repo.ReadFile(ctx, commit, path)
	if err != nil {
		return nil, err
	}

	methods, err := r.extractor.Extract(ctx, content)
	if err != nil {
		return nil, errors.SourceError(fmt.Sprintf("extract methods from %s", path), err)
	}

	if r.cache != nil {
		if data, err := json.Marshal(methods); err == nil {
			if err := r.cache.Set(ctx, key, data); err != nil {
				r.log.WithError(err).Warn("method cache write failed", "path", path)
			}
		}
	}
	return methods, nil
}
