package pipeline

import (
	"strings"

	"github.com/ricesearch/bugeval/internal/ast"
	"github.com/ricesearch/bugeval/internal/cache"
	"github.com/ricesearch/bugeval/internal/config"
	"github.com/ricesearch/bugeval/internal/dataset"
	"github.com/ricesearch/bugeval/internal/pkg/errors"
	"github.com/ricesearch/bugeval/internal/pkg/logger"
	"github.com/ricesearch/bugeval/internal/source"
)

// LoadProjects reads the inputs of every configured repository, or only of
// the one named only when it is non-empty. Malformed entries are logged and
// dropped; an unreadable file fails the load.
func LoadProjects(repos []config.RepositoryConfig, only string, extractor ast.Extractor, c cache.Cache, log *logger.Logger) ([]Project, error) {
	var projects []Project
	for _, repo := range repos {
		if only != "" && !strings.EqualFold(repo.Name, only) {
			continue
		}
		plog := log.WithProject(repo.Name)

		entries, rejected, err := dataset.LoadRecords[dataset.FixEntry](repo.BugReports)
		if err != nil {
			return nil, err
		}
		for _, rj := range rejected {
			plog.WithError(rj.Err).Warn("Dropping malformed bug report entry", "index", rj.Index)
		}

		gt, err := dataset.LoadGroundTruth(repo.GroundTruth)
		if err != nil {
			return nil, err
		}

		repository, err := source.OpenRepository(repo)
		if err != nil {
			return nil, err
		}

		projects = append(projects, Project{
			Name:        repo.Name,
			Entries:     entries,
			GroundTruth: gt,
			Resolver:    source.NewMethodResolver(repository, extractor, c, plog),
		})
	}

	if only != "" && len(projects) == 0 {
		return nil, errors.NotFoundError("repository " + only)
	}
	return projects, nil
}
