package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/crxproject/internal/config"
	"github.com/fyrsmithlabs/crxproject/internal/fsys"
	"github.com/fyrsmithlabs/crxproject/internal/ignore"
	"github.com/fyrsmithlabs/crxproject/internal/logging"
	"github.com/fyrsmithlabs/crxproject/internal/project"
)

// Scanner discovers project roots below a directory.
type Scanner struct {
	fs      afero.Fs
	factory *project.Factory
	parser  *ignore.Parser
	logger  *logging.Logger

	// MaxDepth limits how far below the root directories are visited.
	// Zero means no limit.
	MaxDepth int

	// Concurrency bounds the recognizers running at once.
	Concurrency int
}

// NewScanner creates a Scanner using the workspace settings in cfg.
func NewScanner(fs afero.Fs, factory *project.Factory, cfg config.WorkspaceConfig, logger *logging.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{
		fs:          fs,
		factory:     factory,
		parser:      ignore.NewParser(fs, cfg.IgnoreFiles, cfg.FallbackPatterns),
		logger:      logger.Named("scanner"),
		MaxDepth:    cfg.MaxDepth,
		Concurrency: runtime.GOMAXPROCS(0),
	}
}

// Scan walks root and returns the sorted roots of every project found,
// root itself included. Ignored directories are not entered.
func (s *Scanner) Scan(ctx context.Context, root string) ([]string, error) {
	if root == "" {
		return nil, fsys.ErrEmptyPath
	}
	root = filepath.Clean(root)

	matcher, err := s.parser.Matcher(root)
	if err != nil {
		return nil, fmt.Errorf("reading ignore files in %s: %w", root, err)
	}

	candidates, err := s.walk(ctx, root, matcher)
	if err != nil {
		return nil, err
	}

	var (
		mu    sync.Mutex
		found []string
	)
	g, gctx := errgroup.WithContext(ctx)
	if s.Concurrency > 0 {
		g.SetLimit(s.Concurrency)
	}
	for _, path := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			dir, err := fsys.Open(s.fs, path)
			if err != nil {
				// Removed since the walk.
				return nil
			}
			if s.factory.IsProject(dir) {
				mu.Lock()
				found = append(found, path)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(found)
	s.logger.Debug(ctx, "scan complete",
		zap.String("root", root),
		zap.Int("candidates", len(candidates)),
		zap.Int("projects", len(found)),
	)
	return found, nil
}

// walk collects the directories under root that are neither ignored nor
// deeper than MaxDepth.
func (s *Scanner) walk(ctx context.Context, root string, matcher *ignore.Matcher) ([]string, error) {
	var dirs []string
	err := afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			s.logger.Debug(ctx, "skipping unreadable path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !info.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel != "." {
			if matcher.Match(rel, true) {
				return filepath.SkipDir
			}
			if s.MaxDepth > 0 && depth(rel) > s.MaxDepth {
				return filepath.SkipDir
			}
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return dirs, nil
}

func depth(rel string) int {
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}
