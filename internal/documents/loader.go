package documents

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/profilematch/internal/logger"
)

const defaultConcurrency = 4

// Loader reads every supported document of a directory.
type Loader struct {
	registry    *Registry
	concurrency int
	logger      *zap.Logger
}

func NewLoader(registry *Registry, concurrency int, log *zap.Logger) *Loader {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Loader{registry: registry, concurrency: concurrency, logger: logger.WithFields(log)}
}

// Registry exposes the formats this loader accepts.
func (l *Loader) Registry() *Registry { return l.registry }

// Load reads the supported files of dir, ordered by file name. Files that cannot be parsed
// or hold no text are logged and skipped. Only a failure to list dir or a cancelled context
// is returned as an error.
func (l *Loader) Load(ctx context.Context, dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if !l.registry.Supports(path) {
			l.logger.Debug("ignoring file with unsupported extension", zap.String("path", path))
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)

	read := make([]*Document, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			doc, err := l.read(path)
			if err != nil {
				l.warnSkipped(path, err)
				return nil
			}
			read[i] = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(read))
	for _, d := range read {
		if d != nil {
			docs = append(docs, *d)
		}
	}

	l.logger.Info("documents loaded",
		zap.String("dir", dir),
		zap.Int("found", len(paths)),
		zap.Int("loaded", len(docs)),
	)

	return docs, nil
}

func (l *Loader) read(path string) (*Document, error) {
	format := FormatOf(filepath.Ext(path))
	reader, ok := l.registry.Lookup(format)
	if !ok {
		return nil, ErrUnsupported
	}

	text, err := reader.Read(path)
	if err != nil {
		return nil, err
	}

	return &Document{Path: path, Name: NameOf(path), Format: format, Text: text}, nil
}

func (l *Loader) warnSkipped(path string, err error) {
	switch {
	case errors.Is(err, ErrUnsupported):
		l.logger.Warn("skipping document in a legacy binary format, convert it to docx/pptx", zap.String("path", path))
	case errors.Is(err, ErrEmpty):
		l.logger.Warn("skipping empty document", zap.String("path", path))
	default:
		l.logger.Warn("skipping unreadable document", zap.String("path", path), zap.Error(err))
	}
}

// EnsureDir creates dir when it does not exist yet.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}
