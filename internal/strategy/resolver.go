package strategy

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/cryptogpt/internal/config"
)

// DirResolver catalogs the descriptor files of the configured strategy directory
type DirResolver struct {
	// Concurrency limits parallel descriptor loads; <= 0 uses GOMAXPROCS
	Concurrency int
}

// NewDirResolver creates a resolver with default concurrency
func NewDirResolver() *DirResolver {
	return &DirResolver{}
}

// SearchAllObjects returns every strategy in cfg.StrategyPath in path order.
// Descriptors that fail to load are included, with Err set, only when
// enumFailed is true. A missing directory yields an empty catalog.
func (r *DirResolver) SearchAllObjects(cfg *config.Config, enumFailed, recursive bool) ([]Object, error) {
	root := cfg.StrategyPath

	paths, err := scan(root, recursive)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("path", root).Msg("Strategy directory does not exist")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan strategy directory: %w", err)
	}

	objects := make([]Object, len(paths))
	g := new(errgroup.Group)
	g.SetLimit(r.concurrency())
	for i, path := range paths {
		g.Go(func() error {
			objects[i] = loadObject(root, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := objects[:0]
	for _, obj := range objects {
		if obj.Failed() && !enumFailed {
			log.Debug().Err(obj.Err).Str("location", obj.Location).Msg("Skipping invalid strategy descriptor")
			continue
		}
		out = append(out, obj)
	}
	return out, nil
}

func (r *DirResolver) concurrency() int {
	if r.Concurrency > 0 {
		return r.Concurrency
	}
	return runtime.GOMAXPROCS(0)
}

func scan(root string, recursive bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if !recursive || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if slices.Contains(DescriptorExtensions, strings.ToLower(filepath.Ext(path))) {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

func loadObject(root, path string) Object {
	obj := Object{
		Name:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Location: path,
	}
	if rel, err := filepath.Rel(root, path); err == nil {
		obj.LocationRel = rel
	}

	d, err := LoadDescriptor(path)
	if err != nil {
		obj.Err = err
		return obj
	}
	obj.Descriptor = d
	obj.Name = d.Metadata.Name
	obj.Class = d.Class
	return obj
}
