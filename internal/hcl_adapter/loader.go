package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/pingcap/errors"
	"github.com/specialistvlad/streamgrid/internal/config"
	"github.com/specialistvlad/streamgrid/internal/ctxlog"
	cerror "github.com/specialistvlad/streamgrid/internal/errors"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load orchestrates the entire HCL configuration loading process. It is
// agnostic to the origin of the paths and parses any valid block from any file.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := config.NewModel()

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))
	if len(hclFiles) == 0 {
		return nil, cerror.ErrInvalidConfig.GenWithStackByArgs(fmt.Sprintf("no .hcl files found in %v", paths))
	}

	parser := hclparse.NewParser()
	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, cerror.ErrInvalidConfig.GenWithStackByArgs(fmt.Sprintf("parse %s: %s", file, diags.Error()))
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, cerror.ErrInvalidConfig.GenWithStackByArgs(fmt.Sprintf("decode %s: %s", file, diags.Error()))
		}

		if err := l.merge(ctx, model, &root); err != nil {
			return nil, errors.Annotatef(err, "in %s", file)
		}
	}

	logger.Debug("HCL loading complete.", "engines", len(model.Engines), "graphs", len(model.Graphs))
	return model, nil
}

// merge translates the blocks of one file into the model.
func (l *Loader) merge(ctx context.Context, model *config.Model, root *fileRoot) error {
	for _, hw := range root.Hardware {
		model.Hardware = translateHardware(hw, model.Hardware)
	}
	for _, e := range root.Engines {
		if _, dup := model.Engines[e.Name]; dup {
			return cerror.ErrInvalidConfig.GenWithStackByArgs(fmt.Sprintf("engine %s defined twice", e.Name))
		}
		model.Engines[e.Name] = translateEngine(e)
	}
	for _, g := range root.Graphs {
		translated, err := l.translateGraph(ctx, g)
		if err != nil {
			return err
		}
		model.Graphs = append(model.Graphs, translated)
	}
	return nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // A configured path that doesn't exist is not an error.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && filepath.Ext(p) == ".hcl" {
					if _, wasSeen := seen[p]; !wasSeen {
						allFiles = append(allFiles, p)
						seen[p] = struct{}{}
					}
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if filepath.Ext(path) == ".hcl" {
			if _, wasSeen := seen[path]; !wasSeen {
				allFiles = append(allFiles, path)
				seen[path] = struct{}{}
			}
		}
	}
	return allFiles, nil
}
