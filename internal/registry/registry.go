package registry

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/streamgrid/internal/config"
	cerror "github.com/specialistvlad/streamgrid/internal/errors"
	"github.com/specialistvlad/streamgrid/internal/graph"
	"golang.org/x/exp/maps"
)

// maxResolveDepth bounds composite engine resolution.
const maxResolveDepth = 8

// Registry holds all registered engine configurations for a single
// application instance.
type Registry struct {
	engines map[string]*graph.EngineConfig
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		engines: make(map[string]*graph.EngineConfig),
	}
}

// Register adds an engine configuration. Registering the same id twice is an
// error.
func (r *Registry) Register(e *graph.EngineConfig) error {
	if e.ID == "" {
		return cerror.ErrInvalidConfig.GenWithStackByArgs("engine without a name")
	}
	if _, ok := r.engines[e.ID]; ok {
		return cerror.ErrInvalidConfig.GenWithStackByArgs(fmt.Sprintf("engine %s registered twice", e.ID))
	}
	r.engines[e.ID] = e
	return nil
}

// PopulateFromModel registers every engine declared in the config model.
func (r *Registry) PopulateFromModel(model *config.Model) error {
	names := maps.Keys(model.Engines)
	slices.Sort(names)
	for _, name := range names {
		e := model.Engines[name]
		class := graph.EngineClass(e.Class)
		if class == "" {
			class = graph.ClassOther
		}
		err := r.Register(&graph.EngineConfig{
			ID:               e.Name,
			SchedulerID:      e.Scheduler,
			Class:            class,
			Independent:      e.Independent,
			Attach:           e.Attach,
			SkipAssignStream: e.SkipAssignStream,
			CompositeOf:      e.CompositeOf,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Resolve returns the concrete engine behind a possibly composite name.
func (r *Registry) Resolve(name string) (*graph.EngineConfig, error) {
	return r.resolve(name, name, 0)
}

func (r *Registry) resolve(origin, name string, depth int) (*graph.EngineConfig, error) {
	if depth > maxResolveDepth {
		return nil, cerror.ErrEngineResolveDepth.GenWithStackByArgs(origin, maxResolveDepth)
	}
	e, ok := r.engines[name]
	if !ok {
		return nil, cerror.ErrUnknownEngine.GenWithStackByArgs(name, origin)
	}
	if e.CompositeOf == "" {
		return e, nil
	}
	return r.resolve(origin, e.CompositeOf, depth+1)
}

// Engines returns every registered name mapped to its resolved concrete
// engine. Names that fail to resolve are left out; Validate reports them.
func (r *Registry) Engines() map[string]*graph.EngineConfig {
	resolved := make(map[string]*graph.EngineConfig, len(r.engines))
	for name := range r.engines {
		if e, err := r.Resolve(name); err == nil {
			resolved[name] = e
		}
	}
	return resolved
}

// Len returns the number of registered engines.
func (r *Registry) Len() int {
	return len(r.engines)
}
