package app

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/pingcap/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/specialistvlad/streamgrid/internal/capability"
	"github.com/specialistvlad/streamgrid/internal/config"
	"github.com/specialistvlad/streamgrid/internal/ctxlog"
	"github.com/specialistvlad/streamgrid/internal/graph"
	"github.com/specialistvlad/streamgrid/internal/registry"
	"github.com/specialistvlad/streamgrid/internal/scheduler"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	model     *config.Model
	registry  *registry.Registry
	engines   map[string]*graph.EngineConfig
	scheduler scheduler.Scheduler
	metrics   *prometheus.Registry

	httpServer *http.Server
	healthAddr net.Addr
}

// NewApp is the constructor for the main application. Reports go to outW and
// logs to logW. The returned App has its own isolated logger, engine registry
// and metrics registry.
func NewApp(outW, logW io.Writer, appConfig *Config, loader config.Loader) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.GraphPath)
	if err != nil {
		return nil, errors.Annotate(err, "failed to load configuration")
	}
	logger.Debug("Configuration loaded and translated into unified model.", "graphs", len(model.Graphs), "engines", len(model.Engines))

	reg := registry.New()
	if err := reg.PopulateFromModel(model); err != nil {
		return nil, err
	}
	if err := reg.Validate(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Registry validation passed.", "engines", reg.Len())

	return &App{
		outW:      outW,
		logger:    logger,
		config:    appConfig,
		model:     model,
		registry:  reg,
		engines:   reg.Engines(),
		scheduler: scheduler.New(capability.NewTable(model.Hardware), appConfig.Split),
		metrics:   newMetricsRegistry(),
	}, nil
}

func newMetricsRegistry() *prometheus.Registry {
	metrics := prometheus.NewRegistry()
	metrics.MustRegister(collectors.NewGoCollector())
	scheduler.InitMetrics(metrics)
	return metrics
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded configuration model.
func (a *App) Model() *config.Model {
	return a.model
}
