package app

import (
	"context"

	"github.com/pingcap/errors"
	"github.com/specialistvlad/streamgrid/internal/builder"
	"github.com/specialistvlad/streamgrid/internal/config"
	"github.com/specialistvlad/streamgrid/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

// Run schedules every graph of the loaded model and writes the report. Graphs
// are scheduled concurrently, up to WorkerCount at a time. The first failing
// graph aborts the batch and no report is written.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if err := a.startHealthcheckServer(); err != nil {
		return err
	}
	defer func() {
		if cerr := a.closeHealthCheckServer(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if len(a.model.Graphs) == 0 {
		a.logger.Warn("No graphs found in configuration, scheduling not required.")
		return a.writeReport(&Report{})
	}

	a.logger.Info("🚀 Scheduling graphs...", "graphs", len(a.model.Graphs), "workers", a.config.WorkerCount)
	reports := make([]*GraphReport, len(a.model.Graphs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.config.WorkerCount)
	for i, cg := range a.model.Graphs {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			r, err := a.scheduleGraph(egCtx, cg)
			if err != nil {
				return errors.Annotatef(err, "graph %s", cg.Name)
			}
			reports[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		a.logger.Error("Scheduling failed.", "error", err)
		return err
	}
	a.logger.Info("🏁 Scheduling finished.")

	return a.writeReport(&Report{Graphs: reports})
}

func (a *App) scheduleGraph(ctx context.Context, cg *config.Graph) (*GraphReport, error) {
	ctx, logger := ctxlog.With(ctx, "graph", cg.Name)
	logger.Debug("Building graph.")

	g, err := builder.Build(ctx, cg, a.engines)
	if err != nil {
		return nil, err
	}
	res, err := a.scheduler.Schedule(ctx, g, cg.Options)
	if err != nil {
		return nil, err
	}
	return newGraphReport(g, res), nil
}
