// Package dependency wires core katamari services using go.uber.org/dig.
package dependency

import (
	"go.uber.org/dig"

	"github.com/katamari-chat/katamari/internal/config"
	"github.com/katamari-chat/katamari/internal/logging"
	"github.com/katamari-chat/katamari/internal/metrics"
	"github.com/katamari-chat/katamari/internal/ops"
	"github.com/katamari-chat/katamari/internal/persona"
	"github.com/katamari-chat/katamari/internal/report"
	"github.com/katamari-chat/katamari/internal/retention"
	"github.com/katamari-chat/katamari/internal/trim"
	"github.com/katamari-chat/katamari/internal/usage"
)

// Container holds the resolved core service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	registry  trim.EncodingRegistry
	metrics   *metrics.Registry
	store     *usage.Store
	governor  *usage.Governor
	scorer    *retention.Scorer
	compiler  *persona.Compiler
	server    *ops.Server
	scheduler *report.Scheduler
}

func (c *Container) Registry() trim.EncodingRegistry { return c.registry }
func (c *Container) Metrics() *metrics.Registry      { return c.metrics }
func (c *Container) UsageStore() *usage.Store        { return c.store }
func (c *Container) Governor() *usage.Governor       { return c.governor }
func (c *Container) Scorer() *retention.Scorer       { return c.scorer }
func (c *Container) Persona() *persona.Compiler      { return c.compiler }
func (c *Container) OpsServer() *ops.Server          { return c.server }
func (c *Container) Reporter() *report.Scheduler     { return c.scheduler }

// Close releases container-held resources.
func (c *Container) Close() error {
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}

// New builds and wires all core services from cfg.
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	constructors := []any{
		func() *config.Config { return cfg },
		newRegistry,
		newMetrics,
		newStore,
		newGovernor,
		newScorer,
		newPersonaCompiler,
		newRequestLogger,
		newOpsServer,
		newReportScheduler,
	}
	for _, ctor := range constructors {
		if err := d.Provide(ctor); err != nil {
			return nil, err
		}
	}

	var result *Container
	err := d.Invoke(func(
		registry trim.EncodingRegistry,
		metricsReg *metrics.Registry,
		store *usage.Store,
		governor *usage.Governor,
		scorer *retention.Scorer,
		compiler *persona.Compiler,
		server *ops.Server,
		scheduler *report.Scheduler,
	) {
		result = &Container{
			registry:  registry,
			metrics:   metricsReg,
			store:     store,
			governor:  governor,
			scorer:    scorer,
			compiler:  compiler,
			server:    server,
			scheduler: scheduler,
		}
	})
	return result, err
}

func newRegistry() trim.EncodingRegistry {
	return trim.DefaultRegistry()
}

func newMetrics() *metrics.Registry {
	return metrics.NewRegistry()
}

func newStore(cfg *config.Config) (*usage.Store, error) {
	return usage.Open(cfg.UsageDBPath())
}

func newGovernor(cfg *config.Config, store *usage.Store) *usage.Governor {
	return usage.NewGovernor(store, usage.Thresholds{
		DailyLimit: cfg.Usage.DailyLimit,
		YellowPct:  cfg.Usage.YellowPct,
		OrangePct:  cfg.Usage.OrangePct,
		RedPct:     cfg.Usage.RedPct,
	})
}

func newScorer(cfg *config.Config) *retention.Scorer {
	return retention.ForProvider(cfg.Retention.Provider, cfg.Retention.Dimensions)
}

func newPersonaCompiler(cfg *config.Config) *persona.Compiler {
	return persona.NewCompiler(cfg.Persona.PatternsPath)
}

func newRequestLogger() *logging.Logger {
	return logging.NewLogger(nil)
}

func newOpsServer(
	cfg *config.Config,
	registry trim.EncodingRegistry,
	scorer *retention.Scorer,
	metricsReg *metrics.Registry,
	store *usage.Store,
	requests *logging.Logger,
) *ops.Server {
	return ops.NewServer(cfg, registry, scorer, metricsReg, store, requests)
}

func newReportScheduler(
	cfg *config.Config,
	store *usage.Store,
	governor *usage.Governor,
	metricsReg *metrics.Registry,
) *report.Scheduler {
	return report.NewScheduler(cfg.Report.Cron, store, governor, metricsReg, nil)
}
