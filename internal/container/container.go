package container

import (
	"context"
	"fmt"

	"pillartwo/adapters/excel"
	"pillartwo/adapters/memory"
	"pillartwo/adapters/rng"
	"pillartwo/app"
	"pillartwo/internal"
	"pillartwo/internal/api"
	"pillartwo/internal/config"
	"pillartwo/internal/errors"
	"pillartwo/internal/rulebook"
	"pillartwo/ports"
)

// Container holds all application dependencies
type Container struct {
	Config   *config.Config
	Logger   *internal.Logger
	Rulebook *rulebook.Rulebook

	// Adapters
	Store    *memory.Store
	RNG      ports.RNGPort
	Exporter *excel.Exporter

	// Services
	Classifier *app.AnomalyClassifier
	Validation *app.ValidationService
	Dashboard  *app.DashboardService
}

// New loads the rulebook and builds every component. Nothing runs until
// Init.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.NewLogger(cfg.Logging.Level),
	}

	rb, err := rulebook.Load(cfg.Engine.RulebookPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load rulebook")
	}
	c.Rulebook = rb
	c.Logger.Info("rulebook %s loaded from %s", rb.Hash().Short(), rb.Source())

	if err := c.initAdapters(); err != nil {
		return nil, err
	}
	c.initServices()
	return c, nil
}

// FiscalYear is the configured year, else the rulebook default.
func (c *Container) FiscalYear() string {
	if c.Config.Engine.FiscalYear != "" {
		return c.Config.Engine.FiscalYear
	}
	return c.Rulebook.Rules.SafeHarbor.DefaultYear
}

func (c *Container) initAdapters() error {
	store, err := memory.NewStore(memory.Roster(c.FiscalYear()), c.Rulebook.Rules, c.Logger)
	if err != nil {
		return errors.Wrap(err, "failed to build entity store")
	}
	c.Store = store
	c.RNG = rng.NewSeeded()
	c.Exporter = excel.NewExporter(c.Logger)
	return nil
}

func (c *Container) initServices() {
	rules := c.Rulebook.Rules
	c.Classifier = app.NewAnomalyClassifier(rules, c.Logger)
	c.Validation = app.NewValidationService(c.Store, rules, c.Rulebook.Hash(), c.Logger)
	c.Dashboard = app.NewDashboardService(c.Store, c.Classifier, c.RNG, rules, c.Config.Engine.Seed, c.Logger)
}

// Init runs the bulk classification pass.
func (c *Container) Init(ctx context.Context) error {
	runID, err := c.Dashboard.Initialize(ctx)
	if err != nil {
		return errors.Wrap(err, "bulk classification failed")
	}
	c.Logger.Info("classification run %s, seed %d, %d entities", runID, c.Config.Engine.Seed, len(c.Store.All()))
	return nil
}

// Server builds the JSON API over the container's services.
func (c *Container) Server() *api.Server {
	return api.NewServer(api.Deps{
		Store:      c.Store,
		Dashboard:  c.Dashboard,
		Validation: c.Validation,
		Rulebook:   c.Rulebook,
		Exporter:   c.Exporter,
		Logger:     c.Logger,
	})
}
