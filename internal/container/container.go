// Package container provides dependency injection for the sie-report
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"context"
	"fmt"

	"fjacquet/sie-report/internal/config"
	"fjacquet/sie-report/internal/engine"
	"fjacquet/sie-report/internal/logging"
	"fjacquet/sie-report/internal/report"
	"fjacquet/sie-report/internal/sieparser"
	"fjacquet/sie-report/internal/sqlstore"
	"fjacquet/sie-report/internal/store"
	"fjacquet/sie-report/internal/templatecache"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger    logging.Logger
	config    *config.Config
	templates store.TemplateStore
	reports   store.ReportStore
	db        *sqlstore.Store
	parser    *sieparser.Parser
	cache     *templatecache.Cache
	engine    *engine.Engine
	generator *report.Generator
	stopWatch context.CancelFunc
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, logging.NewLogrusAdapterFromLogger(config.ConfigureLoggingFromConfig(cfg)))
}

// NewContainerWithLogger wires the dependencies around an existing logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	logger = logging.OrDefault(logger)

	c := &Container{logger: logger, config: cfg}

	switch cfg.Templates.Backend {
	case config.BackendSQLite:
		db, err := sqlstore.Open(cfg.Database.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		c.db = db
		c.templates = db
		c.reports = db
	case config.BackendFile, "":
		c.templates = store.NewFileStore(cfg.Templates.Directory, logger)
		c.reports = store.NewFileReportStore(cfg.Templates.Directory, logger)
	default:
		return nil, fmt.Errorf("unknown templates backend: %s", cfg.Templates.Backend)
	}

	c.parser = sieparser.New(logger, cfg.Input.Encodings...)
	c.cache = templatecache.New(c.templates, logger)
	if c.db != nil && cfg.Database.WatchInterval > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		changes, err := c.db.Changes(ctx, cfg.Database.WatchInterval)
		if err != nil {
			cancel()
			c.db.Close()
			return nil, fmt.Errorf("failed to watch database: %w", err)
		}
		c.stopWatch = cancel
		go c.cache.Watch(ctx, changes)
	}
	c.engine = engine.New(c.templates, c.reports, c.cache, c.parser, logger, engine.Options{
		Persist:     cfg.Database.Persist,
		PersistINK2: cfg.Database.PersistINK2,
	})
	c.generator = report.NewGenerator(logger, cfg.Delimiter())

	logger.Info("Container initialized successfully",
		logging.F(logging.FieldBackend, cfg.Templates.Backend),
		logging.F("persist", cfg.Database.Persist))

	return c, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetTemplateStore returns the configured template store.
func (c *Container) GetTemplateStore() store.TemplateStore {
	return c.templates
}

// GetReportStore returns the configured report store.
func (c *Container) GetReportStore() store.ReportStore {
	return c.reports
}

// GetParser returns the ledger parser.
func (c *Container) GetParser() *sieparser.Parser {
	return c.parser
}

// GetCache returns the template cache shared by every build.
func (c *Container) GetCache() *templatecache.Cache {
	return c.cache
}

// GetEngine returns the report engine.
func (c *Container) GetEngine() *engine.Engine {
	return c.engine
}

// GetGenerator returns the report serializer.
func (c *Container) GetGenerator() *report.Generator {
	return c.generator
}

// Close stops the template watch and releases the database handles, if any.
func (c *Container) Close() error {
	if c.stopWatch != nil {
		c.stopWatch()
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	c.logger.Debug("Container closed")
	return nil
}
