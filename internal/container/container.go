package container

import (
	"context"
	"fmt"

	"cytodash/adapters/source"
	"cytodash/adapters/tabular"
	"cytodash/domain/taxonomy"
	"cytodash/internal"
	"cytodash/internal/config"
	"cytodash/internal/dashboard"
	"cytodash/internal/errors"
	"cytodash/internal/ingestion"
	"cytodash/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Ingestion pipeline
	Source     ports.SourceReader
	Decoder    ports.TableDecoder
	Normalizer *ingestion.Normalizer
	Loader     ports.DatasetLoader

	Taxonomy *taxonomy.Taxonomy

	// Set by LoadDataset; exactly one of them is non-nil afterwards
	Dashboard *dashboard.Service
	LoadErr   error
}

// New wires the ingestion pipeline from configuration. Nothing is read yet.
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}

	tax, err := taxonomy.LoadFile(cfg.Data.TaxonomyFile)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Taxonomy: tax,
		Source:   source.Open(cfg.Data.File, cfg.Data.SourceTimeout),
		Decoder: tabular.NewDecoder(tabular.Options{
			Sheet:    cfg.Data.Sheet,
			DataPath: cfg.Data.DataPath,
		}, logger),
		Normalizer: ingestion.NewNormalizer(ingestion.CoercionConfig{
			ZeroAsMissing: cfg.Data.ZeroAsMissing,
		}, logger),
	}
	c.Loader = ingestion.NewLoader(c.Decoder, c.Normalizer, logger)

	return c, nil
}

// LoadDataset runs ingestion once, bounded by the configured source timeout.
// A failure is kept in LoadErr so the server can still start and report it.
func (c *Container) LoadDataset(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.Config.Data.SourceTimeout)
	defer cancel()

	ds, err := c.Loader.Load(ctx, c.Source)
	if err != nil {
		c.LoadErr = errors.Wrapf(err, "failed to load %s", c.Source.Name())
		c.Logger.Error("[Container] %v", c.LoadErr)
		return c.LoadErr
	}

	c.Dashboard = dashboard.New(ds, c.Taxonomy, c.Logger)
	c.LoadErr = nil
	return nil
}

// Shutdown flushes buffered log output
func (c *Container) Shutdown(_ context.Context) error {
	return c.Logger.Sync()
}
