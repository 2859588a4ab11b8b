package ingestion

import (
	"context"
	"fmt"
	"time"

	"cytodash/domain/core"
	"cytodash/domain/cytokine"
	"cytodash/internal"
	"cytodash/ports"
)

// Loader composes read -> decode -> normalize into a single Dataset load
type Loader struct {
	decoder    ports.TableDecoder
	normalizer *Normalizer
	logger     *internal.Logger
	now        func() time.Time
}

var _ ports.DatasetLoader = (*Loader)(nil)

// NewLoader creates a loader
func NewLoader(decoder ports.TableDecoder, normalizer *Normalizer, logger *internal.Logger) *Loader {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Loader{
		decoder:    decoder,
		normalizer: normalizer,
		logger:     logger,
		now:        time.Now,
	}
}

// Load returns either a complete Dataset or the first error; nothing partial.
func (l *Loader) Load(ctx context.Context, src ports.SourceReader) (*cytokine.Dataset, error) {
	start := time.Now()
	l.logger.Info("[Ingest] reading %s", src.Name())

	data, err := src.ReadSource(ctx)
	if err != nil {
		if core.IsSourceUnavailable(err) {
			return nil, err
		}
		return nil, core.NewSourceUnavailableError(src.Name(), err)
	}

	table, err := l.decoder.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", src.Name(), err)
	}

	res, err := l.normalizer.Normalize(table)
	if err != nil {
		return nil, fmt.Errorf("failed to ingest %s: %w", src.Name(), err)
	}

	ds := &cytokine.Dataset{
		ID:           core.NewDatasetID(),
		Source:       src.Name(),
		Fingerprint:  core.NewHash(data),
		LoadedAt:     l.now().UTC(),
		Measurements: res.Measurements,
		Timepoints:   res.Timepoints,
		Analytes:     res.Analytes,
		Stats:        res.Stats,
	}

	l.logger.Info("[Ingest] loaded %s (%s): %d rows, %d analytes, %d timepoints, %d measurements, %d dropped rows in %.2fms",
		ds.Source, ds.Fingerprint.Short(), ds.Stats.Rows, len(ds.Analytes), len(ds.Timepoints),
		len(ds.Measurements), ds.Stats.DroppedRows, float64(time.Since(start).Nanoseconds())/1e6)

	return ds, nil
}
