package ports

import (
	"context"

	"cytodash/domain/cytokine"
)

// SourceReader supplies the raw bytes of a measurement table.
// Implementations wrap read failures in core.SourceUnavailableError.
type SourceReader interface {
	// Name identifies the source in logs and the dataset overview
	Name() string

	// ReadSource returns the complete contents of the source
	ReadSource(ctx context.Context) ([]byte, error)
}

// Table is a decoded header-delimited table: trimmed headers plus raw cells
type Table struct {
	Headers []string
	Rows    [][]string
}

// TableDecoder turns raw bytes into a Table.
// Implementations report undecodable input as core.MalformedInputError.
type TableDecoder interface {
	Decode(data []byte) (*Table, error)
}

// DatasetLoader runs the full read -> decode -> normalize pipeline once
type DatasetLoader interface {
	Load(ctx context.Context, source SourceReader) (*cytokine.Dataset, error)
}
