package core

import (
	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// DatasetID identifies one load of a measurement table
type DatasetID ID

// NewDatasetID returns a fresh, time-ordered dataset identifier
func NewDatasetID() DatasetID { return DatasetID(NewID()) }

func (id DatasetID) String() string { return ID(id).String() }
