// Package trees implements the REST API handlers for planting and
// monitoring tree records.
package trees

import (
	"context"

	"github.com/grovetrack/grove-backend/model"
)

// Planter is the write path for tree records: registration with atomic
// identifier allocation, and monitoring updates with CO2 re-derivation.
type Planter interface {
	PlantTree(ctx context.Context, req model.PlantTreeRequest) (*model.Tree, error)
	UpdateTree(ctx context.Context, treeID string, req model.TreeUpdateRequest) (*model.Tree, error)
}

// Nearby search bounds in meters. Requests above the maximum are clamped.
const (
	DefaultNearbyRadiusM = 5000.0
	MaxNearbyRadiusM     = 50000.0
)
