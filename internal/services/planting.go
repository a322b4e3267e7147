// Package services provides internal service implementations for the grove backend.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/grovetrack/grove-backend/database"
	"github.com/grovetrack/grove-backend/internal/metrics"
	"github.com/grovetrack/grove-backend/model"
	"github.com/grovetrack/grove-backend/util"
)

var logger = database.InitLogger() // setup the logger

// ValidationError reports a client-correctable problem with a request. REST
// handlers map it to a 400 response.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// PlantingService owns the planting and monitoring write paths. Identifier
// allocation and the insert run in a single immediate transaction, so two
// concurrent plantings for the same institution can never be handed the same
// sequence number.
type PlantingService struct {
	DB database.DBConnection
}

// NewPlantingService creates a PlantingService backed by the given store.
func NewPlantingService(db database.DBConnection) *PlantingService {
	return &PlantingService{DB: db}
}

// PlantTree registers a new planting with seedling defaults, estimates its
// CO2 from the species wood density, and allocates the institution-scoped
// identifier atomically with the insert.
func (s *PlantingService) PlantTree(ctx context.Context, req model.PlantTreeRequest) (*model.Tree, error) {
	institution := strings.TrimSpace(req.Institution)
	if institution == "" {
		return nil, &ValidationError{Msg: "institution is required"}
	}
	if strings.TrimSpace(req.LocalName) == "" {
		return nil, &ValidationError{Msg: "local_name is required"}
	}
	if strings.TrimSpace(req.ScientificName) == "" {
		return nil, &ValidationError{Msg: "scientific_name is required"}
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, &ValidationError{Msg: "latitude and longitude must be provided together"}
	}

	tree := model.NewTree(institution, strings.TrimSpace(req.LocalName), strings.TrimSpace(req.ScientificName))
	tree.StudentName = strings.TrimSpace(req.StudentName)
	if req.DatePlanted != "" {
		tree.DatePlanted = req.DatePlanted
	}
	tree.Latitude = req.Latitude
	tree.Longitude = req.Longitude
	tree.County = req.County
	tree.SubCounty = req.SubCounty
	tree.Ward = req.Ward

	resolve, err := database.WoodDensityResolver(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	tree.CO2Kg = util.EstimateCO2(resolve, tree.ScientificName, tree.RCDCm, tree.DBHCm)

	tx, err := s.DB.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin planting transaction: %w", err)
	}
	defer tx.Rollback()

	refs, err := database.ListTreeRefsTx(ctx, tx, tree.Institution)
	if err != nil {
		return nil, err
	}
	treeID, err := util.NextTreeID(tree.Institution, refs)
	if err != nil {
		return nil, err
	}
	tree.TreeID = treeID

	if err := database.InsertTreeTx(ctx, tx, tree); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit planting transaction: %w", err)
	}

	metrics.TreesPlanted.Inc()
	s.refreshCO2Gauge(ctx)
	logger.Sugar().Infof("Planted tree %s for %s (%s)", tree.TreeID, tree.Institution, tree.ScientificName)
	return tree, nil
}

// refreshCO2Gauge mirrors the store-wide CO2 total into the exported gauge.
// Gauge staleness is tolerable, so failures are logged and swallowed.
func (s *PlantingService) refreshCO2Gauge(ctx context.Context) {
	sum, err := database.SumCO2(ctx, s.DB)
	if err != nil {
		logger.Sugar().Warnf("Failed to refresh CO2 gauge: %v", err)
		return
	}
	metrics.CO2EstimatedKg.Set(sum)
}

// UpdateTree applies a monitoring update to one tree and re-derives its CO2
// estimate. It returns nil without error when the tree does not exist.
func (s *PlantingService) UpdateTree(ctx context.Context, treeID string, req model.TreeUpdateRequest) (*model.Tree, error) {
	tree, err := database.GetTree(ctx, s.DB, treeID)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, nil
	}

	if req.TreeStage != nil {
		stage, ok := model.ParseTreeStage(*req.TreeStage)
		if !ok {
			return nil, &ValidationError{Msg: fmt.Sprintf("unknown tree_stage %q", *req.TreeStage)}
		}
		if stage != tree.TreeStage && req.Measurement == nil {
			return nil, &ValidationError{Msg: "measurement is required when changing tree_stage"}
		}
		tree.TreeStage = stage
	}
	if req.Measurement != nil {
		if *req.Measurement <= 0 {
			return nil, &ValidationError{Msg: "measurement must be positive"}
		}
		tree.ApplyMeasurement(tree.TreeStage, req.Measurement)
	}
	if req.HeightM != nil {
		if *req.HeightM < 0 {
			return nil, &ValidationError{Msg: "height_m must not be negative"}
		}
		tree.HeightM = *req.HeightM
	}
	if req.Status != nil {
		status, ok := model.ParseTreeStatus(*req.Status)
		if !ok {
			return nil, &ValidationError{Msg: fmt.Sprintf("unknown status %q", *req.Status)}
		}
		tree.Status = status
		if status != model.TreeStatusAdopted {
			tree.AdopterName = nil
		}
	}
	if req.LocalName != nil {
		tree.LocalName = *req.LocalName
	}
	if req.StudentName != nil {
		tree.StudentName = *req.StudentName
	}

	resolve, err := database.WoodDensityResolver(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	tree.CO2Kg = util.EstimateCO2(resolve, tree.ScientificName, tree.RCDCm, tree.DBHCm)

	if err := database.UpdateTree(ctx, s.DB, tree); err != nil {
		return nil, err
	}
	s.refreshCO2Gauge(ctx)
	return tree, nil
}

// RecomputeCO2ForSpecies re-derives the CO2 estimate of every tree of one
// species. Called after an admin edits the species wood density so stored
// estimates stay consistent with the reference data.
func (s *PlantingService) RecomputeCO2ForSpecies(ctx context.Context, scientificName string) (int, error) {
	resolve, err := database.WoodDensityResolver(ctx, s.DB)
	if err != nil {
		return 0, err
	}
	trees, err := database.ListTrees(ctx, s.DB, database.TreeFilter{Species: scientificName})
	if err != nil {
		return 0, err
	}

	updated := 0
	for i := range trees {
		t := &trees[i]
		co2 := util.EstimateCO2(resolve, t.ScientificName, t.RCDCm, t.DBHCm)
		if co2 == t.CO2Kg {
			continue
		}
		if err := database.UpdateTreeCO2(ctx, s.DB, t.TreeID, co2); err != nil {
			return updated, err
		}
		updated++
	}
	metrics.CO2Recomputations.Inc()
	if updated > 0 {
		s.refreshCO2Gauge(ctx)
		logger.Sugar().Infof("Recomputed CO2 for %d trees of %s", updated, scientificName)
	}
	return updated, nil
}

// RecomputeAllCO2 re-derives the CO2 estimate of every tree in the store.
// progress, when non-nil, is invoked after each tree with the running count.
func (s *PlantingService) RecomputeAllCO2(ctx context.Context, progress func(done, total int)) (int, error) {
	resolve, err := database.WoodDensityResolver(ctx, s.DB)
	if err != nil {
		return 0, err
	}
	trees, err := database.ListTrees(ctx, s.DB, database.TreeFilter{})
	if err != nil {
		return 0, err
	}

	updated := 0
	for i := range trees {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		t := &trees[i]
		co2 := util.EstimateCO2(resolve, t.ScientificName, t.RCDCm, t.DBHCm)
		if co2 != t.CO2Kg {
			if err := database.UpdateTreeCO2(ctx, s.DB, t.TreeID, co2); err != nil {
				return updated, err
			}
			updated++
		}
		if progress != nil {
			progress(i+1, len(trees))
		}
	}
	metrics.CO2Recomputations.Inc()
	s.refreshCO2Gauge(ctx)
	logger.Sugar().Infof("CO2 recompute finished: %d of %d trees updated", updated, len(trees))
	return updated, nil
}
