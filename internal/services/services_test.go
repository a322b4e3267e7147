package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetrack/grove-backend/database"
	"github.com/grovetrack/grove-backend/model"
)

func ptr[T any](v T) *T { return &v }

func newTestServices(t *testing.T) (*PlantingService, *AdoptionService, database.DBConnection) {
	t.Helper()
	db, err := database.OpenDatabase(filepath.Join(t.TempDir(), "grove.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.SeedSpecies(context.Background(), db))
	return NewPlantingService(db), NewAdoptionService(db), db
}

func plantRequest(institution string) model.PlantTreeRequest {
	return model.PlantTreeRequest{
		Institution:    institution,
		LocalName:      "Acacia",
		ScientificName: "Acacia spp.",
		StudentName:    "Jane W.",
	}
}

func TestPlantTreeAllocatesSequentialIdentifiers(t *testing.T) {
	planting, _, _ := newTestServices(t)
	ctx := context.Background()

	first, err := planting.PlantTree(ctx, plantRequest("Greenwood High"))
	require.NoError(t, err)
	assert.Equal(t, "GRE001", first.TreeID)

	second, err := planting.PlantTree(ctx, plantRequest("Greenwood High"))
	require.NoError(t, err)
	assert.Equal(t, "GRE002", second.TreeID)
}

func TestPlantTreeAppliesSeedlingDefaults(t *testing.T) {
	planting, _, _ := newTestServices(t)

	tree, err := planting.PlantTree(context.Background(), plantRequest("Greenwood High"))
	require.NoError(t, err)

	assert.Equal(t, model.TreeStageYoung, tree.TreeStage)
	require.NotNil(t, tree.RCDCm)
	assert.Equal(t, model.DefaultSeedlingRCDCm, *tree.RCDCm)
	assert.Nil(t, tree.DBHCm)
	assert.Equal(t, model.DefaultSeedlingHeightM, tree.HeightM)
	assert.Equal(t, model.TreeStatusAlive, tree.Status)
	// A 0.1 cm seedling sequesters well under a gram, which rounds to zero.
	assert.Zero(t, tree.CO2Kg)
}

func TestPlantTreeValidation(t *testing.T) {
	planting, _, _ := newTestServices(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  model.PlantTreeRequest
	}{
		{"missing institution", model.PlantTreeRequest{LocalName: "Acacia", ScientificName: "Acacia spp."}},
		{"missing local name", model.PlantTreeRequest{Institution: "Greenwood High", ScientificName: "Acacia spp."}},
		{"missing scientific name", model.PlantTreeRequest{Institution: "Greenwood High", LocalName: "Acacia"}},
		{"latitude without longitude", func() model.PlantTreeRequest {
			r := plantRequest("Greenwood High")
			r.Latitude = ptr(-1.28)
			return r
		}()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := planting.PlantTree(ctx, tc.req)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
		})
	}
}

func TestPlantTreePrefixCollisionSurfacesAsDuplicate(t *testing.T) {
	planting, _, _ := newTestServices(t)
	ctx := context.Background()

	_, err := planting.PlantTree(ctx, plantRequest("Greenwood High"))
	require.NoError(t, err)

	// Greenfield shares the GRE prefix; its first allocation lands on the
	// same identifier and the primary key rejects it.
	_, err = planting.PlantTree(ctx, plantRequest("Greenfield Academy"))
	require.ErrorIs(t, err, database.ErrDuplicateTreeID)
}

func TestUpdateTreeStageChangeRecomputesCO2(t *testing.T) {
	planting, _, _ := newTestServices(t)
	ctx := context.Background()

	tree, err := planting.PlantTree(ctx, plantRequest("Greenwood High"))
	require.NoError(t, err)

	updated, err := planting.UpdateTree(ctx, tree.TreeID, model.TreeUpdateRequest{
		TreeStage:   ptr(string(model.TreeStageMature)),
		Measurement: ptr(20.0),
		HeightM:     ptr(4.2),
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, model.TreeStageMature, updated.TreeStage)
	require.NotNil(t, updated.DBHCm)
	assert.Equal(t, 20.0, *updated.DBHCm)
	assert.Nil(t, updated.RCDCm)
	assert.Equal(t, 4.2, updated.HeightM)
	// Acacia wood density 0.65 at 20 cm DBH.
	assert.InDelta(t, 122.5, updated.CO2Kg, 1e-9)
}

func TestUpdateTreeStageChangeRequiresMeasurement(t *testing.T) {
	planting, _, _ := newTestServices(t)
	ctx := context.Background()

	tree, err := planting.PlantTree(ctx, plantRequest("Greenwood High"))
	require.NoError(t, err)

	_, err = planting.UpdateTree(ctx, tree.TreeID, model.TreeUpdateRequest{
		TreeStage: ptr(string(model.TreeStageMature)),
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestUpdateTreeRejectsUnknownValues(t *testing.T) {
	planting, _, _ := newTestServices(t)
	ctx := context.Background()

	tree, err := planting.PlantTree(ctx, plantRequest("Greenwood High"))
	require.NoError(t, err)

	var ve *ValidationError
	_, err = planting.UpdateTree(ctx, tree.TreeID, model.TreeUpdateRequest{TreeStage: ptr("Ancient")})
	require.ErrorAs(t, err, &ve)

	_, err = planting.UpdateTree(ctx, tree.TreeID, model.TreeUpdateRequest{Status: ptr("Missing")})
	require.ErrorAs(t, err, &ve)

	_, err = planting.UpdateTree(ctx, tree.TreeID, model.TreeUpdateRequest{Measurement: ptr(-3.0)})
	require.ErrorAs(t, err, &ve)
}

func TestUpdateTreeAbsentReturnsNil(t *testing.T) {
	planting, _, _ := newTestServices(t)

	tree, err := planting.UpdateTree(context.Background(), "ZZZ999", model.TreeUpdateRequest{HeightM: ptr(1.0)})
	require.NoError(t, err)
	assert.Nil(t, tree)
}

func TestUpdateTreeStatusChangeClearsAdopter(t *testing.T) {
	planting, adoption, _ := newTestServices(t)
	ctx := context.Background()

	tree, err := planting.PlantTree(ctx, plantRequest("Greenwood High"))
	require.NoError(t, err)
	_, err = adoption.AdoptTree(ctx, tree.TreeID, "Amina O.")
	require.NoError(t, err)

	updated, err := planting.UpdateTree(ctx, tree.TreeID, model.TreeUpdateRequest{
		Status: ptr(string(model.TreeStatusAlive)),
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, model.TreeStatusAlive, updated.Status)
	assert.Nil(t, updated.AdopterName)
	assert.True(t, updated.IsAdoptable())
}

func TestAdoptTreeIssuesReceiptOnce(t *testing.T) {
	planting, adoption, db := newTestServices(t)
	ctx := context.Background()

	tree, err := planting.PlantTree(ctx, plantRequest("Greenwood High"))
	require.NoError(t, err)

	receipt, err := adoption.AdoptTree(ctx, tree.TreeID, "Amina O.")
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.AdoptionID)
	assert.Equal(t, tree.TreeID, receipt.TreeID)
	assert.Equal(t, model.TreeStatusAdopted, receipt.Tree.Status)
	require.NotNil(t, receipt.Tree.AdopterName)
	assert.Equal(t, "Amina O.", *receipt.Tree.AdopterName)

	_, err = adoption.AdoptTree(ctx, tree.TreeID, "Second Caller")
	require.ErrorIs(t, err, ErrNotAdoptable)

	receipts, err := database.ListAdoptions(ctx, db)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, "Amina O.", receipts[0].AdopterName)
}

func TestAdoptTreeGuards(t *testing.T) {
	planting, adoption, _ := newTestServices(t)
	ctx := context.Background()

	_, err := adoption.AdoptTree(ctx, "GRE042", "Amina O.")
	require.ErrorIs(t, err, ErrTreeNotFound)

	tree, err := planting.PlantTree(ctx, plantRequest("Greenwood High"))
	require.NoError(t, err)

	var ve *ValidationError
	_, err = adoption.AdoptTree(ctx, tree.TreeID, "   ")
	require.ErrorAs(t, err, &ve)

	_, err = planting.UpdateTree(ctx, tree.TreeID, model.TreeUpdateRequest{
		Status: ptr(string(model.TreeStatusDead)),
	})
	require.NoError(t, err)
	_, err = adoption.AdoptTree(ctx, tree.TreeID, "Amina O.")
	require.ErrorIs(t, err, ErrNotAdoptable)
}

func TestRecomputeCO2ForSpecies(t *testing.T) {
	planting, _, db := newTestServices(t)
	ctx := context.Background()

	acacia, err := planting.PlantTree(ctx, plantRequest("Greenwood High"))
	require.NoError(t, err)
	_, err = planting.UpdateTree(ctx, acacia.TreeID, model.TreeUpdateRequest{
		TreeStage:   ptr(string(model.TreeStageMature)),
		Measurement: ptr(20.0),
	})
	require.NoError(t, err)

	pineReq := plantRequest("Greenwood High")
	pineReq.LocalName = "Pine"
	pineReq.ScientificName = "Pinus spp."
	pine, err := planting.PlantTree(ctx, pineReq)
	require.NoError(t, err)

	require.NoError(t, database.UpdateSpecies(ctx, db, model.Species{
		ScientificName: "Acacia spp.",
		LocalName:      "Acacia",
		WoodDensity:    0.75,
		Benefits:       "Drought-resistant, nitrogen-fixing, provides shade",
	}))

	updated, err := planting.RecomputeCO2ForSpecies(ctx, "Acacia spp.")
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	got, err := database.GetTree(ctx, db, acacia.TreeID)
	require.NoError(t, err)
	require.NotNil(t, got)
	// 122.5 scaled from density 0.65 to 0.75.
	assert.InDelta(t, 141.35, got.CO2Kg, 1e-9)

	untouched, err := database.GetTree(ctx, db, pine.TreeID)
	require.NoError(t, err)
	require.NotNil(t, untouched)
	assert.Equal(t, pine.CO2Kg, untouched.CO2Kg)
}

func TestRecomputeAllCO2ReportsProgress(t *testing.T) {
	planting, _, db := newTestServices(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		tree, err := planting.PlantTree(ctx, plantRequest("Greenwood High"))
		require.NoError(t, err)
		_, err = planting.UpdateTree(ctx, tree.TreeID, model.TreeUpdateRequest{
			TreeStage:   ptr(string(model.TreeStageMature)),
			Measurement: ptr(15.0),
		})
		require.NoError(t, err)
	}

	require.NoError(t, database.UpdateSpecies(ctx, db, model.Species{
		ScientificName: "Acacia spp.",
		LocalName:      "Acacia",
		WoodDensity:    0.55,
		Benefits:       "Drought-resistant, nitrogen-fixing, provides shade",
	}))

	var calls int
	updated, err := planting.RecomputeAllCO2(ctx, func(done, total int) {
		calls++
		assert.Equal(t, 3, total)
		assert.Equal(t, calls, done)
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated)
	assert.Equal(t, 3, calls)

	// Second pass finds everything already consistent.
	updated, err = planting.RecomputeAllCO2(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, updated)
}
