package graphql

import (
	"context"
	"path/filepath"
	"testing"

	gql "github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetrack/grove-backend/database"
	"github.com/grovetrack/grove-backend/model"
)

func ptr[T any](v T) *T { return &v }

// newTestSchema seeds a store with two institutions and three trees and
// returns a schema mounted on it.
func newTestSchema(t *testing.T) gql.Schema {
	t.Helper()

	db, err := database.OpenDatabase(filepath.Join(t.TempDir(), "grove.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, database.SeedSpecies(ctx, db))

	mature := model.NewTree("Greenwood High", "Mgunga", "Acacia spp.")
	mature.TreeID = "GRE001"
	mature.DatePlanted = "2024-01-10"
	mature.ApplyMeasurement(model.TreeStageMature, ptr(20.0))
	mature.HeightM = 4.2
	mature.CO2Kg = 122.5
	require.NoError(t, database.InsertTree(ctx, db, mature))

	adopted := model.NewTree("Greenwood High", "Mgunga", "Acacia spp.")
	adopted.TreeID = "GRE002"
	adopted.DatePlanted = "2024-02-10"
	adopted.Status = model.TreeStatusAdopted
	adopted.AdopterName = ptr("Wanjiku")
	require.NoError(t, database.InsertTree(ctx, db, adopted))

	pine := model.NewTree("Riverside Academy", "Pine", "Pinus spp.")
	pine.TreeID = "RIV001"
	pine.DatePlanted = "2024-01-15"
	pine.ApplyMeasurement(model.TreeStageYoung, ptr(5.0))
	pine.CO2Kg = 4.86
	require.NoError(t, database.InsertTree(ctx, db, pine))

	schema, err := CreateSchema(db)
	require.NoError(t, err)
	return schema
}

func execQuery(t *testing.T, schema gql.Schema, query string) map[string]interface{} {
	t.Helper()
	result := gql.Do(gql.Params{
		Schema:        schema,
		RequestString: query,
		Context:       context.Background(),
	})
	require.Empty(t, result.Errors)
	return result.Data.(map[string]interface{})
}

func TestDashboardOverview(t *testing.T) {
	schema := newTestSchema(t)

	data := execQuery(t, schema, `{
		dashboardOverview {
			institutions total_trees adopted_trees alive_trees dead_trees total_co2_kg
		}
	}`)

	overview := data["dashboardOverview"].(map[string]interface{})
	assert.Equal(t, 2, overview["institutions"])
	assert.Equal(t, 3, overview["total_trees"])
	assert.Equal(t, 1, overview["adopted_trees"])
	assert.Equal(t, 2, overview["alive_trees"])
	assert.Equal(t, 0, overview["dead_trees"])
	assert.InDelta(t, 127.36, overview["total_co2_kg"], 1e-9)
}

func TestCO2ByInstitutionOrdersLargestFirst(t *testing.T) {
	schema := newTestSchema(t)

	data := execQuery(t, schema, `{
		co2ByInstitution { institution co2_kg tree_count }
	}`)

	rows := data["co2ByInstitution"].([]interface{})
	require.Len(t, rows, 2)

	first := rows[0].(map[string]interface{})
	assert.Equal(t, "Greenwood High", first["institution"])
	assert.InDelta(t, 122.5, first["co2_kg"], 1e-9)
	assert.Equal(t, 2, first["tree_count"])

	second := rows[1].(map[string]interface{})
	assert.Equal(t, "Riverside Academy", second["institution"])
	assert.InDelta(t, 4.86, second["co2_kg"], 1e-9)
}

func TestStatusDistribution(t *testing.T) {
	schema := newTestSchema(t)

	data := execQuery(t, schema, `{ statusDistribution { status count } }`)

	counts := map[string]int{}
	for _, row := range data["statusDistribution"].([]interface{}) {
		entry := row.(map[string]interface{})
		counts[entry["status"].(string)] = entry["count"].(int)
	}
	assert.Equal(t, map[string]int{"Alive": 2, "Adopted": 1}, counts)
}

func TestTopSpeciesHonorsLimit(t *testing.T) {
	schema := newTestSchema(t)

	data := execQuery(t, schema, `{
		topSpecies(limit: 1) { scientific_name local_name count }
	}`)

	rows := data["topSpecies"].([]interface{})
	require.Len(t, rows, 1)

	top := rows[0].(map[string]interface{})
	assert.Equal(t, "Acacia spp.", top["scientific_name"])
	assert.Equal(t, "Acacia", top["local_name"])
	assert.Equal(t, 2, top["count"])
}

func TestPlantingTimelineIsCumulative(t *testing.T) {
	schema := newTestSchema(t)

	data := execQuery(t, schema, `{
		plantingTimeline(institution: "greenwood high") { date cumulative_count }
	}`)

	rows := data["plantingTimeline"].([]interface{})
	require.Len(t, rows, 2)

	first := rows[0].(map[string]interface{})
	assert.Equal(t, "2024-01-10", first["date"])
	assert.Equal(t, 1, first["cumulative_count"])

	second := rows[1].(map[string]interface{})
	assert.Equal(t, "2024-02-10", second["date"])
	assert.Equal(t, 2, second["cumulative_count"])
}

func TestHeightDistributionBuckets(t *testing.T) {
	schema := newTestSchema(t)

	data := execQuery(t, schema, `{
		heightDistribution(institution: "Greenwood High", buckets: 2) { lower_m upper_m count }
	}`)

	rows := data["heightDistribution"].([]interface{})
	require.Len(t, rows, 2)

	low := rows[0].(map[string]interface{})
	assert.InDelta(t, 0.5, low["lower_m"], 1e-9)
	assert.InDelta(t, 2.35, low["upper_m"], 1e-9)
	assert.Equal(t, 1, low["count"])

	high := rows[1].(map[string]interface{})
	assert.InDelta(t, 2.35, high["lower_m"], 1e-9)
	assert.InDelta(t, 4.2, high["upper_m"], 1e-9)
	assert.Equal(t, 1, high["count"])
}

func TestHeightDistributionEmptyInstitution(t *testing.T) {
	schema := newTestSchema(t)

	data := execQuery(t, schema, `{
		heightDistribution(institution: "Nowhere School") { count }
	}`)

	assert.Empty(t, data["heightDistribution"].([]interface{}))
}

func TestInstitutionSummary(t *testing.T) {
	schema := newTestSchema(t)

	data := execQuery(t, schema, `{
		institutionSummary(institution: "Greenwood High") {
			institution total_trees alive_trees dead_trees adopted_trees
			species_count total_co2_kg avg_height_m
		}
	}`)

	summary := data["institutionSummary"].(map[string]interface{})
	assert.Equal(t, "Greenwood High", summary["institution"])
	assert.Equal(t, 2, summary["total_trees"])
	assert.Equal(t, 1, summary["alive_trees"])
	assert.Equal(t, 0, summary["dead_trees"])
	assert.Equal(t, 1, summary["adopted_trees"])
	assert.Equal(t, 1, summary["species_count"])
	assert.InDelta(t, 122.5, summary["total_co2_kg"], 1e-9)
	assert.InDelta(t, 2.35, summary["avg_height_m"], 1e-9)
}

func TestTreesQueryFiltersByInstitution(t *testing.T) {
	schema := newTestSchema(t)

	data := execQuery(t, schema, `{
		trees(institution: "Riverside Academy") { tree_id scientific_name rcd_cm }
	}`)

	rows := data["trees"].([]interface{})
	require.Len(t, rows, 1)

	tree := rows[0].(map[string]interface{})
	assert.Equal(t, "RIV001", tree["tree_id"])
	assert.Equal(t, "Pinus spp.", tree["scientific_name"])
	assert.InDelta(t, 5.0, tree["rcd_cm"], 1e-9)
}

func TestTreeQueryResolvesNullForAbsentID(t *testing.T) {
	schema := newTestSchema(t)

	data := execQuery(t, schema, `{ tree(tree_id: "ZZZ999") { tree_id } }`)
	assert.Nil(t, data["tree"])
}

func TestSpeciesListReturnsReferenceTable(t *testing.T) {
	schema := newTestSchema(t)

	data := execQuery(t, schema, `{ speciesList { scientific_name wood_density } }`)
	assert.Len(t, data["speciesList"].([]interface{}), len(model.DefaultSpecies()))
}
