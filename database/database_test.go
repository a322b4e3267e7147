package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetrack/grove-backend/model"
)

func newTestDB(t *testing.T) DBConnection {
	t.Helper()
	db, err := OpenDatabase(filepath.Join(t.TempDir(), "grove.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr[T any](v T) *T { return &v }

func TestOpenDatabaseBootstrapsSchema(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, CreateSpecies(ctx, db, model.Species{
		ScientificName: "Ficus sycomorus",
		LocalName:      "Sycamore fig",
		WoodDensity:    0.44,
	}))

	s, err := GetSpecies(ctx, db, "Ficus sycomorus")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 0.44, s.WoodDensity)
}

func TestOpenDatabaseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grove.db")

	db1, err := OpenDatabase(path)
	require.NoError(t, err)
	require.NoError(t, db1.Close())

	db2, err := OpenDatabase(path)
	require.NoError(t, err)
	defer db2.Close()

	_, err = ListSpecies(context.Background(), db2)
	require.NoError(t, err)
}

func TestSeedSpeciesOnlyWhenEmpty(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, SeedSpecies(ctx, db))
	seeded, err := ListSpecies(ctx, db)
	require.NoError(t, err)
	require.Len(t, seeded, len(model.DefaultSpecies()))

	// An admin edit must survive a restart's re-seed.
	acacia, err := GetSpecies(ctx, db, "Acacia spp.")
	require.NoError(t, err)
	require.NotNil(t, acacia)
	acacia.WoodDensity = 0.7
	require.NoError(t, UpdateSpecies(ctx, db, *acacia))

	require.NoError(t, SeedSpecies(ctx, db))
	after, err := GetSpecies(ctx, db, "Acacia spp.")
	require.NoError(t, err)
	assert.Equal(t, 0.7, after.WoodDensity)

	all, err := ListSpecies(ctx, db)
	require.NoError(t, err)
	assert.Len(t, all, len(model.DefaultSpecies()))
}

func TestGetSpeciesAbsentReturnsNil(t *testing.T) {
	db := newTestDB(t)

	s, err := GetSpecies(context.Background(), db, "Nonexistens arborus")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestWoodDensityResolver(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, SeedSpecies(ctx, db))

	resolve, err := WoodDensityResolver(ctx, db)
	require.NoError(t, err)

	d, ok := resolve("Acacia spp.")
	assert.True(t, ok)
	assert.Equal(t, 0.65, d)

	_, ok = resolve("Ficus sycomorus")
	assert.False(t, ok)
}

func sampleTree(id, institution string) *model.Tree {
	tree := model.NewTree(institution, "Acacia", "Acacia spp.")
	tree.TreeID = id
	tree.DatePlanted = "2026-03-14"
	return tree
}

func TestInsertAndGetTree(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tree := sampleTree("GRE001", "Greenwood High")
	tree.Latitude = ptr(-1.2864)
	tree.Longitude = ptr(36.8172)
	require.NoError(t, InsertTree(ctx, db, tree))

	got, err := GetTree(ctx, db, "GRE001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Greenwood High", got.Institution)
	assert.Equal(t, model.TreeStageYoung, got.TreeStage)
	require.NotNil(t, got.RCDCm)
	assert.Equal(t, model.DefaultSeedlingRCDCm, *got.RCDCm)
	assert.Nil(t, got.DBHCm)
	require.NotNil(t, got.Latitude)
	assert.Equal(t, -1.2864, *got.Latitude)
	assert.Nil(t, got.AdopterName)
}

func TestGetTreeAbsentReturnsNil(t *testing.T) {
	db := newTestDB(t)

	got, err := GetTree(context.Background(), db, "GRE999")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInsertTreeDuplicateIdentifierFails(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, InsertTree(ctx, db, sampleTree("GRE001", "Greenwood High")))
	err := InsertTree(ctx, db, sampleTree("GRE001", "Greenfield Academy"))
	require.Error(t, err, "tree_id is the primary key")
}

func TestListTreesFilters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, InsertTree(ctx, db, sampleTree("GRE001", "Greenwood High")))
	require.NoError(t, InsertTree(ctx, db, sampleTree("OAK001", "Oak Ridge")))

	dead := sampleTree("GRE002", "Greenwood High")
	dead.Status = model.TreeStatusDead
	require.NoError(t, InsertTree(ctx, db, dead))

	adopted := sampleTree("GRE003", "Greenwood High")
	adopted.Status = model.TreeStatusAdopted
	adopted.AdopterName = ptr("Wanjiku")
	require.NoError(t, InsertTree(ctx, db, adopted))

	all, err := ListTrees(ctx, db, TreeFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	greenwood, err := ListTrees(ctx, db, TreeFilter{Institution: "greenwood high"})
	require.NoError(t, err)
	assert.Len(t, greenwood, 3, "institution filter is case-insensitive")

	alive, err := ListTrees(ctx, db, TreeFilter{Status: model.TreeStatusAlive})
	require.NoError(t, err)
	assert.Len(t, alive, 2)

	adoptable, err := ListTrees(ctx, db, TreeFilter{Institution: "Greenwood High", Adoptable: true})
	require.NoError(t, err)
	require.Len(t, adoptable, 1)
	assert.Equal(t, "GRE001", adoptable[0].TreeID)
}

func TestUpdateTreeIsRowLevel(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, InsertTree(ctx, db, sampleTree("GRE001", "Greenwood High")))
	require.NoError(t, InsertTree(ctx, db, sampleTree("GRE002", "Greenwood High")))

	tree, err := GetTree(ctx, db, "GRE001")
	require.NoError(t, err)
	tree.ApplyMeasurement(model.TreeStageMature, ptr(12.5))
	tree.HeightM = 4.2
	tree.CO2Kg = 38.11
	require.NoError(t, UpdateTree(ctx, db, tree))

	updated, err := GetTree(ctx, db, "GRE001")
	require.NoError(t, err)
	assert.Equal(t, model.TreeStageMature, updated.TreeStage)
	assert.Nil(t, updated.RCDCm, "stage flip clears the inactive measurement")
	require.NotNil(t, updated.DBHCm)
	assert.Equal(t, 12.5, *updated.DBHCm)
	assert.Equal(t, 4.2, updated.HeightM)

	untouched, err := GetTree(ctx, db, "GRE002")
	require.NoError(t, err)
	assert.Equal(t, model.TreeStageYoung, untouched.TreeStage)
	assert.Equal(t, model.DefaultSeedlingHeightM, untouched.HeightM)
}

func TestUpdateTreeAbsentErrors(t *testing.T) {
	db := newTestDB(t)

	err := UpdateTree(context.Background(), db, sampleTree("GRE404", "Greenwood High"))
	require.Error(t, err)
}

func TestListTreesWithCoordinates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	located := sampleTree("GRE001", "Greenwood High")
	located.Latitude = ptr(-1.2864)
	located.Longitude = ptr(36.8172)
	require.NoError(t, InsertTree(ctx, db, located))
	require.NoError(t, InsertTree(ctx, db, sampleTree("GRE002", "Greenwood High")))

	got, err := ListTreesWithCoordinates(ctx, db)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "GRE001", got[0].TreeID)
}

func TestUserLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u := model.NewUser("institution1", model.RoleSchool)
	u.Institution = "Greenwood High"
	u.PasswordHash = "notahash"
	require.NoError(t, CreateUser(ctx, db, u))

	got, err := GetUser(ctx, db, "institution1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.RoleSchool, got.Role)
	assert.Equal(t, "Greenwood High", got.Institution)
	assert.True(t, got.IsActive)

	got.Role = model.RoleAdmin
	got.IsActive = false
	require.NoError(t, UpdateUser(ctx, db, got))

	updated, err := GetUser(ctx, db, "institution1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, updated.Role)
	assert.False(t, updated.IsActive)

	require.NoError(t, DeleteUser(ctx, db, "institution1"))
	gone, err := GetUser(ctx, db, "institution1")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestAdoptionReceiptLog(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, InsertTree(ctx, db, sampleTree("GRE001", "Greenwood High")))
	require.NoError(t, InsertTree(ctx, db, sampleTree("GRE002", "Greenwood High")))

	first := model.NewAdoption("GRE001", "Wanjiku")
	first.AdoptedAt = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, InsertAdoption(ctx, db, first))

	second := model.NewAdoption("GRE002", "Otieno")
	second.AdoptedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, InsertAdoption(ctx, db, second))

	log, err := ListAdoptions(ctx, db)
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, "GRE002", log[0].TreeID, "most recent first")
	assert.NotEmpty(t, log[0].AdoptionID)
}

func TestMetadataHighWaterMark(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	missing, err := GetLastApplied(ctx, db, "provisioning_last_applied")
	require.NoError(t, err)
	assert.True(t, missing.IsZero())

	mark := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	require.NoError(t, SaveLastApplied(ctx, db, "provisioning_last_applied", mark))

	got, err := GetLastApplied(ctx, db, "provisioning_last_applied")
	require.NoError(t, err)
	assert.True(t, got.Equal(mark))

	later := mark.Add(24 * time.Hour)
	require.NoError(t, SaveLastApplied(ctx, db, "provisioning_last_applied", later))
	got, err = GetLastApplied(ctx, db, "provisioning_last_applied")
	require.NoError(t, err)
	assert.True(t, got.Equal(later))
}
