// Package database - reference data seeding
package database

import (
	"context"
	"fmt"

	"github.com/grovetrack/grove-backend/model"
)

// SeedSpecies installs the default species rows when the reference table is
// empty. Re-running against a populated table is a no-op, so admin edits
// survive restarts.
func SeedSpecies(ctx context.Context, db DBConnection) error {
	var count int
	if err := db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM species`).Scan(&count); err != nil {
		return fmt.Errorf("count species: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, s := range model.DefaultSpecies() {
		if err := CreateSpecies(ctx, db, s); err != nil {
			return err
		}
	}

	logger.Sugar().Infof("Seeded %d default species", len(model.DefaultSpecies()))
	return nil
}
