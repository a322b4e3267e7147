// Package database - species reference-table queries
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/grovetrack/grove-backend/model"
	"github.com/grovetrack/grove-backend/util"
)

// GetSpecies returns one species by scientific name, or nil when absent
func GetSpecies(ctx context.Context, db DBConnection, scientificName string) (*model.Species, error) {
	row := db.DB.QueryRowContext(ctx,
		`SELECT scientific_name, local_name, wood_density, benefits
		   FROM species WHERE scientific_name = ?`, scientificName)

	var s model.Species
	if err := row.Scan(&s.ScientificName, &s.LocalName, &s.WoodDensity, &s.Benefits); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get species %q: %w", scientificName, err)
	}
	return &s, nil
}

// ListSpecies returns the full reference table ordered by scientific name
func ListSpecies(ctx context.Context, db DBConnection) ([]model.Species, error) {
	rows, err := db.DB.QueryContext(ctx,
		`SELECT scientific_name, local_name, wood_density, benefits
		   FROM species ORDER BY scientific_name`)
	if err != nil {
		return nil, fmt.Errorf("list species: %w", err)
	}
	defer rows.Close()

	var out []model.Species
	for rows.Next() {
		var s model.Species
		if err := rows.Scan(&s.ScientificName, &s.LocalName, &s.WoodDensity, &s.Benefits); err != nil {
			return nil, fmt.Errorf("scan species: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CreateSpecies inserts a new reference row
func CreateSpecies(ctx context.Context, db DBConnection, s model.Species) error {
	_, err := db.DB.ExecContext(ctx,
		`INSERT INTO species (scientific_name, local_name, wood_density, benefits)
		 VALUES (?, ?, ?, ?)`,
		s.ScientificName, s.LocalName, s.WoodDensity, s.Benefits)
	if err != nil {
		return fmt.Errorf("create species %q: %w", s.ScientificName, err)
	}
	return nil
}

// UpdateSpecies updates one reference row in place
func UpdateSpecies(ctx context.Context, db DBConnection, s model.Species) error {
	res, err := db.DB.ExecContext(ctx,
		`UPDATE species SET local_name = ?, wood_density = ?, benefits = ?
		  WHERE scientific_name = ?`,
		s.LocalName, s.WoodDensity, s.Benefits, s.ScientificName)
	if err != nil {
		return fmt.Errorf("update species %q: %w", s.ScientificName, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update species %q: no such species", s.ScientificName)
	}
	return nil
}

// WoodDensityResolver loads the reference table once and returns a snapshot
// lookup for the carbon estimator.
func WoodDensityResolver(ctx context.Context, db DBConnection) (util.DensityResolver, error) {
	rows, err := db.DB.QueryContext(ctx, `SELECT scientific_name, wood_density FROM species`)
	if err != nil {
		return nil, fmt.Errorf("load wood densities: %w", err)
	}
	defer rows.Close()

	densities := make(map[string]float64)
	for rows.Next() {
		var name string
		var density float64
		if err := rows.Scan(&name, &density); err != nil {
			return nil, fmt.Errorf("scan wood density: %w", err)
		}
		densities[name] = density
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return func(speciesKey string) (float64, bool) {
		d, ok := densities[speciesKey]
		return d, ok
	}, nil
}
