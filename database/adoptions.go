// Package database - adoption receipt queries
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/grovetrack/grove-backend/model"
)

func insertAdoption(ctx context.Context, e execer, a *model.Adoption) error {
	_, err := e.ExecContext(ctx,
		`INSERT INTO adoptions (adoption_id, tree_id, adopter_name, adopted_at)
		 VALUES (?, ?, ?, ?)`,
		a.AdoptionID, a.TreeID, a.AdopterName, a.AdoptedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert adoption for tree %q: %w", a.TreeID, err)
	}
	return nil
}

// InsertAdoption records an adoption receipt
func InsertAdoption(ctx context.Context, db DBConnection, a *model.Adoption) error {
	return insertAdoption(ctx, db.DB, a)
}

// InsertAdoptionTx records an adoption receipt inside a caller-owned transaction
func InsertAdoptionTx(ctx context.Context, tx *sql.Tx, a *model.Adoption) error {
	return insertAdoption(ctx, tx, a)
}

// ListAdoptions returns the receipt log, most recent first
func ListAdoptions(ctx context.Context, db DBConnection) ([]model.Adoption, error) {
	rows, err := db.DB.QueryContext(ctx,
		`SELECT adoption_id, tree_id, adopter_name, adopted_at
		   FROM adoptions ORDER BY adopted_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list adoptions: %w", err)
	}
	defer rows.Close()

	var out []model.Adoption
	for rows.Next() {
		var a model.Adoption
		var adoptedAt string
		if err := rows.Scan(&a.AdoptionID, &a.TreeID, &a.AdopterName, &adoptedAt); err != nil {
			return nil, fmt.Errorf("scan adoption: %w", err)
		}
		a.AdoptedAt, _ = time.Parse(time.RFC3339, adoptedAt)
		out = append(out, a)
	}
	return out, rows.Err()
}
