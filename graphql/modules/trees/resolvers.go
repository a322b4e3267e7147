// Package trees implements the read-only resolvers over the grove store.
package trees

import (
	"context"
	"fmt"

	"github.com/grovetrack/grove-backend/database"
	"github.com/grovetrack/grove-backend/model"
)

// ResolveTrees lists tree records with optional institution and status filters
func ResolveTrees(ctx context.Context, db database.DBConnection, institution, status string, limit int) (interface{}, error) {
	filter := database.TreeFilter{Institution: institution}
	if status != "" {
		parsed, ok := model.ParseTreeStatus(status)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", status)
		}
		filter.Status = parsed
	}

	records, err := database.ListTrees(ctx, db, filter)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(records) > limit {
		return records[:limit], nil
	}
	return records, nil
}

// ResolveTree fetches one tree by its identifier; absent records resolve to null
func ResolveTree(ctx context.Context, db database.DBConnection, treeID string) (interface{}, error) {
	tree, err := database.GetTree(ctx, db, treeID)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, nil
	}
	return tree, nil
}

// ResolveSpeciesList fetches the species reference table
func ResolveSpeciesList(ctx context.Context, db database.DBConnection) (interface{}, error) {
	return database.ListSpecies(ctx, db)
}
