// Package dashboard implements the resolvers for dashboard metrics.
package dashboard

import (
	"context"
	"fmt"

	"github.com/grovetrack/grove-backend/database"
	"github.com/grovetrack/grove-backend/model"
	"github.com/grovetrack/grove-backend/util"
)

// ResolveOverview handles fetching the high-level dashboard metrics
func ResolveOverview(ctx context.Context, db database.DBConnection) (interface{}, error) {
	var institutions, totalTrees, adopted, alive, dead int
	var totalCO2 float64

	err := db.DB.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT institution),
		       COUNT(*),
		       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(co2_kg), 0)
		  FROM trees`,
		string(model.TreeStatusAdopted), string(model.TreeStatusAlive), string(model.TreeStatusDead),
	).Scan(&institutions, &totalTrees, &adopted, &alive, &dead, &totalCO2)
	if err != nil {
		return nil, fmt.Errorf("dashboard overview: %w", err)
	}

	return map[string]interface{}{
		"institutions":  institutions,
		"total_trees":   totalTrees,
		"adopted_trees": adopted,
		"alive_trees":   alive,
		"dead_trees":    dead,
		"total_co2_kg":  util.Round2(totalCO2),
	}, nil
}

// ResolveCO2ByInstitution returns sequestration totals per institution, largest first
func ResolveCO2ByInstitution(ctx context.Context, db database.DBConnection) ([]map[string]interface{}, error) {
	rows, err := db.DB.QueryContext(ctx, `
		SELECT institution, COALESCE(SUM(co2_kg), 0) AS co2, COUNT(*) AS n
		  FROM trees
		 GROUP BY institution
		 ORDER BY co2 DESC, institution`)
	if err != nil {
		return nil, fmt.Errorf("co2 by institution: %w", err)
	}
	defer rows.Close()

	out := []map[string]interface{}{}
	for rows.Next() {
		var institution string
		var co2 float64
		var count int
		if err := rows.Scan(&institution, &co2, &count); err != nil {
			return nil, fmt.Errorf("scan co2 row: %w", err)
		}
		out = append(out, map[string]interface{}{
			"institution": institution,
			"co2_kg":      util.Round2(co2),
			"tree_count":  count,
		})
	}
	return out, rows.Err()
}

// ResolveStatusDistribution fetches the current breakdown of tree statuses
func ResolveStatusDistribution(ctx context.Context, db database.DBConnection) ([]map[string]interface{}, error) {
	rows, err := db.DB.QueryContext(ctx, `
		SELECT status, COUNT(*) AS n
		  FROM trees
		 GROUP BY status
		 ORDER BY n DESC, status`)
	if err != nil {
		return nil, fmt.Errorf("status distribution: %w", err)
	}
	defer rows.Close()

	out := []map[string]interface{}{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status row: %w", err)
		}
		out = append(out, map[string]interface{}{
			"status": status,
			"count":  count,
		})
	}
	return out, rows.Err()
}

// ResolveTopSpecies fetches the most-planted species with their reference names
func ResolveTopSpecies(ctx context.Context, db database.DBConnection, limit int) ([]map[string]interface{}, error) {
	// A negative LIMIT means unbounded in SQLite.
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.DB.QueryContext(ctx, `
		SELECT t.scientific_name, COALESCE(s.local_name, ''), COUNT(*) AS planted
		  FROM trees t
		  LEFT JOIN species s ON s.scientific_name = t.scientific_name
		 GROUP BY t.scientific_name
		 ORDER BY planted DESC, t.scientific_name
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("top species: %w", err)
	}
	defer rows.Close()

	out := []map[string]interface{}{}
	for rows.Next() {
		var scientific, local string
		var count int
		if err := rows.Scan(&scientific, &local, &count); err != nil {
			return nil, fmt.Errorf("scan species row: %w", err)
		}
		out = append(out, map[string]interface{}{
			"scientific_name": scientific,
			"local_name":      local,
			"count":           count,
		})
	}
	return out, rows.Err()
}

// ResolvePlantingTimeline returns the cumulative planting curve for one institution.
// Dates are YYYY-MM-DD strings so lexical order is chronological order.
func ResolvePlantingTimeline(ctx context.Context, db database.DBConnection, institution string) ([]map[string]interface{}, error) {
	rows, err := db.DB.QueryContext(ctx, `
		SELECT date_planted, COUNT(*) AS n
		  FROM trees
		 WHERE LOWER(TRIM(institution)) = LOWER(TRIM(?)) AND date_planted != ''
		 GROUP BY date_planted
		 ORDER BY date_planted`, institution)
	if err != nil {
		return nil, fmt.Errorf("planting timeline: %w", err)
	}
	defer rows.Close()

	out := []map[string]interface{}{}
	cumulative := 0
	for rows.Next() {
		var date string
		var count int
		if err := rows.Scan(&date, &count); err != nil {
			return nil, fmt.Errorf("scan timeline row: %w", err)
		}
		cumulative += count
		out = append(out, map[string]interface{}{
			"date":             date,
			"cumulative_count": cumulative,
		})
	}
	return out, rows.Err()
}

// ResolveHeightDistribution buckets the recorded heights of one institution's
// trees into an evenly-spaced histogram
func ResolveHeightDistribution(ctx context.Context, db database.DBConnection, institution string, buckets int) ([]map[string]interface{}, error) {
	if buckets <= 0 {
		buckets = 8
	}

	rows, err := db.DB.QueryContext(ctx, `
		SELECT height_m
		  FROM trees
		 WHERE LOWER(TRIM(institution)) = LOWER(TRIM(?))`, institution)
	if err != nil {
		return nil, fmt.Errorf("height distribution: %w", err)
	}
	defer rows.Close()

	var heights []float64
	for rows.Next() {
		var h float64
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scan height row: %w", err)
		}
		heights = append(heights, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := []map[string]interface{}{}
	if len(heights) == 0 {
		return out, nil
	}

	minH, maxH := heights[0], heights[0]
	for _, h := range heights[1:] {
		if h < minH {
			minH = h
		}
		if h > maxH {
			maxH = h
		}
	}

	// All heights equal: a single bucket carries everything.
	if maxH == minH {
		return append(out, map[string]interface{}{
			"lower_m": util.Round2(minH),
			"upper_m": util.Round2(maxH),
			"count":   len(heights),
		}), nil
	}

	width := (maxH - minH) / float64(buckets)
	counts := make([]int, buckets)
	for _, h := range heights {
		idx := int((h - minH) / width)
		if idx >= buckets { // the max value lands in the last bucket
			idx = buckets - 1
		}
		counts[idx]++
	}

	for i, count := range counts {
		out = append(out, map[string]interface{}{
			"lower_m": util.Round2(minH + width*float64(i)),
			"upper_m": util.Round2(minH + width*float64(i+1)),
			"count":   count,
		})
	}
	return out, nil
}

// ResolveInstitutionSummary calculates the totals panel for one institution
func ResolveInstitutionSummary(ctx context.Context, db database.DBConnection, institution string) (map[string]interface{}, error) {
	var totalTrees, alive, dead, adopted, speciesCount int
	var totalCO2, avgHeight float64

	err := db.DB.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		       COUNT(DISTINCT scientific_name),
		       COALESCE(SUM(co2_kg), 0),
		       COALESCE(AVG(height_m), 0)
		  FROM trees
		 WHERE LOWER(TRIM(institution)) = LOWER(TRIM(?))`,
		string(model.TreeStatusAlive), string(model.TreeStatusDead), string(model.TreeStatusAdopted),
		institution,
	).Scan(&totalTrees, &alive, &dead, &adopted, &speciesCount, &totalCO2, &avgHeight)
	if err != nil {
		return nil, fmt.Errorf("institution summary: %w", err)
	}

	return map[string]interface{}{
		"institution":   institution,
		"total_trees":   totalTrees,
		"alive_trees":   alive,
		"dead_trees":    dead,
		"adopted_trees": adopted,
		"species_count": speciesCount,
		"total_co2_kg":  util.Round2(totalCO2),
		"avg_height_m":  util.Round2(avgHeight),
	}, nil
}
