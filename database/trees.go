// Package database - tree record queries
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/grovetrack/grove-backend/model"
	"github.com/grovetrack/grove-backend/util"
)

// ErrDuplicateTreeID marks an insert that lost to an identifier already on
// record, which happens when two institutions share a prefix.
var ErrDuplicateTreeID = errors.New("duplicate tree identifier")

const treeColumns = `tree_id, institution, local_name, scientific_name, student_name,
	date_planted, tree_stage, rcd_cm, dbh_cm, height_m, latitude, longitude,
	co2_kg, status, county, sub_county, ward, adopter_name`

// rowScanner lets scanTree work on both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTree(r rowScanner) (*model.Tree, error) {
	var t model.Tree
	var rcd, dbh, lat, lon sql.NullFloat64
	var adopter sql.NullString

	err := r.Scan(&t.TreeID, &t.Institution, &t.LocalName, &t.ScientificName,
		&t.StudentName, &t.DatePlanted, &t.TreeStage, &rcd, &dbh, &t.HeightM,
		&lat, &lon, &t.CO2Kg, &t.Status, &t.County, &t.SubCounty, &t.Ward, &adopter)
	if err != nil {
		return nil, err
	}

	if rcd.Valid {
		t.RCDCm = &rcd.Float64
	}
	if dbh.Valid {
		t.DBHCm = &dbh.Float64
	}
	if lat.Valid {
		t.Latitude = &lat.Float64
	}
	if lon.Valid {
		t.Longitude = &lon.Float64
	}
	if adopter.Valid {
		t.AdopterName = &adopter.String
	}
	return &t, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertTree(ctx context.Context, e execer, t *model.Tree) error {
	_, err := e.ExecContext(ctx,
		`INSERT INTO trees (`+treeColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TreeID, t.Institution, t.LocalName, t.ScientificName, t.StudentName,
		t.DatePlanted, string(t.TreeStage), nullFloat(t.RCDCm), nullFloat(t.DBHCm),
		t.HeightM, nullFloat(t.Latitude), nullFloat(t.Longitude), t.CO2Kg,
		string(t.Status), t.County, t.SubCounty, t.Ward, nullString(t.AdopterName))
	if err != nil {
		var se sqlite3.Error
		if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("insert tree %q: %w", t.TreeID, ErrDuplicateTreeID)
		}
		return fmt.Errorf("insert tree %q: %w", t.TreeID, err)
	}
	return nil
}

// InsertTree inserts a complete tree row
func InsertTree(ctx context.Context, db DBConnection, t *model.Tree) error {
	return insertTree(ctx, db.DB, t)
}

// InsertTreeTx inserts a tree row inside a caller-owned transaction
func InsertTreeTx(ctx context.Context, tx *sql.Tx, t *model.Tree) error {
	return insertTree(ctx, tx, t)
}

// ListTreeRefsTx reads the identifier snapshot of an institution's trees
// inside a caller-owned transaction, for the allocator.
func ListTreeRefsTx(ctx context.Context, tx *sql.Tx, institution string) ([]util.TreeRef, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT tree_id, institution FROM trees
		  WHERE LOWER(TRIM(institution)) = LOWER(TRIM(?))`, institution)
	if err != nil {
		return nil, fmt.Errorf("list tree refs for %q: %w", institution, err)
	}
	defer rows.Close()

	var refs []util.TreeRef
	for rows.Next() {
		var ref util.TreeRef
		if err := rows.Scan(&ref.ID, &ref.Institution); err != nil {
			return nil, fmt.Errorf("scan tree ref: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func getTree(ctx context.Context, q rowQueryer, treeID string) (*model.Tree, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+treeColumns+` FROM trees WHERE tree_id = ?`, treeID)

	t, err := scanTree(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get tree %q: %w", treeID, err)
	}
	return t, nil
}

// GetTree returns one tree by identifier, or nil when absent
func GetTree(ctx context.Context, db DBConnection, treeID string) (*model.Tree, error) {
	return getTree(ctx, db.DB, treeID)
}

// GetTreeTx reads a tree inside an open transaction.
func GetTreeTx(ctx context.Context, tx *sql.Tx, treeID string) (*model.Tree, error) {
	return getTree(ctx, tx, treeID)
}

// TreeFilter narrows ListTrees. Zero values mean "no filter".
type TreeFilter struct {
	Institution string
	Species     string // scientific name
	Status      model.TreeStatus
	Adoptable   bool // Alive and without an adopter.
}

// ListTrees returns tree records matching the filter, newest identifier last
func ListTrees(ctx context.Context, db DBConnection, filter TreeFilter) ([]model.Tree, error) {
	query := `SELECT ` + treeColumns + ` FROM trees WHERE 1=1`
	args := []interface{}{}

	if filter.Institution != "" {
		query += ` AND LOWER(TRIM(institution)) = LOWER(TRIM(?))`
		args = append(args, filter.Institution)
	}
	if filter.Species != "" {
		query += ` AND scientific_name = ?`
		args = append(args, filter.Species)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Adoptable {
		query += ` AND status = 'Alive' AND (adopter_name IS NULL OR adopter_name = '')`
	}
	query += ` ORDER BY tree_id`

	rows, err := db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list trees: %w", err)
	}
	defer rows.Close()

	var out []model.Tree
	for rows.Next() {
		t, err := scanTree(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tree: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// ListTreesWithCoordinates returns trees that were registered with a location
func ListTreesWithCoordinates(ctx context.Context, db DBConnection) ([]model.Tree, error) {
	rows, err := db.DB.QueryContext(ctx,
		`SELECT `+treeColumns+` FROM trees
		  WHERE latitude IS NOT NULL AND longitude IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("list located trees: %w", err)
	}
	defer rows.Close()

	var out []model.Tree
	for rows.Next() {
		t, err := scanTree(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tree: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// UpdateTree rewrites the mutable columns of one tree row. The identifier
// and institution never change after creation.
func UpdateTree(ctx context.Context, db DBConnection, t *model.Tree) error {
	res, err := db.DB.ExecContext(ctx,
		`UPDATE trees SET local_name = ?, scientific_name = ?, student_name = ?,
		        date_planted = ?, tree_stage = ?, rcd_cm = ?, dbh_cm = ?,
		        height_m = ?, latitude = ?, longitude = ?, co2_kg = ?,
		        status = ?, county = ?, sub_county = ?, ward = ?, adopter_name = ?
		  WHERE tree_id = ?`,
		t.LocalName, t.ScientificName, t.StudentName, t.DatePlanted,
		string(t.TreeStage), nullFloat(t.RCDCm), nullFloat(t.DBHCm), t.HeightM,
		nullFloat(t.Latitude), nullFloat(t.Longitude), t.CO2Kg, string(t.Status),
		t.County, t.SubCounty, t.Ward, nullString(t.AdopterName), t.TreeID)
	if err != nil {
		return fmt.Errorf("update tree %q: %w", t.TreeID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update tree %q: no such tree", t.TreeID)
	}
	return nil
}

// UpdateTreeCO2 rewrites only the derived co2_kg column of one tree
func UpdateTreeCO2(ctx context.Context, db DBConnection, treeID string, co2Kg float64) error {
	res, err := db.DB.ExecContext(ctx,
		`UPDATE trees SET co2_kg = ? WHERE tree_id = ?`, co2Kg, treeID)
	if err != nil {
		return fmt.Errorf("update tree %q co2: %w", treeID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update tree %q co2: no such tree", treeID)
	}
	return nil
}

// SumCO2 returns the store-wide total of estimated sequestration
func SumCO2(ctx context.Context, db DBConnection) (float64, error) {
	var sum float64
	err := db.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(co2_kg), 0) FROM trees`).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum co2: %w", err)
	}
	return sum, nil
}

// ClaimTreeForAdoptionTx marks a tree adopted if and only if it is still
// adoptable. The conditional update makes the claim atomic; the boolean
// reports whether this caller won it.
func ClaimTreeForAdoptionTx(ctx context.Context, tx *sql.Tx, treeID, adopterName string) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE trees SET status = ?, adopter_name = ?
		  WHERE tree_id = ? AND status = ?
		    AND (adopter_name IS NULL OR adopter_name = '')`,
		string(model.TreeStatusAdopted), adopterName, treeID, string(model.TreeStatusAlive))
	if err != nil {
		return false, fmt.Errorf("claim tree %q: %w", treeID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim tree %q: %w", treeID, err)
	}
	return n == 1, nil
}

func nullFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

func nullString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
