package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/grovetrack/grove-backend/database"
	"github.com/grovetrack/grove-backend/model"
)

var (
	flagExportFormat string
	flagExportTable  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump a table to stdout as CSV or JSON",
	Long:  "Writes the full contents of one table to stdout with a stable column order, suitable for spreadsheets and diff-based checks.",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&flagExportFormat, "format", "csv", "output format: csv|json")
	exportCmd.Flags().StringVar(&flagExportTable, "table", "trees", "table to export: trees|species")
}

func runExport(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	return exportTable(context.Background(), db, os.Stdout, flagExportTable, flagExportFormat)
}

// exportTable writes one table to w. Rows keep the store's ordering (trees
// by identifier, species by scientific name) so repeated exports diff clean.
func exportTable(ctx context.Context, db database.DBConnection, w io.Writer, table, format string) error {
	switch table {
	case "trees":
		trees, err := database.ListTrees(ctx, db, database.TreeFilter{})
		if err != nil {
			return err
		}
		if trees == nil {
			trees = []model.Tree{}
		}
		switch format {
		case "csv":
			return writeTreesCSV(w, trees)
		case "json":
			return writeJSON(w, trees)
		}
	case "species":
		species, err := database.ListSpecies(ctx, db)
		if err != nil {
			return err
		}
		if species == nil {
			species = []model.Species{}
		}
		switch format {
		case "csv":
			return writeSpeciesCSV(w, species)
		case "json":
			return writeJSON(w, species)
		}
	default:
		return fmt.Errorf("unknown table %q (want trees or species)", table)
	}
	return fmt.Errorf("unknown format %q (want csv or json)", format)
}

// treeCSVHeader pins the column order; golden tests depend on it.
var treeCSVHeader = []string{
	"tree_id", "institution", "local_name", "scientific_name", "student_name",
	"date_planted", "tree_stage", "rcd_cm", "dbh_cm", "height_m",
	"latitude", "longitude", "co2_kg", "status",
	"county", "sub_county", "ward", "adopter_name",
}

func writeTreesCSV(w io.Writer, trees []model.Tree) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(treeCSVHeader); err != nil {
		return err
	}
	for _, t := range trees {
		rec := []string{
			t.TreeID, t.Institution, t.LocalName, t.ScientificName, t.StudentName,
			t.DatePlanted, string(t.TreeStage), floatPtrField(t.RCDCm), floatPtrField(t.DBHCm), floatField(t.HeightM),
			floatPtrField(t.Latitude), floatPtrField(t.Longitude), floatField(t.CO2Kg), string(t.Status),
			t.County, t.SubCounty, t.Ward, stringPtrField(t.AdopterName),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeSpeciesCSV(w io.Writer, species []model.Species) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"scientific_name", "local_name", "wood_density", "benefits"}); err != nil {
		return err
	}
	for _, s := range species {
		rec := []string{s.ScientificName, s.LocalName, floatField(s.WoodDensity), s.Benefits}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func floatField(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func floatPtrField(f *float64) string {
	if f == nil {
		return ""
	}
	return floatField(*f)
}

func stringPtrField(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
