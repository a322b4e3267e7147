// Package model defines the data structures used by grove-backend,
// including trees, species reference data, and adoption receipts.
package model

import "time"

// TreeStatus represents the lifecycle state of a tree record
type TreeStatus string

const (
	// TreeStatusAlive marks a growing tree that may still be adopted.
	TreeStatusAlive TreeStatus = "Alive"
	// TreeStatusDead marks a tree reported dead; the record stays for history.
	TreeStatusDead TreeStatus = "Dead"
	// TreeStatusAdopted marks a living tree claimed by a public adopter.
	TreeStatusAdopted TreeStatus = "Adopted"
)

// TreeStage selects which stem measurement is authoritative for a tree
type TreeStage string

const (
	// TreeStageYoung measures seedlings by root-collar diameter.
	TreeStageYoung TreeStage = "Young (RCD)"
	// TreeStageMature measures established trees by diameter at breast height.
	TreeStageMature TreeStage = "Mature (DBH)"
)

// Seedling defaults applied when an institution registers a new planting.
const (
	DefaultSeedlingRCDCm   = 0.1
	DefaultSeedlingHeightM = 0.5
)

// Tree represents a registered tree
type Tree struct {
	TreeID         string     `json:"tree_id"` // Allocator-assigned, immutable after creation.
	Institution    string     `json:"institution"`
	LocalName      string     `json:"local_name"`
	ScientificName string     `json:"scientific_name"` // Species reference key.
	StudentName    string     `json:"student_name,omitempty"`
	DatePlanted    string     `json:"date_planted"` // YYYY-MM-DD
	TreeStage      TreeStage  `json:"tree_stage"`
	RCDCm          *float64   `json:"rcd_cm"` // Active when stage is Young (RCD).
	DBHCm          *float64   `json:"dbh_cm"` // Active when stage is Mature (DBH).
	HeightM        float64    `json:"height_m"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
	CO2Kg          float64    `json:"co2_kg"` // Derived from species + active measurement; never edited directly.
	Status         TreeStatus `json:"status"`
	County         string     `json:"county,omitempty"`
	SubCounty      string     `json:"sub_county,omitempty"`
	Ward           string     `json:"ward,omitempty"`
	AdopterName    *string    `json:"adopter_name,omitempty"`
}

// NewTree creates a tree record with seedling defaults. The identifier is
// allocated by the planting service at persist time.
func NewTree(institution, localName, scientificName string) *Tree {
	rcd := DefaultSeedlingRCDCm
	return &Tree{
		Institution:    institution,
		LocalName:      localName,
		ScientificName: scientificName,
		DatePlanted:    time.Now().Format("2006-01-02"),
		TreeStage:      TreeStageYoung,
		RCDCm:          &rcd,
		HeightM:        DefaultSeedlingHeightM,
		Status:         TreeStatusAlive,
	}
}

// ApplyMeasurement stores the measurement under the given stage and clears
// the inactive column, so exactly one of rcd/dbh is set afterwards.
func (t *Tree) ApplyMeasurement(stage TreeStage, value *float64) {
	t.TreeStage = stage
	if stage == TreeStageMature {
		t.DBHCm = value
		t.RCDCm = nil
	} else {
		t.RCDCm = value
		t.DBHCm = nil
	}
}

// ActiveMeasurement returns the measurement selected by the tree's stage.
func (t *Tree) ActiveMeasurement() *float64 {
	if t.TreeStage == TreeStageMature {
		return t.DBHCm
	}
	return t.RCDCm
}

// IsAdoptable reports whether a public user may adopt the tree.
func (t *Tree) IsAdoptable() bool {
	return t.Status == TreeStatusAlive && (t.AdopterName == nil || *t.AdopterName == "")
}

// HasCoordinates reports whether the tree was registered with a location.
func (t *Tree) HasCoordinates() bool {
	return t.Latitude != nil && t.Longitude != nil
}

// ParseTreeStatus validates a status value from a request
func ParseTreeStatus(s string) (TreeStatus, bool) {
	switch TreeStatus(s) {
	case TreeStatusAlive, TreeStatusDead, TreeStatusAdopted:
		return TreeStatus(s), true
	}
	return "", false
}

// ParseTreeStage validates a growth-stage value from a request
func ParseTreeStage(s string) (TreeStage, bool) {
	switch TreeStage(s) {
	case TreeStageYoung, TreeStageMature:
		return TreeStage(s), true
	}
	return "", false
}
