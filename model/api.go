// Package model - API types for combining models in API requests/responses
package model

// TreeWithDistance decorates a tree with its distance from the caller's
// search point for nearby queries.
type TreeWithDistance struct {
	Tree
	DistanceM float64 `json:"distance_m"`
}

// AdoptionReceipt combines the adoption record with the adopted tree for the
// response handed back to the adopter.
type AdoptionReceipt struct {
	Adoption
	Tree Tree `json:"tree"`
}

// PlantTreeRequest is the payload for registering a new planting. School
// callers plant for their own institution; the field is only honored for
// admins.
type PlantTreeRequest struct {
	Institution    string   `json:"institution,omitempty"`
	LocalName      string   `json:"local_name"`
	ScientificName string   `json:"scientific_name"`
	StudentName    string   `json:"student_name,omitempty"`
	DatePlanted    string   `json:"date_planted,omitempty"` // YYYY-MM-DD, today when empty
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	County         string   `json:"county,omitempty"`
	SubCounty      string   `json:"sub_county,omitempty"`
	Ward           string   `json:"ward,omitempty"`
}

// TreeUpdateRequest is a monitoring update. Nil fields keep the current
// values; a stage change must carry the measurement for the new stage.
type TreeUpdateRequest struct {
	TreeStage   *string  `json:"tree_stage,omitempty"`
	Measurement *float64 `json:"measurement,omitempty"`
	HeightM     *float64 `json:"height_m,omitempty"`
	Status      *string  `json:"status,omitempty"`
	LocalName   *string  `json:"local_name,omitempty"`
	StudentName *string  `json:"student_name,omitempty"`
}
