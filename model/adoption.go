// Package model provides data models for the grove system.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Adoption is the receipt written when a public user adopts a tree. The
// authoritative adopted state lives on the tree row; receipts are the audit
// trail behind it.
type Adoption struct {
	AdoptionID  string    `json:"adoption_id"` // Certificate number handed to the adopter.
	TreeID      string    `json:"tree_id"`
	AdopterName string    `json:"adopter_name"`
	AdoptedAt   time.Time `json:"adopted_at"`
}

// NewAdoption creates a receipt with a fresh certificate number.
func NewAdoption(treeID, adopterName string) *Adoption {
	return &Adoption{
		AdoptionID:  uuid.New().String(),
		TreeID:      treeID,
		AdopterName: adopterName,
		AdoptedAt:   time.Now().UTC(),
	}
}
