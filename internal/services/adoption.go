package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/grovetrack/grove-backend/database"
	"github.com/grovetrack/grove-backend/internal/metrics"
	"github.com/grovetrack/grove-backend/model"
)

// Adoption failures callers are expected to branch on.
var (
	ErrTreeNotFound = errors.New("tree not found")
	ErrNotAdoptable = errors.New("tree is not available for adoption")
)

// AdoptionService owns the adoption write path. The claim is a conditional
// update inside one transaction, so two adopters racing for the same tree
// cannot both receive a receipt.
type AdoptionService struct {
	DB database.DBConnection
}

// NewAdoptionService creates an AdoptionService backed by the given store.
func NewAdoptionService(db database.DBConnection) *AdoptionService {
	return &AdoptionService{DB: db}
}

// AdoptTree claims a tree for the named adopter and records the receipt.
// Returns ErrTreeNotFound for unknown identifiers and ErrNotAdoptable when
// the tree is dead or already claimed.
func (s *AdoptionService) AdoptTree(ctx context.Context, treeID, adopterName string) (*model.AdoptionReceipt, error) {
	adopterName = strings.TrimSpace(adopterName)
	if adopterName == "" {
		return nil, &ValidationError{Msg: "adopter_name is required"}
	}

	tx, err := s.DB.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin adoption transaction: %w", err)
	}
	defer tx.Rollback()

	claimed, err := database.ClaimTreeForAdoptionTx(ctx, tx, treeID, adopterName)
	if err != nil {
		return nil, err
	}
	if !claimed {
		tree, err := database.GetTreeTx(ctx, tx, treeID)
		if err != nil {
			return nil, err
		}
		if tree == nil {
			return nil, fmt.Errorf("adopt %q: %w", treeID, ErrTreeNotFound)
		}
		return nil, fmt.Errorf("adopt %q: %w", treeID, ErrNotAdoptable)
	}

	adoption := model.NewAdoption(treeID, adopterName)
	if err := database.InsertAdoptionTx(ctx, tx, adoption); err != nil {
		return nil, err
	}
	tree, err := database.GetTreeTx(ctx, tx, treeID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit adoption transaction: %w", err)
	}

	metrics.TreesAdopted.Inc()
	logger.Sugar().Infof("Tree %s adopted by %s (receipt %s)", treeID, adopterName, adoption.AdoptionID)
	return &model.AdoptionReceipt{Adoption: *adoption, Tree: *tree}, nil
}
