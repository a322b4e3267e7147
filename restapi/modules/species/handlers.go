// Package species implements the REST API handlers for the species
// reference table. Reads are public; writes are admin only and keep the
// stored CO2 estimates consistent with the edited wood density.
package species

import (
	"context"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/grovetrack/grove-backend/database"
	"github.com/grovetrack/grove-backend/model"
)

// DensityRecomputer re-derives stored CO2 estimates after a density change.
type DensityRecomputer interface {
	RecomputeCO2ForSpecies(ctx context.Context, scientificName string) (int, error)
}

// pathName decodes the :name parameter, which carries scientific names with
// spaces ("Acacia spp.").
func pathName(c *fiber.Ctx) string {
	raw := c.Params("name")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// ListSpecies returns the full species reference table
func ListSpecies(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := database.ListSpecies(c.Context(), db)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list species"})
		}
		return c.JSON(fiber.Map{
			"species": list,
			"total":   len(list),
		})
	}
}

// GetSpecies returns one species by scientific name
func GetSpecies(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := pathName(c)

		sp, err := database.GetSpecies(c.Context(), db, name)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to look up species"})
		}
		if sp == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Species not found"})
		}
		return c.JSON(sp)
	}
}

// CreateSpecies adds a species to the reference table
func CreateSpecies(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.Species
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		req.ScientificName = strings.TrimSpace(req.ScientificName)
		req.LocalName = strings.TrimSpace(req.LocalName)
		if req.ScientificName == "" || req.LocalName == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "scientific_name and local_name are required"})
		}
		if req.WoodDensity <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "wood_density must be positive"})
		}

		ctx := c.Context()
		existing, err := database.GetSpecies(ctx, db, req.ScientificName)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to look up species"})
		}
		if existing != nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Species already exists"})
		}

		if err := database.CreateSpecies(ctx, db, req); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create species"})
		}
		return c.Status(fiber.StatusCreated).JSON(req)
	}
}

// UpdateSpecies edits a species row. A wood-density change triggers a
// recompute of every stored estimate for that species.
func UpdateSpecies(db database.DBConnection, recompute DensityRecomputer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := pathName(c)

		var req struct {
			LocalName   string   `json:"local_name"`
			WoodDensity *float64 `json:"wood_density"`
			Benefits    *string  `json:"benefits"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		ctx := c.Context()
		sp, err := database.GetSpecies(ctx, db, name)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to look up species"})
		}
		if sp == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Species not found"})
		}

		densityChanged := false
		if req.LocalName != "" {
			sp.LocalName = req.LocalName
		}
		if req.Benefits != nil {
			sp.Benefits = *req.Benefits
		}
		if req.WoodDensity != nil && *req.WoodDensity != sp.WoodDensity {
			if *req.WoodDensity <= 0 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "wood_density must be positive"})
			}
			sp.WoodDensity = *req.WoodDensity
			densityChanged = true
		}

		if err := database.UpdateSpecies(ctx, db, *sp); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update species"})
		}

		recomputed := 0
		if densityChanged {
			recomputed, err = recompute.RecomputeCO2ForSpecies(ctx, sp.ScientificName)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Species updated but CO2 recompute failed"})
			}
		}

		return c.JSON(fiber.Map{
			"species":    sp,
			"recomputed": recomputed,
		})
	}
}
