// Package adoptions implements the REST API handlers for the adoption flow:
// browsing adoptable trees, claiming one, and the receipts log.
package adoptions

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/grovetrack/grove-backend/database"
	"github.com/grovetrack/grove-backend/internal/services"
	"github.com/grovetrack/grove-backend/model"
	"github.com/grovetrack/grove-backend/restapi/modules/auth"
)

// Adopter is the adoption write path: an atomic claim plus receipt.
type Adopter interface {
	AdoptTree(ctx context.Context, treeID, adopterName string) (*model.AdoptionReceipt, error)
}

var _ Adopter = (*services.AdoptionService)(nil)

// AdoptionRequest is the body for claiming a tree
type AdoptionRequest struct {
	AdopterName string `json:"adopter_name"`
}

// ListAvailableTrees returns trees that are alive and unclaimed, optionally
// narrowed to one institution
func ListAvailableTrees(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := database.TreeFilter{
			Institution: c.Query("institution"),
			Adoptable:   true,
		}
		list, err := database.ListTrees(c.Context(), db, filter)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list trees"})
		}
		return c.JSON(fiber.Map{
			"trees": list,
			"total": len(list),
		})
	}
}

// PostAdoption claims the tree named in the path for the caller and issues a
// receipt. The adopter name defaults to the session username. The notice to
// the institution is sent in the background so a slow SMTP server cannot
// stall the response.
func PostAdoption(db database.DBConnection, adopter Adopter, mailer *Mailer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		treeID := c.Params("id")

		var req AdoptionRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		username, _, _, ok := auth.SessionUser(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
		}
		if req.AdopterName == "" {
			req.AdopterName = username
		}

		receipt, err := adopter.AdoptTree(c.Context(), treeID, req.AdopterName)
		if err != nil {
			var ve *services.ValidationError
			switch {
			case errors.As(err, &ve):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Msg})
			case errors.Is(err, services.ErrTreeNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tree not found"})
			case errors.Is(err, services.ErrNotAdoptable):
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Tree is not available for adoption"})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to adopt tree"})
			}
		}

		go NotifyInstitution(db, mailer, *receipt)

		return c.Status(fiber.StatusCreated).JSON(receipt)
	}
}

// ListAdoptionReceipts returns the adoption log, newest first
func ListAdoptionReceipts(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		receipts, err := database.ListAdoptions(c.Context(), db)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list adoptions"})
		}
		return c.JSON(fiber.Map{
			"adoptions": receipts,
			"total":     len(receipts),
		})
	}
}
