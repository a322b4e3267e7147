package trees

import (
	"errors"
	"math"
	"sort"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/grovetrack/grove-backend/database"
	"github.com/grovetrack/grove-backend/internal/services"
	"github.com/grovetrack/grove-backend/model"
	"github.com/grovetrack/grove-backend/restapi/modules/auth"
	"github.com/grovetrack/grove-backend/util"
)

var _ Planter = (*services.PlantingService)(nil)

// PostTree registers a new planting. School users always plant for their own
// institution; admins name the institution in the body.
func PostTree(planter Planter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.PlantTreeRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		_, role, institution, ok := auth.SessionUser(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
		}
		if role == model.RoleSchool {
			req.Institution = institution
		}

		tree, err := planter.PlantTree(c.Context(), req)
		if err != nil {
			var ve *services.ValidationError
			var malformed *util.MalformedIdentifierError
			switch {
			case errors.As(err, &ve):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Msg})
			case errors.Is(err, database.ErrDuplicateTreeID):
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Tree identifier collision, retry the request"})
			case errors.As(err, &malformed):
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to register tree"})
			}
		}

		return c.Status(fiber.StatusCreated).JSON(tree)
	}
}

// ListTrees returns tree records. Admins see every institution and may
// filter by one; school users are always scoped to their own.
func ListTrees(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := database.TreeFilter{
			Species:   c.Query("species"),
			Adoptable: c.QueryBool("adoptable", false),
		}

		if status := c.Query("status"); status != "" {
			parsed, ok := model.ParseTreeStatus(status)
			if !ok {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown status filter"})
			}
			filter.Status = parsed
		}

		_, role, institution, ok := auth.SessionUser(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
		}
		switch role {
		case model.RoleAdmin:
			filter.Institution = c.Query("institution")
		case model.RoleSchool:
			filter.Institution = institution
		default:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
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

// GetTree returns one tree by identifier
func GetTree(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tree, err := database.GetTree(c.Context(), db, c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to look up tree"})
		}
		if tree == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tree not found"})
		}
		return c.JSON(tree)
	}
}

// PutTree applies a monitoring update. School users may only update trees of
// their own institution.
func PutTree(db database.DBConnection, planter Planter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		treeID := c.Params("id")

		var req model.TreeUpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		_, role, institution, ok := auth.SessionUser(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
		}

		existing, err := database.GetTree(c.Context(), db, treeID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to look up tree"})
		}
		if existing == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tree not found"})
		}

		caller := model.User{Role: role, Institution: institution}
		if !caller.CanManageTrees(existing.Institution) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
		}

		tree, err := planter.UpdateTree(c.Context(), treeID, req)
		if err != nil {
			var ve *services.ValidationError
			if errors.As(err, &ve) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Msg})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update tree"})
		}
		if tree == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tree not found"})
		}

		return c.JSON(tree)
	}
}

// GetNearbyTrees returns located trees within a radius of a point, nearest
// first, with the great-circle distance attached to each record.
func GetNearbyTrees(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
		if errLat != nil || errLon != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "lat and lon query parameters are required"})
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "lat/lon out of range"})
		}

		radius := DefaultNearbyRadiusM
		if raw := c.Query("radius"); raw != "" {
			r, err := strconv.ParseFloat(raw, 64)
			if err != nil || r <= 0 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "radius must be a positive number of meters"})
			}
			radius = math.Min(r, MaxNearbyRadiusM)
		}

		located, err := database.ListTreesWithCoordinates(c.Context(), db)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list trees"})
		}

		nearby := []model.TreeWithDistance{}
		for _, tree := range located {
			d := util.HaversineMeters(lat, lon, *tree.Latitude, *tree.Longitude)
			if d <= radius {
				nearby = append(nearby, model.TreeWithDistance{Tree: tree, DistanceM: util.Round2(d)})
			}
		}
		sort.Slice(nearby, func(i, j int) bool { return nearby[i].DistanceM < nearby[j].DistanceM })

		return c.JSON(fiber.Map{
			"trees":    nearby,
			"total":    len(nearby),
			"radius_m": radius,
		})
	}
}
