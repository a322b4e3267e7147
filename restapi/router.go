// Package restapi provides the main router and initialization for REST API endpoints.
package restapi

import (
	"context"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"github.com/grovetrack/grove-backend/database"
	"github.com/grovetrack/grove-backend/internal/services"
	"github.com/grovetrack/grove-backend/model"
	"github.com/grovetrack/grove-backend/restapi/modules/admin"
	"github.com/grovetrack/grove-backend/restapi/modules/adoptions"
	"github.com/grovetrack/grove-backend/restapi/modules/auth"
	"github.com/grovetrack/grove-backend/restapi/modules/species"
	"github.com/grovetrack/grove-backend/restapi/modules/trees"
	"github.com/grovetrack/grove-backend/util"
)

// SetupRoutes configures all REST API routes and the GraphQL endpoint.
// CORS is handled globally in internal/api/fiber.go.
func SetupRoutes(app *fiber.App, db database.DBConnection, schema graphql.Schema) {

	// Background initialization tasks
	go func() {
		if err := auth.BootstrapAdmin(context.Background(), db); err != nil {
			log.Printf("WARNING: Failed to bootstrap admin: %v", err)
		}
	}()

	go autoApplyProvisioningOnStartup(db)

	planting := services.NewPlantingService(db)
	adoption := services.NewAdoptionService(db)
	mailer := adoptions.LoadMailer()

	// API Group /api/v1
	api := app.Group("/api/v1")

	// GraphQL Route - Mounted within the api group to inherit path prefixes
	api.Post("/graphql", auth.OptionalAuth, GraphQLHandler(schema))

	// Auth Routes
	authGroup := api.Group("/auth")
	authGroup.Post("/login", auth.Login(db))
	authGroup.Post("/logout", auth.Logout())
	authGroup.Get("/me", auth.RequireAuth, auth.Me(db))
	authGroup.Post("/change-password", auth.RequireAuth, auth.ChangePassword(db))
	authGroup.Post("/refresh", auth.RefreshToken())

	// User Management (Admin)
	userGroup := api.Group("/users", auth.RequireAuth, auth.RequireRole(model.RoleAdmin))
	userGroup.Get("/", auth.ListUsers(db))
	userGroup.Post("/", auth.CreateUser(db))
	userGroup.Get("/:username", auth.GetUser(db))
	userGroup.Put("/:username", auth.UpdateUser(db))
	userGroup.Delete("/:username", auth.DeleteUser(db))

	// Account Provisioning (Admin)
	provisionGroup := api.Group("/provisioning", auth.RequireAuth, auth.RequireRole(model.RoleAdmin))
	provisionGroup.Post("/apply", auth.ApplyProvisioningConfig(db))
	provisionGroup.Get("/status", auth.GetProvisioningStatus(db))

	// Species reference table; reads are public, edits are admin-only
	speciesGroup := api.Group("/species")
	speciesGroup.Get("/", species.ListSpecies(db))
	speciesGroup.Post("/", auth.RequireAuth, auth.RequireRole(model.RoleAdmin), species.CreateSpecies(db))
	speciesGroup.Get("/:name", species.GetSpecies(db))
	speciesGroup.Put("/:name", auth.RequireAuth, auth.RequireRole(model.RoleAdmin), species.UpdateSpecies(db, planting))

	// Trees; /nearby is registered before /:id so it is not parsed as an id
	treeGroup := api.Group("/trees")
	treeGroup.Get("/", auth.RequireAuth, trees.ListTrees(db))
	treeGroup.Get("/nearby", trees.GetNearbyTrees(db))
	treeGroup.Get("/:id", auth.RequireAuth, trees.GetTree(db))
	treeGroup.Post("/", auth.RequireAuth, auth.RequireRole(model.RoleAdmin, model.RoleSchool), trees.PostTree(planting))
	treeGroup.Put("/:id", auth.RequireAuth, auth.RequireRole(model.RoleAdmin, model.RoleSchool), trees.PutTree(db, planting))
	treeGroup.Post("/:id/adopt", auth.RequireAuth, auth.RequireRole(model.RolePublic), adoptions.PostAdoption(db, adoption, mailer))

	// Adoptions
	adoptionGroup := api.Group("/adoptions")
	adoptionGroup.Get("/available", adoptions.ListAvailableTrees(db))
	adoptionGroup.Get("/", auth.RequireAuth, auth.RequireRole(model.RoleAdmin), adoptions.ListAdoptionReceipts(db))

	// Maintenance (Admin)
	adminGroup := api.Group("/admin", auth.RequireAuth, auth.RequireRole(model.RoleAdmin))
	adminGroup.Post("/recompute-co2", admin.PostRecomputeCO2(planting))
	adminGroup.Get("/recompute-co2/status", admin.GetRecomputeStatus())

	log.Println("API routes initialized successfully")
}

// autoApplyProvisioningOnStartup reconciles local accounts against the
// provisioning document named by GROVE_PROVISIONING_PATH, when one is set.
func autoApplyProvisioningOnStartup(db database.DBConnection) {
	configPath := util.GetEnvDefault("GROVE_PROVISIONING_PATH", "")
	if configPath == "" {
		return
	}
	if _, err := os.Stat(configPath); err != nil {
		log.Printf("WARNING: Provisioning config %s not readable: %v", configPath, err)
		return
	}

	config, err := auth.LoadProvisioningConfig(configPath)
	if err != nil {
		log.Printf("WARNING: Failed to load provisioning config: %v", err)
		return
	}

	result, err := auth.ApplyProvisioning(context.Background(), db, config)
	if err != nil {
		log.Printf("WARNING: Provisioning apply failed: %v", err)
		return
	}

	log.Printf("Provisioning apply complete: %d created, %d updated, %d removed",
		len(result.Created), len(result.Updated), len(result.Removed))
}
