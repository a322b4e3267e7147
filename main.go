// Package main starts the grove-backend API server.
package main

import (
	"log"
	"os"

	"github.com/grovetrack/grove-backend/database"
	"github.com/grovetrack/grove-backend/internal/api"
	"github.com/grovetrack/grove-backend/restapi/modules/auth"
)

func main() {
	// The signing secret must be pinned before any handler can mint a token.
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		auth.SetJWTSecret(secret)
	} else {
		log.Printf("WARNING: JWT_SECRET not set, using the development default")
	}

	// Initialize database connection
	db := database.InitializeDatabase()

	app := api.NewFiberApp(db)

	// Get port from environment or default to 3000
	port := os.Getenv("MS_PORT")
	if port == "" {
		port = "3000"
	}

	// Start server
	log.Printf("Starting server on port %s", port)
	log.Printf("GraphQL endpoint available at /api/v1/graphql")
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
