package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grovetrack/grove-backend/database"
	"github.com/grovetrack/grove-backend/internal/services"
	"github.com/grovetrack/grove-backend/model"
	"github.com/grovetrack/grove-backend/restapi/modules/auth"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the schema, seed species reference data, and bootstrap the admin account",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.SeedSpecies(ctx, db); err != nil {
		return err
	}
	if err := auth.BootstrapAdmin(ctx, db); err != nil {
		return err
	}

	fmt.Printf("Store ready at %s\n", db.Path)
	return nil
}

var seedDemoCmd = &cobra.Command{
	Use:   "seed-demo",
	Short: "Create demo accounts and a few sample trees",
	Long:  "Seeds the demo accounts institution1 (school, Greenwood High) and public1, then registers sample trees through the planting service. Safe to rerun: existing accounts and sample trees are left alone.",
	Args:  cobra.NoArgs,
	RunE:  runSeedDemo,
}

// demoTrees are the sample plantings registered by seed-demo.
var demoTrees = []model.PlantTreeRequest{
	{Institution: "Greenwood High", LocalName: "Mgunga", ScientificName: "Acacia spp.", StudentName: "Amina Odhiambo", DatePlanted: "2024-01-10"},
	{Institution: "Greenwood High", LocalName: "Mwembe", ScientificName: "Mangifera indica", StudentName: "Brian Kiptoo", DatePlanted: "2024-02-01"},
	{Institution: "Greenwood High", LocalName: "Pine", ScientificName: "Pinus spp.", DatePlanted: "2024-03-15"},
}

func runSeedDemo(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.SeedSpecies(ctx, db); err != nil {
		return err
	}
	if err := auth.BootstrapAdmin(ctx, db); err != nil {
		return err
	}

	demoUsers := []struct {
		username    string
		password    string
		role        string
		institution string
	}{
		{"institution1", "inst123", model.RoleSchool, "Greenwood High"},
		{"public1", "public123", model.RolePublic, ""},
	}

	for _, du := range demoUsers {
		existing, err := database.GetUser(ctx, db, du.username)
		if err != nil {
			return err
		}
		if existing != nil {
			fmt.Printf("User %s already exists, skipping\n", du.username)
			continue
		}
		hash, err := auth.HashPassword(du.password)
		if err != nil {
			return err
		}
		user := model.NewUser(du.username, du.role)
		user.Institution = du.institution
		user.PasswordHash = hash
		if err := database.CreateUser(ctx, db, user); err != nil {
			return err
		}
		fmt.Printf("Created user %s (%s)\n", du.username, du.role)
	}

	existing, err := database.ListTrees(ctx, db, database.TreeFilter{Institution: "Greenwood High"})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		fmt.Println("Sample trees already present, skipping")
	} else {
		planting := services.NewPlantingService(db)
		for _, req := range demoTrees {
			tree, err := planting.PlantTree(ctx, req)
			if err != nil {
				return fmt.Errorf("planting %s: %w", req.LocalName, err)
			}
			fmt.Printf("Planted %s (%s) as %s\n", tree.LocalName, tree.ScientificName, tree.TreeID)
		}
	}

	fmt.Println("Demo data ready. Logins: institution1/inst123, public1/public123")
	return nil
}

var flagResetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the database file and recreate an empty store",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&flagResetYes, "yes", false, "confirm the reset; without it the command refuses to run")
}

func runReset(cmd *cobra.Command, args []string) error {
	path := resolveDBPath()
	if !flagResetYes {
		return fmt.Errorf("reset deletes %s; rerun with --yes to confirm", path)
	}

	// The WAL sidecar files must go with the main file.
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", p, err)
		}
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.SeedSpecies(ctx, db); err != nil {
		return err
	}
	if err := auth.BootstrapAdmin(ctx, db); err != nil {
		return err
	}

	fmt.Printf("Store reset at %s\n", path)
	return nil
}
