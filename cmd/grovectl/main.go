// grovectl is the operations CLI for the grove-backend store: schema
// bootstrap, demo seed data, account management, YAML provisioning, and
// table exports. It shares the database package with the API server, so
// anything it writes is immediately visible to a running server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grovetrack/grove-backend/database"
)

var flagDB string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "grovectl",
	Short:         "Maintenance CLI for the grove-backend tree store",
	Long:          "grovectl manages the SQLite store behind grove-backend: schema bootstrap, demo seed data, local accounts, YAML provisioning, and table exports.",
	SilenceErrors: true,
	SilenceUsage:  true,
	// No Run; prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default: $GROVE_DB_PATH or grove.db)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(seedDemoCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(exportCmd)
}

// resolveDBPath returns the store path from the --db flag or the environment.
func resolveDBPath() string {
	if flagDB != "" {
		return flagDB
	}
	return database.GetEnvDefault("GROVE_DB_PATH", "grove.db")
}

func openStore() (database.DBConnection, error) {
	return database.OpenDatabase(resolveDBPath())
}
