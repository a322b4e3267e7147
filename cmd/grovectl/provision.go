package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grovetrack/grove-backend/restapi/modules/auth"
)

var flagProvisionFile string

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Reconcile accounts with a provisioning YAML document",
	Long:  "Applies a users YAML document: creates missing accounts, updates drifted ones, and removes accounts absent from the document. The bootstrap admin is never removed.",
	Args:  cobra.NoArgs,
	RunE:  runProvision,
}

func init() {
	provisionCmd.Flags().StringVarP(&flagProvisionFile, "file", "f", "", "provisioning YAML path")
	provisionCmd.MarkFlagRequired("file")
}

func runProvision(cmd *cobra.Command, args []string) error {
	config, err := auth.LoadProvisioningConfig(flagProvisionFile)
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := auth.ApplyProvisioning(context.Background(), db, config)
	if err != nil {
		return err
	}

	fmt.Printf("Provisioning apply complete: %d created, %d updated, %d removed\n",
		len(result.Created), len(result.Updated), len(result.Removed))
	for _, e := range result.Errors {
		fmt.Printf("  error: %s\n", e)
	}
	return nil
}
