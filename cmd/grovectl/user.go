package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/grovetrack/grove-backend/database"
	"github.com/grovetrack/grove-backend/model"
	"github.com/grovetrack/grove-backend/restapi/modules/auth"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage local accounts",
}

var (
	flagUserRole        string
	flagUserInstitution string
	flagUserEmail       string
	flagUserPassword    string
)

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create a local account",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserAdd,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all accounts",
	Args:  cobra.NoArgs,
	RunE:  runUserList,
}

func init() {
	userAddCmd.Flags().StringVar(&flagUserRole, "role", model.RolePublic, "account role: admin|school|public")
	userAddCmd.Flags().StringVar(&flagUserInstitution, "institution", "", "institution name (required for school accounts)")
	userAddCmd.Flags().StringVar(&flagUserEmail, "email", "", "contact email")
	userAddCmd.Flags().StringVar(&flagUserPassword, "password", "", "initial password")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	username := args[0]

	if !model.ValidRole(flagUserRole) {
		return fmt.Errorf("invalid role %q (want admin, school, or public)", flagUserRole)
	}
	if flagUserRole == model.RoleSchool && flagUserInstitution == "" {
		return fmt.Errorf("school accounts need --institution")
	}
	if err := auth.ValidatePasswordStrength(flagUserPassword); err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	existing, err := database.GetUser(ctx, db, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("user %s already exists", username)
	}

	hash, err := auth.HashPassword(flagUserPassword)
	if err != nil {
		return err
	}
	user := model.NewUser(username, flagUserRole)
	user.Institution = flagUserInstitution
	user.Email = flagUserEmail
	user.PasswordHash = hash
	if err := database.CreateUser(ctx, db, user); err != nil {
		return err
	}

	fmt.Printf("Created user %s (%s)\n", username, flagUserRole)
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	users, err := database.ListUsers(context.Background(), db)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tROLE\tINSTITUTION\tEMAIL\tACTIVE")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", u.Username, u.Role, u.Institution, u.Email, u.IsActive)
	}
	return w.Flush()
}
