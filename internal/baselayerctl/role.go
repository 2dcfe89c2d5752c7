package baselayerctl

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/akz4ol/baselayer/internal/store"
)

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Assign, revoke, and list roles",
}

var roleAssignCmd = &cobra.Command{
	Use:   "assign USER_ID ROLE_NAME",
	Short: "Assign a role to a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", args[0], err)
		}

		ctx := context.Background()
		db, _, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		roles := store.NewRoleRepository(db.DB)
		role, err := roles.ByName(ctx, args[1])
		if err != nil {
			return fmt.Errorf("load role: %w", err)
		}
		if role == nil {
			return fmt.Errorf("no such role %q", args[1])
		}

		if err := roles.AssignRole(ctx, userID, role.ID); err != nil {
			return fmt.Errorf("assign role: %w", err)
		}

		fmt.Printf("Role %q assigned to %s\n", role.Name, userID)
		return nil
	},
}

var roleRevokeCmd = &cobra.Command{
	Use:   "revoke USER_ID ROLE_NAME",
	Short: "Revoke a role from a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", args[0], err)
		}

		ctx := context.Background()
		db, _, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		roles := store.NewRoleRepository(db.DB)
		role, err := roles.ByName(ctx, args[1])
		if err != nil {
			return fmt.Errorf("load role: %w", err)
		}
		if role == nil {
			return fmt.Errorf("no such role %q", args[1])
		}

		if err := roles.RevokeRole(ctx, userID, role.ID); err != nil {
			return fmt.Errorf("revoke role: %w", err)
		}

		fmt.Printf("Role %q revoked from %s\n", role.Name, userID)
		return nil
	},
}

var roleListCmd = &cobra.Command{
	Use:   "list USER_ID",
	Short: "List a user's assigned roles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", args[0], err)
		}

		ctx := context.Background()
		db, _, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		roles := store.NewRoleRepository(db.DB)
		assigned, err := roles.ListByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("list roles: %w", err)
		}

		if len(assigned) == 0 {
			fmt.Println("No roles assigned")
			return nil
		}
		for _, role := range assigned {
			fmt.Printf("%s\t%s\n", role.Name, role.ACLNames())
		}
		return nil
	},
}

func init() {
	roleCmd.AddCommand(roleAssignCmd)
	roleCmd.AddCommand(roleRevokeCmd)
	roleCmd.AddCommand(roleListCmd)
}
