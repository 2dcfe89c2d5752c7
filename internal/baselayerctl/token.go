package baselayerctl

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/akz4ol/baselayer/internal/domain"
	"github.com/akz4ol/baselayer/internal/store"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue and revoke bearer tokens",
}

var tokenCreateCmd = &cobra.Command{
	Use:   "create NAME CREATED_BY_USER_ID",
	Short: "Issue a new token delegated from a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, createdByRaw := args[0], args[1]

		createdBy, err := uuid.Parse(createdByRaw)
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", createdByRaw, err)
		}

		aclsFlag, _ := cmd.Flags().GetString("acls")
		var requested []string
		if aclsFlag != "" {
			requested = strings.Split(aclsFlag, ",")
		}

		ctx := context.Background()
		db, cfg, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		users := store.NewUserRepository(db.DB)
		creator, err := users.GetByID(ctx, createdBy)
		if err != nil {
			return fmt.Errorf("load creator: %w", err)
		}
		if creator == nil {
			return fmt.Errorf("no such user %s", createdBy)
		}

		creatorPerms, err := users.Permissions(ctx, createdBy)
		if err != nil {
			return fmt.Errorf("load creator permissions: %w", err)
		}

		if !domain.ACLSubsetOf(requested, creatorPerms) {
			return fmt.Errorf("requested ACLs are not a subset of %s's permissions", creator.Username)
		}

		tokens := store.NewTokenRepository(db.DB, cfg.Auth.BcryptCost)
		token, secret, err := tokens.Create(ctx, name, createdBy, requested)
		if err != nil {
			return fmt.Errorf("create token: %w", err)
		}

		fmt.Printf("Token issued: %s\n", token.Bearer(secret))
		fmt.Println("Store this value now; the secret cannot be recovered later.")
		return nil
	},
}

var tokenRevokeCmd = &cobra.Command{
	Use:   "revoke TOKEN_ID",
	Short: "Revoke a token by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid token id %q: %w", args[0], err)
		}

		ctx := context.Background()
		db, cfg, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		tokens := store.NewTokenRepository(db.DB, cfg.Auth.BcryptCost)
		if err := tokens.Revoke(ctx, id); err != nil {
			return fmt.Errorf("revoke token: %w", err)
		}

		fmt.Printf("Token %s revoked\n", id)
		return nil
	},
}

func init() {
	tokenCreateCmd.Flags().String("acls", "", "comma-separated ACL names to delegate")
	tokenCmd.AddCommand(tokenCreateCmd)
	tokenCmd.AddCommand(tokenRevokeCmd)
}
