package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gamevault/storefront/app/repositories"
	"github.com/gamevault/storefront/internal/server"
)

// storefront mirror:sync
var mirrorSyncCmd = &cobra.Command{
	Use:   "mirror:sync",
	Short: "Push every catalog product to the document mirror",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := server.Boot(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		products, err := repositories.NewProductRepository(app.DB).All(ctx)
		if err != nil {
			return err
		}
		synced, err := app.Syncer.Resync(ctx, products)
		fmt.Fprintf(cmd.OutOrStdout(), "Mirrored %d of %d products.\n", synced, len(products))
		return err
	},
}
