package main

import (
	"fmt"
	"time"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/database/seeders"
	"github.com/shashiranjanraj/storefront/internal/server"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/migration"
)

func bootDB() error {
	if err := config.Load(); err != nil {
		return err
	}
	logger.Boot()
	return database.Connect()
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		n, err := migration.New(database.DB, cmd.OutOrStdout()).Run()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) applied\n", n)
		return nil
	},
}

var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		n, err := migration.New(database.DB, cmd.OutOrStdout()).Rollback()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) rolled back\n", n)
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show which migrations have run",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		statuses, err := migration.New(database.DB, nil).Status()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "MIGRATION\tRAN\tBATCH")
		for _, s := range statuses {
			ran, batch := "no", "-"
			if s.Ran {
				ran, batch = "yes", fmt.Sprint(s.Batch)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, ran, batch)
		}
		return w.Flush()
	},
}

var seedCmd = &cobra.Command{
	Use:     "db:seed",
	Aliases: []string{"seed"},
	Short:   "Insert demo categories, products and promo codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		return seeders.RunAll(database.DB, cmd.OutOrStdout())
	},
}

var pruneIdle time.Duration

var cartsPruneCmd = &cobra.Command{
	Use:   "carts:prune",
	Short: "Delete carts nobody has touched for --idle (default: session lifetime)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		idle := pruneIdle
		if idle <= 0 {
			idle = config.Session().TTL
		}
		n, err := server.NewServices(database.DB).Cart.PruneAbandoned(cmd.Context(), idle)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d cart(s) pruned\n", n)
		return nil
	},
}

func init() {
	cartsPruneCmd.Flags().DurationVar(&pruneIdle, "idle", 0, "idle time after which a cart is abandoned")
}
