package admin

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/shopmate/internal/config"
	"github.com/cloo-solutions/shopmate/internal/database"
	"github.com/cloo-solutions/shopmate/internal/logging"
)

// MigrateCmd returns the migrate command with up and down subcommands.
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	cmd.PersistentFlags().String("source", database.DefaultMigrationsSource, "Migrations source URL")
	cmd.PersistentFlags().Bool("output", false, "Output as JSON")

	cmd.AddCommand(migrateDirCmd(database.Up, "Apply all pending migrations"))
	cmd.AddCommand(migrateDirCmd(database.Down, "Roll back the latest migration"))

	return cmd
}

func migrateDirCmd(dir database.Direction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(dir),
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, _ := cmd.Flags().GetString("source")
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runMigrate(cmd, source, dir, outputJSON)
		},
	}
}

func runMigrate(cmd *cobra.Command, source string, dir database.Direction, outputJSON bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if _, err := logging.Init(cfg.Debug); err != nil {
		return err
	}
	defer logging.Sync()

	result, err := database.Migrate(cfg.DatabaseURL, source, dir)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if outputJSON {
		data, _ := json.MarshalIndent(map[string]interface{}{
			"direction": string(dir),
			"version":   result.Version,
			"changed":   result.Changed,
		}, "", "  ")
		fmt.Fprintln(w, string(data))
		return nil
	}

	if !result.Changed {
		fmt.Fprintf(w, "No change (version %d)\n", result.Version)
		return nil
	}
	fmt.Fprintf(w, "Migrated %s to version %d\n", dir, result.Version)
	return nil
}
