package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TanukiMa/my-workflow-test/internal/config"
	"github.com/TanukiMa/my-workflow-test/internal/dict"
	"github.com/TanukiMa/my-workflow-test/internal/logging"
	"github.com/TanukiMa/my-workflow-test/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import a medical dictionary CSV into PostgreSQL",
	Long: `Import reads a CSV with columns reading, word, pos_name, attr_name,
collocation and upserts each row into the words table. The schema is
initialized first, so a fresh database works without any manual setup.

Imports always use the direct PostgreSQL connection.`,
	Args: cobra.ExactArgs(1),
	RunE: importCmdFunc,
}

func importCmdFunc(cmd *cobra.Command, args []string) error {
	cfg, err := config.Resolve(connFlags)
	if err != nil {
		return err
	}
	if cfg.Direct {
		cfg.ApplyRemoteDefaults()
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	logger := logging.NewRunLogger("import")
	logger.Debug("configuration resolved", "config", cfg.String())

	ctx := cmd.Context()
	db, err := store.ConnectDirect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	if err := db.InitializeSchema(ctx); err != nil {
		return err
	}

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open CSV file: %w", err)
	}
	defer file.Close()

	stats, err := dict.NewImporter(db, logger).Run(ctx, file)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "import complete: %s\n", stats)
	return nil
}
