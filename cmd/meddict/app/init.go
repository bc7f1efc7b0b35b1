package app

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/TanukiMa/my-workflow-test/internal/config"
	"github.com/TanukiMa/my-workflow-test/internal/dict"
	"github.com/TanukiMa/my-workflow-test/internal/logging"
	"github.com/TanukiMa/my-workflow-test/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the dictionary schema",
	Long: `Init creates the pos_codes, attr_codes and words tables, the updated_at
trigger and the seed part-of-speech rows. The operation is idempotent and
safe to run repeatedly. Over the Supabase backend it calls the server-side
initializer function.`,
	RunE: initCmdFunc,
}

func initCmdFunc(cmd *cobra.Command, _ []string) error {
	logger := logging.NewRunLogger("init")
	ctx := cmd.Context()

	source, cleanup, err := openSource(ctx, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	return source.InitializeSchema(ctx)
}

// openSource resolves configuration and opens the dictionary source the
// flags select: Supabase when URL and key are configured, direct PostgreSQL
// otherwise or when --direct is given. The returned cleanup releases the
// connection and is safe to defer immediately.
func openSource(ctx context.Context, logger *slog.Logger) (dict.DictionarySource, func(), error) {
	cfg, err := config.Resolve(connFlags)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("configuration resolved", "config", cfg.String())

	if cfg.UseRemote() {
		if err := cfg.RequireRemote(); err != nil {
			return nil, nil, err
		}
		logger.Debug("using Supabase REST backend", "url", cfg.URL)
		return store.NewRemoteAPI(cfg, logger), func() {}, nil
	}

	if cfg.Direct {
		cfg.ApplyRemoteDefaults()
	}
	if err := cfg.RequireDatabase(); err != nil {
		return nil, nil, err
	}

	db, err := store.ConnectDirect(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { db.Close(ctx) }, nil
}
