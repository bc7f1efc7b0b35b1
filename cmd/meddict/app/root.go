// Package app wires the meddict subcommands: CSV import, Mozc TSV export
// and standalone schema initialization.
package app

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/TanukiMa/my-workflow-test/internal/config"
	"github.com/TanukiMa/my-workflow-test/internal/logging"
)

// connFlags collects the connection flags shared by every subcommand.
// Values stay empty when a flag is not given so the environment can fill
// them in during config.Resolve.
var connFlags config.Flags

var rootCmd = &cobra.Command{
	Use:   "meddict",
	Short: "Medical dictionary ETL for the Mozc input method",
	Long: `meddict imports medical dictionary CSV data into a PostgreSQL word schema
and exports that schema as a Mozc user dictionary TSV.

The database is reached either over a direct PostgreSQL connection or the
Supabase REST API. Connection settings come from flags, falling back to
PG_* / SUPABASE_* environment variables (a .env file is honored).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// Like the environment, an existing variable wins over .env.
		if err := godotenv.Load(); err == nil {
			slog.Debug("loaded .env file")
		}
		logging.Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	},
}

// NewRootCmd creates the root command for the meddict CLI.
func NewRootCmd() *cobra.Command {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&connFlags.Host, "host", "H", "", "database host (PG_HOST)")
	pf.IntVarP(&connFlags.Port, "port", "P", 0, "database port (PG_PORT)")
	pf.StringVarP(&connFlags.Database, "database", "d", "", "database name (PG_DATABASE)")
	pf.StringVarP(&connFlags.User, "user", "U", "", "database user (PG_USER)")
	pf.StringVarP(&connFlags.Password, "password", "W", "", "database password (PG_PASSWORD)")
	pf.StringVar(&connFlags.URL, "url", "", "Supabase project URL (SUPABASE_URL)")
	pf.StringVar(&connFlags.Key, "key", "", "Supabase API key (SUPABASE_KEY)")
	pf.BoolVar(&connFlags.Direct, "direct", false, "force the direct PostgreSQL connection even when Supabase credentials are configured")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(initCmd)

	return rootCmd
}
