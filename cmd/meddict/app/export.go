package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TanukiMa/my-workflow-test/internal/dict"
	"github.com/TanukiMa/my-workflow-test/internal/logging"
)

var outputPath string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the word schema as a Mozc dictionary TSV",
	Long: `Export joins words to their part-of-speech names and writes Mozc user
dictionary lines (reading, cost triple, word) in deterministic sorted order
with exact duplicates removed.

The Supabase REST API is used when SUPABASE_URL and SUPABASE_KEY are
configured; --direct forces the PostgreSQL connection instead.`,
	RunE: exportCmdFunc,
}

func init() {
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"output TSV path (default: standard output)")
}

func exportCmdFunc(cmd *cobra.Command, _ []string) error {
	logger := logging.NewRunLogger("export")
	ctx := cmd.Context()

	source, cleanup, err := openSource(ctx, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
		logger.Info("writing dictionary to file", "path", outputPath)
	} else {
		logger.Info("writing dictionary to standard output")
	}

	count, err := dict.NewExporter(source, logger).Export(ctx, out)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "%d unique lines generated\n", count)
	return nil
}
