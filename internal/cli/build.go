package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/partstack/partstack/pkg/catalog"
	"github.com/partstack/partstack/pkg/config"
)

func newBuildCmd() *cobra.Command {
	var (
		dataDir string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the local parts catalog from JLCPCB dumps",
		Long: `Build the SQLite catalog from a directory of category dumps.

The data directory holds one gzipped JSONL file per category plus a
manifest and subcategory index. The resulting database backs the
catalog_lookup and catalog_batch_lookup tools.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			p := newProgress(logger)
			stats, err := catalog.Build(ctx, dataDir, output, logger)
			if err != nil {
				return err
			}
			p.done("catalog built")

			printSuccess("Catalog written to %s", output)
			printKeyValue("parts", fmt.Sprintf("%d", stats.TotalParts))
			printKeyValue("categories", fmt.Sprintf("%d", stats.Categories))
			printKeyValue("size", formatBytes(stats.SizeBytes))
			printKeyValue("elapsed", stats.Elapsed.Round(time.Millisecond).String())
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataDir, "data-dir", "d", "data", "directory containing category dumps")
	cmd.Flags().StringVarP(&output, "output", "o", config.DefaultCatalogPath, "path for the built database")
	return cmd
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
