package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/partstack/partstack/pkg/config"
	"github.com/partstack/partstack/pkg/integrations/jlcpcb"
)

func newSearchCmd() *cobra.Command {
	var (
		configPath   string
		minStock     int
		libraryType  string
		pkg          string
		manufacturer string
		sortBy       string
		page         int
		limit        int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search JLCPCB parts",
		Long: `Search the JLCPCB parts library from the command line.

The query matches part numbers, descriptions and manufacturers. Results
are filtered to parts with at least --min-stock units in stock.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			backends, httpClient, err := buildBackends(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeBackends(backends, httpClient)

			sp := newSpinnerWithContext(ctx, "Searching JLCPCB...")
			sp.Start()
			result, err := backends.JLCPCB.Search(ctx, jlcpcb.SearchRequest{
				Query:        args[0],
				MinStock:     &minStock,
				LibraryType:  libraryType,
				Package:      pkg,
				Manufacturer: manufacturer,
				Sort:         sortBy,
				Page:         page,
				Limit:        limit,
			})
			sp.Stop()
			if err != nil {
				return err
			}

			if len(result.Parts) == 0 {
				printWarning("No parts found for %q", args[0])
				return nil
			}

			for _, p := range result.Parts {
				fmt.Println(formatPartLine(p))
			}
			suffix := ""
			if result.HasMore {
				suffix = fmt.Sprintf(", use --page %d for more", page+1)
			}
			printInfo("%d of %d results%s", len(result.Parts), result.Total, suffix)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	cmd.Flags().IntVar(&minStock, "min-stock", config.DefaultMinStock, "minimum stock to include")
	cmd.Flags().StringVar(&libraryType, "library-type", "", "filter by library type (basic, preferred, extended)")
	cmd.Flags().StringVar(&pkg, "package", "", "filter by package, e.g. 0603 or SOT-23")
	cmd.Flags().StringVar(&manufacturer, "manufacturer", "", "filter by manufacturer")
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort order (stock_desc or price_asc)")
	cmd.Flags().IntVar(&page, "page", 1, "result page")
	cmd.Flags().IntVarP(&limit, "limit", "n", config.DefaultPageSize, "results per page")
	return cmd
}
