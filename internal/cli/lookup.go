package cli

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/partstack/partstack/pkg/catalog"
	"github.com/partstack/partstack/pkg/config"
	"github.com/partstack/partstack/pkg/errors"
)

var lcscPattern = regexp.MustCompile(`^[Cc]\d+$`)

func newLookupCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "lookup <code-or-mpn>",
		Short: "Look up a part by LCSC code or manufacturer part number",
		Long: `Look up a single part.

Arguments that look like an LCSC code (C plus digits, e.g. C25804) are
resolved by code, anything else is treated as a manufacturer part
number. The local catalog is consulted first when built; LCSC codes
fall back to the live JLCPCB API otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			term := strings.TrimSpace(args[0])

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			backends, httpClient, err := buildBackends(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeBackends(backends, httpClient)

			if !lcscPattern.MatchString(term) {
				if backends.Catalog == nil {
					return errors.New(errors.ErrCodeUnsupported,
						"MPN lookup needs the local catalog, run 'partstack build' first")
				}
				matches, err := backends.Catalog.GetByMPN(ctx, term)
				if err != nil {
					return err
				}
				if len(matches) == 0 {
					printWarning("No catalog entry for %q", term)
					return nil
				}
				for _, c := range matches {
					printComponentDetail(c)
					fmt.Println()
				}
				return nil
			}

			if backends.Catalog != nil {
				comp, err := backends.Catalog.GetByCode(ctx, term)
				if err != nil {
					return err
				}
				if comp != nil {
					printComponentDetail(*comp)
					return nil
				}
				logger.Debug("code not in catalog, trying live API", "code", term)
			}

			sp := newSpinnerWithContext(ctx, "Fetching from JLCPCB...")
			sp.Start()
			p, err := backends.JLCPCB.GetPart(ctx, strings.ToUpper(term))
			sp.Stop()
			if err != nil {
				return err
			}
			if p == nil {
				printWarning("Part %s not found", strings.ToUpper(term))
				return nil
			}
			printPartDetail(p)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	return cmd
}

func printComponentDetail(c catalog.Component) {
	fmt.Println(StyleTitle.Render(c.LCSC) + "  " + c.MPN)
	printKeyValue("manufacturer", c.Manufacturer)
	printKeyValue("package", c.Package)
	printKeyValue("stock", fmt.Sprintf("%d", c.Stock))
	printKeyValue("library", c.LibraryType)
	if c.Category != "" {
		printKeyValue("category", c.Category)
	}
	if c.Subcategory != "" {
		printKeyValue("subcategory", c.Subcategory)
	}
	if c.Price != nil {
		printKeyValue("price", fmt.Sprintf("$%.4f", *c.Price))
	}
	if c.Description != "" {
		printKeyValue("description", truncate(c.Description, 72))
	}
}
