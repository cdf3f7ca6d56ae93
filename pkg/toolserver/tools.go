package toolserver

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cast"

	"github.com/partstack/partstack/pkg/config"
	"github.com/partstack/partstack/pkg/errors"
	"github.com/partstack/partstack/pkg/integrations/jlcpcb"
	"github.com/partstack/partstack/pkg/query"
)

func unavailable(name string) error {
	return errors.New(errors.ErrCodeUnsupported, "%s is not configured on this server", name)
}

func intProp(desc string) map[string]any {
	return map[string]any{"type": "integer", "description": desc}
}

func strProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func boolProp(desc string) map[string]any {
	return map[string]any{"type": "boolean", "description": desc}
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{"type": "object", "properties": properties}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func (s *Server) buildTools() []tool {
	return []tool{
		{
			def: mcp.Tool{
				Name:        "search_parts",
				Description: "Search JLCPCB components for PCB assembly. Accepts a keyword, part number, or category name plus optional filters.",
				InputSchema: objectSchema(map[string]any{
					"query":          strProp("Keyword, part number, or category name (e.g. \"ESP32\", \"capacitor\")"),
					"category_id":    intProp("Category ID from list_categories"),
					"subcategory_id": intProp("Subcategory ID from get_subcategories"),
					"subcategory":    strProp("Subcategory name or alias (e.g. \"mlcc\", \"ldo\"); ignored when subcategory_id is given"),
					"min_stock":      intProp("Minimum stock quantity (default 50; 0 includes out-of-stock)"),
					"library_type":   strProp("basic, preferred, no_fee, extended, or all"),
					"package":        strProp("Package size (e.g. \"0402\", \"LQFP48\")"),
					"manufacturer":   strProp("Exact manufacturer name, case-sensitive"),
					"sort":           strProp("stock_desc or price_asc (default relevance)"),
					"page":           intProp("Page number (default 1)"),
					"limit":          intProp("Results per page (default 20, max 100)"),
				}),
			},
			handler: s.handleSearchParts,
		},
		{
			def: mcp.Tool{
				Name:        "get_part",
				Description: "Get full details for a specific JLCPCB part: description, pricing tiers, datasheet URL, and attributes.",
				InputSchema: objectSchema(map[string]any{
					"lcsc": strProp("LCSC part code (e.g. \"C82899\")"),
				}, "lcsc"),
			},
			handler: s.handleGetPart,
		},
		{
			def: mcp.Tool{
				Name:        "list_categories",
				Description: "List all primary component categories with their IDs and part counts.",
				InputSchema: objectSchema(map[string]any{}),
			},
			handler: s.handleListCategories,
		},
		{
			def: mcp.Tool{
				Name:        "get_subcategories",
				Description: "List all subcategories of a primary category.",
				InputSchema: objectSchema(map[string]any{
					"category_id": intProp("Primary category ID"),
				}, "category_id"),
			},
			handler: s.handleGetSubcategories,
		},
		{
			def: mcp.Tool{
				Name:        "search_mouser",
				Description: "Search the Mouser catalog by keyword, optionally filtered by manufacturer or stock.",
				InputSchema: objectSchema(map[string]any{
					"query":         strProp("Keyword or part number"),
					"manufacturer":  strProp("Manufacturer name filter"),
					"in_stock_only": boolProp("Only return in-stock parts"),
					"records":       intProp("Results per page (default 20, max 50)"),
					"page":          intProp("Page number (default 1)"),
				}, "query"),
			},
			handler: s.handleSearchMouser,
		},
		{
			def: mcp.Tool{
				Name:        "search_digikey",
				Description: "Search the DigiKey catalog by keyword, optionally filtered by manufacturer or stock.",
				InputSchema: objectSchema(map[string]any{
					"query":         strProp("Keyword or part number"),
					"manufacturer":  strProp("Manufacturer name filter"),
					"in_stock_only": boolProp("Only return in-stock parts"),
					"limit":         intProp("Results per page (default 20, max 50)"),
					"offset":        intProp("Pagination offset (default 0)"),
				}, "query"),
			},
			handler: s.handleSearchDigiKey,
		},
		{
			def: mcp.Tool{
				Name:        "get_part_pinout",
				Description: "Decode the pin list and interface summary of a component from its EasyEDA symbol UUID.",
				InputSchema: objectSchema(map[string]any{
					"uuid": strProp("EasyEDA component UUID (32 lowercase hex characters)"),
				}, "uuid"),
			},
			handler: s.handleGetPartPinout,
		},
		{
			def: mcp.Tool{
				Name:        "catalog_lookup",
				Description: "Look up a part in the local catalog by LCSC code or manufacturer part number. MPN lookup tries exact, then packaging-suffix variants, then full-text search.",
				InputSchema: objectSchema(map[string]any{
					"lcsc": strProp("LCSC code (e.g. \"C1525\")"),
					"mpn":  strProp("Manufacturer part number (e.g. \"STM32F103C8T6-TR\")"),
				}),
			},
			handler: s.handleCatalogLookup,
		},
		{
			def: mcp.Tool{
				Name:        "catalog_batch_lookup",
				Description: "Look up up to 1000 LCSC codes in one query, for BOM validation. Unknown codes map to null.",
				InputSchema: objectSchema(map[string]any{
					"codes": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "LCSC codes to look up",
					},
				}, "codes"),
			},
			handler: s.handleCatalogBatchLookup,
		},
		{
			def: mcp.Tool{
				Name:        "get_version",
				Description: "Report server version and health status.",
				InputSchema: objectSchema(map[string]any{}),
			},
			handler: s.handleGetVersion,
		},
	}
}

func (s *Server) handleSearchParts(ctx context.Context, args map[string]any) (any, error) {
	if s.backends.JLCPCB == nil {
		return nil, unavailable("JLCPCB search")
	}

	minStock := config.DefaultMinStock
	if v, ok := args["min_stock"]; ok {
		minStock = cast.ToInt(v)
	}
	req := jlcpcb.SearchRequest{
		Query:         cast.ToString(args["query"]),
		CategoryID:    cast.ToInt(args["category_id"]),
		SubcategoryID: cast.ToInt(args["subcategory_id"]),
		MinStock:      &minStock,
		LibraryType:   cast.ToString(args["library_type"]),
		Package:       cast.ToString(args["package"]),
		Manufacturer:  cast.ToString(args["manufacturer"]),
		Sort:          cast.ToString(args["sort"]),
		Page:          cast.ToInt(args["page"]),
		Limit:         cast.ToInt(args["limit"]),
	}
	if name := cast.ToString(args["subcategory"]); name != "" && req.SubcategoryID == 0 {
		id, err := s.resolveSubcategory(ctx, name)
		if err != nil {
			return nil, err
		}
		req.SubcategoryID = id
	}
	return s.backends.JLCPCB.Search(ctx, req)
}

// resolveSubcategory maps a subcategory name or alias onto an id from
// the loaded category tree. Unknown names fail with did-you-mean
// suggestions rather than silently searching everything.
func (s *Server) resolveSubcategory(ctx context.Context, name string) (int, error) {
	cats, err := s.backends.JLCPCB.Categories(ctx)
	if err != nil {
		return 0, err
	}
	nameToID := make(map[string]int)
	info := make(map[int]query.SubcategoryInfo)
	for _, cat := range cats {
		for _, sub := range cat.Subcategories {
			nameToID[strings.ToLower(sub.Name)] = sub.ID
			info[sub.ID] = query.SubcategoryInfo{Name: sub.Name, Category: cat.Name}
		}
	}
	if id, ok := query.ResolveSubcategoryName(name, nameToID, nil); ok {
		return id, nil
	}
	if similar := query.FindSimilarSubcategories(name, nameToID, info, 5); len(similar) > 0 {
		names := make([]string, len(similar))
		for i, sg := range similar {
			names[i] = sg.Name
		}
		return 0, errors.New(errors.ErrCodeInvalidFilter,
			"unknown subcategory %q, did you mean: %s", name, strings.Join(names, ", "))
	}
	return 0, errors.New(errors.ErrCodeInvalidFilter, "unknown subcategory %q", name)
}

func (s *Server) handleGetPart(ctx context.Context, args map[string]any) (any, error) {
	if s.backends.JLCPCB == nil {
		return nil, unavailable("JLCPCB search")
	}
	code := cast.ToString(args["lcsc"])
	p, err := s.backends.JLCPCB.GetPart(ctx, code)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.New(errors.ErrCodePartNotFound, "part %s not found", code)
	}
	return p, nil
}

func (s *Server) handleListCategories(ctx context.Context, _ map[string]any) (any, error) {
	if s.backends.JLCPCB == nil {
		return nil, unavailable("JLCPCB search")
	}
	categories, err := s.backends.JLCPCB.Categories(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(categories))
	for _, cat := range categories {
		out = append(out, map[string]any{
			"id":                cat.ID,
			"name":              cat.Name,
			"count":             cat.Count,
			"subcategory_count": len(cat.Subcategories),
		})
	}
	return map[string]any{"categories": out}, nil
}

func (s *Server) handleGetSubcategories(ctx context.Context, args map[string]any) (any, error) {
	if s.backends.JLCPCB == nil {
		return nil, unavailable("JLCPCB search")
	}
	cat, err := s.backends.JLCPCB.Subcategories(ctx, cast.ToInt(args["category_id"]))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"category_id":   cat.ID,
		"category_name": cat.Name,
		"subcategories": cat.Subcategories,
	}, nil
}

func (s *Server) handleSearchMouser(ctx context.Context, args map[string]any) (any, error) {
	if s.backends.Mouser == nil {
		return nil, unavailable("Mouser search")
	}
	return s.backends.Mouser.Search(ctx,
		cast.ToString(args["query"]),
		cast.ToString(args["manufacturer"]),
		cast.ToBool(args["in_stock_only"]),
		cast.ToInt(args["records"]),
		cast.ToInt(args["page"]))
}

func (s *Server) handleSearchDigiKey(ctx context.Context, args map[string]any) (any, error) {
	if s.backends.DigiKey == nil {
		return nil, unavailable("DigiKey search")
	}
	limit := config.DefaultPageSize
	if v, ok := args["limit"]; ok {
		limit = cast.ToInt(v)
	}
	return s.backends.DigiKey.Search(ctx,
		cast.ToString(args["query"]),
		cast.ToString(args["manufacturer"]),
		cast.ToBool(args["in_stock_only"]),
		limit,
		cast.ToInt(args["offset"]))
}

func (s *Server) handleGetPartPinout(ctx context.Context, args map[string]any) (any, error) {
	if s.backends.EasyEDA == nil {
		return nil, unavailable("EasyEDA pinout lookup")
	}
	pins, summary, err := s.backends.EasyEDA.GetPinout(ctx, cast.ToString(args["uuid"]))
	if err != nil {
		return nil, err
	}
	result := map[string]any{
		"pin_count": len(pins),
		"pins":      pins,
	}
	if summary != nil {
		result["summary"] = summary
	}
	return result, nil
}

func (s *Server) handleCatalogLookup(ctx context.Context, args map[string]any) (any, error) {
	if s.backends.Catalog == nil {
		return nil, unavailable("local catalog")
	}

	if lcsc := cast.ToString(args["lcsc"]); lcsc != "" {
		c, err := s.backends.Catalog.GetByCode(ctx, lcsc)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, errors.New(errors.ErrCodePartNotFound, "part %s not found in catalog", lcsc)
		}
		return c, nil
	}

	mpn := cast.ToString(args["mpn"])
	if mpn == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "provide either lcsc or mpn")
	}
	results, err := s.backends.Catalog.GetByMPN(ctx, mpn)
	if err != nil {
		return nil, err
	}
	return map[string]any{"results": results, "total": len(results)}, nil
}

func (s *Server) handleCatalogBatchLookup(ctx context.Context, args map[string]any) (any, error) {
	if s.backends.Catalog == nil {
		return nil, unavailable("local catalog")
	}
	codes, err := cast.ToStringSliceE(args["codes"])
	if err != nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "codes must be an array of strings")
	}
	return s.backends.Catalog.GetByCodeBatch(ctx, codes)
}

func (s *Server) handleGetVersion(_ context.Context, _ map[string]any) (any, error) {
	return map[string]any{
		"service": serverName,
		"version": s.version,
		"status":  "healthy",
	}, nil
}
