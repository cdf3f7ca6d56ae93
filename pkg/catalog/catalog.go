// Package catalog provides SQLite-backed lookup over a locally built
// component database, with exact, variant, and full-text matching.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"github.com/partstack/partstack/pkg/errors"
	"github.com/partstack/partstack/pkg/query"
)

// MaxBatchSize bounds batch lookups so a single request cannot pin an
// arbitrary amount of memory.
const MaxBatchSize = 1000

const ftsFallbackLimit = 10

// Component is one catalog row joined with its subcategory names.
type Component struct {
	LCSC          string            `json:"lcsc"`
	MPN           string            `json:"mpn"`
	Manufacturer  string            `json:"manufacturer"`
	Package       string            `json:"package,omitempty"`
	Stock         int               `json:"stock"`
	LibraryType   string            `json:"library_type"`
	SubcategoryID int               `json:"subcategory_id,omitempty"`
	Subcategory   string            `json:"subcategory,omitempty"`
	Category      string            `json:"category,omitempty"`
	Price         *float64          `json:"price,omitempty"`
	Description   string            `json:"description,omitempty"`
	Attributes    []json.RawMessage `json:"attributes,omitempty"`
}

// DB wraps the read path over a built component database.
type DB struct {
	sql *sql.DB
	log *log.Logger
}

// Open opens an existing component database.
func Open(path string, logger *log.Logger) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "opening catalog database")
	}
	return &DB{sql: db, log: logger}, nil
}

// Close closes the underlying database.
func (d *DB) Close() error { return d.sql.Close() }

const selectComponent = `
SELECT c.lcsc, c.mpn, c.manufacturer, c.package, c.stock, c.library_type,
       c.subcategory_id, c.price, c.description, c.attributes,
       s.name, s.category_name
FROM components c
LEFT JOIN subcategories s ON c.subcategory_id = s.id`

func scanComponent(rows *sql.Rows) (Component, error) {
	var (
		c          Component
		mpn        sql.NullString
		mfr        sql.NullString
		pkg        sql.NullString
		stock      sql.NullInt64
		libType    sql.NullString
		subcatID   sql.NullInt64
		price      sql.NullFloat64
		desc       sql.NullString
		attrs      sql.NullString
		subcatName sql.NullString
		catName    sql.NullString
	)
	err := rows.Scan(&c.LCSC, &mpn, &mfr, &pkg, &stock, &libType,
		&subcatID, &price, &desc, &attrs, &subcatName, &catName)
	if err != nil {
		return c, err
	}
	c.MPN = mpn.String
	c.Manufacturer = mfr.String
	c.Package = pkg.String
	c.Stock = int(stock.Int64)
	c.LibraryType = expandLibraryType(libType.String)
	c.SubcategoryID = int(subcatID.Int64)
	c.Subcategory = subcatName.String
	c.Category = catName.String
	if price.Valid {
		v := price.Float64
		c.Price = &v
	}
	c.Description = desc.String
	if attrs.Valid && attrs.String != "" {
		// Attributes are stored as a JSON array; a decode failure
		// leaves them off the record rather than failing the lookup.
		_ = json.Unmarshal([]byte(attrs.String), &c.Attributes)
	}
	return c, nil
}

// Rows are stored with single-letter grade codes to keep the database
// compact.
func expandLibraryType(t string) string {
	switch t {
	case "b":
		return "basic"
	case "p":
		return "preferred"
	case "e":
		return "extended"
	default:
		return t
	}
}

func (d *DB) queryComponents(ctx context.Context, q string, args ...any) ([]Component, error) {
	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "catalog query failed")
	}
	defer rows.Close()

	var out []Component
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "scanning catalog row")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByMPN finds components by manufacturer part number. Exact match
// is tried first, then normalized packaging-suffix variants, then a
// prefix full-text search. Results are ordered by stock descending and
// deduplicated by LCSC code.
func (d *DB) GetByMPN(ctx context.Context, mpn string) ([]Component, error) {
	mpn = strings.TrimSpace(mpn)
	if mpn == "" {
		return nil, nil
	}

	results, err := d.queryComponents(ctx,
		selectComponent+" WHERE LOWER(c.mpn) = LOWER(?) ORDER BY c.stock DESC", mpn)
	if err != nil || len(results) > 0 {
		return results, err
	}

	variants := query.NormalizeMPN(mpn)
	for _, variant := range variants {
		results, err = d.queryComponents(ctx,
			selectComponent+" WHERE LOWER(c.mpn) = LOWER(?) ORDER BY c.stock DESC", variant)
		if err != nil {
			return nil, err
		}
		if len(results) > 0 {
			return dedupeByLCSC(results), nil
		}
	}

	for _, variant := range variants {
		results, err = d.ftsLookup(ctx, variant)
		if err != nil {
			return nil, err
		}
		if len(results) > 0 {
			return dedupeByLCSC(results), nil
		}
	}
	return nil, nil
}

func (d *DB) ftsLookup(ctx context.Context, term string) ([]Component, error) {
	escaped := strings.ReplaceAll(term, `"`, `""`)
	match := fmt.Sprintf(`"%s"*`, escaped)
	q := selectComponent + `
 JOIN components_fts f ON c.lcsc = f.lcsc
 WHERE f.components_fts MATCH ?
 ORDER BY c.stock DESC
 LIMIT ?`
	return d.queryComponents(ctx, q, match, ftsFallbackLimit)
}

func dedupeByLCSC(parts []Component) []Component {
	seen := make(map[string]struct{}, len(parts))
	out := parts[:0:0]
	for _, p := range parts {
		if _, ok := seen[p.LCSC]; ok {
			continue
		}
		seen[p.LCSC] = struct{}{}
		out = append(out, p)
	}
	return out
}

// GetByCode looks up a single component by LCSC code. Returns nil
// without error when the code is unknown.
func (d *DB) GetByCode(ctx context.Context, code string) (*Component, error) {
	if err := errors.ValidatePartCode(code); err != nil {
		return nil, err
	}
	results, err := d.queryComponents(ctx,
		selectComponent+" WHERE c.lcsc = ?", strings.ToUpper(code))
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// GetByCodeBatch looks up multiple LCSC codes in a single query, for
// BOM validation. Codes are uppercased and deduplicated preserving
// order; unknown codes map to nil entries. Validation happens before
// any query runs.
func (d *DB) GetByCodeBatch(ctx context.Context, codes []string) (map[string]*Component, error) {
	if len(codes) == 0 {
		return map[string]*Component{}, nil
	}
	if err := errors.ValidateBatchSize(len(codes), MaxBatchSize); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(codes))
	normalized := make([]string, 0, len(codes))
	for _, code := range codes {
		if err := errors.ValidatePartCode(code); err != nil {
			return nil, err
		}
		upper := strings.ToUpper(code)
		if _, ok := seen[upper]; ok {
			continue
		}
		seen[upper] = struct{}{}
		normalized = append(normalized, upper)
	}

	placeholders := strings.Repeat("?,", len(normalized))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(normalized))
	for i, code := range normalized {
		args[i] = code
	}

	results, err := d.queryComponents(ctx,
		selectComponent+" WHERE c.lcsc IN ("+placeholders+")", args...)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*Component, len(normalized))
	for _, code := range normalized {
		out[code] = nil
	}
	for i := range results {
		out[results[i].LCSC] = &results[i]
	}
	return out, nil
}

// Stats reports the number of components in the catalog.
func (d *DB) Stats(ctx context.Context) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM components").Scan(&n)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "counting components")
	}
	return n, nil
}
