package catalog

import (
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/partstack/partstack/pkg/errors"
)

// BuildStats summarizes a catalog build.
type BuildStats struct {
	TotalParts     int            `json:"total_parts"`
	Categories     int            `json:"categories"`
	CategoryCounts map[string]int `json:"category_counts"`
	SizeBytes      int64          `json:"db_size_bytes"`
	Elapsed        time.Duration  `json:"-"`
}

// sourceRecord is one line of the scraped JSONL feed. The field keys
// are single characters to keep the compressed feed small.
type sourceRecord struct {
	LCSC          string            `json:"l"`
	MPN           string            `json:"m"`
	Manufacturer  string            `json:"f"`
	Package       string            `json:"p"`
	Stock         int               `json:"s"`
	LibraryType   string            `json:"t"`
	SubcategoryID int               `json:"c"`
	Price         *float64          `json:"$"`
	Description   string            `json:"d"`
	Attributes    []json.RawMessage `json:"a"`
}

type sourceSubcategory struct {
	Name         string `json:"name"`
	CategoryID   int    `json:"category_id"`
	CategoryName string `json:"category_name"`
}

type sourceManifest struct {
	Categories map[string]struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"categories"`
}

// Build creates a component database from a data directory holding
// subcategories.json, manifest.json, and categories/*.jsonl.gz. An
// existing database at dbPath is replaced.
func Build(ctx context.Context, dataDir, dbPath string, logger *log.Logger) (*BuildStats, error) {
	start := time.Now()

	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "removing existing database")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "creating database directory")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "creating database")
	}
	defer db.Close()

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "setting pragma")
		}
	}
	if err := createSchema(ctx, db); err != nil {
		return nil, err
	}

	if err := loadSubcategories(ctx, db, filepath.Join(dataDir, "subcategories.json"), logger); err != nil {
		return nil, err
	}
	if err := loadManifest(ctx, db, filepath.Join(dataDir, "manifest.json")); err != nil {
		return nil, err
	}

	stats := &BuildStats{CategoryCounts: map[string]int{}}
	files, err := filepath.Glob(filepath.Join(dataDir, "categories", "*.jsonl.gz"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "listing category files")
	}
	sort.Strings(files)

	for _, file := range files {
		slug := strings.TrimSuffix(filepath.Base(file), ".jsonl.gz")
		count, err := loadCategoryFile(ctx, db, file)
		if err != nil {
			return nil, err
		}
		stats.CategoryCounts[slug] = count
		stats.TotalParts += count
		if count > 0 {
			logger.Debug("loaded category", "slug", slug, "parts", count)
		}
	}
	stats.Categories = len(stats.CategoryCounts)

	if err := createIndexes(ctx, db); err != nil {
		return nil, err
	}
	for _, stmt := range []string{"ANALYZE", "VACUUM"} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "optimizing database")
		}
	}

	if fi, err := os.Stat(dbPath); err == nil {
		stats.SizeBytes = fi.Size()
	}
	stats.Elapsed = time.Since(start)
	logger.Info("catalog build complete",
		"parts", stats.TotalParts,
		"categories", stats.Categories,
		"size_mb", stats.SizeBytes/(1024*1024),
		"elapsed", stats.Elapsed.Round(time.Second))
	return stats, nil
}

func createSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE components (
			lcsc TEXT PRIMARY KEY,
			mpn TEXT,
			manufacturer TEXT,
			package TEXT,
			stock INTEGER,
			library_type TEXT CHECK(library_type IN ('b', 'p', 'e')),
			subcategory_id INTEGER,
			price REAL,
			description TEXT,
			attributes TEXT
		)`,
		`CREATE TABLE subcategories (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			category_id INTEGER NOT NULL,
			category_name TEXT NOT NULL
		)`,
		`CREATE TABLE categories (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL
		)`,
		`CREATE VIRTUAL TABLE components_fts USING fts5(
			lcsc,
			mpn,
			manufacturer,
			description
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "creating schema")
		}
	}
	return nil
}

func createIndexes(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		"CREATE INDEX idx_subcategory ON components(subcategory_id)",
		"CREATE INDEX idx_stock ON components(stock)",
		"CREATE INDEX idx_library_type ON components(library_type)",
		"CREATE INDEX idx_package ON components(package)",
		"CREATE INDEX idx_manufacturer ON components(manufacturer)",
		"CREATE INDEX idx_price ON components(price)",
		// Composite indexes for the common filter pairs.
		"CREATE INDEX idx_subcat_stock ON components(subcategory_id, stock)",
		"CREATE INDEX idx_subcat_libtype ON components(subcategory_id, library_type)",
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "creating indexes")
		}
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO components_fts(lcsc, mpn, manufacturer, description)
		 SELECT lcsc, mpn, manufacturer, description FROM components`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "populating full-text index")
	}
	return nil
}

func loadSubcategories(ctx context.Context, db *sql.DB, path string, logger *log.Logger) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "reading subcategories")
	}

	var subcats map[string]sourceSubcategory
	if err := json.Unmarshal(data, &subcats); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "decoding subcategories")
	}
	for idStr, info := range subcats {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return errors.New(errors.ErrCodeInternal, "bad subcategory id %q", idStr)
		}
		_, err = db.ExecContext(ctx,
			"INSERT INTO subcategories VALUES (?, ?, ?, ?)",
			id, info.Name, info.CategoryID, info.CategoryName)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "inserting subcategory %d", id)
		}
	}
	logger.Debug("loaded subcategories", "count", len(subcats))
	return nil
}

func loadManifest(ctx context.Context, db *sql.DB, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "reading manifest")
	}

	var manifest sourceManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "decoding manifest")
	}
	for slug, cat := range manifest.Categories {
		_, err := db.ExecContext(ctx,
			"INSERT OR REPLACE INTO categories VALUES (?, ?, ?)",
			cat.ID, cat.Name, slug)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "inserting category %q", slug)
		}
	}
	return nil
}

func loadCategoryFile(ctx context.Context, db *sql.DB, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "opening %s", filepath.Base(path))
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "decompressing %s", filepath.Base(path))
	}
	defer gz.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "starting transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO components
		 (lcsc, mpn, manufacturer, package, stock, library_type,
		  subcategory_id, price, description, attributes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "preparing insert")
	}
	defer stmt.Close()

	count := 0
	dec := json.NewDecoder(gz)
	for dec.More() {
		var rec sourceRecord
		if err := dec.Decode(&rec); err != nil {
			return 0, errors.Wrap(errors.ErrCodeInternal, err, "decoding %s", filepath.Base(path))
		}

		attrs := "[]"
		if len(rec.Attributes) > 0 {
			if data, err := json.Marshal(rec.Attributes); err == nil {
				attrs = string(data)
			}
		}
		_, err := stmt.ExecContext(ctx,
			rec.LCSC, nullable(rec.MPN), nullable(rec.Manufacturer),
			nullable(rec.Package), rec.Stock, nullable(rec.LibraryType),
			rec.SubcategoryID, rec.Price, nullable(rec.Description), attrs)
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodeInternal, err, "inserting %s", rec.LCSC)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "committing %s", filepath.Base(path))
	}
	return count, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
