package catalog

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/partstack/partstack/pkg/errors"
)

// buildTestDB builds a small catalog through the real build path so
// lookup tests run against the production schema.
func buildTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()

	subcats := map[string]map[string]any{
		"27": {"name": "Chip Resistor - Surface Mount", "category_id": 1, "category_name": "Resistors"},
		"91": {"name": "Crystals", "category_id": 15, "category_name": "Crystals/Oscillators"},
	}
	writeJSON(t, filepath.Join(dir, "subcategories.json"), subcats)

	manifest := map[string]any{
		"categories": map[string]any{
			"resistors": map[string]any{"id": 1, "name": "Resistors"},
		},
	}
	writeJSON(t, filepath.Join(dir, "manifest.json"), manifest)

	records := []map[string]any{
		{"l": "C25804", "m": "0603WAF1002T5E", "f": "UNI-ROYAL", "p": "0603", "s": 500000, "t": "b", "c": 27, "$": 0.0012, "d": "10kOhm 1% chip resistor"},
		{"l": "C8734", "m": "STM32F103C8T6", "f": "STMicroelectronics", "p": "LQFP-48", "s": 12000, "t": "e", "c": 91, "$": 2.1, "d": "ARM Cortex-M3 MCU"},
		{"l": "C8735", "m": "STM32F103C8T6-TR", "f": "STMicroelectronics", "p": "LQFP-48", "s": 300, "t": "e", "c": 91, "$": 2.2, "d": "ARM Cortex-M3 MCU tape reel"},
	}
	writeJSONL(t, filepath.Join(dir, "categories", "resistors.jsonl.gz"), records)

	dbPath := filepath.Join(dir, "components.db")
	stats, err := Build(context.Background(), dir, dbPath, log.New(io.Discard))
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	if stats.TotalParts != 3 {
		t.Fatalf("TotalParts = %d, want 3", stats.TotalParts)
	}

	db, err := Open(dbPath, log.New(io.Discard))
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeJSONL(t *testing.T, path string, records []map[string]any) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	enc := json.NewEncoder(gz)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			t.Fatal(err)
		}
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestGetByCode(t *testing.T) {
	db := buildTestDB(t)
	ctx := context.Background()

	c, err := db.GetByCode(ctx, "c25804")
	if err != nil {
		t.Fatalf("GetByCode() = %v", err)
	}
	if c == nil {
		t.Fatal("GetByCode() = nil, want component (codes are uppercased)")
	}
	if c.MPN != "0603WAF1002T5E" || c.LibraryType != "basic" {
		t.Errorf("component = %+v", c)
	}
	if c.Subcategory != "Chip Resistor - Surface Mount" || c.Category != "Resistors" {
		t.Errorf("subcategory join = %q / %q", c.Subcategory, c.Category)
	}

	c, err = db.GetByCode(ctx, "C99999")
	if err != nil {
		t.Fatalf("GetByCode(unknown) = %v", err)
	}
	if c != nil {
		t.Errorf("GetByCode(unknown) = %+v, want nil", c)
	}

	if _, err := db.GetByCode(ctx, ""); !errors.Is(err, errors.ErrCodeInvalidCode) {
		t.Errorf("GetByCode(\"\") = %v, want invalid-code", err)
	}
}

func TestGetByMPNExact(t *testing.T) {
	db := buildTestDB(t)

	results, err := db.GetByMPN(context.Background(), "stm32f103c8t6")
	if err != nil {
		t.Fatalf("GetByMPN() = %v", err)
	}
	if len(results) != 1 || results[0].LCSC != "C8734" {
		t.Fatalf("results = %+v, want exact case-insensitive match", results)
	}
}

func TestGetByMPNVariant(t *testing.T) {
	db := buildTestDB(t)

	// No exact row for the bare MPN plus a suffix we do not stock, so
	// the normalized variant set must find the tape-reel row.
	results, err := db.GetByMPN(context.Background(), "STM32F103C8T6-CT")
	if err != nil {
		t.Fatalf("GetByMPN() = %v", err)
	}
	if len(results) == 0 {
		t.Fatal("GetByMPN() found nothing via variant matching")
	}
	if results[0].LCSC != "C8734" {
		t.Errorf("results[0] = %+v", results[0])
	}
}

func TestGetByMPNFullText(t *testing.T) {
	db := buildTestDB(t)

	results, err := db.GetByMPN(context.Background(), "0603WAF1002")
	if err != nil {
		t.Fatalf("GetByMPN() = %v", err)
	}
	if len(results) != 1 || results[0].LCSC != "C25804" {
		t.Fatalf("results = %+v, want prefix full-text match", results)
	}
}

func TestGetByMPNEmpty(t *testing.T) {
	db := buildTestDB(t)
	results, err := db.GetByMPN(context.Background(), "   ")
	if err != nil || results != nil {
		t.Fatalf("GetByMPN(blank) = (%v, %v), want (nil, nil)", results, err)
	}
}

func TestGetByCodeBatch(t *testing.T) {
	db := buildTestDB(t)
	ctx := context.Background()

	out, err := db.GetByCodeBatch(ctx, []string{"C25804", "c8734", "C25804", "C99999"})
	if err != nil {
		t.Fatalf("GetByCodeBatch() = %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("batch result = %d entries, want 3 after dedupe", len(out))
	}
	if out["C25804"] == nil || out["C8734"] == nil {
		t.Error("known codes missing from batch result")
	}
	if v, ok := out["C99999"]; !ok || v != nil {
		t.Errorf("unknown code = (%v, %v), want present nil entry", v, ok)
	}
}

func TestGetByCodeBatchLimits(t *testing.T) {
	db := buildTestDB(t)
	ctx := context.Background()

	out, err := db.GetByCodeBatch(ctx, nil)
	if err != nil || len(out) != 0 {
		t.Fatalf("empty batch = (%v, %v)", out, err)
	}

	big := make([]string, MaxBatchSize+1)
	for i := range big {
		big[i] = "C1"
	}
	if _, err := db.GetByCodeBatch(ctx, big); !errors.Is(err, errors.ErrCodeBatchTooLarge) {
		t.Fatalf("oversized batch = %v, want batch-too-large", err)
	}
}

func TestStats(t *testing.T) {
	db := buildTestDB(t)
	n, err := db.Stats(context.Background())
	if err != nil || n != 3 {
		t.Fatalf("Stats() = (%d, %v), want 3", n, err)
	}
}
