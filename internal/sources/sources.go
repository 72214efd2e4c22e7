// =============================================================================
// Order Consolidation - Source Readers
// =============================================================================
//
// One reader per source system. Each reader turns its spreadsheet(s) into
// raw rows in the common schema, plus diagnostics describing what happened.
// Readers never fail the run: an absent or unreadable file produces an
// empty result and a diagnostic.
//
// PRIMARY SOURCE (single workbook):
//
//   | Sheet "base" (positional, 1 header row skipped)                  |
//   |------------|----------|------------|-----------|-----------------|
//   | date       | order_id | group_code | company   | group_name      |
//
//   | Sheet "GRUPOS" (named columns)   |
//   |--------------|------------------|
//   | Codigo       | Nome do Grupo    |
//
// SECONDARY SOURCE (one workbook or CSV per period, header on row 2):
//
//   | Data Inclusao | Numero da Solicitacao | Empresa de Débito | Cliente    |
//   | -> date       | -> order_id           | -> company        | -> group   |
//
// =============================================================================

package sources

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ginjaninja78/order-consolidation/internal/config"
	"github.com/ginjaninja78/order-consolidation/internal/groups"
	"github.com/ginjaninja78/order-consolidation/internal/types"
	"github.com/ginjaninja78/order-consolidation/internal/validation"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// RESULT STRUCTURES
// =============================================================================

// Batch is the raw rows read from one file.
type Batch struct {
	// Label identifies the batch in diagnostics, e.g. "ARGOIT 08/2025".
	Label string

	// System is the source system tag for every row.
	System string

	// File is the file the rows were read from.
	File string

	Rows []types.RawRow

	// Date1904 is true when serial dates in Rows use the 1904 epoch.
	Date1904 bool
}

// PrimaryData is the result of reading the primary workbook.
type PrimaryData struct {
	Batch

	// Lookup holds the group lookup entries. It is nil when the lookup
	// sheet could not be read.
	Lookup []groups.Entry
}

// =============================================================================
// PRIMARY SOURCE
// =============================================================================

// ReadPrimary reads the transaction and lookup sheets of the primary workbook.
// A missing file or transaction sheet yields no rows and a warning. A missing
// lookup sheet yields a warning and rows whose group names stay unresolved.
func ReadPrimary(cfg config.PrimarySource) (PrimaryData, []types.Diagnostic) {
	label := cfg.System
	data := PrimaryData{Batch: Batch{Label: label, System: cfg.System, File: cfg.Path}}
	var diags []types.Diagnostic

	if _, err := os.Stat(cfg.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return data, append(diags, types.Warnf(label, "file %s not found, no %s rows loaded", cfg.Path, cfg.System))
		}
		return data, append(diags, types.Warnf(label, "cannot access %s: %v", cfg.Path, err))
	}

	f, err := openWorkbook(cfg.Path)
	if err != nil {
		return data, append(diags, types.Warnf(label, "%s: %v", cfg.Path, err))
	}
	defer f.Close()

	tx, err := readSheet(f, cfg.Path, cfg.TransactionSheet)
	if err != nil {
		return data, append(diags, types.Warnf(label, "%v", err))
	}
	data.Date1904 = tx.Date1904

	for i := cfg.SkipRows; i < len(tx.Rows); i++ {
		row := tx.Rows[i]
		if validation.IsRowEmpty(row) {
			continue
		}
		raw := types.RawRow{File: cfg.Path, Row: i + 1}
		for pos, field := range cfg.Columns {
			if field == "" {
				continue
			}
			raw.Set(field, validation.Cell(row, pos))
		}
		data.Rows = append(data.Rows, raw)
	}

	entries, err := readLookup(f, cfg)
	if err != nil {
		diags = append(diags, types.Warnf(label, "group lookup unavailable, raw group names kept: %v", err))
	} else {
		data.Lookup = entries
	}

	diags = append(diags, types.Infof(label, "read %d rows and %d lookup entries from %s",
		len(data.Rows), len(data.Lookup), filepath.Base(cfg.Path)))
	return data, diags
}

// readLookup reads the code -> name entries of the lookup sheet.
func readLookup(f *excelize.File, cfg config.PrimarySource) ([]groups.Entry, error) {
	lk, err := readSheet(f, cfg.Path, cfg.Lookup.Sheet)
	if err != nil {
		return nil, err
	}

	expected := []string{cfg.Lookup.CodeColumn, cfg.Lookup.NameColumn}
	var header []string
	if len(lk.Rows) > 0 {
		header = lk.Rows[0]
	}
	index, err := validation.HeaderIndex(header, expected)
	if err != nil {
		var mce *validation.MissingColumnsError
		if errors.As(err, &mce) {
			mce.File, mce.Sheet, mce.HeaderRow = cfg.Path, lk.Sheet, 1
		}
		return nil, err
	}

	var entries []groups.Entry
	for _, row := range lk.Rows[1:] {
		if validation.IsRowEmpty(row) {
			continue
		}
		entries = append(entries, groups.Entry{
			Code: validation.Cell(row, index[cfg.Lookup.CodeColumn]),
			Name: validation.Cell(row, index[cfg.Lookup.NameColumn]),
		})
	}
	return entries, nil
}

// =============================================================================
// SECONDARY SOURCE
// =============================================================================

// maxParallelReads bounds how many period files are open at once.
const maxParallelReads = 4

// ReadSecondary reads every configured period file in order. Missing files,
// unreadable files and files without the mapped headers are skipped with a
// warning naming the period; the remaining files are still read.
func ReadSecondary(cfg config.SecondarySource) ([]Batch, []types.Diagnostic) {
	type periodResult struct {
		batch Batch
		err   error
	}

	// Files are read in parallel; results are assembled in configured order.
	results := make([]periodResult, len(cfg.Files))
	var eg errgroup.Group
	eg.SetLimit(maxParallelReads)
	for i, pf := range cfg.Files {
		eg.Go(func() error {
			label := fmt.Sprintf("%s %s", cfg.System, pf.Period)
			results[i].batch, results[i].err = readPeriod(cfg, pf, label)
			return nil
		})
	}
	_ = eg.Wait()

	var batches []Batch
	var diags []types.Diagnostic

	for i, pf := range cfg.Files {
		label := fmt.Sprintf("%s %s", cfg.System, pf.Period)

		batch, err := results[i].batch, results[i].err
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				diags = append(diags, types.Warnf(label, "file %s for period %s not found, skipping", pf.Path, pf.Period))
			} else {
				diags = append(diags, types.Warnf(label, "skipping period %s: %v", pf.Period, err))
			}
			continue
		}

		diags = append(diags, types.Infof(label, "read %d rows from %s", len(batch.Rows), filepath.Base(pf.Path)))
		batches = append(batches, batch)
	}

	if len(cfg.Files) > 0 && len(batches) == 0 {
		diags = append(diags, types.Warnf(cfg.System, "no %s file could be read", cfg.System))
	}
	return batches, diags
}

// readPeriod reads one period file through the header mapping table.
func readPeriod(cfg config.SecondarySource, pf config.PeriodFile, label string) (Batch, error) {
	if _, err := os.Stat(pf.Path); err != nil {
		return Batch{}, err
	}

	tb, err := readTable(pf.Path, cfg.Sheet, cfg.Delimiter)
	if err != nil {
		return Batch{}, err
	}

	headerIdx := cfg.HeaderRow - 1
	var header []string
	if headerIdx < len(tb.Rows) {
		header = tb.Rows[headerIdx]
	}

	index, err := validation.HeaderIndex(header, cfg.Headers())
	if err != nil {
		var mce *validation.MissingColumnsError
		if errors.As(err, &mce) {
			mce.File, mce.Sheet, mce.HeaderRow = pf.Path, tb.Sheet, cfg.HeaderRow
		}
		return Batch{}, err
	}

	batch := Batch{Label: label, System: cfg.System, File: pf.Path, Date1904: tb.Date1904}
	for i := headerIdx + 1; i < len(tb.Rows); i++ {
		row := tb.Rows[i]
		if validation.IsRowEmpty(row) {
			continue
		}
		raw := types.RawRow{File: pf.Path, Row: i + 1}
		for _, col := range cfg.Columns {
			raw.Set(col.Field, validation.Cell(row, index[col.Header]))
		}
		batch.Rows = append(batch.Rows, raw)
	}
	return batch, nil
}
