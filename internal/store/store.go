// =============================================================================
// Order Consolidation - Incremental Store Manager
// =============================================================================
//
// The Consolidated Store is the single workbook holding every order ever
// seen, one row per order id. Each run loads it, appends the orders that
// are not in it yet, and persists it again only when it grew.
//
// STATES:
//   - NO_STORE: the file is absent or unreadable; the run rebuilds it
//   - LOADED:   the file was parsed; its rows are the baseline
//
// CONSOLIDATION (per run):
//   1. Load the store; baseline = number of rows read
//   2. Deduplicate the incoming batch by order id (first wins)
//   3. Keep batch rows whose id is not in the store
//   4. New store = dedup(existing ++ appended)
//   5. Persist if the store grew or there was no usable prior store
//
// WRITE SAFETY:
//   The workbook is rendered to a temporary sibling and renamed over the
//   store only after a complete, synced write. A corrupt store is copied to
//   <name>.corrupt-<ulid>.xlsx before it is replaced.
//
// =============================================================================

package store

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ginjaninja78/order-consolidation/internal/config"
	"github.com/ginjaninja78/order-consolidation/internal/dedup"
	"github.com/ginjaninja78/order-consolidation/internal/types"
	"github.com/ginjaninja78/order-consolidation/pkg/utils"
	"github.com/oklog/ulid/v2"
)

// ErrStoreWrite is returned when the store could not be persisted. The
// prior store file is left unchanged.
var ErrStoreWrite = errors.New("failed to write consolidated store")

// State is the load state of the store.
type State string

const (
	StateNoStore State = "NO_STORE"
	StateLoaded  State = "LOADED"
)

// diagnosticSource labels store diagnostics.
const diagnosticSource = "store"

// =============================================================================
// RESULT STRUCTURES
// =============================================================================

// Snapshot is the store as it was found at the start of a run.
type Snapshot struct {
	State State

	// Records are the rows read from the store, in file order.
	Records []types.OrderRecord

	// Corrupt is set when a file exists but could not be used.
	Corrupt error

	// Skipped is the number of stored rows that could not be read back.
	Skipped int

	Diagnostics []types.Diagnostic
}

// Baseline is the number of rows loaded from the store.
func (s Snapshot) Baseline() int {
	return len(s.Records)
}

// Outcome describes one consolidation.
type Outcome struct {
	// Records is the deduplicated store after the run.
	Records []types.OrderRecord

	Baseline    int
	UniqueBatch int
	Appended    int

	// Persisted is true when the store file was written.
	Persisted bool

	// Backup is the copy of a corrupt store, if one was made.
	Backup string

	Diagnostics []types.Diagnostic
}

// Total is the number of records in the store after the run.
func (o Outcome) Total() int {
	return len(o.Records)
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager owns the store file. It is not safe for concurrent runs; callers
// serialize them.
type Manager struct {
	path          string
	sheet         string
	backupCorrupt bool

	// replace writes the store file; tests swap it to simulate failures.
	replace func(path string, write func(io.Writer) error) error
}

// NewManager creates a store manager from configuration.
func NewManager(cfg config.StoreConfig) *Manager {
	return &Manager{
		path:          cfg.Path,
		sheet:         cfg.Sheet,
		backupCorrupt: cfg.KeepCorruptBackup(),
		replace:       utils.WriteAtomic,
	}
}

// Path returns the store file location.
func (m *Manager) Path() string {
	return m.path
}

// Load reads the store. It never fails: an absent store is NO_STORE, and an
// unreadable store is NO_STORE with a warning.
func (m *Manager) Load() Snapshot {
	if _, err := os.Stat(m.path); err != nil {
		if utils.IsNotExist(err) {
			return Snapshot{
				State:       StateNoStore,
				Diagnostics: []types.Diagnostic{types.Infof(diagnosticSource, "no store at %s, a new one will be created", m.path)},
			}
		}
		return m.corrupt(err)
	}

	records, skipped, err := readStore(m.path, m.sheet)
	if err != nil {
		return m.corrupt(err)
	}

	snap := Snapshot{
		State:   StateLoaded,
		Records: records,
		Skipped: len(skipped),
	}
	for _, reason := range skipped {
		snap.Diagnostics = append(snap.Diagnostics, types.Warnf(diagnosticSource, "%s: skipping unreadable %s", m.path, reason))
	}
	snap.Diagnostics = append(snap.Diagnostics, types.Infof(diagnosticSource, "loaded %d records from %s", len(records), m.path))
	return snap
}

func (m *Manager) corrupt(err error) Snapshot {
	return Snapshot{
		State:       StateNoStore,
		Corrupt:     err,
		Diagnostics: []types.Diagnostic{types.Warnf(diagnosticSource, "%v; the store will be rebuilt from the sources", err)},
	}
}

// Consolidate merges batch into the loaded store and persists the result
// when it grew.
//
// PARAMETERS:
//   - snap: The store as returned by Load.
//   - batch: Normalized records from all sources, in source order.
//
// RETURNS:
//   - The outcome, whose Records is the store after the run.
//   - An error wrapping ErrStoreWrite if persisting failed.
func (m *Manager) Consolidate(snap Snapshot, batch []types.OrderRecord) (*Outcome, error) {
	unique := dedup.ByOrderID(batch)
	appended := dedup.Missing(unique, dedup.IDs(snap.Records))

	merged := make([]types.OrderRecord, 0, len(snap.Records)+len(appended))
	merged = append(merged, snap.Records...)
	merged = append(merged, appended...)
	merged = dedup.ByOrderID(merged)

	out := &Outcome{
		Records:     merged,
		Baseline:    snap.Baseline(),
		UniqueBatch: len(unique),
		Appended:    len(appended),
	}

	if collapsed := snap.Baseline() + len(appended) - len(merged); collapsed > 0 {
		out.Diagnostics = append(out.Diagnostics,
			types.Warnf(diagnosticSource, "%d repeated order ids in the stored file were collapsed", collapsed))
	}

	grew := len(merged) > snap.Baseline()
	if len(merged) == 0 || !(grew || snap.State == StateNoStore) {
		out.Diagnostics = append(out.Diagnostics, types.Infof(diagnosticSource, "no new records, store left unchanged"))
		return out, nil
	}

	// Rewriting drops what could not be read, so keep a copy first.
	if (snap.Corrupt != nil || snap.Skipped > 0) && m.backupCorrupt && utils.FileExists(m.path) {
		backup, err := utils.BackupFile(m.path, "corrupt", ulid.Make().String())
		if err != nil {
			return out, fmt.Errorf("%w: %w", ErrStoreWrite, err)
		}
		out.Backup = backup
		if snap.Corrupt != nil {
			out.Diagnostics = append(out.Diagnostics, types.Warnf(diagnosticSource, "unreadable store copied to %s", backup))
		} else {
			out.Diagnostics = append(out.Diagnostics, types.Warnf(diagnosticSource, "store with %d unreadable rows copied to %s", snap.Skipped, backup))
		}
	}

	if err := m.Save(merged); err != nil {
		return out, err
	}

	out.Persisted = true
	out.Diagnostics = append(out.Diagnostics,
		types.Infof(diagnosticSource, "%d new records appended, %d records saved to %s", len(appended), len(merged), m.path))
	return out, nil
}

// Save replaces the store file with records. On failure the previous file
// is unchanged and the returned error wraps ErrStoreWrite.
func (m *Manager) Save(records []types.OrderRecord) error {
	err := m.replace(m.path, func(w io.Writer) error {
		return WriteRecords(w, m.sheet, records)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}
	return nil
}
