// =============================================================================
// Order Consolidation - Pipeline
// =============================================================================
//
// This module runs one consolidation from source files to the persisted
// store and hands back the resulting records for the view layer.
//
// PIPELINE:
//   1. Load the Consolidated Store (baseline)
//   2. Read the primary workbook and resolve group codes
//   3. Read the secondary period files in configured order
//   4. Normalize every batch and concatenate (primary first)
//   5. Deduplicate, diff against the store, append and persist
//
// ERROR POLICY:
//   Source problems become diagnostics and never fail the run. Only two
//   conditions are fatal: nothing at all could be loaded, and the store
//   could not be written.
//
// CONCURRENCY:
//   A Pipeline is not safe for concurrent use. Callers serialize runs.
//
// =============================================================================

package pipeline

import (
	"errors"
	"time"

	"github.com/ginjaninja78/order-consolidation/internal/config"
	"github.com/ginjaninja78/order-consolidation/internal/groups"
	"github.com/ginjaninja78/order-consolidation/internal/normalize"
	"github.com/ginjaninja78/order-consolidation/internal/sources"
	"github.com/ginjaninja78/order-consolidation/internal/store"
	"github.com/ginjaninja78/order-consolidation/internal/types"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// ErrNothingLoaded is returned when every source was empty or unreadable
// and there was no usable store to fall back on.
var ErrNothingLoaded = errors.New("no data could be loaded from any source or the store")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result is the outcome of one pipeline run.
type Result struct {
	// RunID identifies the run in logs and the run history.
	RunID string

	StartedAt time.Time
	Duration  time.Duration

	// Records is the deduplicated store after the run.
	Records []types.OrderRecord

	Stats Stats

	// Diagnostics are every message produced during the run, in order.
	Diagnostics []types.Diagnostic
}

// Stats contains counts gathered during a run.
type Stats struct {
	// PrimaryRows and SecondaryRows are the records kept after
	// normalization, per source system.
	PrimaryRows   int
	SecondaryRows int

	// DroppedRows are source rows without a usable date or order id.
	DroppedRows int

	// GroupsResolved is the number of kept primary rows whose group code
	// matched the lookup sheet.
	GroupsResolved int

	// UniqueBatch is the size of the incoming batch after deduplication.
	UniqueBatch int

	Baseline int
	Appended int
	Total    int

	// Persisted is true when the store file was written.
	Persisted bool

	// StoreState is the state the store was found in.
	StoreState store.State

	// Backup is where a corrupt store was copied, if anywhere.
	Backup string
}

// Warnings counts the warning and error diagnostics of the run.
func (r *Result) Warnings() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Level != types.LevelInfo {
			n++
		}
	}
	return n
}

// =============================================================================
// PIPELINE STRUCTURE
// =============================================================================

// Logger is the logging surface the pipeline needs. *zap.SugaredLogger
// satisfies it.
type Logger interface {
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
}

// Pipeline runs consolidations for one configuration.
type Pipeline struct {
	cfg    *config.Config
	store  *store.Manager
	logger Logger

	// now is replaced in tests.
	now func() time.Time
}

// New creates a Pipeline.
//
// PARAMETERS:
//   - cfg: A validated configuration.
//   - logger: Receives every diagnostic. nil discards them.
func New(cfg *config.Config, logger Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Pipeline{
		cfg:    cfg,
		store:  store.NewManager(cfg.Store),
		logger: logger,
		now:    time.Now,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes one consolidation.
//
// RETURNS:
//   - The run result. It is non-nil even when an error is returned, so the
//     diagnostics of a failed run can still be shown and recorded.
//   - ErrNothingLoaded, or an error wrapping store.ErrStoreWrite.
func (p *Pipeline) Run() (*Result, error) {
	started := p.now()
	result := &Result{
		RunID:     ulid.Make().String(),
		StartedAt: started,
	}
	defer func() {
		result.Duration = p.now().Sub(started)
	}()

	p.logger.Debugf("run %s started", result.RunID)

	// =========================================================================
	// STEP 1: LOAD THE STORE
	// =========================================================================

	snap := p.store.Load()
	result.Stats.StoreState = snap.State
	result.Stats.Baseline = snap.Baseline()
	p.report(result, snap.Diagnostics...)

	// =========================================================================
	// STEP 2: PRIMARY SOURCE
	// =========================================================================
	// Group codes are resolved against the lookup sheet before normalization
	// so the group name fallback always sees the final text.

	primaryCfg := p.cfg.Sources.Primary
	primary, diags := sources.ReadPrimary(primaryCfg)
	p.report(result, diags...)

	rows := primary.Rows
	if primary.Lookup != nil {
		lookup := groups.NewLookup(primary.Lookup)
		rows, _ = groups.Resolve(primary.Rows, lookup)
		result.Stats.GroupsResolved = resolvedKept(primary.Batch, primary.Rows, lookup)
		p.logger.Debugf("%s: %d of %d rows matched one of %d group codes",
			primaryCfg.System, result.Stats.GroupsResolved, len(rows), lookup.Len())
	}

	batch := p.normalize(result, primary.Batch, rows)
	result.Stats.PrimaryRows = len(batch)

	// =========================================================================
	// STEP 3: SECONDARY SOURCE
	// =========================================================================

	secondary, diags := sources.ReadSecondary(p.cfg.Sources.Secondary)
	p.report(result, diags...)

	for _, b := range secondary {
		records := p.normalize(result, b, b.Rows)
		if len(records) == 0 {
			p.report(result, types.Infof(b.Label, "file %s has no dated rows, skipping", b.File))
			continue
		}
		result.Stats.SecondaryRows += len(records)
		batch = append(batch, records...)
	}

	// =========================================================================
	// STEP 4: FATAL AND DEGRADED CASES
	// =========================================================================

	if len(batch) == 0 {
		if snap.Baseline() == 0 {
			p.report(result, types.Errorf("pipeline", "no source produced any rows and there is no usable store"))
			return result, ErrNothingLoaded
		}
		p.report(result, types.Warnf("pipeline", "no source rows loaded, showing the %d stored records", snap.Baseline()))
	}

	// =========================================================================
	// STEP 5: CONSOLIDATE
	// =========================================================================

	out, err := p.store.Consolidate(snap, batch)
	if out != nil {
		result.Records = out.Records
		result.Stats.UniqueBatch = out.UniqueBatch
		result.Stats.Appended = out.Appended
		result.Stats.Total = out.Total()
		result.Stats.Persisted = out.Persisted
		result.Stats.Backup = out.Backup
		p.report(result, out.Diagnostics...)
	}
	if err != nil {
		p.report(result, types.Errorf("store", "%v", err))
		return result, err
	}

	p.logger.Infof("run %s: %d records (%d new, baseline %d)",
		result.RunID, result.Stats.Total, result.Stats.Appended, result.Stats.Baseline)

	return result, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// normalize converts one batch and reports the rows it dropped.
func (p *Pipeline) normalize(result *Result, b sources.Batch, rows []types.RawRow) []types.OrderRecord {
	n := normalize.Normalizer{System: b.System, Date1904: b.Date1904}
	records, stats := n.Normalize(rows)

	result.Stats.DroppedRows += stats.Dropped()
	if stats.BadDate > 0 {
		p.report(result, types.Warnf(b.Label, "%d rows without a valid date dropped", stats.BadDate))
	}
	if stats.BlankOrder > 0 {
		p.report(result, types.Warnf(b.Label, "%d rows without an order id dropped", stats.BlankOrder))
	}
	return records
}

// resolvedKept counts the rows that matched a group code and survive
// normalization.
func resolvedKept(b sources.Batch, rows []types.RawRow, lookup *groups.Lookup) int {
	n := normalize.Normalizer{System: b.System, Date1904: b.Date1904}
	count := 0
	for _, row := range rows {
		if _, ok := lookup.Name(row.GroupCode); ok && n.Accepts(row) {
			count++
		}
	}
	return count
}

// report records diagnostics on the result and logs them.
func (p *Pipeline) report(result *Result, diags ...types.Diagnostic) {
	for _, d := range diags {
		result.Diagnostics = append(result.Diagnostics, d)
		switch d.Level {
		case types.LevelError:
			p.logger.Errorf("%s: %s", d.Source, d.Message)
		case types.LevelWarn:
			p.logger.Warnf("%s: %s", d.Source, d.Message)
		default:
			p.logger.Infof("%s: %s", d.Source, d.Message)
		}
	}
}
