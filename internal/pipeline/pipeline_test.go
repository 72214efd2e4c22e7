package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ginjaninja78/order-consolidation/internal/config"
	"github.com/ginjaninja78/order-consolidation/internal/store"
	"github.com/ginjaninja78/order-consolidation/internal/testutil"
	"github.com/ginjaninja78/order-consolidation/internal/types"
	"github.com/ginjaninja78/order-consolidation/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fixture lays out a primary workbook and three secondary periods, one of
// which is missing and one of which has no usable dates.
func fixture(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Sources.Primary.Path = testutil.PrimaryWorkbook(t, dir,
		[][]interface{}{
			{45853, 100, 7, "ACME LTDA", ""},
			{45854, 101, 99, "Beta SA", "nan"},
			{"bad", 102, 7, "ACME LTDA", ""},
		},
		[][]interface{}{{7, "Acme Group"}},
	)

	july := testutil.SecondaryWorkbook(t, dir, "ARGO-JULHO-25.xlsx", [][]interface{}{
		{"20/07/2025", 100, "Other Co", "Other Group"},
		{"21/07/2025", 500, "Delta", "Delta Group"},
	})
	september := testutil.SecondaryWorkbook(t, dir, "ARGO-SETEMBRO-25.xlsx", [][]interface{}{
		{"not a date", 600, "Zeta", "Zeta Group"},
	})
	cfg.Sources.Secondary.Files = []config.PeriodFile{
		{Period: "07/2025", Path: july},
		{Period: "08/2025", Path: filepath.Join(dir, "ARGO-AGOSTO-25.xlsx")},
		{Period: "09/2025", Path: september},
	}
	cfg.Store.Path = filepath.Join(dir, "base_consolidada.xlsx")
	return cfg
}

func observed() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core).Sugar(), logs
}

func ids(records []types.OrderRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.OrderID
	}
	return out
}

func TestRunConsolidatesBothSources(t *testing.T) {
	cfg := fixture(t)
	logger, logs := observed()

	result, err := New(cfg, logger).Run()
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, []string{"100", "101", "500"}, ids(result.Records))

	acme := result.Records[0]
	assert.Equal(t, "Reserve", acme.SourceSystem)
	assert.Equal(t, "Acme Group", acme.GroupName)
	assert.Equal(t, time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC), acme.Date)

	beta := result.Records[1]
	assert.False(t, beta.HasGroup())
	assert.Equal(t, "Beta SA", beta.Entity())

	assert.Equal(t, "ARGOIT", result.Records[2].SourceSystem)

	stats := result.Stats
	assert.Equal(t, 2, stats.PrimaryRows)
	assert.Equal(t, 2, stats.SecondaryRows)
	assert.Equal(t, 2, stats.DroppedRows)
	// The third primary row matches code 7 but has no valid date.
	assert.Equal(t, 1, stats.GroupsResolved)
	assert.Equal(t, 3, stats.UniqueBatch)
	assert.Equal(t, 0, stats.Baseline)
	assert.Equal(t, 3, stats.Appended)
	assert.Equal(t, 3, stats.Total)
	assert.True(t, stats.Persisted)
	assert.Equal(t, store.StateNoStore, stats.StoreState)
	assert.True(t, utils.FileExists(cfg.Store.Path))

	missing := logs.FilterLevelExact(zapcore.WarnLevel).FilterMessageSnippet("08/2025")
	assert.Equal(t, 1, missing.Len())

	skipped := logs.FilterLevelExact(zapcore.InfoLevel).FilterMessageSnippet("no dated rows")
	assert.Equal(t, 1, skipped.Len())

	assert.Positive(t, result.Warnings())
}

func TestRunIsIdempotent(t *testing.T) {
	cfg := fixture(t)

	first, err := New(cfg, nil).Run()
	require.NoError(t, err)
	before, err := os.ReadFile(cfg.Store.Path)
	require.NoError(t, err)

	second, err := New(cfg, nil).Run()
	require.NoError(t, err)
	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, store.StateLoaded, second.Stats.StoreState)
	assert.Equal(t, 3, second.Stats.Baseline)
	assert.Zero(t, second.Stats.Appended)
	assert.False(t, second.Stats.Persisted)

	after, err := os.ReadFile(cfg.Store.Path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRunNothingLoaded(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Sources.Primary.Path = filepath.Join(dir, "base.xlsx")
	cfg.Sources.Secondary.Files = []config.PeriodFile{{Period: "07/2025", Path: filepath.Join(dir, "ARGO.xlsx")}}
	cfg.Store.Path = filepath.Join(dir, "base_consolidada.xlsx")

	result, err := New(cfg, nil).Run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNothingLoaded))
	require.NotNil(t, result)
	assert.Empty(t, result.Records)
	assert.False(t, utils.FileExists(cfg.Store.Path))
}

func TestRunFallsBackToStore(t *testing.T) {
	cfg := fixture(t)
	_, err := New(cfg, nil).Run()
	require.NoError(t, err)

	cfg.Sources.Primary.Path = filepath.Join(t.TempDir(), "gone.xlsx")
	cfg.Sources.Secondary.Files = nil

	logger, logs := observed()
	result, err := New(cfg, logger).Run()
	require.NoError(t, err)
	assert.Equal(t, []string{"100", "101", "500"}, ids(result.Records))
	assert.False(t, result.Stats.Persisted)
	assert.Equal(t, 1, logs.FilterMessageSnippet("showing the 3 stored records").Len())
}

func TestRunStoreWriteFailure(t *testing.T) {
	cfg := fixture(t)

	// A regular file where the store directory should be makes every write fail.
	blocker := filepath.Join(filepath.Dir(cfg.Store.Path), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	cfg.Store.Path = filepath.Join(blocker, "base_consolidada.xlsx")

	logger, logs := observed()
	result, err := New(cfg, logger).Run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrStoreWrite))
	require.NotNil(t, result)
	assert.False(t, result.Stats.Persisted)
	assert.False(t, utils.FileExists(cfg.Store.Path))
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}
