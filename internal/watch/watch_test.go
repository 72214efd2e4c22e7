package watch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ginjaninja78/order-consolidation/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *recorder) onChange(_ context.Context, changed []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, changed)
}

func (r *recorder) get() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.batches...)
}

// start runs w until the test ends and gives fsnotify time to register.
func start(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	time.Sleep(100 * time.Millisecond)
}

func TestWatcherDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "base.xlsx")
	require.NoError(t, os.WriteFile(target, []byte("v1"), 0644))

	rec := &recorder{}
	w, err := New([]string{target}, 100*time.Millisecond, rec.onChange, nil)
	require.NoError(t, err)
	start(t, w)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(target, []byte("v2"), 0644))
	}

	assert.Eventually(t, func() bool { return len(rec.get()) == 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)

	batches := rec.get()
	require.Len(t, batches, 1)
	assert.Equal(t, []string{target}, batches[0])
	assert.Equal(t, 1, w.Stats().Batches)
}

func TestWatcherSeesAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "08-2025.xlsx")

	rec := &recorder{}
	w, err := New([]string{target}, 50*time.Millisecond, rec.onChange, nil)
	require.NoError(t, err)
	start(t, w)

	// The file does not exist yet; writing it through a temp file and a
	// rename must still be reported for the target only.
	require.NoError(t, utils.WriteAtomic(target, func(wr io.Writer) error {
		_, err := wr.Write([]byte("data"))
		return err
	}))

	assert.Eventually(t, func() bool { return len(rec.get()) > 0 }, 3*time.Second, 20*time.Millisecond)
	for _, b := range rec.get() {
		assert.Equal(t, []string{target}, b)
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "base.xlsx")

	rec := &recorder{}
	w, err := New([]string{target}, 50*time.Millisecond, rec.onChange, nil)
	require.NoError(t, err)
	start(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "~$base.xlsx"), []byte("lock"), 0644))

	assert.Eventually(t, func() bool { return w.Stats().Ignored >= 2 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, rec.get())
	assert.Zero(t, w.Stats().Events)
}

func TestNew(t *testing.T) {
	_, err := New(nil, 0, func(context.Context, []string) {}, nil)
	assert.Error(t, err)

	dir := t.TempDir()
	w, err := New([]string{filepath.Join(dir, "a.xlsx"), filepath.Join(dir, "b.xlsx")}, 0, func(context.Context, []string) {}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.debounceDur)
	assert.Equal(t, []string{dir}, w.dirs)
	assert.Len(t, w.files, 2)
}

func TestRunFailsForMissingDirectory(t *testing.T) {
	w, err := New([]string{filepath.Join(t.TempDir(), "missing", "a.xlsx")}, 0, func(context.Context, []string) {}, nil)
	require.NoError(t, err)
	assert.Error(t, w.Run(context.Background()))
}
