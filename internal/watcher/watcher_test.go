package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

const testDebounce = 50 * time.Millisecond

// recorder collects callback paths.
type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) add(path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func (r *recorder) has(suffix string) bool {
	for _, p := range r.snapshot() {
		if strings.HasSuffix(p, suffix) {
			return true
		}
	}
	return false
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error(msg)
}

func TestWatcher_AddRemoveDirectories(t *testing.T) {
	dir := t.TempDir()
	w := New(nil, []string{".csv"}, true, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := w.AddDirectory(dir, false); err != nil {
		t.Fatal(err)
	}
	if err := w.AddDirectory(dir, false); err != nil {
		t.Fatal(err)
	}
	dirs := w.Directories()
	if len(dirs) != 1 || dirs[0] != filepath.Clean(dir) {
		t.Errorf("Directories() = %v", dirs)
	}

	if err := w.RemoveDirectory(dir); err != nil {
		t.Fatal(err)
	}
	if len(w.Directories()) != 0 {
		t.Errorf("after remove: %v", w.Directories())
	}
	if err := w.RemoveDirectory(dir); err != nil {
		t.Errorf("removing an unknown root should be a no-op: %v", err)
	}
}

func TestWatcher_DebounceAndExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := mkdirAll(sub); err != nil {
		t.Fatal(err)
	}

	var detected recorder
	w := New([]string{dir}, []string{".csv", ".xlsx"}, true, detected.add, nil, WithDebounce(testDebounce))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	fPath := filepath.Join(sub, "sales.csv")
	for i := 0; i < 3; i++ {
		if err := writeFile(fPath, strings.Repeat("1,2\n", i+1)); err != nil {
			t.Fatal(err)
		}
	}
	if err := writeFile(filepath.Join(sub, "notes.txt"), "skip"); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(sub, "~$sales.xlsx"), "lock"); err != nil {
		t.Fatal(err)
	}

	eventually(t, func() bool { return detected.has("sales.csv") }, "expected sales.csv to be detected")
	time.Sleep(4 * testDebounce)
	for _, p := range detected.snapshot() {
		if strings.HasSuffix(p, "notes.txt") || strings.Contains(p, "~$") {
			t.Errorf("unexpected detection of %s", p)
		}
	}
}

func TestWatcher_RemoveCallsOnRemove(t *testing.T) {
	dir := t.TempDir()
	fPath := filepath.Join(dir, "book.xlsx")
	if err := writeFile(fPath, "x"); err != nil {
		t.Fatal(err)
	}

	var removed recorder
	w := New([]string{dir}, []string{".xlsx"}, true, nil, removed.add, WithDebounce(testDebounce))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(fPath); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool { return removed.has("book.xlsx") }, "expected book.xlsx removal callback")
}

func TestWatcher_RenameAwayCallsOnRemove(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()
	fPath := filepath.Join(dir, "book.csv")
	if err := writeFile(fPath, "1"); err != nil {
		t.Fatal(err)
	}

	var removed recorder
	w := New([]string{dir}, []string{".csv"}, true, nil, removed.add, WithDebounce(testDebounce))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Rename(fPath, filepath.Join(outside, "book.csv")); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool { return removed.has("book.csv") }, "expected rename away to report removal")
}

func TestMatchExtension(t *testing.T) {
	tests := []struct {
		path       string
		extensions []string
		want       bool
	}{
		{"/a/b.csv", []string{".csv"}, true},
		{"/a/b.XLSX", []string{".xlsx"}, true},
		{"/a/b.xls", []string{"xls"}, true},
		{"/a/b.ods", []string{".csv", ".xls", ".xlsx"}, false},
		{"/a/b", nil, true},
		{"/a/b", []string{}, true},
	}
	for _, tt := range tests {
		got := matchExtension(tt.path, tt.extensions)
		if got != tt.want {
			t.Errorf("matchExtension(%q, %v) = %v, want %v", tt.path, tt.extensions, got, tt.want)
		}
	}
}

func TestIsScratchFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/data/~$Budget.xlsx", true},
		{"/data/.~lock.Budget.xlsx#", true},
		{"/data/.hidden.csv", true},
		{"/data/Budget.xlsx", false},
		{"/data/report~1.xls", false},
	}
	for _, tt := range tests {
		if got := isScratchFile(tt.path); got != tt.want {
			t.Errorf("isScratchFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestInDir(t *testing.T) {
	tests := []struct {
		dir  string
		path string
		want bool
	}{
		{"/tmp/a", "/tmp/a", true},
		{"/tmp/a", "/tmp/a/b.csv", true},
		{"/tmp/a", "/tmp/b", false},
		{"/tmp/a", "/tmp/a/../b", false},
		{"/tmp/a", "/tmp/ab/c.csv", false},
	}
	for _, tt := range tests {
		got := inDir(tt.dir, tt.path)
		if got != tt.want {
			t.Errorf("inDir(%q, %q) = %v, want %v", tt.dir, tt.path, got, tt.want)
		}
	}
}

func TestWatcher_SyncExistingFiles(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := mkdirAll(sub); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.csv", "ignore.txt", "~$a.xlsx", filepath.Join("sub", "b.xls")} {
		if err := writeFile(filepath.Join(dir, name), "x"); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("recursive", func(t *testing.T) {
		var detected recorder
		w := New([]string{dir}, []string{".csv", ".xls", ".xlsx"}, true, detected.add, nil)
		if err := w.Start(context.Background()); err != nil {
			t.Fatal(err)
		}
		defer w.Stop()
		w.SyncExistingFiles()
		got := detected.snapshot()
		if len(got) != 2 || !detected.has("a.csv") || !detected.has("b.xls") {
			t.Errorf("expected a.csv and b.xls, got %v", got)
		}
	})

	t.Run("flat", func(t *testing.T) {
		var detected recorder
		w := New([]string{dir}, []string{".csv", ".xls", ".xlsx"}, false, detected.add, nil)
		if err := w.Start(context.Background()); err != nil {
			t.Fatal(err)
		}
		defer w.Stop()
		w.SyncExistingFiles()
		got := detected.snapshot()
		if len(got) != 1 || !detected.has("a.csv") {
			t.Errorf("expected only a.csv, got %v", got)
		}
	})
}

func TestWatcher_Start_createsMissingRootDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "watch", "me")

	w := New([]string{root}, []string{".csv"}, true, nil, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if _, err := os.Stat(root); err != nil {
		t.Errorf("root directory should exist after Start: %v", err)
	}
}

func TestWatcher_StopIdempotent(t *testing.T) {
	w := New([]string{t.TempDir()}, nil, true, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	cancel()
	w.Stop()
	if err := w.AddDirectory(t.TempDir(), false); err != nil {
		t.Errorf("AddDirectory after Stop should be a no-op: %v", err)
	}
}

func TestWatcher_HandleNewDirectory_detectsFilesInNewFolder(t *testing.T) {
	dir := t.TempDir()

	var detected recorder
	w := New([]string{dir}, []string{".csv", ".xlsx"}, true, detected.add, nil, WithDebounce(testDebounce))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// Build the folder elsewhere and move it in, as a copy from another volume would.
	staging := filepath.Join(t.TempDir(), "quarterly")
	if err := mkdirAll(filepath.Join(staging, "2024")); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(staging, "q1.csv"), "1"); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(staging, "2024", "q2.xlsx"), "x"); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(staging, "ignore.txt"), "skip"); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(staging, filepath.Join(dir, "quarterly")); err != nil {
		t.Skipf("cannot move directory across temp dirs: %v", err)
	}

	eventually(t, func() bool { return detected.has("q1.csv") && detected.has("q2.xlsx") },
		"expected q1.csv and q2.xlsx to be detected")
	if detected.has("ignore.txt") {
		t.Error("ignore.txt should not be detected")
	}
}

func TestWatcher_HandleNewDirectory_recursiveSubfolders(t *testing.T) {
	dir := t.TempDir()

	var detected recorder
	w := New([]string{dir}, []string{".csv"}, true, detected.add, nil, WithDebounce(testDebounce))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	nested := filepath.Join(dir, "level1", "level2")
	if err := mkdirAll(nested); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(nested, "deep.csv"), "1,2"); err != nil {
		t.Fatal(err)
	}

	eventually(t, func() bool { return detected.has("deep.csv") }, "expected deep.csv to be detected")
}

func mkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}
