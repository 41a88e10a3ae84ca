package importer

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/veloform/veloform/internal/models"
)

// writeGzip writes content gzip-compressed to dir/name and returns the path.
func writeGzip(t *testing.T, dir, name, content string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(content)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestDecompressGzip(t *testing.T) {
	const content = `{"data":{"metrics":[]}}`
	path := writeGzip(t, t.TempDir(), "empty.json.gz", content)

	data, err := decompressGzip(path)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if string(data) != content {
		t.Errorf("got %q, want %q", data, content)
	}
}

func TestDecompressGzipRejectsPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.json.gz")
	if err := os.WriteFile(path, []byte("not gzip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := decompressGzip(path); err == nil {
		t.Error("expected error for non-gzip content")
	}
}

func TestSessionRowFrom(t *testing.T) {
	iF := 0.82
	s := models.TrainerSession{
		Name:            "Sweet Spot 3x12",
		DurationMin:     75,
		TrainingStress:  88,
		IntensityFactor: &iF,
		ZoneMinutes:     &models.SessionZoneSplit{Z1: 10, Z2: 25, Z3: 36, Z4: 4, Z5: 0},
	}
	if err := s.Date.Parse("2026-02-10 07:30:00 +0100"); err != nil {
		t.Fatal(err)
	}

	row := sessionRowFrom(s, 7)

	if row.AthleteID != 7 {
		t.Errorf("athlete = %d, want 7", row.AthleteID)
	}
	if row.Source != "archive" {
		t.Errorf("source = %q, want archive", row.Source)
	}
	if row.ID == uuid.Nil {
		t.Error("expected generated session ID")
	}
	if row.Z3Min == nil || *row.Z3Min != 36 {
		t.Errorf("z3 = %v, want 36", row.Z3Min)
	}
	if row.IntensityFactor == nil || *row.IntensityFactor != 0.82 {
		t.Errorf("intensity factor = %v, want 0.82", row.IntensityFactor)
	}
}

func TestSessionRowFromNoZones(t *testing.T) {
	s := models.TrainerSession{Name: "Recovery Spin", DurationMin: 40, TrainingStress: 20}
	row := sessionRowFrom(s, 1)
	if row.Z1Min != nil || row.Z5Min != nil {
		t.Error("expected nil zone minutes when payload has none")
	}
}

func TestIsCanonicalDuration(t *testing.T) {
	tests := []struct {
		sec  int
		want bool
	}{
		{180, true},
		{720, true},
		{181, false},
		{0, false},
		{-5, false},
	}
	for _, tt := range tests {
		if got := isCanonicalDuration(tt.sec); got != tt.want {
			t.Errorf("isCanonicalDuration(%d) = %v, want %v", tt.sec, got, tt.want)
		}
	}
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := HashFile(path)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	const want = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got != want {
		t.Errorf("hash = %q, want %q", got, want)
	}
}

func TestStateDBRoundTrip(t *testing.T) {
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("open state db: %v", err)
	}
	defer state.Close()

	done, err := state.IsImported("2026-01.json.gz", "wearable", 1234, "abc")
	if err != nil {
		t.Fatalf("is imported: %v", err)
	}
	if done {
		t.Error("fresh state db should report file as not imported")
	}

	if err := state.MarkImported("2026-01.json.gz", "wearable", 1234, "abc", 820); err != nil {
		t.Fatalf("mark imported: %v", err)
	}

	done, err = state.IsImported("2026-01.json.gz", "wearable", 1234, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if !done {
		t.Error("file should be reported as imported")
	}

	// A changed file (different hash) must be re-imported.
	done, err = state.IsImported("2026-01.json.gz", "wearable", 1234, "def")
	if err != nil {
		t.Fatal(err)
	}
	if done {
		t.Error("changed hash should not match recorded state")
	}
}

// TestStateDBRowsImported verifies per-kind row accounting, including the
// overwrite semantics when a changed file is re-imported.
func TestStateDBRowsImported(t *testing.T) {
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("open state db: %v", err)
	}
	defer state.Close()

	if err := state.MarkImported("2026-01.json.gz", "wearable", 100, "aaa", 500); err != nil {
		t.Fatal(err)
	}
	if err := state.MarkImported("2026-02.json.gz", "wearable", 120, "bbb", 300); err != nil {
		t.Fatal(err)
	}
	// Same basename under a different kind: must not clobber the wearable record.
	if err := state.MarkImported("2026-01.json.gz", "trainer", 80, "ccc", 40); err != nil {
		t.Fatal(err)
	}

	total, err := state.RowsImported("wearable")
	if err != nil {
		t.Fatal(err)
	}
	if total != 800 {
		t.Errorf("wearable rows = %d, want 800", total)
	}

	// Re-importing a changed file replaces its record, not adds to it.
	if err := state.MarkImported("2026-02.json.gz", "wearable", 150, "ddd", 450); err != nil {
		t.Fatal(err)
	}
	total, err = state.RowsImported("wearable")
	if err != nil {
		t.Fatal(err)
	}
	if total != 950 {
		t.Errorf("wearable rows after re-import = %d, want 950", total)
	}
}
