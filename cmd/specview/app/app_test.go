package app

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCapture(t *testing.T, dir, name string, start, stop float64, samples []int32) string {
	t.Helper()

	var buf bytes.Buffer
	le := binary.LittleEndian
	buf.Write(le.AppendUint64(nil, uint64(len(samples))))
	buf.Write(le.AppendUint64(nil, math.Float64bits(start)))
	buf.Write(le.AppendUint64(nil, math.Float64bits(stop)))
	buf.Write(le.AppendUint32(nil, math.Float32bits(-30)))
	buf.Write(le.AppendUint32(nil, math.Float32bits(5)))
	for _, s := range samples {
		buf.Write(le.AppendUint32(nil, uint32(s)))
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("Failed to write capture: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var logLevel slog.LevelVar
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: &logLevel}))

	var out bytes.Buffer
	cmd := NewRootCommand(logger, &logLevel)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExport_BatchContinuesOnFailure(t *testing.T) {
	dir := t.TempDir()
	a := writeCapture(t, dir, "a.dat", 1000, 1004, []int32{0, 128, 255, 64})
	b := writeCapture(t, dir, "b.dat", 2000, 2002, []int32{10, 20})
	broken := filepath.Join(dir, "broken.dat")
	if err := os.WriteFile(broken, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatalf("Failed to write capture: %v", err)
	}

	outDir := filepath.Join(dir, "csv")
	if err := os.Mkdir(outDir, 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	if _, err := run(t, "export", "--out", outDir, a, broken, filepath.Join(dir, "missing.dat"), b); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	for _, name := range []string{"a.csv", "b.csv"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("Expected %s to be written: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "broken.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Did not expect broken.csv, got %v", err)
	}
}

func TestExport_DirectoryFromConfig(t *testing.T) {
	dir := t.TempDir()
	capture := writeCapture(t, dir, "capture.dat", 1000, 1004, []int32{0, 1, 2, 3})
	outDir := t.TempDir()
	config := writeConfig(t, "export:\n  directory: "+outDir+"\n")

	if _, err := run(t, "--config", config, "export", capture); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "capture.csv")); err != nil {
		t.Errorf("Expected capture.csv in the configured directory: %v", err)
	}
}

func TestSeries(t *testing.T) {
	capture := writeCapture(t, t.TempDir(), "capture.dat", 1000, 1004, []int32{0, 128, 255, 64})

	out, err := run(t, "series", capture)
	if err != nil {
		t.Fatalf("Series failed: %v", err)
	}

	expected := "# capture\n" +
		"1000.000000, -30.000000\n" +
		"1001.000000, -55.098039\n" +
		"1002.000000, -80.000000\n" +
		"1003.000000, -42.549020\n"
	if out != expected {
		t.Errorf("Unexpected output:\n%s\nexpected:\n%s", out, expected)
	}
}

func TestSeries_Decimated(t *testing.T) {
	capture := writeCapture(t, t.TempDir(), "capture.dat", 1000, 1004, []int32{0, 128, 255, 64})

	out, err := run(t, "series", "--width", "2", capture)
	if err != nil {
		t.Fatalf("Series failed: %v", err)
	}

	expected := "# capture\n" +
		"1000.000000, -30.000000\n" +
		"1002.000000, -42.549020\n"
	if out != expected {
		t.Errorf("Unexpected output:\n%s\nexpected:\n%s", out, expected)
	}
}

func TestSeries_Detrend(t *testing.T) {
	dir := t.TempDir()
	capture := writeCapture(t, dir, "capture.dat", 1000, 1004, []int32{0, 0, 51, 51})
	reference := writeCapture(t, dir, "reference.dat", 1000, 1004, []int32{0, 0, 51, 51})

	out, err := run(t, "series", "--detrend", reference, capture)
	if err != nil {
		t.Fatalf("Series failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("Expected header and 4 points, got %q", out)
	}
	// a capture detrended against itself is flat
	first := strings.SplitN(lines[1], ", ", 2)[1]
	for _, line := range lines[2:] {
		if got := strings.SplitN(line, ", ", 2)[1]; got != first {
			t.Errorf("Expected flat series at %s, got %s", first, got)
		}
	}

	// a loaded record is found by name before falling back to the loader
	byName, err := run(t, "series", "--detrend", "capture", capture)
	if err != nil {
		t.Fatalf("Series failed: %v", err)
	}
	if byName != out {
		t.Errorf("Detrending by name differs:\n%s\nexpected:\n%s", byName, out)
	}

	if _, err = run(t, "series", "--detrend", filepath.Join(dir, "missing.dat"), capture); err == nil {
		t.Error("Expected error for missing detrend reference")
	}
}

func TestSeries_Pan(t *testing.T) {
	capture := writeCapture(t, t.TempDir(), "capture.dat", 1000, 1004, []int32{0, 128, 255, 64})

	// panning keeps the span, so decimation is unchanged
	out, err := run(t, "series", "--width", "2", "--start", "1000", "--stop", "1004", "--pan", "1.5", capture)
	if err != nil {
		t.Fatalf("Series failed: %v", err)
	}

	expected := "# capture\n" +
		"1000.000000, -30.000000\n" +
		"1002.000000, -42.549020\n"
	if out != expected {
		t.Errorf("Unexpected output:\n%s\nexpected:\n%s", out, expected)
	}
}

func TestSeries_Exclude(t *testing.T) {
	dir := t.TempDir()
	a := writeCapture(t, dir, "alpha.dat", 1000, 1004, []int32{0, 1, 2, 3})
	b := writeCapture(t, dir, "bravo.dat", 1000, 1004, []int32{4, 5, 6, 7})

	out, err := run(t, "series", "--exclude", "alpha,missing", a, b)
	if err != nil {
		t.Fatalf("Series failed: %v", err)
	}
	if strings.Contains(out, "# alpha") || !strings.HasPrefix(out, "# bravo\n") {
		t.Errorf("Expected only bravo, got:\n%s", out)
	}

	if _, err = run(t, "series", "--exclude", "alpha", "--exclude", "bravo", a, b); !errors.Is(err, errNoRecords) {
		t.Errorf("Expected errNoRecords, got %v", err)
	}
}

func TestSeries_Errors(t *testing.T) {
	dir := t.TempDir()
	capture := writeCapture(t, dir, "capture.dat", 1000, 1004, []int32{0, 1, 2, 3})

	if _, err := run(t, "series", filepath.Join(dir, "missing.dat")); !errors.Is(err, errNoRecords) {
		t.Errorf("Expected errNoRecords, got %v", err)
	}
	if _, err := run(t, "series", "--start", "1004", "--stop", "1000", capture); err == nil {
		t.Error("Expected error for inverted range")
	}
	if _, err := run(t, "--log-level", "loud", "series", capture); err == nil {
		t.Error("Expected error for invalid log level")
	}
}

func TestPlot(t *testing.T) {
	dir := t.TempDir()
	capture := writeCapture(t, dir, "capture.dat", 1000, 1004, []int32{0, 128, 255, 64})
	out := filepath.Join(dir, "chart")

	if _, err := run(t, "plot", "--out", out, "--width", "200", "--height", "100", "--rc", capture); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	if _, err := os.Stat(out + ".png"); err != nil {
		t.Errorf("Expected chart.png: %v", err)
	}

	if _, err := run(t, "plot", "--out", out, "--format", "gif", capture); err == nil {
		t.Error("Expected error for unsupported format")
	}
	if _, err := run(t, "plot", capture); err == nil {
		t.Error("Expected error without --out")
	}
}

func TestPlot_PowerAxis(t *testing.T) {
	dir := t.TempDir()
	capture := writeCapture(t, dir, "capture.dat", 1000, 1004, []int32{0, 128, 255, 64})
	out := filepath.Join(dir, "chart.png")

	if _, err := run(t, "plot", "--out", out, "--ref-level", "-20", "--scale", "2", capture); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("Expected chart.png: %v", err)
	}

	testCases := []struct {
		name string
		args []string
	}{
		{"zero scale", []string{"--scale", "0"}},
		{"negative scale", []string{"--scale", "-5"}},
		{"infinite scale", []string{"--scale", "+Inf"}},
		{"nan reference level", []string{"--ref-level", "NaN"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			args := append([]string{"plot", "--out", out}, tc.args...)
			if _, err := run(t, append(args, capture)...); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestArchive(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "records.sqlite")
	a := writeCapture(t, dir, "alpha.dat", 1000, 1004, []int32{0, 1, 2, 3})
	b := writeCapture(t, dir, "bravo.dat", 2000, 2004, []int32{4, 5, 6, 7})

	if _, err := run(t, "list", "--db", db); err == nil {
		t.Error("Expected error listing a missing database")
	}

	if _, err := run(t, "import", "--db", db, a, b); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	out, err := run(t, "list", "--db", db)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if !strings.Contains(out, "alpha") || !strings.Contains(out, "bravo") {
		t.Errorf("Expected both records listed, got:\n%s", out)
	}

	// archived records are resolved by name
	fromFile, err := run(t, "series", a)
	if err != nil {
		t.Fatalf("Series failed: %v", err)
	}
	fromDB, err := run(t, "series", "--db", db, "alpha")
	if err != nil {
		t.Fatalf("Series from database failed: %v", err)
	}
	if fromDB != fromFile {
		t.Errorf("Archived series differs:\n%s\nexpected:\n%s", fromDB, fromFile)
	}

	chart := filepath.Join(dir, "chart.png")
	if _, err = run(t, "plot", "--db", db, "--out", chart, "--detrend", "alpha", "alpha", "bravo"); err != nil {
		t.Fatalf("Plot from database failed: %v", err)
	}
	if _, err = os.Stat(chart); err != nil {
		t.Errorf("Expected chart.png: %v", err)
	}

	csvDir := t.TempDir()
	if _, err = run(t, "export", "--db", db, "--out", csvDir, "bravo", "missing"); err != nil {
		t.Fatalf("Export from database failed: %v", err)
	}
	if _, err = os.Stat(filepath.Join(csvDir, "bravo.csv")); err != nil {
		t.Errorf("Expected bravo.csv: %v", err)
	}

	if _, err = run(t, "series", "--db", db, "missing"); !errors.Is(err, errNoRecords) {
		t.Errorf("Expected errNoRecords for an unknown name, got %v", err)
	}
	if _, err = run(t, "series", "--db", filepath.Join(dir, "missing.sqlite"), "alpha"); err == nil {
		t.Error("Expected error for a missing database")
	}

	if _, err = run(t, "remove", "--db", db, "alpha", "missing"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	out, err = run(t, "list", "--db", db)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if strings.Contains(out, "alpha") || !strings.Contains(out, "bravo") {
		t.Errorf("Expected only bravo listed, got:\n%s", out)
	}

	if _, err = run(t, "import", a); err == nil {
		t.Error("Expected error without a database path")
	}
}

func TestInfo(t *testing.T) {
	capture := writeCapture(t, t.TempDir(), "capture.dat", 1000, 1004, []int32{0, 1, 2, 3})
	if _, err := run(t, "info", capture); err != nil {
		t.Errorf("Info failed: %v", err)
	}
	if _, err := run(t, "info"); err == nil {
		t.Error("Expected error without files")
	}
}
