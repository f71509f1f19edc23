package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mdfview/internal/services"
	"mdfview/internal/session"
)

func TestImportReportsStats(t *testing.T) {
	base := t.TempDir()
	signals := writeTestFile(t, filepath.Join(base, "signals.csv"), signalsCSV)
	dst := filepath.Join(base, "out.sqlite")

	out, _, err := runCLI(t, "import", signals, dst)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	requireContains(t, out, "Wrote "+dst)
	requireContains(t, out, "8")

	if _, _, err := runCLI(t, "import", signals, dst); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected existing store error, got %v", err)
	}
	if _, _, err := runCLI(t, "import", signals, dst, "--overwrite"); err != nil {
		t.Fatalf("overwrite import failed: %v", err)
	}
}

func TestChannelsListsCatalog(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "channels", env.storePath)
	if err != nil {
		t.Fatalf("channels failed: %v", err)
	}
	requireContains(t, out, "coolant")
	requireContains(t, out, "engine_speed")
	requireContains(t, out, "2 of 2 channels")

	out, _, err = env.run(t, "channels", env.storePath, "--search", "ENGINE")
	if err != nil {
		t.Fatalf("channels search failed: %v", err)
	}
	requireContains(t, out, "engine_speed")
	if strings.Contains(out, "coolant") {
		t.Fatalf("search should filter coolant:\n%s", out)
	}
}

func TestChannelsRejectsUnsupportedFile(t *testing.T) {
	env := setupCLITestEnv(t)
	path := writeTestFile(t, filepath.Join(env.baseDir, "notes.txt"), "hello")

	_, _, err := env.run(t, "channels", path)
	if err == nil {
		t.Fatal("expected load error")
	}
	if !errors.Is(err, services.ErrLoad) {
		t.Fatalf("expected ErrLoad, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "Failed to load file: ") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestTablePrintsPreview(t *testing.T) {
	env := setupCLITestEnv(t)
	csvPath := filepath.Join(env.baseDir, "table.csv")

	out, _, err := env.run(t, "table", env.storePath, "-C", "engine_speed,coolant", "--stop", "1", "--raster", "0.1", "--csv", csvPath)
	if err != nil {
		t.Fatalf("table failed: %v", err)
	}
	requireContains(t, out, "Displaying 4 rows.")
	requireContains(t, out, "engine_speed [rpm]")

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 5 || lines[0] != "time [s],engine_speed [rpm],coolant [degC]" {
		t.Fatalf("unexpected csv:\n%s", data)
	}
}

func TestTableWithoutChannels(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "table", env.storePath)
	if err != nil {
		t.Fatalf("table failed: %v", err)
	}
	requireContains(t, out, session.NoChannelsMessage)
}

func TestTableRejectsInvertedWindow(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := env.run(t, "table", env.storePath, "-C", "coolant", "--start", "5", "--stop", "1")
	if err == nil {
		t.Fatal("expected invalid range error")
	}
	if !errors.Is(err, services.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if err.Error() != "Start time must be less than stop time." {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestTableRejectsHidingUnselectedChannel(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := env.run(t, "table", env.storePath, "-C", "coolant", "--hide", "engine_speed")
	if err == nil || !strings.Contains(err.Error(), "not selected") {
		t.Fatalf("expected hide error, got %v", err)
	}
}

func TestPlotWritesPNG(t *testing.T) {
	env := setupCLITestEnv(t)
	outPath := filepath.Join(env.baseDir, "figures", "plot.png")

	out, _, err := env.run(t, "plot", env.storePath,
		"-C", "engine_speed", "-C", "coolant",
		"--mode", "overlay", "--secondary", "coolant",
		"--width", "640", "--height", "480", "-o", outPath)
	if err != nil {
		t.Fatalf("plot failed: %v", err)
	}
	requireContains(t, out, "overlay mode")
	requireContains(t, out, "secondary")
	requireContains(t, out, "Wrote "+outPath)

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read png: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatalf("output is not a PNG")
	}
}

func TestPlotHiddenChannelsOnly(t *testing.T) {
	env := setupCLITestEnv(t)
	outPath := filepath.Join(env.baseDir, "plot.png")

	out, _, err := env.run(t, "plot", env.storePath, "-C", "coolant", "--hide", "coolant", "-o", outPath)
	if err != nil {
		t.Fatalf("plot failed: %v", err)
	}
	requireContains(t, out, session.NoChannelsMessage)
	if _, err := os.Stat(outPath); !os.IsNotExist(err) {
		t.Fatalf("no image expected, stat err = %v", err)
	}
}

func TestPlotRejectsUnknownMode(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := env.run(t, "plot", env.storePath, "-C", "coolant", "--mode", "spiral")
	if err == nil || !strings.Contains(err.Error(), "unknown plot mode") {
		t.Fatalf("expected mode error, got %v", err)
	}
}

func TestConvertWritesCSV(t *testing.T) {
	env := setupCLITestEnv(t)
	outPath := filepath.Join(env.baseDir, "export.csv")

	out, _, err := env.run(t, "convert", env.storePath, "-o", outPath)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	requireContains(t, out, "Wrote "+outPath)
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasPrefix(string(data), "time,") {
		t.Fatalf("unexpected export header:\n%s", data)
	}
}

func TestConvertUnsupportedFormatFails(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := env.run(t, "convert", env.storePath, "--format", "parquet", "-o", filepath.Join(env.baseDir, "x.parquet"))
	if err == nil {
		t.Fatal("expected conversion error")
	}
	if !errors.Is(err, services.ErrConversion) || !strings.HasPrefix(err.Error(), "Export failed: ") {
		t.Fatalf("unexpected error %v", err)
	}
	if entries, _ := os.ReadDir(filepath.Join(env.baseDir, "work", "sessions")); len(entries) != 0 {
		t.Fatalf("session areas left behind: %d", len(entries))
	}
}

func TestDecodeRequiresDatabase(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := env.run(t, "decode", env.storePath)
	if err == nil || err.Error() != "Please provide at least one database file." {
		t.Fatalf("expected no-database message, got %v", err)
	}
}

func TestDecodeListsSignals(t *testing.T) {
	env := setupCLITestEnv(t)
	dbPath := writeTestFile(t, filepath.Join(env.baseDir, "engine.dbc"), engineDBC)
	outPath := filepath.Join(env.baseDir, "decoded.csv")

	out, _, err := env.run(t, "decode", env.storePath, "--db", dbPath, "-o", outPath)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	requireContains(t, out, "EngineSpeed")
	requireContains(t, out, "CoolantTemp")
	requireContains(t, out, "2 signals from 1 database(s)")

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read decoded csv: %v", err)
	}
	requireContains(t, string(data), "EngineSpeed[rpm]")
}

func TestLogsShowsSessionEntries(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := env.run(t, "channels", env.storePath); err != nil {
		t.Fatalf("channels failed: %v", err)
	}

	out, _, err := env.run(t, "logs", "--grep", "session opened")
	if err != nil {
		t.Fatalf("logs failed: %v", err)
	}
	requireContains(t, out, "session opened")
}
