package session_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"mdfview/internal/buslog"
	"mdfview/internal/measure"
	"mdfview/internal/plot"
	"mdfview/internal/services"
	"mdfview/internal/session"
	"mdfview/internal/sqlstore"
	"mdfview/internal/tabular"
	"mdfview/internal/testsupport"
)

func newSession(t *testing.T, store *testsupport.FakeStore, opts ...testsupport.ConfigOption) *session.Session {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	s, err := session.New(context.Background(), cfg, store, "drive.mf4", nil)
	if err != nil {
		t.Fatalf("session.New failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func threeChannels() *testsupport.FakeStore {
	return testsupport.NewFakeStore(
		testsupport.Ramp("Speed", "km/h", 100, 0.01),
		testsupport.Ramp("RPM", "1/min", 100, 0.01),
		testsupport.Ramp("Torque", "Nm", 100, 0.01),
	)
}

func TestRenderShowsStagedMinusHidden(t *testing.T) {
	store := threeChannels()
	s := newSession(t, store)
	ctx := context.Background()

	if got := s.Channels(ctx); !slices.Equal(got, []string{"RPM", "Speed", "Torque"}) {
		t.Fatalf("unexpected catalog %v", got)
	}
	s.Stage("Speed")
	s.Stage("RPM")
	s.SetHidden([]string{"RPM"})

	spec, err := s.Render(ctx)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	traces := spec.Traces()
	if len(traces) != 1 || traces[0].Name != "Speed" {
		t.Fatalf("expected only Speed, got %+v", traces)
	}
	if store.ListCalls != 1 {
		t.Fatalf("catalog should enumerate once, got %d", store.ListCalls)
	}
	if len(store.SelectCalls) != 1 || !slices.Equal(store.SelectCalls[0], []string{"Speed"}) {
		t.Fatalf("unexpected select calls %v", store.SelectCalls)
	}
}

func TestRenderAppliesDecimationAndMode(t *testing.T) {
	store := threeChannels()
	s := newSession(t, store, testsupport.WithPlotMode("overlay"))
	s.Settings.Decimation = 10
	s.ApplyStagedEdits([]string{"Speed", "RPM"})
	s.SetSecondaryAxis([]string{"RPM", "Torque"})

	spec, err := s.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if spec.Mode != plot.ModeOverlay || len(spec.Panels) != 1 {
		t.Fatalf("expected overlay, got %+v", spec)
	}
	traces := spec.Traces()
	if len(traces[0].X) != 10 {
		t.Fatalf("expected 10 decimated points, got %d", len(traces[0].X))
	}
	if traces[0].Secondary || !traces[1].Secondary {
		t.Fatalf("secondary axis routing wrong: %+v", traces)
	}
}

func TestRenderNothingShown(t *testing.T) {
	store := threeChannels()
	s := newSession(t, store)
	s.Stage("Speed")
	s.SetHidden([]string{"Speed"})

	spec, err := s.Render(context.Background())
	if err != nil || !spec.Empty() {
		t.Fatalf("expected empty spec, got %+v %v", spec, err)
	}
	if len(store.SelectCalls) != 0 {
		t.Fatal("store must not be queried when nothing is shown")
	}
}

func TestRenderExtractionFailure(t *testing.T) {
	store := threeChannels()
	store.SelectErr = errors.New(`channel "Speed" is ambiguous`)
	s := newSession(t, store)
	s.Stage("Speed")

	spec, err := s.Render(context.Background())
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
	if !spec.Empty() {
		t.Fatal("no partial plot expected")
	}
	if msg := services.UserMessage(err); msg != `Error selecting channels: channel "Speed" is ambiguous` {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestTableUsesShownChannels(t *testing.T) {
	store := threeChannels()
	s := newSession(t, store)

	if r := s.Table(context.Background(), tabular.DefaultWindow()); r.Message != session.NoChannelsMessage {
		t.Fatalf("expected no-channels message, got %+v", r)
	}

	s.Stage("Torque")
	r := s.Table(context.Background(), tabular.Window{Start: 0, Stop: 0.5, Raster: 0.1})
	if r.State != tabular.StateReady {
		t.Fatalf("expected ready table, got %s (%s)", r.State, r.Message)
	}
	if !slices.Equal(r.Table.Columns, []string{"time", "Torque"}) {
		t.Fatalf("unexpected columns %v", r.Table.Columns)
	}

	bad := s.Table(context.Background(), tabular.Window{Start: 5, Stop: 2, Raster: 0.1})
	if bad.State != tabular.StateFailed || len(store.CutCalls) != 1 {
		t.Fatalf("invalid window must fail without slicing: %+v cuts=%d", bad, len(store.CutCalls))
	}
}

func TestConvertThroughSession(t *testing.T) {
	store := threeChannels()
	store.ExportPayload = []byte("time,Speed\n")
	s := newSession(t, store)

	data, err := s.Convert(context.Background(), measure.FormatCSV, measure.CompressionGZIP)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if string(data) != "time,Speed\n" {
		t.Fatalf("unexpected data %q", data)
	}
	if store.ExportCalls[0].Options.Compression != "" {
		t.Fatal("csv must not receive compression")
	}
}

func TestDecodeBusLogReplacesStore(t *testing.T) {
	raw := threeChannels()
	decoded := testsupport.NewFakeStore(testsupport.Ramp("EngineSpeed", "rpm", 10, 0.1))
	raw.Decoded = decoded
	s := newSession(t, raw)
	ctx := context.Background()

	s.Channels(ctx)
	s.Stage("Speed")
	s.SetSecondaryAxis([]string{"Speed"})
	oldID := s.SourceFileID

	if err := s.DecodeBusLog(ctx, []buslog.DatabaseFile{{Name: "engine.dbc", Data: []byte("BO_ 1 X: 8 E")}}); err != nil {
		t.Fatalf("DecodeBusLog failed: %v", err)
	}
	if s.Store != decoded {
		t.Fatal("decoded store should be current")
	}
	if !raw.Closed {
		t.Fatal("replaced store should be closed")
	}
	if s.SourceFileID == oldID {
		t.Fatal("source id should change after replacement")
	}
	if !s.Selection.Empty() || len(s.Settings.SecondaryAxis) != 0 {
		t.Fatalf("selection should reset, got %v", s.Selection.Staged())
	}
	if got := s.Channels(ctx); !slices.Equal(got, []string{"EngineSpeed"}) {
		t.Fatalf("catalog not rebuilt: %v", got)
	}
}

func TestDecodeBusLogFailureKeepsStore(t *testing.T) {
	raw := threeChannels()
	raw.DecodeErr = errors.New("no frames")
	s := newSession(t, raw)
	s.Stage("Speed")

	if err := s.DecodeBusLog(context.Background(), nil); !errors.Is(err, services.ErrNoDatabase) {
		t.Fatalf("expected ErrNoDatabase, got %v", err)
	}
	if err := s.DecodeBusLog(context.Background(), []buslog.DatabaseFile{{Name: "a.dbc"}}); !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if s.Store != measure.Store(raw) || raw.Closed {
		t.Fatal("original store must remain current and open")
	}
	if !s.Selection.IsShown("Speed") {
		t.Fatal("selection must survive a failed decode")
	}
	if len(raw.DecodeCalls) != 1 {
		t.Fatalf("expected one decode attempt, got %d", len(raw.DecodeCalls))
	}
}

func TestCloseReleasesStoreAndWorkspace(t *testing.T) {
	store := threeChannels()
	cfg := testsupport.NewConfig(t)
	s, err := session.New(context.Background(), cfg, store, "drive.mf4", nil)
	if err != nil {
		t.Fatalf("session.New failed: %v", err)
	}
	areaDir := filepath.Join(cfg.Paths.WorkDir, "sessions", s.ID)
	if _, err := os.Stat(areaDir); err != nil {
		t.Fatalf("workspace area missing: %v", err)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !store.Closed {
		t.Fatal("store not closed")
	}
	if _, err := os.Stat(areaDir); !os.IsNotExist(err) {
		t.Fatalf("workspace area should be removed, stat err=%v", err)
	}
}

func TestOpenSQLiteMeasurement(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := filepath.Join(t.TempDir(), "drive.sqlite")
	store, err := sqlstore.ImportCSV(context.Background(), strings.NewReader("time,Speed[km/h]\n0,1\n1,2\n"), path)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	_ = store.Close()

	s, err := session.Open(context.Background(), cfg, path, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close(context.Background())
	if got := s.Channels(context.Background()); !slices.Equal(got, []string{"Speed"}) {
		t.Fatalf("unexpected channels %v", got)
	}
	if !strings.HasPrefix(s.SourceFileID, path+"@") {
		t.Fatalf("unexpected source id %q", s.SourceFileID)
	}
}

func TestOpenRejectsUnsupportedFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	txt := testsupport.WriteFile(t, filepath.Join(dir, "notes.txt"), []byte("hello"))
	if _, err := session.Open(context.Background(), cfg, txt, nil); !errors.Is(err, services.ErrLoad) {
		t.Fatalf("expected ErrLoad for unsupported suffix, got %v", err)
	}
	if _, err := session.Open(context.Background(), cfg, filepath.Join(dir, "missing.mf4"), nil); !errors.Is(err, services.ErrLoad) {
		t.Fatalf("expected ErrLoad for missing file, got %v", err)
	}
	mf4 := testsupport.WriteFile(t, filepath.Join(dir, "drive.mf4"), []byte("MDF     4.10"))
	if _, err := session.Open(context.Background(), cfg, mf4, nil); !errors.Is(err, services.ErrLoad) {
		t.Fatalf("expected ErrLoad without an MDF decoder, got %v", err)
	}
}
