package convert_test

import (
	"context"
	"errors"
	"testing"

	"mdfview/internal/convert"
	"mdfview/internal/measure"
	"mdfview/internal/services"
	"mdfview/internal/testsupport"
	"mdfview/internal/workspace"
)

func newArea(t *testing.T) *workspace.Area {
	t.Helper()
	area, err := workspace.New(t.TempDir(), 0, nil).Acquire(context.Background(), "convert")
	if err != nil {
		t.Fatalf("acquire area: %v", err)
	}
	t.Cleanup(func() { _ = area.Close(context.Background()) })
	return area
}

func onlyLock(t *testing.T, dir string) {
	t.Helper()
	for _, name := range testsupport.ListDir(t, dir) {
		if name != ".lock" {
			t.Fatalf("transient artifact %q left behind", name)
		}
	}
}

func TestConvertCSVDropsCompression(t *testing.T) {
	area := newArea(t)
	store := testsupport.NewFakeStore(testsupport.Ramp("Speed", "km/h", 3, 0.1))
	store.ExportPayload = []byte("time,Speed\n0,0\n")

	data, err := convert.New(area, nil).Convert(context.Background(), store, measure.FormatCSV, measure.CompressionGZIP)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if string(data) != "time,Speed\n0,0\n" {
		t.Fatalf("unexpected payload %q", data)
	}
	if len(store.ExportCalls) != 1 {
		t.Fatalf("expected one export call, got %d", len(store.ExportCalls))
	}
	call := store.ExportCalls[0]
	if call.Options.Compression != "" {
		t.Fatalf("csv export must omit compression, got %q", call.Options.Compression)
	}
	if call.Format != measure.FormatCSV {
		t.Fatalf("unexpected format %q", call.Format)
	}
	onlyLock(t, area.Dir())
}

func TestConvertPassesCompressionThrough(t *testing.T) {
	cases := []struct {
		format      measure.Format
		compression measure.Compression
		want        measure.Compression
	}{
		{measure.FormatParquet, measure.CompressionSnappy, measure.CompressionSnappy},
		{measure.FormatHDF5, measure.CompressionGZIP, measure.CompressionGZIP},
		{measure.FormatMAT, measure.CompressionLZ4, measure.CompressionLZ4},
		{measure.FormatMAT73, measure.CompressionNone, ""},
	}
	for _, tc := range cases {
		t.Run(string(tc.format), func(t *testing.T) {
			store := testsupport.NewFakeStore()
			if _, err := convert.New(newArea(t), nil).Convert(context.Background(), store, tc.format, tc.compression); err != nil {
				t.Fatalf("Convert failed: %v", err)
			}
			if got := store.ExportCalls[0].Options.Compression; got != tc.want {
				t.Fatalf("compression = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestConvertFailureRemovesArtifact(t *testing.T) {
	area := newArea(t)
	store := testsupport.NewFakeStore()
	store.ExportErr = errors.New("encoder exploded")

	data, err := convert.New(area, nil).Convert(context.Background(), store, measure.FormatParquet, measure.CompressionNone)
	if !errors.Is(err, services.ErrConversion) {
		t.Fatalf("expected conversion error, got %v", err)
	}
	if data != nil {
		t.Fatal("no bytes expected on failure")
	}
	if got := services.UserMessage(err); got != "Export failed: encoder exploded" {
		t.Fatalf("unexpected user message %q", got)
	}
	if len(store.ExportCalls) != 1 {
		t.Fatalf("conversion must not retry, got %d calls", len(store.ExportCalls))
	}
	onlyLock(t, area.Dir())
}

func TestConvertArtifactSuffix(t *testing.T) {
	area := newArea(t)
	store := testsupport.NewFakeStore()
	if _, err := convert.New(area, nil).Convert(context.Background(), store, measure.FormatMAT73, measure.CompressionNone); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if path := store.ExportCalls[0].Path; len(path) < 4 || path[len(path)-4:] != ".mat" {
		t.Fatalf("expected .mat artifact, got %s", path)
	}
}

func TestConvertRejectsUnknownFormat(t *testing.T) {
	store := testsupport.NewFakeStore()
	_, err := convert.New(newArea(t), nil).Convert(context.Background(), store, measure.Format("xlsx"), measure.CompressionNone)
	if !errors.Is(err, services.ErrConversion) {
		t.Fatalf("expected conversion error, got %v", err)
	}
	if len(store.ExportCalls) != 0 {
		t.Fatal("unknown format must not reach the encoder")
	}
}

func TestFileName(t *testing.T) {
	if got := convert.FileName(measure.FormatParquet); got != "export.parquet" {
		t.Fatalf("FileName = %q", got)
	}
	if got := convert.FileName(measure.FormatMAT73); got != "export.mat" {
		t.Fatalf("FileName = %q", got)
	}
}
