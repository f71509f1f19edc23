package measure_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"mdfview/internal/measure"
	"mdfview/internal/services"
)

func TestParseFormat(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want measure.Format
		ext  string
	}{
		{"csv", measure.FormatCSV, ".csv"},
		{" Parquet ", measure.FormatParquet, ".parquet"},
		{"HDF5", measure.FormatHDF5, ".hdf5"},
		{"mat", measure.FormatMAT, ".mat"},
		{"mat73", measure.FormatMAT73, ".mat"},
	} {
		got, err := measure.ParseFormat(tc.in)
		if err != nil {
			t.Fatalf("ParseFormat(%q) error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseFormat(%q) = %q, want %q", tc.in, got, tc.want)
		}
		if got.Extension() != tc.ext {
			t.Fatalf("extension for %q = %q, want %q", got, got.Extension(), tc.ext)
		}
	}
	if _, err := measure.ParseFormat("xlsx"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if measure.FormatCSV.SupportsCompression() {
		t.Fatal("csv must not accept compression")
	}
	if !measure.FormatParquet.SupportsCompression() {
		t.Fatal("parquet should accept compression")
	}
}

func TestParseCompression(t *testing.T) {
	if got, err := measure.ParseCompression(""); err != nil || got != measure.CompressionNone {
		t.Fatalf("blank compression = %q, %v", got, err)
	}
	if got, err := measure.ParseCompression("GZIP"); err != nil || got != measure.CompressionGZIP {
		t.Fatalf("GZIP compression = %q, %v", got, err)
	}
	if _, err := measure.ParseCompression("zstd"); err == nil {
		t.Fatal("expected error for unsupported compression")
	}
}

type nopStore struct{ measure.Store }

func TestOpenDispatchesOnSuffix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.testfmt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	var opened string
	measure.Register("testfmt", func(_ context.Context, p string) (measure.Store, error) {
		opened = p
		return nopStore{}, nil
	})
	if !slices.Contains(measure.AcceptedSuffixes(), ".testfmt") {
		t.Fatalf("registered suffix missing from %v", measure.AcceptedSuffixes())
	}
	if _, err := measure.Open(context.Background(), path); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if opened != path {
		t.Fatalf("opener received %q, want %q", opened, path)
	}
}

func TestOpenClassifiesFailuresAsLoadErrors(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	unsupported := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(unsupported, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := measure.Open(ctx, unsupported); !errors.Is(err, services.ErrLoad) {
		t.Fatalf("expected load error for unsupported suffix, got %v", err)
	}

	if _, err := measure.Open(ctx, filepath.Join(dir, "missing.mf4")); !errors.Is(err, services.ErrLoad) {
		t.Fatalf("expected load error for missing file, got %v", err)
	}

	mf4 := filepath.Join(dir, "drive.mf4")
	if err := os.WriteFile(mf4, []byte("MDF     4.10"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := measure.Open(ctx, mf4); !errors.Is(err, services.ErrLoad) {
		t.Fatalf("expected load error without registered decoder, got %v", err)
	}

	failing := filepath.Join(dir, "broken.failfmt")
	if err := os.WriteFile(failing, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cause := errors.New("corrupt header")
	measure.Register(".failfmt", func(context.Context, string) (measure.Store, error) { return nil, cause })
	_, err := measure.Open(ctx, failing)
	if !errors.Is(err, services.ErrLoad) || !errors.Is(err, cause) {
		t.Fatalf("expected load error wrapping cause, got %v", err)
	}
}

func TestIsDatabaseFile(t *testing.T) {
	for name, want := range map[string]bool{
		"powertrain.dbc": true,
		"body.ARXML":     true,
		"legacy.xml":     true,
		"drive.mf4":      false,
		"noextension":    false,
	} {
		if got := measure.IsDatabaseFile(name); got != want {
			t.Fatalf("IsDatabaseFile(%q) = %v, want %v", name, got, want)
		}
	}
}
