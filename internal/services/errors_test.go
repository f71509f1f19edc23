package services_test

import (
	"errors"
	"strings"
	"testing"

	"mdfview/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrConversion, "convert", "export", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrConversion) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"convert", "export", "failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrInvalidRange, "table", "validate", "start 5 >= stop 2", nil)
	if !errors.Is(err, services.ErrInvalidRange) {
		t.Fatalf("expected invalid range marker, got %v", err)
	}
	if got := err.Error(); got != "invalid range: table: validate: start 5 >= stop 2" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestUserMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"no database", services.Wrap(services.ErrNoDatabase, "buslog", "decode", "", nil), "Please provide at least one database file."},
		{"range", services.Wrap(services.ErrInvalidRange, "table", "validate", "", nil), "Start time must be less than stop time."},
		{"raster", services.Wrap(services.ErrInvalidRange, "table", "validate", "", errors.New("raster must be positive")), "Invalid time window: raster must be positive"},
		{"table", services.Wrap(services.ErrTable, "table", "resample", "", errors.New("channel \"X\" not found")), `Error loading data: channel "X" not found`},
		{"extraction", services.Wrap(services.ErrExtraction, "extract", "select", "", errors.New(`channel "Foo" not found`)), `Error selecting channels: channel "Foo" not found`},
		{"conversion", services.Wrap(services.ErrConversion, "convert", "export", "", errors.New("disk full")), "Export failed: disk full"},
		{"decode", services.Wrap(services.ErrDecode, "buslog", "decode", "", errors.New("bad dbc")), "Extraction failed: bad dbc"},
		{"load", services.Wrap(services.ErrLoad, "session", "open", "", errors.New("truncated")), "Failed to load file: truncated"},
		{"other", errors.New("plain"), "plain"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.UserMessage(tc.err); got != tc.want {
				t.Fatalf("UserMessage = %q, want %q", got, tc.want)
			}
		})
	}
}
