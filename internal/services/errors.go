package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrLoad          = errors.New("load error")
	ErrExtraction    = errors.New("extraction error")
	ErrInvalidRange  = errors.New("invalid range")
	ErrConversion    = errors.New("conversion error")
	ErrNoDatabase    = errors.New("no database provided")
	ErrDecode        = errors.New("decode error")
	ErrTable         = errors.New("table error")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrLoad
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// UserMessage converts a pipeline error into the short message shown to the
// user. The full chain stays available through err.Error() for logs.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoDatabase):
		return "Please provide at least one database file."
	case errors.Is(err, ErrInvalidRange):
		if hasCause(err) {
			return "Invalid time window: " + rootCause(err)
		}
		return "Start time must be less than stop time."
	case errors.Is(err, ErrExtraction):
		return "Error selecting channels: " + rootCause(err)
	case errors.Is(err, ErrTable):
		return "Error loading data: " + rootCause(err)
	case errors.Is(err, ErrConversion):
		return "Export failed: " + rootCause(err)
	case errors.Is(err, ErrDecode):
		return "Extraction failed: " + rootCause(err)
	case errors.Is(err, ErrLoad):
		return "Failed to load file: " + rootCause(err)
	default:
		return err.Error()
	}
}

// rootCause descends through Wrap chains to the underlying cause message.
func rootCause(err error) string {
	for {
		multi, ok := err.(interface{ Unwrap() []error })
		if !ok {
			return err.Error()
		}
		errs := multi.Unwrap()
		if len(errs) < 2 {
			return err.Error()
		}
		err = errs[len(errs)-1]
	}
}

// hasCause reports whether err came from Wrap with a non-nil cause.
func hasCause(err error) bool {
	multi, ok := err.(interface{ Unwrap() []error })
	return ok && len(multi.Unwrap()) >= 2
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
