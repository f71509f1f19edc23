package measure

import (
	"fmt"
	"strings"
)

// Format identifies an export format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
	FormatHDF5    Format = "hdf5"
	FormatMAT     Format = "mat"
	FormatMAT73   Format = "mat73"
)

// Formats lists the supported export formats in display order.
func Formats() []Format {
	return []Format{FormatCSV, FormatParquet, FormatHDF5, FormatMAT, FormatMAT73}
}

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(value string) (Format, error) {
	normalized := Format(strings.ToLower(strings.TrimSpace(value)))
	for _, f := range Formats() {
		if f == normalized {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported export format %q", value)
}

// Extension returns the output file suffix, including the dot.
func (f Format) Extension() string {
	if f == FormatMAT73 {
		return ".mat"
	}
	return "." + string(f)
}

// SupportsCompression reports whether the encoder accepts a compression
// argument for this format.
func (f Format) SupportsCompression() bool {
	return f != FormatCSV
}

// Compression identifies an encoder compression codec.
type Compression string

const (
	CompressionNone   Compression = "none"
	CompressionGZIP   Compression = "gzip"
	CompressionSnappy Compression = "snappy"
	CompressionLZ4    Compression = "lz4"
)

// Compressions lists the supported codecs in display order.
func Compressions() []Compression {
	return []Compression{CompressionNone, CompressionGZIP, CompressionSnappy, CompressionLZ4}
}

// ParseCompression normalizes a user-supplied codec name. Blank input maps to
// CompressionNone.
func ParseCompression(value string) (Compression, error) {
	normalized := Compression(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return CompressionNone, nil
	}
	for _, c := range Compressions() {
		if c == normalized {
			return c, nil
		}
	}
	return "", fmt.Errorf("unsupported compression %q", value)
}
