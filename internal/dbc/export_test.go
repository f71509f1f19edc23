package dbc

// EncodeSignal lets tests build frames for a signal.
func EncodeSignal(s Signal, value float64, data []byte) error {
	return s.encode(value, data)
}
