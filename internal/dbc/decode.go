package dbc

import "fmt"

// Raw extracts the unsigned raw bits of the signal from data. ok is false
// when the payload is too short to hold the signal.
func (s Signal) Raw(data []byte) (raw uint64, ok bool) {
	positions, ok := s.bitPositions(len(data))
	if !ok {
		return 0, false
	}
	for _, pos := range positions {
		bit := uint64(data[pos/8]>>(pos%8)) & 1
		raw = raw<<1 | bit
	}
	return raw, true
}

// Decode returns the physical value of the signal in data.
func (s Signal) Decode(data []byte) (float64, bool) {
	raw, ok := s.Raw(data)
	if !ok {
		return 0, false
	}
	value := float64(raw)
	if s.Signed && s.Length < 64 && raw&(1<<(s.Length-1)) != 0 {
		value = float64(int64(raw) - int64(1)<<s.Length)
	} else if s.Signed && s.Length == 64 {
		value = float64(int64(raw))
	}
	return value*s.Factor + s.Offset, true
}

// encode writes the physical value into data, rounding to the nearest raw
// step.
func (s Signal) encode(value float64, data []byte) error {
	positions, ok := s.bitPositions(len(data))
	if !ok {
		return fmt.Errorf("dbc: signal %s does not fit in %d bytes", s.Name, len(data))
	}
	factor := s.Factor
	if factor == 0 {
		factor = 1
	}
	scaled := (value - s.Offset) / factor
	if scaled < 0 {
		scaled -= 0.5
	} else {
		scaled += 0.5
	}
	raw := uint64(int64(scaled))
	for i, pos := range positions {
		bit := byte(raw>>(len(positions)-1-i)) & 1
		mask := byte(1) << (pos % 8)
		if bit == 1 {
			data[pos/8] |= mask
		} else {
			data[pos/8] &^= mask
		}
	}
	return nil
}

// bitPositions returns the absolute bit indices of the signal from most to
// least significant. Bit n lives in byte n/8 at bit n%8.
func (s Signal) bitPositions(size int) ([]int, bool) {
	if s.Length <= 0 || s.Length > 64 {
		return nil, false
	}
	positions := make([]int, s.Length)
	switch s.ByteOrder {
	case LittleEndian:
		for i := range s.Length {
			positions[s.Length-1-i] = s.StartBit + i
		}
	default:
		pos := s.StartBit
		for i := range s.Length {
			positions[i] = pos
			if pos%8 == 0 {
				pos += 15
			} else {
				pos--
			}
		}
	}
	for _, pos := range positions {
		if pos < 0 || pos/8 >= size {
			return nil, false
		}
	}
	return positions, true
}

// DecodeFrame decodes every signal of the message identified by id. Unknown
// identifiers and short payloads yield no values.
func (db *Database) DecodeFrame(id uint32, data []byte) map[string]float64 {
	msg, ok := db.Message(id)
	if !ok {
		return nil
	}
	values := make(map[string]float64, len(msg.Signals))
	for _, sig := range msg.Signals {
		if v, ok := sig.Decode(data); ok {
			values[sig.Name] = v
		}
	}
	return values
}
