package dbc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnsupported is returned for database formats this package cannot read.
var ErrUnsupported = errors.New("unsupported database format")

const extendedFlag = 0x80000000

// ByteOrder is the bit layout of a signal within the payload.
type ByteOrder int

const (
	// BigEndian is Motorola order (@0). The start bit names the most
	// significant bit.
	BigEndian ByteOrder = iota
	// LittleEndian is Intel order (@1). The start bit names the least
	// significant bit.
	LittleEndian
)

func (o ByteOrder) String() string {
	if o == LittleEndian {
		return "intel"
	}
	return "motorola"
}

// Signal is one SG_ definition.
type Signal struct {
	Name      string
	StartBit  int
	Length    int
	ByteOrder ByteOrder
	Signed    bool
	Factor    float64
	Offset    float64
	Min       float64
	Max       float64
	Unit      string
	Comment   string
	// Multiplex is "M" for a multiplexor, "m<n>" for a multiplexed signal
	// and empty otherwise.
	Multiplex string
	Receivers []string
}

// Message is one BO_ definition.
type Message struct {
	ID       uint32
	Extended bool
	Name     string
	Length   int
	Sender   string
	Signals  []Signal
}

// Database is a parsed DBC file.
type Database struct {
	Messages []*Message
	byID     map[uint32]*Message
}

var (
	messagePattern = regexp.MustCompile(`^BO_\s+(\d+)\s+(\w+)\s*:\s*(\d+)\s+(\w+)`)
	signalPattern  = regexp.MustCompile(`^SG_\s+(\w+)\s*(M|m\d+)?\s*:\s*(\d+)\|(\d+)@([01])([+-])\s*\(\s*([^,\s]+)\s*,\s*([^)\s]+)\s*\)\s*\[\s*([^|\s]+)\s*\|\s*([^\]\s]+)\s*\]\s*"([^"]*)"\s*(.*)$`)
	commentPattern = regexp.MustCompile(`^CM_\s+SG_\s+(\d+)\s+(\w+)\s+"([^"]*)"\s*;`)
)

// ParseFile reads the database at path. AUTOSAR files report ErrUnsupported.
func ParseFile(path string) (*Database, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dbc":
	case ".arxml", ".xml":
		return nil, fmt.Errorf("dbc: %s: %w (AUTOSAR XML)", filepath.Base(path), ErrUnsupported)
	default:
		return nil, fmt.Errorf("dbc: %s: %w", filepath.Base(path), ErrUnsupported)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dbc: open: %w", err)
	}
	defer f.Close()
	db, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return db, nil
}

// Parse reads DBC text from r.
func Parse(r io.Reader) (*Database, error) {
	db := &Database{byID: make(map[uint32]*Message)}
	var current *Message
	type pendingComment struct {
		id     uint32
		signal string
		text   string
	}
	var comments []pendingComment

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "BO_ "):
			msg, err := parseMessage(line)
			if err != nil {
				return nil, fmt.Errorf("dbc: line %d: %w", lineNo, err)
			}
			if _, dup := db.byID[msg.ID]; dup {
				return nil, fmt.Errorf("dbc: line %d: duplicate message id %d", lineNo, msg.ID)
			}
			db.Messages = append(db.Messages, msg)
			db.byID[msg.ID] = msg
			current = msg
		case strings.HasPrefix(line, "SG_ "):
			if current == nil {
				return nil, fmt.Errorf("dbc: line %d: signal outside of a message", lineNo)
			}
			sig, err := parseSignal(line)
			if err != nil {
				return nil, fmt.Errorf("dbc: line %d: %w", lineNo, err)
			}
			if sig.Length <= 0 || sig.Length > 64 {
				return nil, fmt.Errorf("dbc: line %d: signal %s has unsupported length %d", lineNo, sig.Name, sig.Length)
			}
			current.Signals = append(current.Signals, sig)
		case strings.HasPrefix(line, "CM_ SG_"):
			m := commentPattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			id, err := strconv.ParseUint(m[1], 10, 32)
			if err != nil {
				continue
			}
			comments = append(comments, pendingComment{id: uint32(id) &^ extendedFlag, signal: m[2], text: m[3]})
		case line == "":
			current = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dbc: read: %w", err)
	}

	for _, c := range comments {
		msg, ok := db.byID[c.id]
		if !ok {
			continue
		}
		for i := range msg.Signals {
			if msg.Signals[i].Name == c.signal {
				msg.Signals[i].Comment = c.text
			}
		}
	}
	return db, nil
}

func parseMessage(line string) (*Message, error) {
	m := messagePattern.FindStringSubmatch(line)
	if m == nil {
		return nil, fmt.Errorf("malformed message definition %q", line)
	}
	rawID, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("message id %q: %w", m[1], err)
	}
	length, err := strconv.Atoi(m[3])
	if err != nil {
		return nil, fmt.Errorf("message length %q: %w", m[3], err)
	}
	id := uint32(rawID)
	return &Message{
		ID:       id &^ extendedFlag,
		Extended: id&extendedFlag != 0,
		Name:     m[2],
		Length:   length,
		Sender:   m[4],
	}, nil
}

func parseSignal(line string) (Signal, error) {
	m := signalPattern.FindStringSubmatch(line)
	if m == nil {
		return Signal{}, fmt.Errorf("malformed signal definition %q", line)
	}
	var (
		sig  = Signal{Name: m[1], Multiplex: m[2], Unit: m[11]}
		errs []error
	)
	atoi := func(s string) int {
		v, err := strconv.Atoi(s)
		errs = append(errs, err)
		return v
	}
	atof := func(s string) float64 {
		v, err := strconv.ParseFloat(s, 64)
		errs = append(errs, err)
		return v
	}
	sig.StartBit = atoi(m[3])
	sig.Length = atoi(m[4])
	if m[5] == "1" {
		sig.ByteOrder = LittleEndian
	}
	sig.Signed = m[6] == "-"
	sig.Factor = atof(m[7])
	sig.Offset = atof(m[8])
	sig.Min = atof(m[9])
	sig.Max = atof(m[10])
	if err := errors.Join(errs...); err != nil {
		return Signal{}, fmt.Errorf("signal %s: %w", sig.Name, err)
	}
	for _, r := range strings.FieldsFunc(m[12], func(r rune) bool { return r == ',' || r == ' ' }) {
		if r != "Vector__XXX" {
			sig.Receivers = append(sig.Receivers, r)
		}
	}
	return sig, nil
}

// Message looks up a message by its frame identifier.
func (db *Database) Message(id uint32) (*Message, bool) {
	msg, ok := db.byID[id&^extendedFlag]
	return msg, ok
}

// Merge adds the messages of other that db does not define yet. Earlier
// databases win on identifier clashes.
func (db *Database) Merge(other *Database) {
	if other == nil {
		return
	}
	if db.byID == nil {
		db.byID = make(map[uint32]*Message)
	}
	for _, msg := range other.Messages {
		if _, exists := db.byID[msg.ID]; exists {
			continue
		}
		db.Messages = append(db.Messages, msg)
		db.byID[msg.ID] = msg
	}
}
