// Package dbc reads the message and signal definitions of CAN database
// (.dbc) files and decodes frame payloads into physical values.
//
// Only the parts needed for decoding are understood: BO_ message headers,
// SG_ signal lines (start bit, length, byte order, sign, factor, offset,
// range, unit) and single-line CM_ SG_ comments. Everything else in the file
// is skipped. Multiplexed signals are parsed but decoded unconditionally.
// AUTOSAR (.arxml, .xml) databases are recognised and rejected with
// ErrUnsupported.
package dbc
