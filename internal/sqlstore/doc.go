// Package sqlstore implements measure.Store on top of SQLite.
//
// A store file holds channels with their samples and, optionally, raw CAN
// frames for bus decoding. Files are created with ImportCSV and reopened
// with Open; the package registers itself as the opener for ".sqlite" and
// ".db" files. Derived stores (time cuts, decoded bus logs) live in private
// in-memory databases and disappear on Close.
package sqlstore
