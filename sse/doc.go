// Package sse reassembles raw byte chunks into server-sent-event records
// and parses each record's data payload into a typed protocol event. The
// decoder is incremental: partial records persist across chunk boundaries,
// so the produced event sequence is identical regardless of how chunk
// boundaries split a record. A parse failure on any record is fatal for the
// whole stream; skipping records would risk silent ordering corruption.
package sse
