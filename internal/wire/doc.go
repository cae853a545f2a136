// Package wire implements the tagged binary frame format tagkv-server speaks
// over a single TCP connection: a 4-byte big-endian tag, a 2-byte big-endian
// request/response type, a 4-byte big-endian payload length, and the payload
// itself.
//
// # Frame Layout
//
//	Offset  Size  Field
//	0       4     tag     (int32, BE, client-assigned, echoed back verbatim)
//	4       2     type    (int16, BE, request/response discriminator)
//	6       4     length  (int32, BE, payload byte count)
//	10      N     payload
//
// # Concurrency
//
// Conn.WriteFrame is safe for concurrent use: it serializes writers behind an
// internal mutex so two goroutines racing to reply on the same connection
// never interleave a partial frame. Conn.ReadFrame is not safe for concurrent
// use — the protocol has exactly one reader per connection, matching the
// demultiplexer's single-consumer receive loop.
//
// # Failure Modes
//
// A frame whose declared length exceeds MaxPayload is rejected without
// attempting to read the payload, since a hostile or corrupt length would
// otherwise force an unbounded allocation. A read that ends before a full
// header or payload arrives is reported as io.EOF, the same way a clean
// connection close is, since both mean the same thing to a caller: there is
// no more usable data on this connection.
package wire
