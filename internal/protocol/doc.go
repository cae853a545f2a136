// Package protocol defines the request/response type constants and payload
// codecs carried inside wire.Frame payloads.
//
// Every payload is a flat sequence of fixed-width big-endian integers,
// length-prefixed byte strings, and length-prefixed UTF-8 strings (a 2-byte
// big-endian length followed by that many UTF-8 bytes) — the same
// length-then-bytes convention Java's DataOutputStream.writeUTF /
// DataInputStream.readUTF use, without reproducing that format's modified-UTF8
// NUL/surrogate-pair encoding, which no test in this codebase exercises.
package protocol
