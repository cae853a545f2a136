package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/exp/slices"
)

// EncodeUTF encodes s as a 2-byte big-endian length followed by its UTF-8
// bytes.
func EncodeUTF(s string) []byte {
	b := []byte(s)
	out := make([]byte, 2+len(b))
	binary.BigEndian.PutUint16(out[0:2], uint16(len(b)))
	copy(out[2:], b)
	return out
}

func decodeUTF(r *bytes.Reader) (string, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", fmt.Errorf("protocol: reading utf length: %w", io.ErrUnexpectedEOF)
	}
	n := binary.BigEndian.Uint16(lenBuf[:])
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("protocol: reading utf body: %w", io.ErrUnexpectedEOF)
	}
	return string(buf), nil
}

func decodeInt32(r *bytes.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("protocol: reading int32: %w", io.ErrUnexpectedEOF)
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

func decodeBytes(r *bytes.Reader) ([]byte, error) {
	n, err := decodeInt32(r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("protocol: negative byte-string length %d", n)
	}
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("protocol: reading byte string body: %w", io.ErrUnexpectedEOF)
	}
	return buf, nil
}

func encodeBytesField(buf *bytes.Buffer, v []byte) {
	var lb [4]byte
	binary.BigEndian.PutUint32(lb[:], uint32(len(v)))
	buf.Write(lb[:])
	buf.Write(v)
}

// AuthRequest is the payload shape shared by Auth and Register requests:
// utf(user) utf(password).
type AuthRequest struct {
	User     string
	Password string
}

func DecodeAuthRequest(payload []byte) (AuthRequest, error) {
	r := bytes.NewReader(payload)
	user, err := decodeUTF(r)
	if err != nil {
		return AuthRequest{}, err
	}
	pw, err := decodeUTF(r)
	if err != nil {
		return AuthRequest{}, err
	}
	return AuthRequest{User: user, Password: pw}, nil
}

func EncodeAuthRequest(req AuthRequest) []byte {
	var buf bytes.Buffer
	buf.Write(EncodeUTF(req.User))
	buf.Write(EncodeUTF(req.Password))
	return buf.Bytes()
}

// EncodeAuthReply encodes the Auth response: a single 0x01 byte on success,
// an empty payload on failure. This mirrors the original server's behavior of
// writing nothing at all when authentication fails.
func EncodeAuthReply(ok bool) []byte {
	if !ok {
		return nil
	}
	return []byte{1}
}

func DecodeAuthReply(payload []byte) bool {
	return len(payload) > 0 && payload[0] != 0
}

// EncodeBoolReply encodes a request's boolean outcome as a single byte,
// always present (used by Register, whose reply is a bool in both branches).
func EncodeBoolReply(ok bool) []byte {
	if ok {
		return []byte{1}
	}
	return []byte{0}
}

func DecodeBoolReply(payload []byte) (bool, error) {
	if len(payload) != 1 {
		return false, fmt.Errorf("protocol: bool reply must be 1 byte, got %d", len(payload))
	}
	return payload[0] != 0, nil
}

// PutRequest is utf(key) i32(len) bytes(len).
type PutRequest struct {
	Key   string
	Value []byte
}

func DecodePutRequest(payload []byte) (PutRequest, error) {
	r := bytes.NewReader(payload)
	key, err := decodeUTF(r)
	if err != nil {
		return PutRequest{}, err
	}
	value, err := decodeBytes(r)
	if err != nil {
		return PutRequest{}, err
	}
	return PutRequest{Key: key, Value: value}, nil
}

func EncodePutRequest(req PutRequest) []byte {
	var buf bytes.Buffer
	buf.Write(EncodeUTF(req.Key))
	encodeBytesField(&buf, req.Value)
	return buf.Bytes()
}

// DecodeGetRequest decodes a Get request payload: utf(key).
func DecodeGetRequest(payload []byte) (string, error) {
	return decodeUTF(bytes.NewReader(payload))
}

func EncodeGetRequest(key string) []byte {
	return EncodeUTF(key)
}

// EncodeBytesReply encodes an optional value as i32(len) bytes(len); an
// absent value (nil) encodes as a zero length with no bytes.
func EncodeBytesReply(v []byte) []byte {
	var buf bytes.Buffer
	encodeBytesField(&buf, v)
	return buf.Bytes()
}

func DecodeBytesReply(payload []byte) ([]byte, error) {
	return decodeBytes(bytes.NewReader(payload))
}

// KeyValue is one key/value pair of a MultiPut request or a MultiGet reply.
type KeyValue struct {
	Key   string
	Value []byte
}

// DecodeMultiPutRequest decodes i32(n) [utf(key) i32(len) bytes(len)] x n
// into a pair list in request order. Duplicate keys are kept as separate
// pairs; store.DataStore.MultiPut applies them so the last one wins.
func DecodeMultiPutRequest(payload []byte) ([]KeyValue, error) {
	r := bytes.NewReader(payload)
	n, err := decodeInt32(r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("protocol: negative multi_put count %d", n)
	}
	pairs := make([]KeyValue, 0, n)
	for i := int32(0); i < n; i++ {
		key, err := decodeUTF(r)
		if err != nil {
			return nil, err
		}
		value, err := decodeBytes(r)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, KeyValue{Key: key, Value: value})
	}
	return pairs, nil
}

func EncodeMultiPutRequest(pairs []KeyValue) []byte {
	var buf bytes.Buffer
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(pairs)))
	buf.Write(n[:])
	for _, kv := range pairs {
		buf.Write(EncodeUTF(kv.Key))
		encodeBytesField(&buf, kv.Value)
	}
	return buf.Bytes()
}

// DecodeMultiGetRequest decodes i32(n) [utf(key)] x n, de-duplicating keys
// while preserving first-seen order (the original server collects the keys
// into a Set before looking any of them up).
func DecodeMultiGetRequest(payload []byte) ([]string, error) {
	r := bytes.NewReader(payload)
	n, err := decodeInt32(r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("protocol: negative multi_get count %d", n)
	}
	keys := make([]string, 0, n)
	for i := int32(0); i < n; i++ {
		key, err := decodeUTF(r)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func EncodeMultiGetRequest(keys []string) []byte {
	var buf bytes.Buffer
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(keys)))
	buf.Write(n[:])
	for _, k := range keys {
		buf.Write(EncodeUTF(k))
	}
	return buf.Bytes()
}

// EncodeMultiGetReply encodes i32(n) [utf(key) i32(len) bytes(len)] x n for
// exactly the keys in the request, in request order, substituting a
// zero-length value for keys absent from values.
func EncodeMultiGetReply(keys []string, values map[string][]byte) []byte {
	var buf bytes.Buffer
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(keys)))
	buf.Write(n[:])
	for _, k := range keys {
		buf.Write(EncodeUTF(k))
		encodeBytesField(&buf, values[k])
	}
	return buf.Bytes()
}

func DecodeMultiGetReply(payload []byte) ([]KeyValue, error) {
	r := bytes.NewReader(payload)
	n, err := decodeInt32(r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("protocol: negative multi_get reply count %d", n)
	}
	pairs := make([]KeyValue, 0, n)
	for i := int32(0); i < n; i++ {
		key, err := decodeUTF(r)
		if err != nil {
			return nil, err
		}
		value, err := decodeBytes(r)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, KeyValue{Key: key, Value: value})
	}
	return pairs, nil
}

// GetWhenRequest is utf(key_target) utf(key_cond) i32(len) bytes(len).
type GetWhenRequest struct {
	KeyTarget string
	KeyCond   string
	ValueCond []byte
}

func DecodeGetWhenRequest(payload []byte) (GetWhenRequest, error) {
	r := bytes.NewReader(payload)
	target, err := decodeUTF(r)
	if err != nil {
		return GetWhenRequest{}, err
	}
	cond, err := decodeUTF(r)
	if err != nil {
		return GetWhenRequest{}, err
	}
	value, err := decodeBytes(r)
	if err != nil {
		return GetWhenRequest{}, err
	}
	return GetWhenRequest{KeyTarget: target, KeyCond: cond, ValueCond: value}, nil
}

func EncodeGetWhenRequest(req GetWhenRequest) []byte {
	var buf bytes.Buffer
	buf.Write(EncodeUTF(req.KeyTarget))
	buf.Write(EncodeUTF(req.KeyCond))
	encodeBytesField(&buf, req.ValueCond)
	return buf.Bytes()
}
