package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthRequestRoundTrip(t *testing.T) {
	want := AuthRequest{User: "alice", Password: "hunter2"}
	got, err := DecodeAuthRequest(EncodeAuthRequest(want))
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestAuthReplyFailureIsEmptyPayload(t *testing.T) {
	require.Empty(t, EncodeAuthReply(false))
	require.False(t, DecodeAuthReply(nil))
	require.False(t, DecodeAuthReply([]byte{}))
}

func TestAuthReplySuccessIsSingleByte(t *testing.T) {
	payload := EncodeAuthReply(true)
	require.Equal(t, []byte{1}, payload)
	require.True(t, DecodeAuthReply(payload))
}

func TestBoolReplyAlwaysOneByte(t *testing.T) {
	ok, err := DecodeBoolReply(EncodeBoolReply(true))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = DecodeBoolReply(EncodeBoolReply(false))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPutRequestRoundTrip(t *testing.T) {
	want := PutRequest{Key: "k1", Value: []byte("some value")}
	got, err := DecodePutRequest(EncodePutRequest(want))
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestGetRequestRoundTrip(t *testing.T) {
	key, err := DecodeGetRequest(EncodeGetRequest("mykey"))
	require.NoError(t, err)
	require.Equal(t, "mykey", key)
}

func TestBytesReplyAbsentValueIsZeroLength(t *testing.T) {
	got, err := DecodeBytesReply(EncodeBytesReply(nil))
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestBytesReplyRoundTrip(t *testing.T) {
	got, err := DecodeBytesReply(EncodeBytesReply([]byte("payload")))
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), got)
}

func TestMultiPutRequestRoundTrip(t *testing.T) {
	want := []KeyValue{{Key: "a", Value: []byte("1")}, {Key: "b", Value: []byte("2")}}
	got, err := DecodeMultiPutRequest(EncodeMultiPutRequest(want))
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestMultiGetRequestDeduplicatesPreservingOrder(t *testing.T) {
	payload := EncodeMultiGetRequest([]string{"a", "b", "a", "c"})
	got, err := DecodeMultiGetRequest(payload)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, got)
}

func TestMultiGetReplyMissingKeyIsZeroLength(t *testing.T) {
	values := map[string][]byte{"a": []byte("1")}
	payload := EncodeMultiGetReply([]string{"a", "missing"}, values)
	got, err := DecodeMultiGetReply(payload)
	require.NoError(t, err)
	require.Equal(t, []KeyValue{
		{Key: "a", Value: []byte("1")},
		{Key: "missing", Value: nil},
	}, got)
}

func TestGetWhenRequestRoundTrip(t *testing.T) {
	want := GetWhenRequest{KeyTarget: "t", KeyCond: "c", ValueCond: []byte("v")}
	got, err := DecodeGetWhenRequest(EncodeGetWhenRequest(want))
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestDecodeTruncatedPayloadErrors(t *testing.T) {
	_, err := DecodeAuthRequest([]byte{0, 5, 'a'}) // declares 5 bytes, has 1
	require.Error(t, err)
}
