package wire

import (
	"bytes"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadFrameRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	cc := NewConn(client)
	sc := NewConn(server)

	want := Frame{Tag: 42, Type: 3, Payload: []byte("hello world")}

	errCh := make(chan error, 1)
	go func() { errCh <- cc.WriteFrame(want) }()

	got, err := sc.ReadFrame()
	require.NoError(t, err)
	require.NoError(t, <-errCh)
	require.Equal(t, want.Tag, got.Tag)
	require.Equal(t, want.Type, got.Type)
	require.Equal(t, want.Payload, got.Payload)
}

func TestReadFrameEmptyPayload(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	cc := NewConn(client)
	sc := NewConn(server)

	go func() { _ = cc.WriteFrame(Frame{Tag: 1, Type: 0}) }()

	got, err := sc.ReadFrame()
	require.NoError(t, err)
	require.Empty(t, got.Payload)
}

func TestReadFrameTruncatedHeaderIsEOF(t *testing.T) {
	buf := bytes.NewReader([]byte{0, 0, 0, 1}) // 4 bytes, header needs 10
	nc := &readOnlyConn{r: buf}
	c := NewConn(nc)

	_, err := c.ReadFrame()
	require.ErrorIs(t, err, io.EOF)
}

func TestReadFrameTruncatedPayloadIsEOF(t *testing.T) {
	var hdr [headerSize]byte
	hdr[9] = 5 // declares a 5-byte payload
	buf := bytes.NewReader(append(hdr[:], []byte("ab")...))
	nc := &readOnlyConn{r: buf}
	c := NewConn(nc)

	_, err := c.ReadFrame()
	require.ErrorIs(t, err, io.EOF)
}

func TestReadFrameOversizedLengthRejected(t *testing.T) {
	var hdr [headerSize]byte
	hdr[6] = 0xFF // absurd length in the high byte
	buf := bytes.NewReader(hdr[:])
	nc := &readOnlyConn{r: buf}
	c := NewConn(nc)

	_, err := c.ReadFrame()
	require.Error(t, err)
}

func TestWriteFrameOversizedPayloadRejected(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()
	c := NewConn(client)

	err := c.WriteFrame(Frame{Payload: make([]byte, MaxPayload+1)})
	require.Error(t, err)
}

// readOnlyConn adapts an io.Reader to the subset of net.Conn ReadFrame needs
// for tests that only exercise reading.
type readOnlyConn struct {
	net.Conn
	r io.Reader
}

func (r *readOnlyConn) Read(p []byte) (int, error) { return r.r.Read(p) }
func (r *readOnlyConn) Close() error               { return nil }
