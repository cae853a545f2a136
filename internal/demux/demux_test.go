package demux

import (
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dreamware/tagkv/internal/wire"
)

func TestSendReceiveRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	sender := New(wire.NewConn(client))
	receiver := New(wire.NewConn(server))

	go func() { _ = sender.Send(7, 2, []byte("hi")) }()

	f, err := receiver.ReceiveAny()
	require.NoError(t, err)
	require.EqualValues(t, 7, f.Tag)
	require.EqualValues(t, 2, f.Type)
	require.Equal(t, []byte("hi"), f.Payload)
}

func TestConcurrentSendsDoNotInterleave(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	sender := New(wire.NewConn(client))
	receiver := New(wire.NewConn(server))

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = sender.Send(int32(i), 0, make([]byte, 100))
		}(i)
	}

	seen := make(map[int32]bool)
	for i := 0; i < n; i++ {
		f, err := receiver.ReceiveAny()
		require.NoError(t, err)
		require.Len(t, f.Payload, 100)
		seen[f.Tag] = true
	}
	wg.Wait()
	require.Len(t, seen, n)
}

func TestSendAfterCloseFails(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	sender := New(wire.NewConn(client))
	require.NoError(t, sender.Close())

	err := sender.Send(1, 0, nil)
	require.ErrorIs(t, err, ErrClosed)
}

func TestCloseIsIdempotent(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	sender := New(wire.NewConn(client))
	require.NoError(t, sender.Close())
	require.NoError(t, sender.Close())
}
