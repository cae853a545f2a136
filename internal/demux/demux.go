// Package demux implements the tagged-request demultiplexer: it lets many
// logically-concurrent requests share one TCP connection by carrying a
// client-assigned tag on every frame, and it is the layer that guarantees a
// connection's replies never interleave mid-frame.
package demux

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dreamware/tagkv/internal/wire"
)

// ErrClosed is returned by Send and ReceiveAny once the demultiplexer has
// been closed.
var ErrClosed = errors.New("demux: closed")

// Demultiplexer serializes writes to, and reads from, a single wire.Conn.
// Send may be called concurrently from many goroutines (one per in-flight
// request being serviced); ReceiveAny has exactly one caller, the
// connection's read loop.
type Demultiplexer struct {
	conn   *wire.Conn
	closed atomic.Bool
	once   sync.Once
}

// New wraps conn for tagged send/receive access.
func New(conn *wire.Conn) *Demultiplexer {
	return &Demultiplexer{conn: conn}
}

// Send writes a reply frame. It is safe to call concurrently with other Send
// calls and with ReceiveAny.
func (d *Demultiplexer) Send(tag int32, typ int16, payload []byte) error {
	if d.closed.Load() {
		return ErrClosed
	}
	if err := d.conn.WriteFrame(wire.Frame{Tag: tag, Type: typ, Payload: payload}); err != nil {
		d.Close()
		return err
	}
	return nil
}

// ReceiveAny blocks for the next frame on the connection, of any tag or type.
// It must only be called from a single goroutine at a time.
func (d *Demultiplexer) ReceiveAny() (wire.Frame, error) {
	if d.closed.Load() {
		return wire.Frame{}, ErrClosed
	}
	f, err := d.conn.ReadFrame()
	if err != nil {
		d.Close()
		return wire.Frame{}, err
	}
	return f, nil
}

// Close closes the underlying connection. It is idempotent and safe to call
// from multiple goroutines.
func (d *Demultiplexer) Close() error {
	var err error
	d.once.Do(func() {
		d.closed.Store(true)
		err = d.conn.Close()
	})
	return err
}
