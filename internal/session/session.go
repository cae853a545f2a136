// Package session runs one client connection's request loop: receive a
// frame, decode it by type, execute it against the shared stores, and reply
// on the same tag. It is the layer that implements store.Notifier so
// deferred get-when waiters can deliver a reply asynchronously, well after
// the request that started them has returned control to the read loop.
package session

import (
	"io"
	"net"
	"sync"

	"github.com/dreamware/tagkv/internal/demux"
	"github.com/dreamware/tagkv/internal/logging"
	"github.com/dreamware/tagkv/internal/protocol"
	"github.com/dreamware/tagkv/internal/store"
	"github.com/dreamware/tagkv/internal/wire"
)

// Session owns one connection's demultiplexer, its per-session get-when tag
// queue, and the list of condition waiters it has outstanding so teardown
// can wake them.
type Session struct {
	id      int64
	demux   *demux.Demultiplexer
	data    *store.DataStore
	users   *store.UserStore
	pending *store.PendingSet
	logger  *logging.Logger

	mu      sync.Mutex
	waiters []store.ConditionRef

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Session for a freshly-accepted connection.
func New(id int64, nc net.Conn, data *store.DataStore, users *store.UserStore, logger *logging.Logger) *Session {
	conn := wire.NewConn(nc)
	return &Session{
		id:      id,
		demux:   demux.New(conn),
		data:    data,
		users:   users,
		pending: store.NewPendingSet(),
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// SendReply implements store.Notifier for deferred get-when resolution.
func (s *Session) SendReply(tag int32, value []byte) {
	if err := s.demux.Send(tag, protocol.TypeGetWhen, protocol.EncodeBytesReply(value)); err != nil {
		s.logger.Errorf("session %d: get_when deferred reply: %v", s.id, err)
	}
}

// Cancelled implements store.Notifier.
func (s *Session) Cancelled() <-chan struct{} { return s.done }

func (s *Session) trackWaiter(ref store.ConditionRef) {
	s.mu.Lock()
	s.waiters = append(s.waiters, ref)
	s.mu.Unlock()
}

// Close tears the session down: it signals cancellation to any deferred
// get-when waiters, wakes them so they observe it promptly instead of
// waiting for an unrelated write, and closes the connection.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		waiters := append([]store.ConditionRef(nil), s.waiters...)
		s.mu.Unlock()
		for _, w := range waiters {
			w.Broadcast()
		}
		_ = s.demux.Close()
	})
}

// Run reads frames until the connection closes or a malformed frame is
// received, dispatching each to the appropriate handler. It always closes
// the session before returning.
func (s *Session) Run() {
	defer s.Close()
	for {
		frame, err := s.demux.ReceiveAny()
		if err != nil {
			if err != io.EOF {
				s.logger.Errorf("session %d: receive: %v", s.id, err)
			}
			return
		}
		if !s.dispatch(frame) {
			return
		}
	}
}

// dispatch handles one frame, returning false if the connection should be
// torn down (a malformed payload or an explicit disconnect).
func (s *Session) dispatch(frame wire.Frame) bool {
	switch frame.Type {
	case protocol.TypeAuth:
		return s.handleAuth(frame)
	case protocol.TypeRegister:
		return s.handleRegister(frame)
	case protocol.TypePut:
		return s.handlePut(frame)
	case protocol.TypeGet:
		return s.handleGet(frame)
	case protocol.TypeMultiPut:
		return s.handleMultiPut(frame)
	case protocol.TypeMultiGet:
		return s.handleMultiGet(frame)
	case protocol.TypeGetWhen:
		return s.handleGetWhen(frame)
	case protocol.TypeDisconnect:
		s.reply(frame.Tag, protocol.TypeDisconnect, nil)
		return false
	default:
		s.logger.Errorf("session %d: unknown request type %d", s.id, frame.Type)
		return true
	}
}

func (s *Session) malformed(frame wire.Frame, err error) bool {
	s.logger.Errorf("session %d: malformed type %d payload: %v", s.id, frame.Type, err)
	return false
}

// reply sends a frame and reports whether the session should keep running.
// A write failure is fatal to the connection: log it and close.
func (s *Session) reply(tag int32, typ int16, payload []byte) bool {
	if err := s.demux.Send(tag, typ, payload); err != nil {
		s.logger.Errorf("session %d: write reply type %d: %v", s.id, typ, err)
		return false
	}
	return true
}

func (s *Session) handleAuth(frame wire.Frame) bool {
	req, err := protocol.DecodeAuthRequest(frame.Payload)
	if err != nil {
		return s.malformed(frame, err)
	}
	ok := s.users.Auth(req.User, req.Password)
	return s.reply(frame.Tag, protocol.TypeAuth, protocol.EncodeAuthReply(ok))
}

func (s *Session) handleRegister(frame wire.Frame) bool {
	req, err := protocol.DecodeAuthRequest(frame.Payload)
	if err != nil {
		return s.malformed(frame, err)
	}
	ok := s.users.Register(req.User, req.Password)
	return s.reply(frame.Tag, protocol.TypeRegister, protocol.EncodeBoolReply(ok))
}

func (s *Session) handlePut(frame wire.Frame) bool {
	req, err := protocol.DecodePutRequest(frame.Payload)
	if err != nil {
		return s.malformed(frame, err)
	}
	s.data.Put(req.Key, req.Value)
	return s.reply(frame.Tag, protocol.TypePut, nil)
}

func (s *Session) handleGet(frame wire.Frame) bool {
	key, err := protocol.DecodeGetRequest(frame.Payload)
	if err != nil {
		return s.malformed(frame, err)
	}
	value, _ := s.data.Get(key)
	return s.reply(frame.Tag, protocol.TypeGet, protocol.EncodeBytesReply(value))
}

func (s *Session) handleMultiPut(frame wire.Frame) bool {
	req, err := protocol.DecodeMultiPutRequest(frame.Payload)
	if err != nil {
		return s.malformed(frame, err)
	}
	pairs := make([]store.KeyValue, len(req))
	for i, kv := range req {
		pairs[i] = store.KeyValue{Key: kv.Key, Value: kv.Value}
	}
	s.data.MultiPut(pairs)
	return s.reply(frame.Tag, protocol.TypeMultiPut, nil)
}

func (s *Session) handleMultiGet(frame wire.Frame) bool {
	keys, err := protocol.DecodeMultiGetRequest(frame.Payload)
	if err != nil {
		return s.malformed(frame, err)
	}
	values := s.data.MultiGet(keys)
	return s.reply(frame.Tag, protocol.TypeMultiGet, protocol.EncodeMultiGetReply(keys, values))
}

func (s *Session) handleGetWhen(frame wire.Frame) bool {
	req, err := protocol.DecodeGetWhenRequest(frame.Payload)
	if err != nil {
		return s.malformed(frame, err)
	}
	value, replyTag, immediate, ref := s.data.GetWhen(s.pending, s, req.KeyTarget, req.KeyCond, req.ValueCond, frame.Tag)
	if immediate {
		return s.reply(replyTag, protocol.TypeGetWhen, protocol.EncodeBytesReply(value))
	}
	s.trackWaiter(ref)
	return true
}
