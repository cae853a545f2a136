package store

import (
	"bytes"
	"sync"

	"golang.org/x/exp/slices"
)

// Notifier is how a satisfied deferred get-when waiter delivers its reply.
// package session implements this over a demux.Demultiplexer.
type Notifier interface {
	// SendReply delivers the target value for a resolved get-when to tag.
	SendReply(tag int32, value []byte)
	// Cancelled is closed when the owning session has torn down and no
	// further replies should be sent.
	Cancelled() <-chan struct{}
}

// PendingSet holds, per watched key and per session, the FIFO of tags
// waiting on that key. It is deliberately per-session rather than a single
// registry shared by every session watching a key: a session's own get-when
// requests are serviced in the order it issued them, but two different
// sessions watching the same key don't interleave into one queue. Every
// session owns exactly one PendingSet.
type PendingSet struct {
	mu   sync.Mutex
	tags map[string][]int32
}

func NewPendingSet() *PendingSet {
	return &PendingSet{tags: make(map[string][]int32)}
}

func (p *PendingSet) push(key string, tag int32) {
	p.mu.Lock()
	p.tags[key] = append(p.tags[key], tag)
	p.mu.Unlock()
}

// pop removes and returns the head tag queued for key, if any.
func (p *PendingSet) pop(key string) (int32, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	q := p.tags[key]
	if len(q) == 0 {
		return 0, false
	}
	tag := q[0]
	p.tags[key] = slices.Delete(q, 0, 1)
	return tag, true
}

// ConditionRef identifies a shard/condition pair a waiter goroutine is
// blocked on, so a session tearing down can wake it without waiting for a
// matching write to arrive naturally.
type ConditionRef struct {
	shard *dataShard
	cond  *sync.Cond
}

// Broadcast wakes every goroutine waiting on this condition. It is a no-op
// on the zero ConditionRef.
func (r ConditionRef) Broadcast() {
	if r.shard == nil {
		return
	}
	r.shard.store.Lock()
	r.cond.Broadcast()
	r.shard.store.Unlock()
}

// GetWhen evaluates keyCond's current value against valueCond. If it already
// matches, the request is resolved immediately: the head tag from pending's
// queue for keyCond (not necessarily tag itself, if other get-whens on this
// key are already outstanding for this session) is popped and returned
// alongside keyTarget's current value, and immediate is true. Otherwise tag
// is queued, a background waiter goroutine is started, and immediate is
// false; the returned ConditionRef lets the caller track the waiter for
// cancellation on session teardown.
//
// The target value is always read after the condition shard's lock has been
// released, even on the immediate path — never while still holding it. This
// avoids a lock-ordering deadlock when keyTarget and keyCond share a shard,
// which a lock-held-through-fetch implementation is vulnerable to.
func (s *DataStore) GetWhen(pending *PendingSet, n Notifier, keyTarget, keyCond string, valueCond []byte, tag int32) (value []byte, replyTag int32, immediate bool, ref ConditionRef) {
	sh := s.shardFor(keyCond)

	sh.store.Lock()
	cond := sh.condFor(keyCond)
	pending.push(keyCond, tag)

	if current, ok := sh.store.RawGet(keyCond); ok && bytes.Equal(current, valueCond) {
		t, _ := pending.pop(keyCond)
		sh.store.Unlock()
		v, _ := s.Get(keyTarget)
		return v, t, true, ConditionRef{}
	}

	ref = ConditionRef{shard: sh, cond: cond}
	sh.store.Unlock()

	go s.waitAndDeliver(sh, cond, pending, n, keyTarget, keyCond, valueCond)
	return nil, 0, false, ref
}

// waitAndDeliver blocks until keyCond's value matches valueCond or the
// session cancels, then delivers keyTarget's value to whichever tag is at
// the head of this session's queue for keyCond.
func (s *DataStore) waitAndDeliver(sh *dataShard, cond *sync.Cond, pending *PendingSet, n Notifier, keyTarget, keyCond string, valueCond []byte) {
	sh.store.Lock()
	for {
		select {
		case <-n.Cancelled():
			sh.store.Unlock()
			return
		default:
		}
		if current, ok := sh.store.RawGet(keyCond); ok && bytes.Equal(current, valueCond) {
			break
		}
		cond.Wait()
	}
	sh.store.Unlock()

	tag, ok := pending.pop(keyCond)
	if !ok {
		return
	}
	select {
	case <-n.Cancelled():
		return
	default:
	}
	value, _ := s.Get(keyTarget)
	n.SendReply(tag, value)
}
