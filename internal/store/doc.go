// Package store implements the sharded key-value data store, the sharded
// user-credential store, and the get-when condition-wait primitive that
// tagkv-server exposes over the tagged wire protocol.
//
// # Sharding
//
// Both stores partition their keyspace across a fixed number of shards
// chosen at startup, hashed with FNV-1a and reduced modulo the shard count —
// the same hash torua's internal/shard and internal/coordinator packages use
// to own keys and route requests, reused here because the requirement is
// only that a server be internally consistent with itself, not that it match
// any particular client-side hash.
//
// # Locking
//
// Each data shard delegates storage and locking to a storage.MemoryStore:
// Get uses its RLock via MemoryStore.Get; Put, MultiPut, MultiGet and the
// condition check inside GetWhen use its exclusive Lock. MultiGet therefore
// does not read in parallel with other readers of the same shard.
// Each user shard is guarded by a plain sync.Mutex since credential lookups
// are cheap and don't benefit from a read/write split.
//
// # Condition variables
//
// A get-when watch on a key attaches a *sync.Cond to that key's owning data
// shard, bound to the shard's storage.MemoryStore (which satisfies
// sync.Locker through its exposed Lock/Unlock). Every Put that changes a
// watched key broadcasts that key's condition after committing the write,
// waking any waiters to re-check their predicate.
package store
