// Package storage provides MemoryStore, an in-memory key-value store used
// as the locking primitive underneath package store's sharded key-value
// engine.
//
// # MemoryStore as a lock
//
// MemoryStore's Get and Put copy values in and out to keep callers from
// aliasing its internal map, which is the right default for ordinary use.
// package store's data shards need something stronger: a get-when watch has
// to check a key's current value and, if it doesn't yet match, register a
// sync.Cond and wait, atomically, under the same lock a concurrent Put
// would take. MemoryStore exposes that lock directly via Lock/Unlock,
// satisfying sync.Locker, and RawGet/RawPut for use only while that lock is
// held. Ordinary callers should stick to Get/Put/Stats; the raw accessors
// exist for package store's dataShard type alone.
//
// # Concurrency
//
// Get and Stats take a read lock; Put takes a write lock. RawGet/RawPut take
// no lock of their own — the caller is required to be holding one already
// via Lock/Unlock.
package storage
