package store

import (
	"sync"
	"sync/atomic"

	"golang.org/x/exp/slices"

	"github.com/dreamware/tagkv/internal/storage"
)

// dataShard owns a partition of the keyspace plus the condition variables
// registered against keys in that partition. Storage and locking are
// delegated to a storage.MemoryStore, whose exposed Lock/Unlock make it
// double as the sync.Locker every condition variable in conds is bound to —
// so a get-when check-then-wait and a concurrent Put are always serialized
// through the same lock.
type dataShard struct {
	store *storage.MemoryStore
	conds map[string]*sync.Cond

	gets uint64
	puts uint64
}

func newDataShard() *dataShard {
	return &dataShard{
		store: storage.NewMemoryStore(),
		conds: make(map[string]*sync.Cond),
	}
}

// condFor returns the condition variable for key, creating it lazily.
// Callers must hold sh.store's lock.
func (sh *dataShard) condFor(key string) *sync.Cond {
	c, ok := sh.conds[key]
	if !ok {
		c = sync.NewCond(sh.store)
		sh.conds[key] = c
	}
	return c
}

// DataStore is the sharded key-value store. Each shard is independently
// locked so operations on unrelated keys never contend.
type DataStore struct {
	shards []*dataShard
}

// NewDataStore creates a DataStore with the given number of shards. count
// must be at least 1.
func NewDataStore(count int) *DataStore {
	if count < 1 {
		count = 1
	}
	shards := make([]*dataShard, count)
	for i := range shards {
		shards[i] = newDataShard()
	}
	return &DataStore{shards: shards}
}

func (s *DataStore) shardFor(key string) *dataShard {
	return s.shards[shardIndex(key, len(s.shards))]
}

// Get returns a copy of the value stored at key, or (nil, false) if absent.
func (s *DataStore) Get(key string) ([]byte, bool) {
	sh := s.shardFor(key)
	atomic.AddUint64(&sh.gets, 1)
	v, err := sh.store.Get(key)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Put stores value at key, replacing any existing value, and wakes any
// get-when waiters registered on key.
func (s *DataStore) Put(key string, value []byte) {
	sh := s.shardFor(key)
	stored := make([]byte, len(value))
	copy(stored, value)

	sh.store.Lock()
	sh.store.RawPut(key, stored)
	atomic.AddUint64(&sh.puts, 1)
	if c, ok := sh.conds[key]; ok {
		c.Broadcast()
	}
	sh.store.Unlock()
}

// MultiGet returns a copy of every value present among keys. Keys are
// grouped by owning shard and each shard is locked at most once, in
// ascending shard-index order, matching MultiPut's lock-ordering discipline.
// Each group is read under the shard's exclusive lock, not its read lock, so
// a MultiGet excludes concurrent Gets on that shard while it reads the
// group; the lock is released before the next group is read.
func (s *DataStore) MultiGet(keys []string) map[string][]byte {
	groups := s.groupByShard(keys)
	result := make(map[string][]byte, len(keys))
	for _, g := range groups {
		sh := s.shards[g.index]
		sh.store.Lock()
		for _, k := range g.keys {
			if v, ok := sh.store.RawGet(k); ok {
				out := make([]byte, len(v))
				copy(out, v)
				result[k] = out
			}
		}
		atomic.AddUint64(&sh.gets, uint64(len(g.keys)))
		sh.store.Unlock()
	}
	return result
}

// MultiPut writes every pair in pairs. Keys are grouped by owning shard and
// the shards are locked in ascending index order before any writes happen,
// avoiding the classic deadlock where two concurrent multi-key operations
// lock the same pair of shards in opposite order. Each shard's writes commit
// and its lock is released before the next shard group is written.
func (s *DataStore) MultiPut(pairs []KeyValue) {
	byKey := make(map[string][]byte, len(pairs))
	keys := make([]string, 0, len(pairs))
	for _, kv := range pairs {
		if _, seen := byKey[kv.Key]; !seen {
			keys = append(keys, kv.Key)
		}
		byKey[kv.Key] = kv.Value
	}

	groups := s.groupByShard(keys)
	for _, g := range groups {
		s.shards[g.index].store.Lock()
	}
	for _, g := range groups {
		sh := s.shards[g.index]
		for _, k := range g.keys {
			v := byKey[k]
			stored := make([]byte, len(v))
			copy(stored, v)
			sh.store.RawPut(k, stored)
			if c, ok := sh.conds[k]; ok {
				c.Broadcast()
			}
		}
		atomic.AddUint64(&sh.puts, uint64(len(g.keys)))
		sh.store.Unlock()
	}
}

// KeyValue is a key/value pair, used by MultiPut and mirrored by
// protocol.KeyValue on the wire-decoding side.
type KeyValue struct {
	Key   string
	Value []byte
}

type shardGroup struct {
	index int
	keys  []string
}

// groupByShard buckets keys by owning shard index and returns the buckets
// sorted by index, so callers can lock shards in a consistent global order.
func (s *DataStore) groupByShard(keys []string) []shardGroup {
	byIndex := make(map[int][]string)
	for _, k := range keys {
		idx := shardIndex(k, len(s.shards))
		byIndex[idx] = append(byIndex[idx], k)
	}
	groups := make([]shardGroup, 0, len(byIndex))
	for idx, ks := range byIndex {
		groups = append(groups, shardGroup{index: idx, keys: ks})
	}
	slices.SortFunc(groups, func(a, b shardGroup) int { return a.index - b.index })
	return groups
}

// ShardStats reports per-shard operation counts, mirroring the counters
// torua's shard.Shard tracks for observability.
type ShardStats struct {
	Index int
	Gets  uint64
	Puts  uint64
	Keys  int
}

func (s *DataStore) Stats() []ShardStats {
	out := make([]ShardStats, len(s.shards))
	for i, sh := range s.shards {
		st := sh.store.Stats()
		out[i] = ShardStats{
			Index: i,
			Gets:  atomic.LoadUint64(&sh.gets),
			Puts:  atomic.LoadUint64(&sh.puts),
			Keys:  st.Keys,
		}
	}
	return out
}
