package store

import "hash/fnv"

// shardIndex maps key to a shard in [0, count) using FNV-1a, the same
// algorithm torua's shard.OwnsKey and coordinator.ShardRegistry.GetShardForKey
// use to assign keys to shards.
func shardIndex(key string, count int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(count))
}
