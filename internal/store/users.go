package store

import "sync"

// userShard owns a partition of the credential keyspace. Credential lookups
// are cheap and always exclusive (auth checks and registrations both mutate
// or could mutate shortly after), so a plain Mutex is used rather than the
// RWMutex data shards use.
type userShard struct {
	mu    sync.Mutex
	users map[string]string
}

// UserStore is the sharded username/password store backing Auth and
// Register requests.
type UserStore struct {
	shards []*userShard
}

// NewUserStore creates a UserStore with the given number of shards. count
// must be at least 1.
func NewUserStore(count int) *UserStore {
	if count < 1 {
		count = 1
	}
	shards := make([]*userShard, count)
	for i := range shards {
		shards[i] = &userShard{users: make(map[string]string)}
	}
	return &UserStore{shards: shards}
}

func (s *UserStore) shardFor(user string) *userShard {
	return s.shards[shardIndex(user, len(s.shards))]
}

// Auth reports whether user exists and password matches its stored
// credential.
func (s *UserStore) Auth(user, password string) bool {
	sh := s.shardFor(user)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	pw, ok := sh.users[user]
	return ok && pw == password
}

// Register creates user with password if the username isn't already taken,
// reporting whether the registration succeeded.
func (s *UserStore) Register(user, password string) bool {
	sh := s.shardFor(user)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, exists := sh.users[user]; exists {
		return false
	}
	sh.users[user] = password
	return true
}
