// Package server composes the admission controller, the sharded stores, and
// the accept loop into a runnable tagkv server, the way torua's
// cmd/coordinator/main.go composes a ShardRegistry and HealthMonitor into an
// HTTP server — pulled into internal/ here since tagkv is a single binary
// with no coordinator/node split to justify keeping the wiring in main.
package server

import (
	"net"
	"sync"
	"time"

	"github.com/dreamware/tagkv/internal/admission"
	"github.com/dreamware/tagkv/internal/logging"
	"github.com/dreamware/tagkv/internal/session"
	"github.com/dreamware/tagkv/internal/store"
)

// statsLogInterval is how often Serve reports per-shard counters at DEBUG
// level, gated by TAGKV_DEBUG the same way every other Debugf call is.
const statsLogInterval = 30 * time.Second

// Config holds the three positional startup parameters the original
// server's command line took.
type Config struct {
	MaxClients int
	DataShards int
	UserShards int
}

// Server accepts connections and admits them as sessions against a shared
// pair of sharded stores.
type Server struct {
	cfg       Config
	data      *store.DataStore
	users     *store.UserStore
	admission *admission.Controller
	logger    *logging.Logger

	mu       sync.Mutex
	sessions map[int64]*session.Session
}

// New builds a Server from cfg. It does not start listening.
func New(cfg Config, logger *logging.Logger) *Server {
	return &Server{
		cfg:       cfg,
		data:      store.NewDataStore(cfg.DataShards),
		users:     store.NewUserStore(cfg.UserShards),
		admission: admission.New(cfg.MaxClients),
		logger:    logger,
		sessions:  make(map[int64]*session.Session),
	}
}

// Serve admits and services connections from ln until Accept returns an
// error, typically because ln was closed for shutdown. It never returns nil.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Infof("listening on %s (max_clients=%d data_shards=%d user_shards=%d)",
		ln.Addr(), s.cfg.MaxClients, s.cfg.DataShards, s.cfg.UserShards)

	stop := make(chan struct{})
	defer close(stop)
	go s.logStatsPeriodically(stop)

	for {
		id := s.admission.Acquire()

		nc, err := ln.Accept()
		if err != nil {
			s.admission.Release(id)
			return err
		}

		s.logger.Infof("client %d connected, active=%d", id, s.admission.Active())
		sess := session.New(id, nc, s.data, s.users, s.logger)

		s.mu.Lock()
		s.sessions[id] = sess
		s.mu.Unlock()

		go s.run(id, sess)
	}
}

func (s *Server) run(id int64, sess *session.Session) {
	sess.Run()

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	s.admission.Release(id)
	s.logger.Infof("client %d disconnected, active=%d", id, s.admission.Active())
}

// ActiveSessions returns the number of currently admitted sessions.
func (s *Server) ActiveSessions() int {
	return s.admission.Active()
}

// logStatsPeriodically reports each data shard's operation counters at
// DEBUG level until stop is closed, so an operator running with TAGKV_DEBUG
// set can see per-shard load without instrumenting the wire protocol.
func (s *Server) logStatsPeriodically(stop <-chan struct{}) {
	ticker := time.NewTicker(statsLogInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			for _, st := range s.data.Stats() {
				s.logger.Debugf("shard %d: gets=%d puts=%d keys=%d", st.Index, st.Gets, st.Puts, st.Keys)
			}
		}
	}
}
