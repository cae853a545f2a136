// Command tagkv-server runs a single-process, in-memory, sharded key-value
// server speaking the tagged binary protocol implemented by
// internal/protocol and internal/wire.
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dreamware/tagkv/internal/logging"
	"github.com/dreamware/tagkv/internal/server"
)

const listenAddr = ":12345"

const usage = "Usage: tagkv-server <max-clients> <database-shards> <user-shards>"

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr)

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		logger.Errorf("listen on %s: %v", listenAddr, err)
		os.Exit(1)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		logger.Infof("shutdown signal received, closing listener")
		ln.Close()
	}()

	srv := server.New(cfg, logger)
	if err := srv.Serve(ln); err != nil {
		logger.Infof("server stopped: %v", err)
	}
}

func parseArgs(args []string) (server.Config, error) {
	if len(args) != 3 {
		return server.Config{}, fmt.Errorf("expected 3 arguments, got %d", len(args))
	}
	values := make([]int, 3)
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return server.Config{}, fmt.Errorf("argument %q is not an integer", a)
		}
		values[i] = n
	}
	return server.Config{MaxClients: values[0], DataShards: values[1], UserShards: values[2]}, nil
}
