// memview-node serves one segment to peers: it builds a heap or
// shared-memory segment, binds the remote service over it, and answers
// peek/poke/watch/run packets until told to stop.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nmxmxh/memview/internal/remote"
	"github.com/nmxmxh/memview/segment"
	"github.com/nmxmxh/memview/utils"
)

func main() {
	var (
		listen     = flag.String("listen", "/ip4/127.0.0.1/tcp/0", "libp2p listen multiaddr")
		size       = flag.Int("size", 4096, "segment size in bytes, header included")
		sharedPath = flag.String("shared", "", "file-backed shared segment path (empty = process heap)")
		identity   = flag.String("identity", "node_identity.json", "identity key file")
		logLevel   = flag.String("log-level", "info", "log level")
		jsonLogs   = flag.Bool("json-logs", false, "emit JSON log lines")
		stopWithin = flag.Duration("shutdown-timeout", 10*time.Second, "graceful shutdown budget")
	)
	flag.Parse()

	utils.InitLogging(*logLevel, *jsonLogs)
	log := utils.ComponentLogger("node")

	if *size < remote.HeaderSize {
		log.Fatalf("segment size %d is smaller than the %d-byte header", *size, remote.HeaderSize)
	}

	shutdown := utils.NewGracefulShutdown(*stopWithin, log)

	seg, err := buildSegment(*sharedPath, *size, shutdown)
	if err != nil {
		log.WithError(err).Fatal("build segment")
	}

	svc, err := remote.NewService(seg)
	if err != nil {
		log.WithError(err).Fatal("build service")
	}

	node, err := remote.NewNode(svc, remote.Options{
		ListenAddrs:  []string{*listen},
		IdentityPath: *identity,
	})
	if err != nil {
		log.WithError(err).Fatal("start node")
	}
	shutdown.Register(node.Close)

	log.WithFields(logrus.Fields{
		"run_id": utils.GenerateID(),
		"bytes":  seg.ByteLength(),
	}).Info("node up")
	for _, a := range node.Addrs() {
		log.WithField("addr", a).Info("listening")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.WithField("signal", s.String()).Info("stopping")

	if err := shutdown.Shutdown(context.Background()); err != nil {
		log.WithError(err).Error("shutdown incomplete")
		os.Exit(1)
	}
}

// buildSegment picks the provider and registers its teardown: a heap
// segment detaches, a shared one unmaps and detaches.
func buildSegment(sharedPath string, size int, shutdown *utils.GracefulShutdown) (segment.Segment, error) {
	if sharedPath == "" {
		seg, err := segment.NewHeap(size)
		if err != nil {
			return nil, err
		}
		shutdown.Register(func() error {
			seg.Detach()
			return nil
		})
		return seg, nil
	}
	seg, err := segment.AttachShared(segment.SharedOptions{Path: sharedPath, Size: size, Create: true})
	if err != nil {
		return nil, err
	}
	shutdown.Register(seg.Close)
	return seg, nil
}
