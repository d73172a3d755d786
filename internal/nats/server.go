// Package nats runs the embedded JetStream server that holds the order log.
package nats

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/adspot/internal/logger"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	readyTimeout    = 4 * time.Second
	drainTimeout    = 2 * time.Second
	shutdownTimeout = 5 * time.Second
)

// StartEmbeddedNATS starts an in-process server with JetStream file storage
// rooted at storeDir. No network listener is opened.
func StartEmbeddedNATS(storeDir string) (*server.Server, error) {
	logger.Debug("Starting embedded NATS, store dir %s", storeDir)

	ns, err := server.NewServer(&server.Options{
		JetStream:  true,
		StoreDir:   storeDir,
		DontListen: true,
		NoSigs:     true,
	})
	if err != nil {
		logger.Error("Failed to create NATS server: %v", err)
		return nil, err
	}

	go ns.Start()

	if !ns.ReadyForConnections(readyTimeout) {
		ns.Shutdown()
		logger.Error("NATS server not ready after %s", readyTimeout)
		return nil, errors.New("nats server failed to start within timeout")
	}
	logger.Debug("NATS server ready")
	return ns, nil
}

// ConnectInProcess opens a client connection that bypasses the network.
func ConnectInProcess(ns *server.Server) (*nats.Conn, error) {
	conn, err := nats.Connect("", nats.InProcessServer(ns))
	if err != nil {
		logger.Error("Failed to connect to NATS in-process: %v", err)
		return nil, err
	}
	return conn, nil
}

// CreateJetStream wraps nc in a JetStream context.
func CreateJetStream(nc *nats.Conn) (jetstream.JetStream, error) {
	return jetstream.New(nc)
}

// Shutdown drains nc and stops ns. Either may be nil.
func Shutdown(nc *nats.Conn, ns *server.Server) error {
	if nc != nil {
		done := make(chan error, 1)
		go func() { done <- nc.Drain() }()

		select {
		case err := <-done:
			if err != nil {
				logger.Warn("NATS drain failed, closing: %v", err)
				nc.Close()
			}
		case <-time.After(drainTimeout):
			logger.Warn("NATS drain timed out after %s, closing", drainTimeout)
			nc.Close()
		}
	}

	if ns == nil {
		return nil
	}
	ns.Shutdown()

	stopped := make(chan struct{})
	go func() {
		ns.WaitForShutdown()
		close(stopped)
	}()

	select {
	case <-stopped:
		logger.Debug("NATS server stopped")
		return nil
	case <-time.After(shutdownTimeout):
		logger.Error("NATS server shutdown timed out after %s", shutdownTimeout)
		return errors.New("nats server shutdown timed out")
	}
}

// Embedded bundles a running server with its client connection and stream.
type Embedded struct {
	Server *server.Server
	Conn   *nats.Conn
	JS     jetstream.JetStream
	Stream jetstream.Stream
}

// Open starts a server in storeDir, connects to it and ensures the order
// stream exists. Close releases everything Open acquired.
func Open(ctx context.Context, storeDir string) (*Embedded, error) {
	ns, err := StartEmbeddedNATS(storeDir)
	if err != nil {
		return nil, err
	}
	nc, err := ConnectInProcess(ns)
	if err != nil {
		_ = Shutdown(nil, ns)
		return nil, err
	}
	js, err := CreateJetStream(nc)
	if err != nil {
		_ = Shutdown(nc, ns)
		return nil, err
	}
	stream, err := SetupStream(ctx, js)
	if err != nil {
		_ = Shutdown(nc, ns)
		return nil, err
	}
	return &Embedded{Server: ns, Conn: nc, JS: js, Stream: stream}, nil
}

// Close drains the connection and stops the server.
func (e *Embedded) Close() error {
	return Shutdown(e.Conn, e.Server)
}
