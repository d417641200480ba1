package utils

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// GracefulShutdown runs registered shutdown functions in reverse
// registration order (LIFO) under a timeout.
type GracefulShutdown struct {
	mu         sync.Mutex
	shutdownFn []func() error
	timeout    time.Duration
	log        *logrus.Entry
}

// NewGracefulShutdown creates a shutdown manager.
func NewGracefulShutdown(timeout time.Duration, log *logrus.Entry) *GracefulShutdown {
	if log == nil {
		log = ComponentLogger("shutdown")
	}
	return &GracefulShutdown{
		shutdownFn: make([]func() error, 0),
		timeout:    timeout,
		log:        log,
	}
}

// Register registers a shutdown function.
func (g *GracefulShutdown) Register(fn func() error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.shutdownFn = append(g.shutdownFn, fn)
}

// Shutdown executes all registered shutdown functions, newest first.
func (g *GracefulShutdown) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.log.WithField("components", len(g.shutdownFn)).Info("starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		var firstErr error
		for i := len(g.shutdownFn) - 1; i >= 0; i-- {
			if err := g.shutdownFn[i](); err != nil {
				g.log.WithField("index", i).WithError(err).Error("shutdown function failed")
				if firstErr == nil {
					firstErr = err
				}
			}
		}
		done <- firstErr
	}()

	select {
	case err := <-done:
		g.log.Info("graceful shutdown complete")
		return err
	case <-shutdownCtx.Done():
		g.log.Warn("graceful shutdown timed out")
		return NewError("shutdown timeout")
	}
}
