// Package server implements the line-protocol front end: a TCP
// listener that runs one session goroutine plus one idle monitor per
// accepted connection, all sharing a single inventory store.
package server

import (
	"context"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"StockLine/internal/inventory"
	"StockLine/pkg/kit"
)

const (
	defaultAddr        = ":8888"
	defaultIdleTimeout = 300 * time.Second
	defaultIdlePoll    = 10 * time.Second
)

type Config struct {
	Addr        string
	IdleTimeout time.Duration
	IdlePoll    time.Duration
}

// Server accepts connections until its context is cancelled. There is
// no pooling or admission control: every accepted connection gets its
// own goroutine pair. That is a known scalability limit, not a
// correctness one.
type Server struct {
	cfg     Config
	store   *inventory.Store
	log     *zap.Logger
	metrics *kit.Metrics

	mu   sync.Mutex
	addr string

	sessions sync.WaitGroup
}

func New(cfg Config, store *inventory.Store, log *zap.Logger, metrics *kit.Metrics) *Server {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}
	if cfg.IdlePoll <= 0 {
		cfg.IdlePoll = defaultIdlePoll
	}
	return &Server{cfg: cfg, store: store, log: log, metrics: metrics}
}

// Addr reports the bound listen address once Run has opened it.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Run accepts connections until ctx is cancelled, then stops accepting
// and waits for live sessions to finish closing. Cancelling ctx also
// cancels every session context, so blocked reads unwind after their
// current command.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()

	s.log.Info("listening", zap.String("addr", ln.Addr().String()))

	go func() {
		<-ctx.Done()
		if err := ln.Close(); err != nil {
			s.log.Warn("listener close failed", zap.Error(err))
		}
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			s.log.Warn("accept failed", zap.Error(err))
			continue
		}
		s.startSession(ctx, conn)
	}

	s.sessions.Wait()
	s.log.Info("server stopped")
	return nil
}

func (s *Server) startSession(ctx context.Context, conn net.Conn) {
	sess := newSession(conn, s.store, s.log, s.metrics)

	sessCtx, cancel := context.WithCancel(ctx)
	sess.cancel = cancel

	mon := &idleMonitor{
		session: sess,
		timeout: s.cfg.IdleTimeout,
		poll:    s.cfg.IdlePoll,
		cancel:  cancel,
		log:     s.log,
	}

	s.metrics.ConnOpened()
	s.log.Info("client connected",
		zap.String("session", sess.id),
		zap.String("remote", conn.RemoteAddr().String()),
	)

	s.sessions.Add(2)
	go func() {
		defer s.sessions.Done()
		sess.run(sessCtx)
	}()
	go func() {
		defer s.sessions.Done()
		mon.run(sessCtx)
	}()
}
