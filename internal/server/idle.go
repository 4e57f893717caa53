package server

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// idleMonitor watches one session's last-activity timestamp and
// cancels the session context when the idle threshold is exceeded. It
// never closes the socket: the session observes the cancellation at
// its next blocking read and unwinds on its own.
type idleMonitor struct {
	session *session
	timeout time.Duration
	poll    time.Duration
	cancel  context.CancelFunc
	log     *zap.Logger
}

func (m *idleMonitor) run(ctx context.Context) {
	ticker := time.NewTicker(m.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			idle := m.session.idleFor(now)
			if idle <= m.timeout {
				continue
			}

			// Only the immutable session ID is logged here: username is
			// owned by the session goroutine and set during the
			// handshake, so the monitor must not read it.
			m.log.Info("idle threshold exceeded",
				zap.String("session", m.session.id),
				zap.Duration("idle", idle),
			)
			m.session.idleTimedOut.Store(true)
			m.session.metrics.IdleTimeout()
			m.cancel()
			return
		}
	}
}
