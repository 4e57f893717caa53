package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"StockLine/internal/inventory"
	"StockLine/pkg/kit"
)

type sessionState int

const (
	stateConnecting sessionState = iota
	stateAuthenticating
	stateActive
	stateClosing
)

func (st sessionState) String() string {
	switch st {
	case stateConnecting:
		return "connecting"
	case stateAuthenticating:
		return "authenticating"
	case stateActive:
		return "active"
	case stateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

const (
	// priorityHigh and priorityNormal are advisory scheduling hints
	// derived from the client role. Go exposes no thread priorities, so
	// the hint only surfaces in logs; it never affects ordering.
	priorityHigh   = "high"
	priorityNormal = "normal"
)

var errInvalidUsername = errors.New("invalid username")

// session handles one client connection from handshake to close. All
// socket writes happen on the session goroutine; the idle monitor only
// cancels the context and lets the session unwind itself.
type session struct {
	id      string
	conn    net.Conn
	r       *bufio.Reader
	store   *inventory.Store
	log     *zap.Logger
	metrics *kit.Metrics

	state    sessionState
	username string
	admin    bool
	priority string

	lastActivity atomic.Int64
	idleTimedOut atomic.Bool
	cancel       context.CancelFunc
}

func newSession(conn net.Conn, store *inventory.Store, log *zap.Logger, metrics *kit.Metrics) *session {
	s := &session{
		id:       "c_" + uuid.NewString(),
		conn:     conn,
		r:        bufio.NewReader(conn),
		store:    store,
		log:      log,
		metrics:  metrics,
		state:    stateConnecting,
		priority: priorityNormal,
	}
	s.touch()
	return s
}

func (s *session) touch() {
	s.lastActivity.Store(time.Now().UnixNano())
}

func (s *session) idleFor(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastActivity.Load()))
}

func (s *session) run(ctx context.Context) {
	defer s.close()

	// Unblock a pending read when the context is cancelled. The socket
	// itself is not closed here; the read path notices the deadline,
	// checks the context and unwinds through its own defers.
	stop := context.AfterFunc(ctx, func() {
		_ = s.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	if err := s.handshake(ctx); err != nil {
		if !errors.Is(err, errInvalidUsername) {
			s.finish(err)
		}
		return
	}

	s.state = stateActive
	s.commandLoop(ctx)
}

func (s *session) handshake(ctx context.Context) error {
	s.state = stateAuthenticating

	s.writeLine("=== REAL-TIME STOCK MANAGEMENT SYSTEM ===")
	s.writeLine("Enter your username:")

	username, err := s.readLine(ctx)
	if err != nil {
		return err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		s.writeLine("ERROR: Invalid username. Disconnecting.")
		return errInvalidUsername
	}
	s.username = username

	s.writeLine("Are you an admin? (yes/no):")
	role, err := s.readLine(ctx)
	if err != nil {
		return err
	}

	if strings.EqualFold(strings.TrimSpace(role), "yes") {
		s.admin = true
		s.priority = priorityHigh
		s.writeLine(fmt.Sprintf("Welcome Admin %s! [high priority]", s.username))
	} else {
		s.writeLine(fmt.Sprintf("Welcome %s!", s.username))
	}
	s.writeLine("")
	s.writeLine("Type HELP for available commands.")

	s.log.Info("client authenticated",
		zap.String("session", s.id),
		zap.String("username", s.username),
		zap.Bool("admin", s.admin),
		zap.String("priority", s.priority),
	)
	return nil
}

func (s *session) commandLoop(ctx context.Context) {
	for {
		line, err := s.readLine(ctx)
		if err != nil {
			s.finish(err)
			return
		}
		s.touch()

		start := time.Now()
		resp, quit := s.dispatch(strings.TrimSpace(line))
		s.metrics.ObserveCommand(commandVerb(line), statusOf(resp), time.Since(start))

		s.writeLine(resp)
		s.writeLine(sentinel)

		if quit {
			return
		}
	}
}

// readLine blocks until the next newline. A cancelled context shows up
// as a deadline error on the read; it is translated back into the
// context error so callers can tell cancellation from real I/O failure.
func (s *session) readLine(ctx context.Context) (string, error) {
	line, err := s.r.ReadString('\n')
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (s *session) finish(err error) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		if s.idleTimedOut.Load() {
			s.writeLine("Connection timed out due to inactivity. Disconnecting...")
			s.log.Info("idle timeout",
				zap.String("session", s.id),
				zap.String("username", s.username),
			)
			return
		}
		s.log.Info("session cancelled", zap.String("session", s.id))
	case errors.Is(err, io.EOF):
		s.log.Info("client disconnected",
			zap.String("session", s.id),
			zap.String("username", s.username),
		)
	default:
		s.logReadFailure("read failed", err)
	}
}

func (s *session) logReadFailure(msg string, err error) {
	s.log.Warn(msg,
		zap.String("session", s.id),
		zap.String("username", s.username),
		zap.Error(err),
	)
}

func (s *session) writeLine(line string) {
	if _, err := fmt.Fprintf(s.conn, "%s\n", line); err != nil {
		s.log.Debug("write failed", zap.String("session", s.id), zap.Error(err))
	}
}

func (s *session) close() {
	prev := s.state
	s.state = stateClosing
	if s.cancel != nil {
		s.cancel()
	}
	if err := s.conn.Close(); err != nil {
		s.log.Debug("conn close failed", zap.String("session", s.id), zap.Error(err))
	}
	s.metrics.ConnClosed()
	s.log.Info("session closed",
		zap.String("session", s.id),
		zap.String("username", s.username),
		zap.Stringer("last_state", prev),
	)
}

func commandVerb(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "EMPTY"
	}
	return strings.ToUpper(fields[0])
}

func statusOf(resp string) string {
	if strings.HasPrefix(resp, "ERROR:") {
		return "error"
	}
	return "ok"
}
