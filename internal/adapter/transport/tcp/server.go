package tcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/dayanaadylkhanova/powcaptcha/internal/adapter/ratelimit"
	"github.com/dayanaadylkhanova/powcaptcha/internal/entity"
)

const (
	ReplyVerified    = "verified\n"
	ReplyFailed      = "verification failed\n"
	ReplyInvalidJSON = "invalid solution json\n"
	ReplyRateLimited = "rate limit exceeded\n"
)

type Option func(*Server)

// WithRateLimit caps new connections per client IP. Every connection
// registers a key in the session store, so this bounds store growth too.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(s *Server) { s.limiter = ratelimit.New(limit, burst) }
}

type Server struct {
	log       *slog.Logger
	addr      string
	ttl       time.Duration
	captcha   Captcha
	sessions  Sessions
	conns     Connections
	ln        net.Listener
	wg        sync.WaitGroup
	connsMu   sync.Mutex
	active    map[net.Conn]struct{}
	shutdownT time.Duration
	limiter   *ratelimit.PerIP
}

func NewServer(log *slog.Logger, addr string, ttl time.Duration, shutdown time.Duration, captcha Captcha, sessions Sessions, conns Connections, opts ...Option) *Server {
	s := &Server{
		log:       log,
		addr:      addr,
		ttl:       ttl,
		shutdownT: shutdown,
		captcha:   captcha,
		sessions:  sessions,
		conns:     conns,
		active:    make(map[net.Conn]struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Server) Run(ctx context.Context) error {
	defer s.limiter.Stop()

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.ln = ln
	s.log.Info("tcp server started", "addr", s.addr, "ttl", s.ttl.String())

	// соединения живут дольше ctx запуска, пока не истечёт shutdownT
	connCtx, cancelConns := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelConns()

	errCh := make(chan error, 1)
	go func() { errCh <- s.acceptLoop(connCtx) }()

	select {
	case <-ctx.Done():

		s.log.Info("shutdown: closing listener")
		_ = s.ln.Close()

		s.connsMu.Lock()
		for c := range s.active {
			_ = c.SetDeadline(time.Now().Add(200 * time.Millisecond))
			if tc, ok := c.(*net.TCPConn); ok {
				_ = tc.CloseWrite()
			}
		}
		s.connsMu.Unlock()

		done := make(chan struct{})
		go func() { s.wg.Wait(); close(done) }()
		select {
		case <-done:
			s.log.Info("shutdown: all connections drained")
		case <-time.After(s.shutdownT):
			s.log.Warn("shutdown: force-close remaining connections")
			cancelConns()
			s.connsMu.Lock()
			for c := range s.active {
				_ = c.Close()
			}
			s.connsMu.Unlock()
		}
		return nil

	case err := <-errCh:
		return err
	}
}

func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.log.Warn("temporary accept error", "err", err)
				time.Sleep(50 * time.Millisecond)
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}
		if !s.limiter.AllowAddr(conn.RemoteAddr()) {
			s.log.Debug("connection rate limited", "remote", remoteAddr(conn))
			_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
			_, _ = conn.Write([]byte(ReplyRateLimited))
			_ = conn.Close()
			continue
		}
		s.track(conn, true)
		s.wg.Add(1)
		go func(c net.Conn) {
			defer s.wg.Done()
			defer s.track(c, false)
			s.handle(ctx, c)
		}(conn)
	}
}

func (s *Server) track(c net.Conn, add bool) {
	s.connsMu.Lock()
	if add {
		s.active[c] = struct{}{}
	} else {
		delete(s.active, c)
	}
	s.connsMu.Unlock()
	if s.conns == nil {
		return
	}
	if add {
		s.conns.ConnectionOpened()
	} else {
		s.conns.ConnectionClosed()
	}
}

// handle runs one challenge round. Every connection is its own session,
// so a solution is only accepted on the connection that received the
// challenge.
func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(2 * s.ttl))

	sessionID := uuid.NewString()
	sess := s.sessions.Session(sessionID)

	ch, err := s.captcha.IssueChallenge(ctx, sess)
	if err != nil {
		s.log.Error("challenge create failed", "err", err)
		return
	}
	bw := bufio.NewWriter(conn)
	br := bufio.NewReader(conn)

	if payload, err := json.Marshal(ch); err == nil {
		_, _ = bw.Write(append(payload, '\n'))
		_ = bw.Flush()
	} else {
		s.log.Error("challenge marshal failed", "err", err)
		return
	}
	s.log.Debug("challenge issued",
		"remote", remoteAddr(conn),
		"session", sessionID,
		"maxnumber", ch.MaxNumber,
	)

	line, err := br.ReadString('\n')
	if err != nil {
		s.log.Debug("read solution failed", "err", err)
		return
	}
	line = strings.TrimSpace(line)
	var sol entity.Solution
	if err := json.Unmarshal([]byte(line), &sol); err != nil || sol.Payload == "" {
		_, _ = bw.WriteString(ReplyInvalidJSON)
		_ = bw.Flush()
		s.log.Debug("bad solution", "err", err)
		return
	}

	if !s.captcha.CheckAnswer(ctx, sess, sol.Payload) {
		_, _ = bw.WriteString(ReplyFailed)
		_ = bw.Flush()
		s.log.Debug("verification failed", "remote", remoteAddr(conn), "session", sessionID)
		return
	}

	_, _ = bw.WriteString(ReplyVerified)
	_ = bw.Flush()
	s.log.Info("success", "remote", remoteAddr(conn))
}

func remoteAddr(c net.Conn) string {
	if a := c.RemoteAddr(); a != nil {
		return a.String()
	}
	return ""
}
