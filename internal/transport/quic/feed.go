// Package quic streams frame snapshots to spectators over QUIC. Each
// spectator gets one unidirectional stream of length-prefixed JSON
// snapshots.
package quic

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"

	"github.com/zeusync/trackrun/internal/core/loop"
	"github.com/zeusync/trackrun/internal/core/observability/log"
	"github.com/zeusync/trackrun/internal/core/scene"
)

var ErrFeedClosed = errors.New("feed is closed")

type Config struct {
	Addr        string
	TLS         *tls.Config
	Buffer      int
	IdleTimeout time.Duration
	MaxFrame    int
}

type spectator struct {
	id     string
	conn   *quic.Conn
	frames chan []byte
}

// Feed is a loop.Renderer. Render never blocks; spectators that fall
// behind are disconnected.
type Feed struct {
	cfg      Config
	logger   log.Log
	listener *quic.Listener

	mu         sync.RWMutex
	spectators map[string]*spectator
	closed     atomic.Bool

	sent    atomic.Uint64
	dropped atomic.Uint64
}

var _ loop.Renderer = (*Feed)(nil)

// Listen opens the QUIC listener. A nil cfg.TLS gets a self-signed
// certificate.
func Listen(cfg Config, logger log.Log) (*Feed, error) {
	if logger == nil {
		logger = log.Provide()
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 8
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Second
	}
	if cfg.MaxFrame <= 0 {
		cfg.MaxFrame = DefaultMaxFrame
	}
	if cfg.TLS == nil {
		tlsConf, err := SelfSignedTLS()
		if err != nil {
			return nil, err
		}
		cfg.TLS = tlsConf
	}

	listener, err := quic.ListenAddr(cfg.Addr, cfg.TLS, &quic.Config{
		MaxIdleTimeout:        cfg.IdleTimeout,
		MaxIncomingStreams:    -1,
		MaxIncomingUniStreams: -1,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to start QUIC listener")
	}

	f := &Feed{
		cfg:        cfg,
		logger:     logger.Named("quic").With(log.String("listener_addr", listener.Addr().String())),
		listener:   listener,
		spectators: make(map[string]*spectator),
	}
	f.logger.Info("QUIC feed listening")
	return f, nil
}

func (f *Feed) Addr() net.Addr { return f.listener.Addr() }

func (f *Feed) Spectators() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.spectators)
}

// Serve accepts spectators until ctx is done or the feed is closed.
func (f *Feed) Serve(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := f.listener.Accept(ctx)
		if err != nil {
			if f.closed.Load() || ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "failed to accept QUIC connection")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.handle(ctx, conn)
		}()
	}
}

func (f *Feed) handle(ctx context.Context, conn *quic.Conn) {
	s := &spectator{id: uuid.NewString(), conn: conn, frames: make(chan []byte, f.cfg.Buffer)}
	logger := f.logger.With(log.String("spectator_id", s.id), log.String("remote_addr", conn.RemoteAddr().String()))

	f.mu.Lock()
	f.spectators[s.id] = s
	f.mu.Unlock()
	defer f.remove(s)
	logger.Info("spectator connected")

	stream, err := conn.OpenUniStreamSync(ctx)
	if err != nil {
		logger.Warn("failed to open stream", log.Error(err))
		return
	}
	defer func() { _ = stream.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case <-conn.Context().Done():
			logger.Info("spectator disconnected")
			return
		case frame, ok := <-s.frames:
			if !ok {
				return
			}
			if err = WriteFrame(stream, frame); err != nil {
				f.dropped.Add(1)
				logger.Warn("write failed, dropping spectator", log.Error(err))
				return
			}
			f.sent.Add(1)
		}
	}
}

func (f *Feed) remove(s *spectator) {
	f.mu.Lock()
	_, ok := f.spectators[s.id]
	delete(f.spectators, s.id)
	f.mu.Unlock()
	if ok {
		_ = s.conn.CloseWithError(0, "")
	}
}

func (f *Feed) Render(_ context.Context, snap scene.Snapshot) error {
	if f.closed.Load() {
		return ErrFeedClosed
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "encode snapshot")
	}
	if len(data) > f.cfg.MaxFrame {
		return errors.Wrapf(ErrFrameTooLarge, "%d bytes", len(data))
	}

	var slow []*spectator
	f.mu.RLock()
	for _, s := range f.spectators {
		select {
		case s.frames <- data:
		default:
			slow = append(slow, s)
		}
	}
	f.mu.RUnlock()

	for _, s := range slow {
		f.dropped.Add(1)
		f.logger.Warn("spectator too slow, dropping", log.String("spectator_id", s.id))
		f.remove(s)
	}
	return nil
}

// Stats reports frames written and spectators dropped.
func (f *Feed) Stats() (sent, dropped uint64) {
	return f.sent.Load(), f.dropped.Load()
}

func (f *Feed) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	f.mu.Lock()
	spectators := f.spectators
	f.spectators = make(map[string]*spectator)
	f.mu.Unlock()
	for _, s := range spectators {
		_ = s.conn.CloseWithError(0, "feed closed")
	}
	f.logger.Info("QUIC feed closed")
	return errors.Wrap(f.listener.Close(), "failed to close QUIC listener")
}

// Subscription is the spectator side of a feed.
type Subscription struct {
	conn   *quic.Conn
	stream *quic.ReceiveStream
	max    int
}

// Dial connects to a feed. tlsConf must offer ALPN; one is added if
// missing.
func Dial(ctx context.Context, addr string, tlsConf *tls.Config) (*Subscription, error) {
	if tlsConf == nil {
		tlsConf = &tls.Config{}
	}
	tlsConf = tlsConf.Clone()
	if len(tlsConf.NextProtos) == 0 {
		tlsConf.NextProtos = []string{ALPN}
	}
	conn, err := quic.DialAddr(ctx, addr, tlsConf, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial feed")
	}
	return &Subscription{conn: conn, max: 1 << 20}, nil
}

// Next blocks for the next snapshot.
func (s *Subscription) Next(ctx context.Context) (scene.Snapshot, error) {
	if s.stream == nil {
		stream, err := s.conn.AcceptUniStream(ctx)
		if err != nil {
			return scene.Snapshot{}, errors.Wrap(err, "failed to accept stream")
		}
		s.stream = stream
	}
	data, err := ReadFrame(s.stream, s.max)
	if err != nil {
		return scene.Snapshot{}, err
	}
	var snap scene.Snapshot
	if err = json.Unmarshal(data, &snap); err != nil {
		return scene.Snapshot{}, errors.Wrap(err, "decode snapshot")
	}
	return snap, nil
}

func (s *Subscription) Close() error {
	return s.conn.CloseWithError(0, "")
}
