// ABOUTME: Socket bridge owning the chat connection for the lifetime of a chat screen
// ABOUTME: Sends the session token first, then forwards outbound text and feeds inbound frames
package client

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	chaterrors "github.com/harper/termchat/internal/errors"
	"github.com/harper/termchat/internal/logger"
	"golang.org/x/sync/errgroup"
)

type BridgeState int32

const (
	BridgeIdle BridgeState = iota
	BridgeConnecting
	BridgeConnected
	BridgeClosed
)

func (s BridgeState) String() string {
	switch s {
	case BridgeIdle:
		return "idle"
	case BridgeConnecting:
		return "connecting"
	case BridgeConnected:
		return "connected"
	case BridgeClosed:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Bridge runs on its own goroutine. It talks to the render loop only through
// the outbound channel and the Feed. It never reconnects; the chat screen
// starts a new Bridge for that.
type Bridge struct {
	dialer   Dialer
	token    string
	feed     *Feed
	outbound <-chan string
	state    atomic.Int32
	id       string
	now      func() time.Time
}

func NewBridge(dialer Dialer, token string, feed *Feed, outbound <-chan string) *Bridge {
	return &Bridge{
		dialer:   dialer,
		token:    token,
		feed:     feed,
		outbound: outbound,
		id:       uuid.NewString()[:8],
		now:      time.Now,
	}
}

func (b *Bridge) State() BridgeState {
	return BridgeState(b.state.Load())
}

// ID is the short connection id used in log lines.
func (b *Bridge) ID() string {
	return b.id
}

func (b *Bridge) logPrefix() string {
	return "[" + b.dialer.Transport() + ":" + b.id + "]"
}

// Run connects, sends the token, and then pumps frames both ways until the
// connection ends or ctx is cancelled. A cancelled ctx closes the connection
// and Run returns ctx.Err(). A peer close returns ErrConnectionClosed.
func (b *Bridge) Run(ctx context.Context) error {
	b.state.Store(int32(BridgeConnecting))
	defer b.state.Store(int32(BridgeClosed))

	transport, addr := b.dialer.Transport(), b.dialer.Address()
	logger.Info("%s connecting to %s", b.logPrefix(), addr)

	conn, err := b.dialer.Dial(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Error("%s connect failed: %v", b.logPrefix(), err)
		return chaterrors.NewConnectionError(transport, addr, "dial", err)
	}

	// The token must be the first frame on the wire.
	if err := conn.WriteFrame(b.token); err != nil {
		_ = conn.Close()
		logger.Error("%s sending session token failed: %v", b.logPrefix(), err)
		return chaterrors.NewConnectionError(transport, addr, "handshake", err)
	}
	logger.Debug("%s session token sent", b.logPrefix())

	b.state.Store(int32(BridgeConnected))
	logger.Info("%s connected", b.logPrefix())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.writeLoop(gctx, conn) })
	g.Go(func() error { return b.readLoop(conn) })
	g.Go(func() error {
		<-gctx.Done()
		if err := conn.Close(); err != nil {
			logger.Debug("%s close: %v", b.logPrefix(), err)
		}
		return nil
	})

	err = g.Wait()
	if ctx.Err() != nil {
		logger.Info("%s closed by client", b.logPrefix())
		return ctx.Err()
	}

	logger.Warn("%s connection ended: %v", b.logPrefix(), err)
	if errors.Is(err, chaterrors.ErrConnectionClosed) {
		return chaterrors.ErrConnectionClosed
	}
	return chaterrors.NewConnectionError(transport, addr, "stream", err)
}

func (b *Bridge) writeLoop(ctx context.Context, conn FrameConn) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case text, ok := <-b.outbound:
			if !ok {
				// No more outbound traffic; keep reading until the stream ends.
				return nil
			}
			if strings.TrimSpace(text) == "" {
				continue
			}
			if err := conn.WriteFrame(text); err != nil {
				return err
			}
			logger.Debug("%s sent %d bytes", b.logPrefix(), len(text))
		}
	}
}

func (b *Bridge) readLoop(conn FrameConn) error {
	for {
		frame, err := conn.ReadFrame()
		if err != nil {
			return err
		}

		msg, decoded := DecodeFrame(frame, b.now())
		if decoded {
			logger.Debug("%s received message from %s", b.logPrefix(), msg.User)
		} else {
			logger.Debug("%s undecodable frame shown as system message (%d bytes)", b.logPrefix(), len(frame))
		}
		b.feed.Push(msg)
	}
}
