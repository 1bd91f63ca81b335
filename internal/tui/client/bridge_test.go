// ABOUTME: Unit tests for the socket bridge and its frame transports
// ABOUTME: Runs against in-process WebSocket and TCP line servers
package client

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	chaterrors "github.com/harper/termchat/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatServer records every frame it receives and replays scripted frames
// after the token arrives.
type chatServer struct {
	received chan string
	script   []string
	hangup   bool
}

func newChatServer(script ...string) *chatServer {
	return &chatServer{received: make(chan string, 32), script: script}
}

func (s *chatServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	_, token, err := conn.ReadMessage()
	if err != nil {
		return
	}
	s.received <- string(token)

	for _, frame := range s.script {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			return
		}
	}
	if s.hangup {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		return
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		s.received <- string(msg)
	}
}

func (s *chatServer) next(t *testing.T) string {
	t.Helper()
	select {
	case f := <-s.received:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for frame")
		return ""
	}
}

func startWSServer(t *testing.T, s *chatServer) WebSocketDialer {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(s.handleWS))
	t.Cleanup(server.Close)
	return WebSocketDialer{URL: "ws" + strings.TrimPrefix(server.URL, "http"), HandshakeTimeout: time.Second}
}

func startTCPServer(t *testing.T, s *chatServer) TCPDialer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		token, err := r.ReadString('\n')
		if err != nil {
			return
		}
		s.received <- strings.TrimSuffix(token, "\n")

		for _, frame := range s.script {
			if _, err := conn.Write([]byte(frame + "\n")); err != nil {
				return
			}
		}
		if s.hangup {
			return
		}
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			s.received <- strings.TrimSuffix(line, "\n")
		}
	}()

	return TCPDialer{Addr: ln.Addr().String(), Timeout: time.Second}
}

func waitForLen(t *testing.T, feed *Feed, n int) []ChatMessage {
	t.Helper()
	var msgs []ChatMessage
	require.Eventually(t, func() bool {
		var ok bool
		msgs, ok = feed.DrainAvailable()
		return ok && len(msgs) >= n
	}, 2*time.Second, 10*time.Millisecond)
	return msgs
}

func runBridge(t *testing.T, b *Bridge) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()
	t.Cleanup(cancel)
	return cancel, done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("bridge did not stop")
		return nil
	}
}

func TestBridge_WebSocket_TokenFirstThenForwards(t *testing.T) {
	srv := newChatServer()
	dialer := startWSServer(t, srv)

	outbound := make(chan string, 4)
	feed := NewFeed(FeedCapacity)
	bridge := NewBridge(dialer, "tok-123", feed, outbound)
	runBridge(t, bridge)

	assert.Equal(t, "tok-123", srv.next(t))

	outbound <- "   "
	outbound <- "hi"
	assert.Equal(t, "hi", srv.next(t), "blank frames are filtered")

	require.Eventually(t, func() bool { return bridge.State() == BridgeConnected },
		time.Second, 10*time.Millisecond)
}

func TestBridge_WebSocket_DecodesAndFallsBack(t *testing.T) {
	srv := newChatServer(
		`{"user":"alice","content":"hello","timestamp":1700000000}`,
		"not-json",
	)
	dialer := startWSServer(t, srv)

	feed := NewFeed(FeedCapacity)
	bridge := NewBridge(dialer, "tok", feed, make(chan string))
	runBridge(t, bridge)

	msgs := waitForLen(t, feed, 2)
	assert.Equal(t, "alice", msgs[0].User)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, SystemUser, msgs[1].User)
	assert.Equal(t, "not-json", msgs[1].Content)
}

func TestBridge_WebSocket_PeerCloseEndsRun(t *testing.T) {
	srv := newChatServer(`{"user":"a","content":"last words"}`)
	srv.hangup = true
	dialer := startWSServer(t, srv)

	feed := NewFeed(FeedCapacity)
	bridge := NewBridge(dialer, "tok", feed, make(chan string))
	_, done := runBridge(t, bridge)

	err := waitDone(t, done)
	assert.True(t, errors.Is(err, chaterrors.ErrConnectionClosed), "got %v", err)
	assert.Equal(t, BridgeClosed, bridge.State())
	assert.Equal(t, 1, feed.retained())
}

func TestBridge_CancelClosesConnection(t *testing.T) {
	srv := newChatServer()
	dialer := startWSServer(t, srv)

	bridge := NewBridge(dialer, "tok", NewFeed(FeedCapacity), make(chan string))
	cancel, done := runBridge(t, bridge)
	srv.next(t)

	cancel()
	err := waitDone(t, done)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, BridgeClosed, bridge.State())
}

func TestBridge_DialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	bridge := NewBridge(TCPDialer{Addr: addr, Timeout: time.Second}, "tok", NewFeed(FeedCapacity), make(chan string))
	err = bridge.Run(context.Background())

	var connErr *chaterrors.ConnectionError
	require.True(t, errors.As(err, &connErr), "got %v", err)
	assert.Equal(t, "dial", connErr.Stage)
	assert.Equal(t, "TCP", connErr.Transport)
	assert.Equal(t, addr, connErr.Address)
}

func TestBridge_TCP_LineFrames(t *testing.T) {
	srv := newChatServer(`{"user":"bob","icon":"B","content":"over tcp"}`, "raw line")
	dialer := startTCPServer(t, srv)

	outbound := make(chan string, 1)
	feed := NewFeed(FeedCapacity)
	bridge := NewBridge(dialer, "tcp-token", feed, outbound)
	runBridge(t, bridge)

	assert.Equal(t, "tcp-token", srv.next(t))

	msgs := waitForLen(t, feed, 2)
	assert.Equal(t, "bob", msgs[0].User)
	assert.Equal(t, "B", msgs[0].IconOrDefault())
	assert.Equal(t, "raw line", msgs[1].Content)
	assert.Equal(t, SystemUser, msgs[1].User)

	outbound <- "ping"
	assert.Equal(t, "ping", srv.next(t))
}

func TestBridge_TCP_PeerCloseEndsRun(t *testing.T) {
	srv := newChatServer("bye")
	srv.hangup = true
	dialer := startTCPServer(t, srv)

	bridge := NewBridge(dialer, "tok", NewFeed(FeedCapacity), make(chan string))
	_, done := runBridge(t, bridge)

	err := waitDone(t, done)
	assert.ErrorIs(t, err, chaterrors.ErrConnectionClosed)
}

func TestBridgeState_String(t *testing.T) {
	assert.Equal(t, "connecting", BridgeConnecting.String())
	assert.Equal(t, "connected", BridgeConnected.String())
	assert.Equal(t, "disconnected", BridgeClosed.String())
}

func TestLineConn_UnterminatedFinalLine(t *testing.T) {
	client, server := net.Pipe()
	conn := newLineConn(client)
	defer conn.Close()

	go func() {
		_, _ = server.Write([]byte("first\r\nlast"))
		_ = server.Close()
	}()

	f, err := conn.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, "first", f)

	f, err = conn.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, "last", f)

	_, err = conn.ReadFrame()
	assert.ErrorIs(t, err, chaterrors.ErrConnectionClosed)
}
