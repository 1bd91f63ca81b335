// ABOUTME: Frame transports for the chat stream: WebSocket messages or newline-delimited TCP
// ABOUTME: Both expose the same FrameConn so the socket bridge is transport agnostic
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	chaterrors "github.com/harper/termchat/internal/errors"
)

// FrameConn carries text frames. ReadFrame blocks until a frame arrives or
// the connection ends; a clean close by the peer reports ErrConnectionClosed.
// Close unblocks a pending ReadFrame.
type FrameConn interface {
	WriteFrame(text string) error
	ReadFrame() (string, error)
	Close() error
}

// Dialer opens a FrameConn to the chat stream.
type Dialer interface {
	Dial(ctx context.Context) (FrameConn, error)
	Transport() string
	Address() string
}

// WebSocketDialer connects with gorilla/websocket; one message is one frame.
type WebSocketDialer struct {
	URL              string
	HandshakeTimeout time.Duration
}

func (d WebSocketDialer) Transport() string { return "WS" }
func (d WebSocketDialer) Address() string   { return d.URL }

func (d WebSocketDialer) Dial(ctx context.Context) (FrameConn, error) {
	dialer := websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: d.HandshakeTimeout,
	}

	conn, resp, err := dialer.DialContext(ctx, d.URL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return &wsConn{conn: conn}, nil
}

type wsConn struct {
	conn *websocket.Conn
	once sync.Once
}

func (c *wsConn) WriteFrame(text string) error {
	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (c *wsConn) ReadFrame() (string, error) {
	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return "", chaterrors.ErrConnectionClosed
			}
			return "", err
		}
		if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
			continue
		}
		return string(data), nil
	}
}

func (c *wsConn) Close() error {
	var err error
	c.once.Do(func() {
		// WriteControl may run concurrently with WriteMessage.
		deadline := time.Now().Add(time.Second)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		err = c.conn.Close()
	})
	return err
}

// TCPDialer connects to a raw line-delimited stream; one line is one frame.
type TCPDialer struct {
	Addr    string
	Timeout time.Duration
}

func (d TCPDialer) Transport() string { return "TCP" }
func (d TCPDialer) Address() string   { return d.Addr }

func (d TCPDialer) Dial(ctx context.Context) (FrameConn, error) {
	nd := net.Dialer{Timeout: d.Timeout}
	conn, err := nd.DialContext(ctx, "tcp", d.Addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return newLineConn(conn), nil
}

type lineConn struct {
	conn   net.Conn
	reader *bufio.Reader
	wmu    sync.Mutex
	once   sync.Once
}

func newLineConn(conn net.Conn) *lineConn {
	return &lineConn{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
}

func (c *lineConn) WriteFrame(text string) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	_, err := io.WriteString(c.conn, text+"\n")
	return err
}

func (c *lineConn) ReadFrame() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line != "" {
				// Unterminated final line; the next read reports the close.
				return strings.TrimRight(line, "\r"), nil
			}
			return "", chaterrors.ErrConnectionClosed
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *lineConn) Close() error {
	var err error
	c.once.Do(func() {
		err = c.conn.Close()
	})
	return err
}
