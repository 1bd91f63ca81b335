// ABOUTME: Authentication collaborators that exchange credentials for a session token
// ABOUTME: HTTP register with login fallback on conflict, or the TCP line protocol
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	chaterrors "github.com/harper/termchat/internal/errors"
	"github.com/harper/termchat/internal/logger"
)

// Authenticator exchanges credentials for an opaque session token. icon may be
// empty. Implementations honour ctx; an expired deadline is ErrAuthTimeout.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password, icon string) (string, error)
}

// authTimeout maps deadline errors to the auth timeout sentinel.
func authTimeout(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return chaterrors.ErrAuthTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return chaterrors.ErrAuthTimeout
	}
	return err
}

// HTTPAuthenticator talks to the REST API: POST /auth/register, and on 409
// Conflict POST /auth/login.
type HTTPAuthenticator struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPAuthenticator(baseURL string) *HTTPAuthenticator {
	return &HTTPAuthenticator{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{},
	}
}

type credentials struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (a *HTTPAuthenticator) Authenticate(ctx context.Context, username, password, _ string) (string, error) {
	body := credentials{Username: username, PasswordHash: password}

	status, data, err := a.post(ctx, "/auth/register", body)
	if err != nil {
		return "", authTimeout(ctx, fmt.Errorf("register request failed: %w", err))
	}

	switch {
	case status >= 200 && status < 300:
		logger.Info("auth: registered %s", username)
		return decodeToken("register", data)
	case status == http.StatusConflict:
		logger.Debug("auth: %s already registered, logging in", username)
	default:
		return "", chaterrors.NewAuthError("register", strings.TrimSpace(string(data)))
	}

	status, data, err = a.post(ctx, "/auth/login", body)
	if err != nil {
		return "", authTimeout(ctx, fmt.Errorf("login request failed: %w", err))
	}
	if status < 200 || status >= 300 {
		return "", chaterrors.NewAuthError("login", strings.TrimSpace(string(data)))
	}
	logger.Info("auth: logged in %s", username)
	return decodeToken("login", data)
}

func (a *HTTPAuthenticator) post(ctx context.Context, path string, body interface{}) (int, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := a.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, data, nil
}

func decodeToken(op string, data []byte) (string, error) {
	var tok tokenResponse
	if err := json.Unmarshal(data, &tok); err != nil {
		return "", chaterrors.NewAuthError(op, "invalid response: "+err.Error())
	}
	return tok.Token, nil
}

// TCPAuthenticator speaks the line protocol: one JSON request line
// {"action", "payload"} answered by one JSON response line.
type TCPAuthenticator struct {
	Addr string
}

func NewTCPAuthenticator(addr string) *TCPAuthenticator {
	return &TCPAuthenticator{Addr: addr}
}

type lineRequest struct {
	Action  string            `json:"action"`
	Payload map[string]string `json:"payload"`
}

type lineResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Token   string `json:"token"`
}

// Authenticate tries register first and falls back to login when the server
// refuses the registration.
func (a *TCPAuthenticator) Authenticate(ctx context.Context, username, password, icon string) (string, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", a.Addr)
	if err != nil {
		return "", authTimeout(ctx, fmt.Errorf("connect %s: %w", a.Addr, err))
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	// Unblock pending I/O if ctx is cancelled without a deadline.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	lines := bufio.NewReader(conn)

	register := lineRequest{Action: "register", Payload: map[string]string{
		"username": username,
		"password": password,
		"icon":     icon,
	}}
	resp, err := a.exchange(conn, lines, register)
	if err != nil {
		return "", authTimeout(ctx, err)
	}
	if resp.Success {
		logger.Info("auth: registered %s over tcp", username)
		return resp.Token, nil
	}
	logger.Debug("auth: register refused (%s), logging in", resp.Error)

	login := lineRequest{Action: "login", Payload: map[string]string{
		"username": username,
		"password": password,
	}}
	resp, err = a.exchange(conn, lines, login)
	if err != nil {
		return "", authTimeout(ctx, err)
	}
	if !resp.Success {
		return "", chaterrors.NewAuthError("login", resp.Error)
	}
	logger.Info("auth: logged in %s over tcp", username)
	return resp.Token, nil
}

func (a *TCPAuthenticator) exchange(conn net.Conn, lines *bufio.Reader, req lineRequest) (lineResponse, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return lineResponse{}, fmt.Errorf("marshal %s: %w", req.Action, err)
	}
	if _, err := conn.Write(append(data, '\n')); err != nil {
		return lineResponse{}, fmt.Errorf("send %s: %w", req.Action, err)
	}

	line, err := lines.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		if errors.Is(err, io.EOF) {
			return lineResponse{}, chaterrors.NewAuthError(req.Action, "no response from server")
		}
		return lineResponse{}, fmt.Errorf("read %s response: %w", req.Action, err)
	}

	var resp lineResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &resp); err != nil {
		return lineResponse{}, chaterrors.NewAuthError(req.Action, "invalid response: "+err.Error())
	}
	return resp, nil
}
