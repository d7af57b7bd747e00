// Package obs implements a client for the video production tool's websocket
// control protocol (obs-websocket v5). One Client drives one tool instance;
// the Manager groups independent named clients.
package obs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ringcast/ringcast/pkg/logger"
	"github.com/ringcast/ringcast/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultRequestTimeout   = 10 * time.Second
	defaultHandshakeTimeout = 10 * time.Second
)

// Client is a single named connection to the production tool. It does not
// reconnect on its own; the caller decides when to Connect again.
type Client struct {
	name     string
	url      string
	password string

	requestTimeout   time.Duration
	handshakeTimeout time.Duration
	log              logger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	status    Status
	errReason string
	pending   map[string]chan responseData
	done      chan struct{}

	writeMu sync.Mutex
}

// NewClient creates a client for the given connection name and websocket URL.
func NewClient(name, url, password string, opts ...Option) *Client {
	c := &Client{
		name:             name,
		url:              url,
		password:         password,
		requestTimeout:   defaultRequestTimeout,
		handshakeTimeout: defaultHandshakeTimeout,
		status:           StatusDisconnected,
		pending:          make(map[string]chan responseData),
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	if c.log == nil {
		c.log = logger.Get().Named("obs")
	}
	return c
}

// Name returns the connection name.
func (c *Client) Name() string {
	return c.name
}

// Status returns the current connection status.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// StatusReason returns the failure detail when Status is StatusError.
func (c *Client) StatusReason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errReason
}

func (c *Client) setStatus(s Status, reason string) {
	c.mu.Lock()
	c.status = s
	c.errReason = reason
	c.mu.Unlock()
	metrics.UpdateConnectionStatus(c.name, int(s))
}

// Connect dials the tool and performs the identification handshake. On
// return the client is either authenticated and serving requests, or left
// in an error state with a classified error.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return nil // already connected
	}
	c.mu.Unlock()

	c.setStatus(StatusConnecting, "")

	dialer := websocket.Dialer{HandshakeTimeout: c.handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.setStatus(StatusError, err.Error())
		metrics.RecordControlError(c.name, "dial")
		return fmt.Errorf("%w: %s: %v", ErrConnectionRefused, c.url, err)
	}
	c.setStatus(StatusConnected, "")

	if err := c.identify(conn); err != nil {
		_ = conn.Close()
		c.setStatus(StatusError, err.Error())
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.done = make(chan struct{})
	c.mu.Unlock()
	c.setStatus(StatusAuthenticated, "")

	go c.readPump(conn)

	c.log.Info(ctx, "connected to production tool",
		logger.String("connection", c.name),
		logger.String("url", c.url))
	return nil
}

// identify runs the Hello/Identify/Identified exchange on a fresh socket.
func (c *Client) identify(conn *websocket.Conn) error {
	_ = conn.SetReadDeadline(time.Now().Add(c.handshakeTimeout))
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		metrics.RecordControlError(c.name, "handshake")
		return fmt.Errorf("%w: reading hello: %v", ErrConnectionRefused, err)
	}
	if env.Op != opHello {
		metrics.RecordControlError(c.name, "handshake")
		return fmt.Errorf("%w: expected hello, got op %d", ErrVersionMismatch, env.Op)
	}

	var hello helloData
	if err := json.Unmarshal(env.D, &hello); err != nil {
		return fmt.Errorf("%w: decoding hello: %v", ErrVersionMismatch, err)
	}
	if hello.RPCVersion < supportedRPCVersion {
		return fmt.Errorf("%w: tool offers rpc version %d", ErrVersionMismatch, hello.RPCVersion)
	}

	identify := identifyData{RPCVersion: supportedRPCVersion}
	if hello.Authentication != nil {
		c.setStatus(StatusAuthenticating, "")
		identify.Authentication = authToken(c.password, hello.Authentication.Salt, hello.Authentication.Challenge)
	}

	msg, err := marshalEnvelope(opIdentify, identify)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		metrics.RecordControlError(c.name, "handshake")
		return fmt.Errorf("%w: sending identify: %v", ErrConnectionRefused, err)
	}

	if err := conn.ReadJSON(&env); err != nil {
		// The tool drops the socket on a bad challenge response.
		metrics.RecordControlError(c.name, "auth")
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	if env.Op != opIdentified {
		metrics.RecordControlError(c.name, "auth")
		return fmt.Errorf("%w: expected identified, got op %d", ErrAuthFailed, env.Op)
	}

	var identified identifiedData
	if err := json.Unmarshal(env.D, &identified); err != nil {
		return fmt.Errorf("%w: decoding identified: %v", ErrVersionMismatch, err)
	}
	if identified.NegotiatedRPCVersion != supportedRPCVersion {
		return fmt.Errorf("%w: negotiated rpc version %d", ErrVersionMismatch, identified.NegotiatedRPCVersion)
	}
	return nil
}

// readPump dispatches incoming messages until the socket dies.
func (c *Client) readPump(conn *websocket.Conn) {
	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			c.teardown(err)
			return
		}

		switch env.Op {
		case opRequestResponse:
			var resp responseData
			if err := json.Unmarshal(env.D, &resp); err != nil {
				c.log.Warn(context.Background(), "unreadable response",
					logger.String("connection", c.name), logger.Error(err))
				continue
			}
			c.mu.Lock()
			ch, ok := c.pending[resp.RequestID]
			if ok {
				delete(c.pending, resp.RequestID)
			}
			c.mu.Unlock()
			if ok {
				ch <- resp
			}
		case opEvent:
			// Tool-originated events are not consumed; state flows from the
			// scoring system, not from the tool.
		default:
		}
	}
}

// teardown cleans up after the socket closes, failing any in-flight requests.
func (c *Client) teardown(cause error) {
	c.mu.Lock()
	if c.conn == nil {
		c.mu.Unlock()
		return
	}
	_ = c.conn.Close()
	c.conn = nil
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	close(c.done)
	c.mu.Unlock()

	if cause != nil && !websocket.IsCloseError(cause, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		c.setStatus(StatusError, cause.Error())
		c.log.Warn(context.Background(), "connection lost",
			logger.String("connection", c.name), logger.Error(cause))
		return
	}
	c.setStatus(StatusDisconnected, "")
}

// Disconnect closes the connection. The client keeps its configuration and
// can Connect again later.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return nil
	}

	c.writeMu.Lock()
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	_ = conn.Close()

	c.setStatus(StatusDisconnected, "")
	return nil
}

// call sends a request and decodes the correlated response into out. A nil
// out discards the response data.
func (c *Client) call(ctx context.Context, requestType string, reqData, out any) error {
	start := time.Now()
	defer func() {
		metrics.RecordControlRequestTime(time.Since(start).Seconds())
	}()

	c.mu.Lock()
	if c.conn == nil || c.status != StatusAuthenticated {
		c.mu.Unlock()
		metrics.RecordControlError(c.name, "not_connected")
		return fmt.Errorf("%w: %s", ErrNotConnected, c.name)
	}
	id := uuid.NewString()
	ch := make(chan responseData, 1)
	c.pending[id] = ch
	conn := c.conn
	done := c.done
	c.mu.Unlock()

	metrics.RecordControlRequest(c.name, requestType)

	msg, err := marshalEnvelope(opRequest, requestData{
		RequestType: requestType,
		RequestID:   id,
		RequestData: reqData,
	})
	if err != nil {
		c.dropPending(id)
		return err
	}

	c.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, msg)
	c.writeMu.Unlock()
	if err != nil {
		c.dropPending(id)
		metrics.RecordControlError(c.name, "write")
		return fmt.Errorf("%w: sending %s: %v", ErrNotConnected, requestType, err)
	}

	timer := time.NewTimer(c.requestTimeout)
	defer timer.Stop()

	select {
	case resp, ok := <-ch:
		if !ok {
			metrics.RecordControlError(c.name, "connection_lost")
			return fmt.Errorf("%w: connection lost during %s", ErrNotConnected, requestType)
		}
		if !resp.RequestStatus.Result {
			metrics.RecordControlError(c.name, "request_rejected")
			return &RequestError{
				RequestType: requestType,
				Code:        resp.RequestStatus.Code,
				Comment:     resp.RequestStatus.Comment,
			}
		}
		if out != nil && len(resp.ResponseData) > 0 {
			if err := json.Unmarshal(resp.ResponseData, out); err != nil {
				return fmt.Errorf("decoding %s response: %w", requestType, err)
			}
		}
		return nil
	case <-done:
		metrics.RecordControlError(c.name, "connection_lost")
		return fmt.Errorf("%w: connection lost during %s", ErrNotConnected, requestType)
	case <-timer.C:
		c.dropPending(id)
		metrics.RecordControlError(c.name, "timeout")
		return fmt.Errorf("%w: %s", ErrRequestTimeout, requestType)
	case <-ctx.Done():
		c.dropPending(id)
		return ctx.Err()
	}
}

func (c *Client) dropPending(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}
