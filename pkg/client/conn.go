package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/clockworklabs/spacetimedb-go/pkg/protocol"
	"github.com/clockworklabs/spacetimedb-go/pkg/sats"
	"github.com/clockworklabs/spacetimedb-go/pkg/wire"
)

// ErrClosed reports an operation on a connection that has shut down.
var ErrClosed = errors.New("client: connection closed")

// Conn is one WebSocket connection to a database. Message sends are safe
// for concurrent use; inbound messages are dispatched sequentially from a
// single receive loop.
type Conn struct {
	cfg      *Config
	registry *Registry
	ws       *websocket.Conn
	codec    protocol.Codec
	dispatch *wire.Dispatcher
	tracer   trace.Tracer

	requestID atomic.Uint32

	writeMu sync.Mutex

	done      chan struct{}
	closeOnce sync.Once
	errMu     sync.Mutex
	err       error
}

// Dial connects to the database at cfg.URL, negotiates the wire encoding,
// and starts the receive loop. Inbound messages are routed through
// handlers; the registry supplies schemas for argument encoding and row
// decoding.
func Dial(ctx context.Context, cfg *Config, registry *Registry, handlers wire.Handlers) (*Conn, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		cfg = cfg.Clone()
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("client: URL is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if registry == nil {
		registry = NewRegistry()
	}

	header := http.Header{}
	for k, vs := range cfg.Header {
		header[k] = vs
	}
	if cfg.Token != "" {
		header.Set("Authorization", "Bearer "+cfg.Token)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: cfg.HandshakeTimeout,
		Subprotocols:     []string{cfg.Encoding.String()},
	}
	ws, resp, err := dialer.DialContext(ctx, cfg.URL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("client: dial %s: %w (status %s)", cfg.URL, err, resp.Status)
		}
		return nil, fmt.Errorf("client: dial %s: %w", cfg.URL, err)
	}

	encoding := cfg.Encoding
	if negotiated := ws.Subprotocol(); negotiated != "" {
		encoding, err = protocol.EncodingFromSubprotocol(negotiated)
		if err != nil {
			ws.Close()
			return nil, fmt.Errorf("client: %w", err)
		}
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer("github.com/clockworklabs/spacetimedb-go/pkg/client")
	}

	codec := protocol.Codec{Encoding: encoding}
	c := &Conn{
		cfg:      cfg,
		registry: registry,
		ws:       ws,
		codec:    codec,
		dispatch: wire.NewDispatcher(codec, handlers, cfg.Logger),
		tracer:   tracer,
		done:     make(chan struct{}),
	}

	ws.SetReadLimit(cfg.MaxMessageSize)
	if err := ws.SetReadDeadline(time.Now().Add(cfg.PongWait)); err != nil {
		ws.Close()
		return nil, fmt.Errorf("client: set read deadline: %w", err)
	}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})

	go c.readLoop()
	go c.pingLoop()

	cfg.Logger.Info("connected", "url", cfg.URL, "encoding", encoding.String())
	return c, nil
}

// Encoding returns the negotiated wire encoding.
func (c *Conn) Encoding() protocol.Encoding { return c.codec.Encoding }

// Registry returns the schema registry the connection was built with.
func (c *Conn) Registry() *Registry { return c.registry }

// Done is closed when the connection shuts down.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Err returns the error that shut the connection down, or nil after a
// clean Close.
func (c *Conn) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

// Close shuts the connection down.
func (c *Conn) Close() error {
	c.shutdown(nil)
	return nil
}

func (c *Conn) shutdown(err error) {
	c.closeOnce.Do(func() {
		c.errMu.Lock()
		c.err = err
		c.errMu.Unlock()
		close(c.done)
		c.ws.Close()
		if err != nil {
			c.cfg.Logger.Error("connection closed", "error", err)
		} else {
			c.cfg.Logger.Info("connection closed")
		}
	})
}

func (c *Conn) readLoop() {
	for {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				err = nil
			default:
			}
			c.shutdown(err)
			return
		}

		var msg protocol.ServerMessage
		switch msgType {
		case websocket.BinaryMessage:
			body, derr := wire.DecodeFrame(data)
			if derr == nil {
				msg, derr = c.codec.DecodeServer(body)
			}
			err = derr
		case websocket.TextMessage:
			msg, err = c.codec.DecodeServer(data)
		default:
			continue
		}
		if err != nil {
			// Envelope failure means the stream position is lost.
			c.cfg.Metrics.RecordDecodeError()
			c.shutdown(fmt.Errorf("%w: %v", wire.ErrDesync, err))
			return
		}

		c.cfg.Metrics.RecordReceived(messageKind(msg), len(data))
		c.dispatch.Dispatch(msg)
	}
}

func (c *Conn) pingLoop() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteTimeout))
			c.writeMu.Unlock()
			if err != nil {
				c.shutdown(fmt.Errorf("client: ping: %w", err))
				return
			}
		}
	}
}

// Send encodes and writes one client message.
func (c *Conn) Send(ctx context.Context, msg protocol.ClientMessage) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := c.codec.EncodeClient(msg)
	if err != nil {
		return err
	}
	msgType := websocket.BinaryMessage
	if c.codec.Encoding == protocol.EncodingText {
		msgType = websocket.TextMessage
	}

	deadline := time.Now().Add(c.cfg.WriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return err
	}
	if err := c.ws.WriteMessage(msgType, data); err != nil {
		return fmt.Errorf("client: write: %w", err)
	}
	c.cfg.Metrics.RecordSent(messageKind(msg), len(data))
	return nil
}

func (c *Conn) nextRequestID() uint32 {
	return c.requestID.Add(1)
}

// CallReducer encodes args against the reducer's registered schema and
// invokes it. The returned request id correlates the eventual
// TransactionUpdate.
func (c *Conn) CallReducer(ctx context.Context, reducer string, args sats.Value, flags protocol.CallReducerFlags) (uint32, error) {
	encoded, err := c.registry.EncodeArgs(reducer, args)
	if err != nil {
		return 0, err
	}
	return c.CallReducerRaw(ctx, reducer, encoded, flags)
}

// CallReducerRaw invokes a reducer with pre-encoded arguments.
func (c *Conn) CallReducerRaw(ctx context.Context, reducer string, args []byte, flags protocol.CallReducerFlags) (uint32, error) {
	requestID := c.nextRequestID()

	ctx, span := c.tracer.Start(ctx, "spacetimedb.call_reducer",
		trace.WithAttributes(
			attribute.String("reducer", reducer),
			attribute.Int64("request_id", int64(requestID)),
		))
	defer span.End()

	err := c.Send(ctx, protocol.CallReducer{
		Reducer:   reducer,
		Args:      args,
		RequestID: requestID,
		Flags:     flags,
	})
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	c.cfg.Metrics.RecordReducerCall(reducer)
	return requestID, nil
}

// Subscribe registers a set of legacy subscription queries. The server
// answers with InitialSubscription.
func (c *Conn) Subscribe(ctx context.Context, queries []string) (uint32, error) {
	requestID := c.nextRequestID()
	err := c.Send(ctx, protocol.Subscribe{QueryStrings: queries, RequestID: requestID})
	if err != nil {
		return 0, err
	}
	return requestID, nil
}

// SubscribeSingle registers one query under queryID. The server answers
// with SubscribeApplied or SubscriptionError.
func (c *Conn) SubscribeSingle(ctx context.Context, query string, queryID protocol.QueryID) (uint32, error) {
	requestID := c.nextRequestID()
	err := c.Send(ctx, protocol.SubscribeSingle{Query: query, RequestID: requestID, QueryID: queryID})
	if err != nil {
		return 0, err
	}
	return requestID, nil
}

// SubscribeMulti registers a batch of queries under queryID. The server
// answers with SubscribeMultiApplied or SubscriptionError.
func (c *Conn) SubscribeMulti(ctx context.Context, queries []string, queryID protocol.QueryID) (uint32, error) {
	requestID := c.nextRequestID()
	err := c.Send(ctx, protocol.SubscribeMulti{QueryStrings: queries, RequestID: requestID, QueryID: queryID})
	if err != nil {
		return 0, err
	}
	return requestID, nil
}

// Unsubscribe cancels a single-query subscription.
func (c *Conn) Unsubscribe(ctx context.Context, queryID protocol.QueryID) (uint32, error) {
	requestID := c.nextRequestID()
	err := c.Send(ctx, protocol.Unsubscribe{RequestID: requestID, QueryID: queryID})
	if err != nil {
		return 0, err
	}
	return requestID, nil
}

// UnsubscribeMulti cancels a multi-query subscription.
func (c *Conn) UnsubscribeMulti(ctx context.Context, queryID protocol.QueryID) (uint32, error) {
	requestID := c.nextRequestID()
	err := c.Send(ctx, protocol.UnsubscribeMulti{RequestID: requestID, QueryID: queryID})
	if err != nil {
		return 0, err
	}
	return requestID, nil
}

// OneOffQuery runs a query once. The returned message id correlates the
// eventual OneOffQueryResponse.
func (c *Conn) OneOffQuery(ctx context.Context, query string) ([]byte, error) {
	id := uuid.New()
	messageID := id[:]
	err := c.Send(ctx, protocol.OneOffQuery{MessageID: messageID, QueryString: query})
	if err != nil {
		return nil, err
	}
	return messageID, nil
}

func messageKind(msg any) string {
	switch msg.(type) {
	case protocol.CallReducer:
		return "call_reducer"
	case protocol.Subscribe:
		return "subscribe"
	case protocol.SubscribeSingle:
		return "subscribe_single"
	case protocol.SubscribeMulti:
		return "subscribe_multi"
	case protocol.Unsubscribe:
		return "unsubscribe"
	case protocol.UnsubscribeMulti:
		return "unsubscribe_multi"
	case protocol.OneOffQuery:
		return "one_off_query"
	case protocol.IdentityToken:
		return "identity_token"
	case protocol.InitialSubscription:
		return "initial_subscription"
	case protocol.TransactionUpdate:
		return "transaction_update"
	case protocol.TransactionUpdateLight:
		return "transaction_update_light"
	case protocol.SubscribeApplied:
		return "subscribe_applied"
	case protocol.UnsubscribeApplied:
		return "unsubscribe_applied"
	case protocol.SubscriptionError:
		return "subscription_error"
	case protocol.SubscribeMultiApplied:
		return "subscribe_multi_applied"
	case protocol.UnsubscribeMultiApplied:
		return "unsubscribe_multi_applied"
	case protocol.OneOffQueryResponse:
		return "one_off_query_response"
	default:
		return "unknown"
	}
}
