package wire

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/clockworklabs/spacetimedb-go/pkg/protocol"
)

// ErrDesync reports a frame whose envelope could not be decoded. The
// binary stream has no per-message length envelope, so once an envelope
// fails the stream position is unrecoverable and the connection must be
// closed.
var ErrDesync = errors.New("wire: protocol desync")

// Handlers routes decoded server messages to application callbacks. Nil
// callbacks drop their message.
type Handlers struct {
	OnIdentityToken           func(protocol.IdentityToken)
	OnInitialSubscription     func(protocol.InitialSubscription)
	OnTransactionUpdate       func(protocol.TransactionUpdate)
	OnTransactionUpdateLight  func(protocol.TransactionUpdateLight)
	OnSubscribeApplied        func(protocol.SubscribeApplied)
	OnUnsubscribeApplied      func(protocol.UnsubscribeApplied)
	OnSubscriptionError       func(protocol.SubscriptionError)
	OnSubscribeMultiApplied   func(protocol.SubscribeMultiApplied)
	OnUnsubscribeMultiApplied func(protocol.UnsubscribeMultiApplied)
	OnOneOffQueryResponse     func(protocol.OneOffQueryResponse)
}

// Dispatcher decodes inbound server frames and routes them to handlers.
// It is driven by a single receive loop and is not safe for concurrent
// use.
type Dispatcher struct {
	codec    protocol.Codec
	handlers Handlers
	logger   *slog.Logger
}

// NewDispatcher builds a dispatcher for the given encoding. A nil logger
// defaults to slog.Default().
func NewDispatcher(codec protocol.Codec, handlers Handlers, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{codec: codec, handlers: handlers, logger: logger}
}

// HandleFrame decodes one inbound frame and dispatches the message. Any
// returned error wraps ErrDesync and is connection-fatal; errors inside a
// message's nested payloads are the handler's concern and never surface
// here.
func (d *Dispatcher) HandleFrame(frame []byte) error {
	body, err := DecodeFrame(frame)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDesync, err)
	}
	msg, err := d.codec.DecodeServer(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDesync, err)
	}
	d.Dispatch(msg)
	return nil
}

// Dispatch routes one decoded message. Messages with no registered handler
// are logged and dropped.
func (d *Dispatcher) Dispatch(msg protocol.ServerMessage) {
	switch m := msg.(type) {
	case protocol.IdentityToken:
		if d.handlers.OnIdentityToken != nil {
			d.handlers.OnIdentityToken(m)
			return
		}
	case protocol.InitialSubscription:
		if d.handlers.OnInitialSubscription != nil {
			d.handlers.OnInitialSubscription(m)
			return
		}
	case protocol.TransactionUpdate:
		if d.handlers.OnTransactionUpdate != nil {
			d.handlers.OnTransactionUpdate(m)
			return
		}
	case protocol.TransactionUpdateLight:
		if d.handlers.OnTransactionUpdateLight != nil {
			d.handlers.OnTransactionUpdateLight(m)
			return
		}
	case protocol.SubscribeApplied:
		if d.handlers.OnSubscribeApplied != nil {
			d.handlers.OnSubscribeApplied(m)
			return
		}
	case protocol.UnsubscribeApplied:
		if d.handlers.OnUnsubscribeApplied != nil {
			d.handlers.OnUnsubscribeApplied(m)
			return
		}
	case protocol.SubscriptionError:
		if d.handlers.OnSubscriptionError != nil {
			d.handlers.OnSubscriptionError(m)
			return
		}
	case protocol.SubscribeMultiApplied:
		if d.handlers.OnSubscribeMultiApplied != nil {
			d.handlers.OnSubscribeMultiApplied(m)
			return
		}
	case protocol.UnsubscribeMultiApplied:
		if d.handlers.OnUnsubscribeMultiApplied != nil {
			d.handlers.OnUnsubscribeMultiApplied(m)
			return
		}
	case protocol.OneOffQueryResponse:
		if d.handlers.OnOneOffQueryResponse != nil {
			d.handlers.OnOneOffQueryResponse(m)
			return
		}
	}
	d.logger.Debug("dropping unhandled server message", "variant", msg.Variant())
}
