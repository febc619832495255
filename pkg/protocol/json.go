package protocol

import (
	"encoding/json"
	"fmt"
)

// The text protocol wraps each message in a single-key object naming the
// variant: {"CallReducer": {...}}. Payload fields use the same snake_case
// names as the binary struct fields.

func clientVariantName(msg ClientMessage) (string, error) {
	switch msg.(type) {
	case CallReducer:
		return "CallReducer", nil
	case Subscribe:
		return "Subscribe", nil
	case SubscribeSingle:
		return "SubscribeSingle", nil
	case SubscribeMulti:
		return "SubscribeMulti", nil
	case Unsubscribe:
		return "Unsubscribe", nil
	case UnsubscribeMulti:
		return "UnsubscribeMulti", nil
	case OneOffQuery:
		return "OneOffQuery", nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnknownVariant, msg)
	}
}

func serverVariantName(msg ServerMessage) (string, error) {
	switch msg.(type) {
	case IdentityToken:
		return "IdentityToken", nil
	case InitialSubscription:
		return "InitialSubscription", nil
	case TransactionUpdate:
		return "TransactionUpdate", nil
	case TransactionUpdateLight:
		return "TransactionUpdateLight", nil
	case SubscribeApplied:
		return "SubscribeApplied", nil
	case UnsubscribeApplied:
		return "UnsubscribeApplied", nil
	case SubscriptionError:
		return "SubscriptionError", nil
	case SubscribeMultiApplied:
		return "SubscribeMultiApplied", nil
	case UnsubscribeMultiApplied:
		return "UnsubscribeMultiApplied", nil
	case OneOffQueryResponse:
		return "OneOffQueryResponse", nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnknownVariant, msg)
	}
}

func marshalEnvelope(name string, payload any) ([]byte, error) {
	return json.Marshal(map[string]any{name: payload})
}

func unmarshalEnvelope(data []byte) (string, json.RawMessage, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return "", nil, fmt.Errorf("protocol: malformed envelope: %w", err)
	}
	if len(envelope) != 1 {
		return "", nil, fmt.Errorf("protocol: envelope must have exactly one variant key, got %d", len(envelope))
	}
	for name, payload := range envelope {
		return name, payload, nil
	}
	panic("unreachable")
}

// MarshalClientMessageJSON encodes a client message in the text protocol.
func MarshalClientMessageJSON(msg ClientMessage) ([]byte, error) {
	name, err := clientVariantName(msg)
	if err != nil {
		return nil, err
	}
	return marshalEnvelope(name, msg)
}

// UnmarshalClientMessageJSON decodes a text-protocol client message.
func UnmarshalClientMessageJSON(data []byte) (ClientMessage, error) {
	name, payload, err := unmarshalEnvelope(data)
	if err != nil {
		return nil, err
	}
	var msg ClientMessage
	switch name {
	case "CallReducer":
		var m CallReducer
		err = json.Unmarshal(payload, &m)
		msg = m
	case "Subscribe":
		var m Subscribe
		err = json.Unmarshal(payload, &m)
		msg = m
	case "SubscribeSingle":
		var m SubscribeSingle
		err = json.Unmarshal(payload, &m)
		msg = m
	case "SubscribeMulti":
		var m SubscribeMulti
		err = json.Unmarshal(payload, &m)
		msg = m
	case "Unsubscribe":
		var m Unsubscribe
		err = json.Unmarshal(payload, &m)
		msg = m
	case "UnsubscribeMulti":
		var m UnsubscribeMulti
		err = json.Unmarshal(payload, &m)
		msg = m
	case "OneOffQuery":
		var m OneOffQuery
		err = json.Unmarshal(payload, &m)
		msg = m
	default:
		return nil, fmt.Errorf("%w: client variant %q", ErrUnknownVariant, name)
	}
	if err != nil {
		return nil, fmt.Errorf("protocol: %s payload: %w", name, err)
	}
	return msg, nil
}

// MarshalServerMessageJSON encodes a server message in the text protocol.
func MarshalServerMessageJSON(msg ServerMessage) ([]byte, error) {
	name, err := serverVariantName(msg)
	if err != nil {
		return nil, err
	}
	return marshalEnvelope(name, msg)
}

// UnmarshalServerMessageJSON decodes a text-protocol server message.
func UnmarshalServerMessageJSON(data []byte) (ServerMessage, error) {
	name, payload, err := unmarshalEnvelope(data)
	if err != nil {
		return nil, err
	}
	var msg ServerMessage
	switch name {
	case "IdentityToken":
		var m IdentityToken
		err = json.Unmarshal(payload, &m)
		msg = m
	case "InitialSubscription":
		var m InitialSubscription
		err = json.Unmarshal(payload, &m)
		msg = m
	case "TransactionUpdate":
		var m TransactionUpdate
		err = json.Unmarshal(payload, &m)
		msg = m
	case "TransactionUpdateLight":
		var m TransactionUpdateLight
		err = json.Unmarshal(payload, &m)
		msg = m
	case "SubscribeApplied":
		var m SubscribeApplied
		err = json.Unmarshal(payload, &m)
		msg = m
	case "UnsubscribeApplied":
		var m UnsubscribeApplied
		err = json.Unmarshal(payload, &m)
		msg = m
	case "SubscriptionError":
		var m SubscriptionError
		err = json.Unmarshal(payload, &m)
		msg = m
	case "SubscribeMultiApplied":
		var m SubscribeMultiApplied
		err = json.Unmarshal(payload, &m)
		msg = m
	case "UnsubscribeMultiApplied":
		var m UnsubscribeMultiApplied
		err = json.Unmarshal(payload, &m)
		msg = m
	case "OneOffQueryResponse":
		var m OneOffQueryResponse
		err = json.Unmarshal(payload, &m)
		msg = m
	default:
		return nil, fmt.Errorf("%w: server variant %q", ErrUnknownVariant, name)
	}
	if err != nil {
		return nil, fmt.Errorf("protocol: %s payload: %w", name, err)
	}
	return msg, nil
}
