package protocol

import (
	"errors"
	"fmt"

	"github.com/clockworklabs/spacetimedb-go/pkg/bsatn"
)

// ErrUnknownVariant reports a message envelope whose variant index is not
// part of the protocol.
var ErrUnknownVariant = errors.New("protocol: unknown message variant")

// ClientMessage is a message sent from a client to the server. Each message
// encodes as a single enum value whose variant index identifies the message
// kind and whose payload is a struct of named fields.
type ClientMessage interface {
	// Variant returns the wire variant index of the message.
	Variant() uint32

	clientMessage()
}

// Client message variant indices.
const (
	VariantCallReducer      uint32 = 0
	VariantSubscribe        uint32 = 1
	VariantSubscribeSingle  uint32 = 2
	VariantSubscribeMulti   uint32 = 3
	VariantUnsubscribe      uint32 = 4
	VariantUnsubscribeMulti uint32 = 5
	VariantOneOffQuery      uint32 = 6
)

// CallReducer invokes a reducer by name. Args carries the reducer's
// argument tuple as an already-encoded BSATN blob.
type CallReducer struct {
	Reducer   string           `json:"reducer"`
	Args      []byte           `json:"args"`
	RequestID uint32           `json:"request_id"`
	Flags     CallReducerFlags `json:"flags"`
}

func (CallReducer) Variant() uint32 { return VariantCallReducer }
func (CallReducer) clientMessage()  {}

// Subscribe registers a set of legacy subscription queries in one shot.
type Subscribe struct {
	QueryStrings []string `json:"query_strings"`
	RequestID    uint32   `json:"request_id"`
}

func (Subscribe) Variant() uint32 { return VariantSubscribe }
func (Subscribe) clientMessage()  {}

// SubscribeSingle registers one query under a client-chosen QueryID.
type SubscribeSingle struct {
	Query     string  `json:"query"`
	RequestID uint32  `json:"request_id"`
	QueryID   QueryID `json:"query_id"`
}

func (SubscribeSingle) Variant() uint32 { return VariantSubscribeSingle }
func (SubscribeSingle) clientMessage()  {}

// SubscribeMulti registers a batch of queries under one QueryID.
type SubscribeMulti struct {
	QueryStrings []string `json:"query_strings"`
	RequestID    uint32   `json:"request_id"`
	QueryID      QueryID  `json:"query_id"`
}

func (SubscribeMulti) Variant() uint32 { return VariantSubscribeMulti }
func (SubscribeMulti) clientMessage()  {}

// Unsubscribe cancels a single-query subscription.
type Unsubscribe struct {
	RequestID uint32  `json:"request_id"`
	QueryID   QueryID `json:"query_id"`
}

func (Unsubscribe) Variant() uint32 { return VariantUnsubscribe }
func (Unsubscribe) clientMessage()  {}

// UnsubscribeMulti cancels a multi-query subscription.
type UnsubscribeMulti struct {
	RequestID uint32  `json:"request_id"`
	QueryID   QueryID `json:"query_id"`
}

func (UnsubscribeMulti) Variant() uint32 { return VariantUnsubscribeMulti }
func (UnsubscribeMulti) clientMessage()  {}

// OneOffQuery runs a query once, outside any subscription. MessageID
// correlates the eventual OneOffQueryResponse.
type OneOffQuery struct {
	MessageID   []byte `json:"message_id"`
	QueryString string `json:"query_string"`
}

func (OneOffQuery) Variant() uint32 { return VariantOneOffQuery }
func (OneOffQuery) clientMessage()  {}

// EncodeClientMessage encodes a client message to its binary wire form.
func EncodeClientMessage(msg ClientMessage) ([]byte, error) {
	w := bsatn.NewWriter()
	if err := EncodeClientMessageTo(w, msg); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// EncodeClientMessageTo writes the enum envelope and payload for msg.
func EncodeClientMessageTo(w *bsatn.Writer, msg ClientMessage) error {
	w.WriteEnumHeader(msg.Variant())
	switch m := msg.(type) {
	case CallReducer:
		return encodeCallReducer(w, m)
	case Subscribe:
		return encodeSubscribe(w, m)
	case SubscribeSingle:
		return encodeSubscribeSingle(w, m)
	case SubscribeMulti:
		return encodeSubscribeMulti(w, m)
	case Unsubscribe:
		return encodeQueryCancel(w, m.RequestID, m.QueryID)
	case UnsubscribeMulti:
		return encodeQueryCancel(w, m.RequestID, m.QueryID)
	case OneOffQuery:
		return encodeOneOffQuery(w, m)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownVariant, msg)
	}
}

func encodeCallReducer(w *bsatn.Writer, m CallReducer) error {
	w.WriteStructHeader(4)
	if err := w.WriteFieldName("reducer"); err != nil {
		return err
	}
	if err := w.WriteString(m.Reducer); err != nil {
		return err
	}
	if err := w.WriteFieldName("args"); err != nil {
		return err
	}
	if err := w.WriteBytes(m.Args); err != nil {
		return err
	}
	if err := w.WriteFieldName("request_id"); err != nil {
		return err
	}
	w.WriteU32(m.RequestID)
	if err := w.WriteFieldName("flags"); err != nil {
		return err
	}
	w.WriteU8(uint8(m.Flags))
	return nil
}

func writeQueryStrings(w *bsatn.Writer, queries []string) error {
	w.WriteArrayHeader(len(queries))
	for _, q := range queries {
		if err := w.WriteString(q); err != nil {
			return err
		}
	}
	return nil
}

func readQueryStrings(r *bsatn.Reader) ([]string, error) {
	n, err := readArrayHeader(r)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		s, err := readTaggedString(r)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func encodeSubscribe(w *bsatn.Writer, m Subscribe) error {
	w.WriteStructHeader(2)
	if err := w.WriteFieldName("query_strings"); err != nil {
		return err
	}
	if err := writeQueryStrings(w, m.QueryStrings); err != nil {
		return err
	}
	if err := w.WriteFieldName("request_id"); err != nil {
		return err
	}
	w.WriteU32(m.RequestID)
	return nil
}

func encodeSubscribeSingle(w *bsatn.Writer, m SubscribeSingle) error {
	w.WriteStructHeader(3)
	if err := w.WriteFieldName("query"); err != nil {
		return err
	}
	if err := w.WriteString(m.Query); err != nil {
		return err
	}
	if err := w.WriteFieldName("request_id"); err != nil {
		return err
	}
	w.WriteU32(m.RequestID)
	if err := w.WriteFieldName("query_id"); err != nil {
		return err
	}
	return writeQueryID(w, m.QueryID)
}

func encodeSubscribeMulti(w *bsatn.Writer, m SubscribeMulti) error {
	w.WriteStructHeader(3)
	if err := w.WriteFieldName("query_strings"); err != nil {
		return err
	}
	if err := writeQueryStrings(w, m.QueryStrings); err != nil {
		return err
	}
	if err := w.WriteFieldName("request_id"); err != nil {
		return err
	}
	w.WriteU32(m.RequestID)
	if err := w.WriteFieldName("query_id"); err != nil {
		return err
	}
	return writeQueryID(w, m.QueryID)
}

func encodeQueryCancel(w *bsatn.Writer, requestID uint32, queryID QueryID) error {
	w.WriteStructHeader(2)
	if err := w.WriteFieldName("request_id"); err != nil {
		return err
	}
	w.WriteU32(requestID)
	if err := w.WriteFieldName("query_id"); err != nil {
		return err
	}
	return writeQueryID(w, queryID)
}

func encodeOneOffQuery(w *bsatn.Writer, m OneOffQuery) error {
	w.WriteStructHeader(2)
	if err := w.WriteFieldName("message_id"); err != nil {
		return err
	}
	if err := w.WriteBytes(m.MessageID); err != nil {
		return err
	}
	if err := w.WriteFieldName("query_string"); err != nil {
		return err
	}
	return w.WriteString(m.QueryString)
}

// DecodeClientMessage decodes a binary client message. Unknown payload
// fields are skipped; an unknown variant index fails with
// ErrUnknownVariant.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	r := bsatn.NewReader(data)
	msg, err := DecodeClientMessageFrom(r)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// DecodeClientMessageFrom reads one client message from r.
func DecodeClientMessageFrom(r *bsatn.Reader) (ClientMessage, error) {
	tag, err := r.ReadTag()
	if err != nil {
		return nil, err
	}
	if tag != bsatn.TagEnum {
		return nil, fmt.Errorf("%w: expected enum envelope, got %s", bsatn.ErrInvalidTag, tag)
	}
	variant, err := r.ReadEnumHeader()
	if err != nil {
		return nil, err
	}
	switch variant {
	case VariantCallReducer:
		return decodeCallReducer(r)
	case VariantSubscribe:
		return decodeSubscribe(r)
	case VariantSubscribeSingle:
		return decodeSubscribeSingle(r)
	case VariantSubscribeMulti:
		return decodeSubscribeMulti(r)
	case VariantUnsubscribe:
		reqID, queryID, err := decodeQueryCancel(r)
		if err != nil {
			return nil, err
		}
		return Unsubscribe{RequestID: reqID, QueryID: queryID}, nil
	case VariantUnsubscribeMulti:
		reqID, queryID, err := decodeQueryCancel(r)
		if err != nil {
			return nil, err
		}
		return UnsubscribeMulti{RequestID: reqID, QueryID: queryID}, nil
	case VariantOneOffQuery:
		return decodeOneOffQuery(r)
	default:
		return nil, fmt.Errorf("%w: client variant %d", ErrUnknownVariant, variant)
	}
}

func decodeCallReducer(r *bsatn.Reader) (CallReducer, error) {
	n, err := readStructHeader(r)
	if err != nil {
		return CallReducer{}, err
	}
	var m CallReducer
	for i := 0; i < n; i++ {
		name, err := r.ReadFieldName()
		if err != nil {
			return CallReducer{}, err
		}
		switch name {
		case "reducer":
			m.Reducer, err = readTaggedString(r)
		case "args":
			m.Args, err = readTaggedBytes(r)
		case "request_id":
			m.RequestID, err = readTaggedU32(r)
		case "flags":
			var f uint8
			f, err = readTaggedU8(r)
			m.Flags = CallReducerFlags(f)
		default:
			err = r.SkipValue()
		}
		if err != nil {
			return CallReducer{}, err
		}
	}
	return m, nil
}

func decodeSubscribe(r *bsatn.Reader) (Subscribe, error) {
	n, err := readStructHeader(r)
	if err != nil {
		return Subscribe{}, err
	}
	var m Subscribe
	for i := 0; i < n; i++ {
		name, err := r.ReadFieldName()
		if err != nil {
			return Subscribe{}, err
		}
		switch name {
		case "query_strings":
			m.QueryStrings, err = readQueryStrings(r)
		case "request_id":
			m.RequestID, err = readTaggedU32(r)
		default:
			err = r.SkipValue()
		}
		if err != nil {
			return Subscribe{}, err
		}
	}
	return m, nil
}

func decodeSubscribeSingle(r *bsatn.Reader) (SubscribeSingle, error) {
	n, err := readStructHeader(r)
	if err != nil {
		return SubscribeSingle{}, err
	}
	var m SubscribeSingle
	for i := 0; i < n; i++ {
		name, err := r.ReadFieldName()
		if err != nil {
			return SubscribeSingle{}, err
		}
		switch name {
		case "query":
			m.Query, err = readTaggedString(r)
		case "request_id":
			m.RequestID, err = readTaggedU32(r)
		case "query_id":
			m.QueryID, err = readQueryID(r)
		default:
			err = r.SkipValue()
		}
		if err != nil {
			return SubscribeSingle{}, err
		}
	}
	return m, nil
}

func decodeSubscribeMulti(r *bsatn.Reader) (SubscribeMulti, error) {
	n, err := readStructHeader(r)
	if err != nil {
		return SubscribeMulti{}, err
	}
	var m SubscribeMulti
	for i := 0; i < n; i++ {
		name, err := r.ReadFieldName()
		if err != nil {
			return SubscribeMulti{}, err
		}
		switch name {
		case "query_strings":
			m.QueryStrings, err = readQueryStrings(r)
		case "request_id":
			m.RequestID, err = readTaggedU32(r)
		case "query_id":
			m.QueryID, err = readQueryID(r)
		default:
			err = r.SkipValue()
		}
		if err != nil {
			return SubscribeMulti{}, err
		}
	}
	return m, nil
}

func decodeQueryCancel(r *bsatn.Reader) (uint32, QueryID, error) {
	n, err := readStructHeader(r)
	if err != nil {
		return 0, QueryID{}, err
	}
	var (
		requestID uint32
		queryID   QueryID
	)
	for i := 0; i < n; i++ {
		name, err := r.ReadFieldName()
		if err != nil {
			return 0, QueryID{}, err
		}
		switch name {
		case "request_id":
			requestID, err = readTaggedU32(r)
		case "query_id":
			queryID, err = readQueryID(r)
		default:
			err = r.SkipValue()
		}
		if err != nil {
			return 0, QueryID{}, err
		}
	}
	return requestID, queryID, nil
}

func decodeOneOffQuery(r *bsatn.Reader) (OneOffQuery, error) {
	n, err := readStructHeader(r)
	if err != nil {
		return OneOffQuery{}, err
	}
	var m OneOffQuery
	for i := 0; i < n; i++ {
		name, err := r.ReadFieldName()
		if err != nil {
			return OneOffQuery{}, err
		}
		switch name {
		case "message_id":
			m.MessageID, err = readTaggedBytes(r)
		case "query_string":
			m.QueryString, err = readTaggedString(r)
		default:
			err = r.SkipValue()
		}
		if err != nil {
			return OneOffQuery{}, err
		}
	}
	return m, nil
}
