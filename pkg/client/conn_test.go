package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/clockworklabs/spacetimedb-go/pkg/protocol"
	"github.com/clockworklabs/spacetimedb-go/pkg/sats"
	"github.com/clockworklabs/spacetimedb-go/pkg/wire"
)

// mockServer is a minimal database endpoint: it upgrades, hands out an
// IdentityToken, and answers each client message with a canned response.
type mockServer struct {
	t        *testing.T
	upgrader websocket.Upgrader
	compress wire.CompressorConfig
}

func newMockServer(t *testing.T) *httptest.Server {
	ms := &mockServer{
		t: t,
		upgrader: websocket.Upgrader{
			Subprotocols: []string{protocol.SubprotocolBinary, protocol.SubprotocolText},
		},
		compress: wire.DefaultCompressorConfig(),
	}

	r := chi.NewRouter()
	r.Get("/v1/database/{name}/subscribe", ms.handleSubscribe)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func (ms *mockServer) send(ws *websocket.Conn, msg protocol.ServerMessage) {
	body, err := protocol.EncodeServerMessage(msg)
	if err != nil {
		ms.t.Errorf("mock encode: %v", err)
		return
	}
	frame, err := wire.EncodeFrame(body, ms.compress)
	if err != nil {
		ms.t.Errorf("mock frame: %v", err)
		return
	}
	if err := ws.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		ms.t.Logf("mock write: %v", err)
	}
}

func (ms *mockServer) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		ms.t.Error("missing Authorization header")
	}
	ws, err := ms.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ms.t.Errorf("upgrade: %v", err)
		return
	}
	defer ws.Close()

	ms.send(ws, protocol.IdentityToken{
		Identity:     protocol.Identity{Data: []byte{0xAA, 0xBB}},
		Token:        "reissued-token",
		ConnectionID: protocol.ConnectionID{Data: []byte{0x01}},
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		msg, err := protocol.DecodeClientMessage(data)
		if err != nil {
			ms.t.Errorf("mock decode: %v", err)
			return
		}
		switch m := msg.(type) {
		case protocol.Subscribe:
			ms.send(ws, protocol.InitialSubscription{
				DatabaseUpdate: protocol.DatabaseUpdate{Tables: []protocol.TableUpdate{}},
				RequestID:      m.RequestID,
			})
		case protocol.CallReducer:
			ms.send(ws, protocol.TransactionUpdate{
				Status: protocol.StatusCommitted(protocol.DatabaseUpdate{Tables: []protocol.TableUpdate{}}),
				ReducerCall: protocol.ReducerCallInfo{
					ReducerName: m.Reducer,
					Args:        m.Args,
					RequestID:   m.RequestID,
				},
			})
		case protocol.OneOffQuery:
			ms.send(ws, protocol.OneOffQueryResponse{
				MessageID: m.MessageID,
				Tables:    []protocol.OneOffTable{},
			})
		}
	}
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/database/testdb/subscribe"
}

func waitFor[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		panic("unreachable")
	}
}

func TestDialAndRoundTrip(t *testing.T) {
	srv := newMockServer(t)

	tokens := make(chan protocol.IdentityToken, 1)
	initial := make(chan protocol.InitialSubscription, 1)
	updates := make(chan protocol.TransactionUpdate, 1)
	oneOffs := make(chan protocol.OneOffQueryResponse, 1)

	cfg := DefaultConfig()
	cfg.URL = wsURL(srv)
	cfg.Token = "test-token"

	conn, err := Dial(context.Background(), cfg, nil, wire.Handlers{
		OnIdentityToken:       func(m protocol.IdentityToken) { tokens <- m },
		OnInitialSubscription: func(m protocol.InitialSubscription) { initial <- m },
		OnTransactionUpdate:   func(m protocol.TransactionUpdate) { updates <- m },
		OnOneOffQueryResponse: func(m protocol.OneOffQueryResponse) { oneOffs <- m },
	})
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if conn.Encoding() != protocol.EncodingBinary {
		t.Errorf("Encoding() = %v, want binary", conn.Encoding())
	}

	token := waitFor(t, tokens, "IdentityToken")
	if token.Token != "reissued-token" {
		t.Errorf("token = %q", token.Token)
	}

	ctx := context.Background()

	subReq, err := conn.Subscribe(ctx, []string{"SELECT * FROM player"})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	sub := waitFor(t, initial, "InitialSubscription")
	if sub.RequestID != subReq {
		t.Errorf("InitialSubscription.RequestID = %d, want %d", sub.RequestID, subReq)
	}

	callReq, err := conn.CallReducerRaw(ctx, "move", []byte{0x12, 0x00, 0x00, 0x00, 0x00}, protocol.FullUpdate)
	if err != nil {
		t.Fatalf("CallReducerRaw() error = %v", err)
	}
	upd := waitFor(t, updates, "TransactionUpdate")
	if upd.ReducerCall.RequestID != callReq {
		t.Errorf("TransactionUpdate request id = %d, want %d", upd.ReducerCall.RequestID, callReq)
	}
	if upd.Status.Committed == nil {
		t.Error("TransactionUpdate status not committed")
	}

	msgID, err := conn.OneOffQuery(ctx, "SELECT 1")
	if err != nil {
		t.Fatalf("OneOffQuery() error = %v", err)
	}
	if len(msgID) != 16 {
		t.Errorf("message id length = %d, want 16", len(msgID))
	}
	resp := waitFor(t, oneOffs, "OneOffQueryResponse")
	if string(resp.MessageID) != string(msgID) {
		t.Error("OneOffQueryResponse message id mismatch")
	}
}

func TestCallReducerEncodesArgs(t *testing.T) {
	srv := newMockServer(t)

	updates := make(chan protocol.TransactionUpdate, 1)

	registry := NewRegistry()
	if err := registry.AddReducer(moveSchema()); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.URL = wsURL(srv)
	cfg.Token = "test-token"

	conn, err := Dial(context.Background(), cfg, registry, wire.Handlers{
		OnTransactionUpdate: func(m protocol.TransactionUpdate) { updates <- m },
	})
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	args := sats.Product(sats.F32(1), sats.F32(2))
	if _, err := conn.CallReducer(context.Background(), "move", args, protocol.FullUpdate); err != nil {
		t.Fatalf("CallReducer() error = %v", err)
	}

	// The mock echoes the args blob; it must decode against the schema.
	upd := waitFor(t, updates, "TransactionUpdate")
	decoded, err := sats.Decode(upd.ReducerCall.Args, moveSchema().Params)
	if err != nil {
		t.Fatalf("echoed args decode error = %v", err)
	}
	elems, _ := decoded.Elems()
	if len(elems) != 2 {
		t.Errorf("echoed args arity = %d, want 2", len(elems))
	}

	if _, err := conn.CallReducer(context.Background(), "ghost", args, protocol.FullUpdate); err == nil {
		t.Error("CallReducer(ghost) succeeded, want unknown reducer error")
	}
}

func TestSubscriptionLifecycleMessages(t *testing.T) {
	srv := newMockServer(t)

	cfg := DefaultConfig()
	cfg.URL = wsURL(srv)
	cfg.Token = "test-token"

	conn, err := Dial(context.Background(), cfg, nil, wire.Handlers{})
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	qid := protocol.QueryID{ID: 7}

	if _, err := conn.SubscribeSingle(ctx, "SELECT * FROM player", qid); err != nil {
		t.Errorf("SubscribeSingle() error = %v", err)
	}
	if _, err := conn.SubscribeMulti(ctx, []string{"SELECT * FROM player"}, qid); err != nil {
		t.Errorf("SubscribeMulti() error = %v", err)
	}
	if _, err := conn.Unsubscribe(ctx, qid); err != nil {
		t.Errorf("Unsubscribe() error = %v", err)
	}
	if _, err := conn.UnsubscribeMulti(ctx, qid); err != nil {
		t.Errorf("UnsubscribeMulti() error = %v", err)
	}
}

func TestSendAfterClose(t *testing.T) {
	srv := newMockServer(t)

	cfg := DefaultConfig()
	cfg.URL = wsURL(srv)
	cfg.Token = "test-token"

	conn, err := Dial(context.Background(), cfg, nil, wire.Handlers{})
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	conn.Close()
	<-conn.Done()

	if _, err := conn.Subscribe(context.Background(), []string{"SELECT 1"}); err == nil {
		t.Error("Subscribe() after Close succeeded, want error")
	}
	if err := conn.Err(); err != nil {
		t.Errorf("Err() after clean Close = %v, want nil", err)
	}
}

func TestRequestIDsAreMonotonic(t *testing.T) {
	srv := newMockServer(t)

	cfg := DefaultConfig()
	cfg.URL = wsURL(srv)
	cfg.Token = "test-token"

	conn, err := Dial(context.Background(), cfg, nil, wire.Handlers{})
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	var last uint32
	for i := 0; i < 5; i++ {
		id, err := conn.Subscribe(ctx, nil)
		if err != nil {
			t.Fatalf("Subscribe() error = %v", err)
		}
		if id <= last {
			t.Errorf("request id %d not greater than %d", id, last)
		}
		last = id
	}
}
