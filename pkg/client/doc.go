// Package client maintains a WebSocket connection to a SpacetimeDB
// database: it calls reducers, manages subscriptions, and routes server
// pushes to application callbacks.
//
// A connection is built from three pieces. The Config carries transport
// settings and the ambient stack (logger, metrics, tracer). The Registry
// carries the table and reducer schemas the application was generated
// against; it is constructed once at startup and passed by reference, so
// schema lookups never touch global state. The wire.Handlers carry the
// application callbacks for each server message kind.
//
//	registry := client.NewRegistry()
//	registry.AddTable(client.TableSchema{Name: "player", Row: playerType})
//	registry.AddReducer(client.ReducerSchema{Name: "move", Params: moveParams})
//
//	conn, err := client.Dial(ctx, cfg, registry, wire.Handlers{
//	    OnTransactionUpdate: onUpdate,
//	})
//
// Sends are safe for concurrent use. Inbound messages arrive on a single
// receive loop, so handlers run sequentially and need no locking among
// themselves; a handler that blocks stalls the connection.
package client
