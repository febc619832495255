// Package protocol defines the SpacetimeDB client/server message set and
// its two wire encodings.
//
// Every message is an enum on the wire: a variant index naming the message
// kind, then a struct payload of named fields. The binary encoding writes
// that enum in BSATN; the text encoding wraps the payload in a single-key
// JSON object naming the variant, {"CallReducer": {...}}. Which encoding a
// connection uses is negotiated as a WebSocket subprotocol
// (v1.bsatn.spacetimedb or v1.json.spacetimedb) and never changes for the
// connection's lifetime.
//
// # Message Flow
//
//	Client                              Server
//	  │                                    │
//	  │<──── IdentityToken ────────────────│
//	  │                                    │
//	  │───── Subscribe / SubscribeMulti ──>│
//	  │<──── InitialSubscription ──────────│
//	  │<──── SubscribeMultiApplied ────────│
//	  │                                    │
//	  │───── CallReducer ─────────────────>│
//	  │<──── TransactionUpdate ────────────│
//	  │                                    │
//	  │───── OneOffQuery ─────────────────>│
//	  │<──── OneOffQueryResponse ──────────│
//
// # Forward Compatibility
//
// Decoders skip unknown struct fields so that a client keeps working
// against a newer server that adds fields. An unknown message variant is
// reported as ErrUnknownVariant and left to the caller; because the binary
// stream has no per-message length envelope, the connection layer must
// treat it as a desync and close the connection.
//
// # Rows
//
// Table rows inside updates are carried as opaque BSATN blobs. Decoding a
// row against its table schema is the job of the sats package and happens
// lazily, so a subscriber that only counts rows never pays for full
// decodes.
package protocol
