// Package wire frames protocol messages for the WebSocket transport.
//
// A server-to-client frame is one tag byte naming the compression scheme
// (0 none, 1 brotli, 2 gzip) followed by the compressed message body.
// Client-to-server frames are bare message bodies. Compression kicks in
// above a configurable size threshold and is dropped whenever it fails to
// shrink the body, so small messages never pay for it.
//
// The Dispatcher is the inbound half of the connection layer: it strips
// framing, decodes the message, and routes it to an application callback.
// Envelope failures are connection-fatal (ErrDesync); failures inside a
// message's opaque row payloads are scoped to whichever handler decodes
// them.
package wire
