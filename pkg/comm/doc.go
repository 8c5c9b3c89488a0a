// Package comm provides the remote raw-channel plumbing.
package comm

// A device-side Service binds one raw debug session to a packet
// transport; an operator-side Conn submits hex sentences and collects
// the rendered dumps. Envelopes are small JSON documents so any
// tooling can speak the protocol without generated code.
//
// The channel is intentionally single-operator: the Service handles
// one request at a time, matching the session's own locking-free
// contract.
//
// Producer: operator tooling (CLI)
// Consumer: EC debug daemon
