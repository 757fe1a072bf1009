// Package server exposes an engine over TCP.
//
// Every accepted connection gets its own engine connection: bytes read from
// the socket are fed as they arrive and the engine connection is closed when
// the peer disconnects or the server shuts down.
package server
