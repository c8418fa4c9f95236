// Package docker implements a handwritten Docker Engine API client: a
// minimal HTTP/1.1 client over a unix stream socket, the wire structs for
// the container lifecycle calls, and the attach-stream demultiplexer.
//
// None of this goes through the official Docker SDK — the whole point is
// to speak the Engine's wire protocol directly over one connection per
// request, the way the daemon itself expects a raw client to.
package docker

import (
	"fmt"
	"net"
	"time"
)

// SocketConfig describes how to reach the Docker daemon and how long a
// single connection is allowed to block on I/O. It is immutable; callers
// that need a different read deadline (e.g. to bound one attach phase by
// a run's execution limit) clone it with WithReadTimeout.
type SocketConfig struct {
	Path         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// WithReadTimeout returns a copy of cfg with ReadTimeout overridden. Used by
// the run orchestrator to bound the attach phase by the request's
// max execution time without touching the create/start/remove timeouts.
func (cfg SocketConfig) WithReadTimeout(d time.Duration) SocketConfig {
	cfg.ReadTimeout = d
	return cfg
}

// SocketError wraps a failure to connect to or configure the Docker unix
// socket. Op names which step failed ("connect" or "set_timeout").
type SocketError struct {
	Op  string
	Err error
}

func (e *SocketError) Error() string {
	switch e.Op {
	case "connect":
		return fmt.Sprintf("failed to connect to docker unix socket: %s", e.Err)
	default:
		return fmt.Sprintf("failed to set timeout on unix socket: %s", e.Err)
	}
}

func (e *SocketError) Unwrap() error { return e.Err }

// WithStream connects to the configured unix socket, applies the
// configured read/write deadlines, runs fn against the live connection,
// and guarantees the connection is shut down and closed before returning —
// regardless of whether fn succeeded. Exactly one connection is made per
// call; the net.Conn never escapes fn.
func WithStream[T any](cfg SocketConfig, fn func(conn net.Conn) (T, error)) (T, error) {
	var zero T

	conn, err := net.Dial("unix", cfg.Path)
	if err != nil {
		return zero, &SocketError{Op: "connect", Err: err}
	}
	defer func() {
		_ = conn.Close()
	}()

	if err := conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout)); err != nil {
		return zero, &SocketError{Op: "set_timeout", Err: err}
	}
	if err := conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout)); err != nil {
		return zero, &SocketError{Op: "set_timeout", Err: err}
	}

	return fn(conn)
}

// HalfCloseWriter is satisfied by connections (such as *net.UnixConn) that
// support shutting down only the write half. The attach phase uses this to
// signal EOF on the container's stdin after writing the payload, without
// tearing down the read half that the demultiplexer still needs.
type HalfCloseWriter interface {
	CloseWrite() error
}

// HalfCloseWrite shuts down the write side of conn if it supports it. It is
// a no-op (returning nil) for connections that don't — callers that rely on
// this to unblock a peer's read should only be passed connections obtained
// from WithStream, which are always *net.UnixConn in production.
func HalfCloseWrite(conn net.Conn) error {
	if hc, ok := conn.(HalfCloseWriter); ok {
		return hc.CloseWrite()
	}
	return nil
}
