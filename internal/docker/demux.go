package docker

import (
	"errors"
	"fmt"
	"io"
	"net"
)

// StreamOutput holds the three accumulators a demultiplexed attach stream
// is split into. They are disjoint; a byte read from one mux channel is
// appended to exactly one of the three.
type StreamOutput struct {
	Stdin  []byte
	Stdout []byte
	Stderr []byte
}

// streamChannel identifies which accumulator a mux frame belongs to.
type streamChannel byte

const (
	channelStdin  streamChannel = 0
	channelStdout streamChannel = 1
	channelStderr streamChannel = 2
)

// StreamError is the C4 error taxonomy. Kind distinguishes the failure
// modes spec §4.4 enumerates; MaxReadSize and UnknownStreamType carry the
// offending value.
type StreamError struct {
	Kind           string
	MaxOutputSize  int
	UnknownChannel byte
	Err            error
}

const (
	StreamErrReadStreamType     = "read_stream_type"
	StreamErrUnknownStreamType  = "unknown_stream_type"
	StreamErrReadStreamLength   = "read_stream_length"
	StreamErrInvalidStreamLen   = "invalid_stream_length"
	StreamErrMaxExecutionTime   = "max_execution_time"
	StreamErrMaxReadSize        = "max_read_size"
	StreamErrRead               = "read"
)

func (e *StreamError) Error() string {
	switch e.Kind {
	case StreamErrReadStreamType:
		return fmt.Sprintf("failed to read stream type: %s", e.Err)
	case StreamErrUnknownStreamType:
		return fmt.Sprintf("unknown stream type: (type: %d)", e.UnknownChannel)
	case StreamErrReadStreamLength:
		return fmt.Sprintf("failed to read stream length: %s", e.Err)
	case StreamErrInvalidStreamLen:
		return fmt.Sprintf("failed to parse stream length: %s", e.Err)
	case StreamErrMaxExecutionTime:
		return "max execution time exceeded"
	case StreamErrMaxReadSize:
		return fmt.Sprintf("max output size exceeded (%d bytes)", e.MaxOutputSize)
	default:
		return e.Err.Error()
	}
}

func (e *StreamError) Unwrap() error { return e.Err }

// IsMaxExecutionTime reports whether err is the demultiplexer's execution
// deadline failure.
func IsMaxExecutionTime(err error) bool {
	var se *StreamError
	return errors.As(err, &se) && se.Kind == StreamErrMaxExecutionTime
}

// IsMaxReadSize reports whether err is the demultiplexer's output-cap failure.
func IsMaxReadSize(err error) bool {
	var se *StreamError
	return errors.As(err, &se) && se.Kind == StreamErrMaxReadSize
}

// DemultiplexStream reads Docker's attach-stream mux protocol from r until
// EOF, splitting frames into stdin/stdout/stderr accumulators, and enforces
// maxOutputSize as a combined byte budget across all three. A read timeout
// observed during this loop — the connection's read deadline was set to the
// run's max execution time — is reported as StreamErrMaxExecutionTime, not
// as a generic read failure; that conflation is deliberate (§4.4, §9).
func DemultiplexStream(r io.Reader, maxOutputSize int) (StreamOutput, error) {
	var out StreamOutput
	readSize := 0

	header := make([]byte, 8)

	for {
		_, err := io.ReadFull(r, header)
		if err != nil {
			if err == io.EOF {
				return out, nil
			}
			return out, classifyReadErr(StreamErrReadStreamType, err)
		}

		channel := streamChannel(header[0])
		switch channel {
		case channelStdin, channelStdout, channelStderr:
		default:
			return out, &StreamError{Kind: StreamErrUnknownStreamType, UnknownChannel: header[0]}
		}

		length := uint32(header[4])<<24 | uint32(header[5])<<16 | uint32(header[6])<<8 | uint32(header[7])

		payload := make([]byte, length)
		if length > 0 {
			if _, err := io.ReadFull(r, payload); err != nil {
				return out, classifyReadErr(StreamErrRead, err)
			}
		}

		switch channel {
		case channelStdin:
			out.Stdin = append(out.Stdin, payload...)
		case channelStdout:
			out.Stdout = append(out.Stdout, payload...)
		case channelStderr:
			out.Stderr = append(out.Stderr, payload...)
		}

		readSize += int(length)
		if readSize > maxOutputSize {
			return out, &StreamError{Kind: StreamErrMaxReadSize, MaxOutputSize: maxOutputSize}
		}
	}
}

// classifyReadErr maps a raw I/O failure observed mid-frame to either the
// execution-deadline error (when it's a deadline-exceeded/timeout
// condition) or a generic read error, per the timeout rule in §4.4/§9.
func classifyReadErr(fallbackKind string, err error) *StreamError {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &StreamError{Kind: StreamErrMaxExecutionTime, Err: err}
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || err == io.EOF {
		return &StreamError{Kind: StreamErrRead, Err: io.ErrUnexpectedEOF}
	}
	return &StreamError{Kind: fallbackKind, Err: err}
}
