package executor

import (
	"fmt"
)

// RunError is the run orchestrator's error taxonomy (§7). Kind selects
// which phase failed; Cause carries the underlying error from
// internal/docker or the JSON codec. Exactly one RunError is returned per
// failed run; it is never retried or combined with another.
type RunError struct {
	Kind  RunErrorKind
	Cause error

	// Bytes carries the offending payload for the two kinds that surface
	// the runner's own output as the error (unexpected stdin echo, stderr).
	Bytes []byte
}

type RunErrorKind string

const (
	ErrUnixSocket           RunErrorKind = "unix_socket"
	ErrCreateContainer      RunErrorKind = "create_container"
	ErrStartContainer       RunErrorKind = "start_container"
	ErrAttachContainer      RunErrorKind = "attach_container"
	ErrSerializePayload     RunErrorKind = "serialize_payload"
	ErrReadStreamExecTime   RunErrorKind = "read_stream_exec_time"
	ErrReadStreamMaxSize    RunErrorKind = "read_stream_max_size"
	ErrReadStreamOther      RunErrorKind = "read_stream_other"
	ErrStreamStdinUnexpected RunErrorKind = "stream_stdin_unexpected"
	ErrStreamStderr         RunErrorKind = "stream_stderr"
	ErrStreamStdoutDecode   RunErrorKind = "stream_stdout_decode"
)

func (e *RunError) Error() string {
	switch e.Kind {
	case ErrUnixSocket:
		return fmt.Sprintf("unix socket failure: %s", e.Cause)
	case ErrCreateContainer:
		return fmt.Sprintf("failed to create container: %s", e.Cause)
	case ErrStartContainer:
		return fmt.Sprintf("failed to start container: %s", e.Cause)
	case ErrAttachContainer:
		return fmt.Sprintf("failed to attach to container: %s", e.Cause)
	case ErrSerializePayload:
		return fmt.Sprintf("failed to send payload to stream: %s", e.Cause)
	case ErrReadStreamExecTime:
		return "execution exceeded max execution time"
	case ErrReadStreamMaxSize:
		return fmt.Sprintf("output exceeded max output size: %s", e.Cause)
	case ErrReadStreamOther:
		return fmt.Sprintf("failed while reading stream: %s", e.Cause)
	case ErrStreamStdinUnexpected:
		return fmt.Sprintf("code runner returned unexpected stdin data: %s", string(e.Bytes))
	case ErrStreamStderr:
		return fmt.Sprintf("code runner failed with the following message: %s", string(e.Bytes))
	case ErrStreamStdoutDecode:
		return fmt.Sprintf("failed to decode json returned from code runner: %s", e.Cause)
	default:
		return fmt.Sprintf("run failed: %s", e.Cause)
	}
}

func (e *RunError) Unwrap() error { return e.Cause }

// StatusCode and Code implement the front-end classification table of §7:
// each error kind carries its own suggested HTTP status and error code.
func (e *RunError) StatusCode() int {
	switch e.Kind {
	case ErrCreateContainer,
		ErrSerializePayload,
		ErrReadStreamExecTime,
		ErrReadStreamMaxSize:
		return 400
	default:
		return 500
	}
}

func (e *RunError) Code() string {
	switch e.Kind {
	case ErrUnixSocket:
		return "docker.unixsocket"
	case ErrCreateContainer:
		return "docker.container.create"
	case ErrStartContainer:
		return "docker.container.start"
	case ErrAttachContainer:
		return "docker.container.attach"
	case ErrSerializePayload:
		return "docker.container.stream.payload.serialize"
	case ErrReadStreamExecTime:
		return "limits.execution_time"
	case ErrReadStreamMaxSize:
		return "limits.read.size"
	case ErrReadStreamOther:
		return "docker.container.stream.read"
	case ErrStreamStdinUnexpected:
		return "coderunner.stdin"
	case ErrStreamStderr:
		return "coderunner.stderr"
	case ErrStreamStdoutDecode:
		return "coderunner.stdout.decode"
	default:
		return "coderunner.unknown"
	}
}
