package executor

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"

	"github.com/google/uuid"
	"github.com/voidrunnerhq/coderunner/internal/docker"
)

// Run drives one container through its full lifecycle: create, start,
// attach and exchange the payload, then guaranteed removal. keepContainer
// skips the terminating DELETE — it exists only for local debugging and
// defaults to false. Each call tags its log lines with a fresh run_id.
func Run(socketCfg docker.SocketConfig, policy ContainerPolicy, req RunRequest, keepContainer bool, logger *slog.Logger) (RunOutcome, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run_id", uuid.New().String())

	containerConfig := PrepareContainerConfig(req.Image, policy)

	created, err := docker.WithStream(socketCfg, func(conn net.Conn) (docker.ContainerCreatedResponse, error) {
		return docker.CreateContainer(conn, containerConfig)
	})
	if err != nil {
		return nil, &RunError{Kind: classifySocketOrCreate(err), Cause: err}
	}

	containerID := created.Id

	outcome, runErr := runWithContainer(socketCfg, req, containerID)

	if !keepContainer {
		_, cleanupErr := docker.WithStream(socketCfg, func(conn net.Conn) (struct{}, error) {
			return struct{}{}, docker.RemoveContainer(conn, containerID)
		})
		if cleanupErr != nil {
			logger.Warn("failed to remove container", "container_id", containerID, "error", cleanupErr)
		}
	}

	return outcome, runErr
}

func runWithContainer(socketCfg docker.SocketConfig, req RunRequest, containerID string) (RunOutcome, error) {
	_, err := docker.WithStream(socketCfg, func(conn net.Conn) (struct{}, error) {
		return struct{}{}, docker.StartContainer(conn, containerID)
	})
	if err != nil {
		return nil, &RunError{Kind: ErrStartContainer, Cause: err}
	}

	execCfg := socketCfg.WithReadTimeout(req.Limits.MaxExecutionTime)

	return docker.WithStream(execCfg, func(conn net.Conn) (RunOutcome, error) {
		return runCode(conn, containerID, req)
	})
}

// runCode attaches to the container, writes the payload, half-closes the
// write side so the runner observes EOF on stdin, then demultiplexes the
// reply and validates its shape.
func runCode(conn net.Conn, containerID string, req RunRequest) (RunOutcome, error) {
	reader, err := docker.AttachContainer(conn, containerID)
	if err != nil {
		return nil, &RunError{Kind: ErrAttachContainer, Cause: err}
	}

	if err := json.NewEncoder(conn).Encode(req.Payload); err != nil {
		return nil, &RunError{Kind: ErrSerializePayload, Cause: err}
	}

	// Shutting down the write half triggers EOF on the container's stdin;
	// without this the runner blocks forever waiting for more input.
	_ = docker.HalfCloseWrite(conn)

	output, err := docker.DemultiplexStream(reader, req.Limits.MaxOutputSize)
	if err != nil {
		return nil, classifyStreamError(err)
	}

	if len(output.Stdin) != 0 {
		return nil, &RunError{Kind: ErrStreamStdinUnexpected, Bytes: output.Stdin}
	}
	if len(output.Stderr) != 0 {
		return nil, &RunError{Kind: ErrStreamStderr, Bytes: output.Stderr}
	}

	var outcome RunOutcome
	if err := json.Unmarshal(output.Stdout, &outcome); err != nil {
		return nil, &RunError{Kind: ErrStreamStdoutDecode, Cause: err}
	}

	return outcome, nil
}

func classifyStreamError(err error) *RunError {
	switch {
	case docker.IsMaxExecutionTime(err):
		return &RunError{Kind: ErrReadStreamExecTime, Cause: err}
	case docker.IsMaxReadSize(err):
		return &RunError{Kind: ErrReadStreamMaxSize, Cause: err}
	default:
		return &RunError{Kind: ErrReadStreamOther, Cause: err}
	}
}

func classifySocketOrCreate(err error) RunErrorKind {
	var socketErr *docker.SocketError
	if errors.As(err, &socketErr) {
		return ErrUnixSocket
	}
	return ErrCreateContainer
}
