package docker

import (
	"bytes"
	"encoding/binary"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(channel byte, payload []byte) []byte {
	buf := make([]byte, 8+len(payload))
	buf[0] = channel
	binary.BigEndian.PutUint32(buf[4:8], uint32(len(payload)))
	copy(buf[8:], payload)
	return buf
}

func TestDemultiplexStream_RoundTrip(t *testing.T) {
	var wire bytes.Buffer
	wire.Write(frame(0, []byte("in")))
	wire.Write(frame(1, []byte("hello ")))
	wire.Write(frame(2, []byte("oops")))
	wire.Write(frame(1, []byte("world")))

	out, err := DemultiplexStream(&wire, 1024)
	require.NoError(t, err)

	assert.Equal(t, []byte("in"), out.Stdin)
	assert.Equal(t, []byte("hello world"), out.Stdout)
	assert.Equal(t, []byte("oops"), out.Stderr)
}

func TestDemultiplexStream_CleanEOFYieldsAccumulated(t *testing.T) {
	var wire bytes.Buffer
	wire.Write(frame(1, []byte(`{"ok":true}`)))

	out, err := DemultiplexStream(&wire, 1024)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(out.Stdout))
}

func TestDemultiplexStream_ExactBudgetSucceeds(t *testing.T) {
	payload := bytes.Repeat([]byte("a"), 16)
	var wire bytes.Buffer
	wire.Write(frame(1, payload))

	out, err := DemultiplexStream(&wire, 16)
	require.NoError(t, err)
	assert.Len(t, out.Stdout, 16)
}

func TestDemultiplexStream_OverBudgetFails(t *testing.T) {
	payload := bytes.Repeat([]byte("a"), 17)
	var wire bytes.Buffer
	wire.Write(frame(1, payload))

	_, err := DemultiplexStream(&wire, 16)
	require.Error(t, err)
	assert.True(t, IsMaxReadSize(err))
}

func TestDemultiplexStream_UnknownChannel(t *testing.T) {
	var wire bytes.Buffer
	wire.Write(frame(9, []byte("x")))

	_, err := DemultiplexStream(&wire, 1024)
	require.Error(t, err)

	var se *StreamError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StreamErrUnknownStreamType, se.Kind)
	assert.Equal(t, byte(9), se.UnknownChannel)
}

// timeoutReader simulates a net.Conn whose Read returns a deadline-exceeded
// error after emitting some bytes, reproducing the "would-block mid-stream"
// scenario the Docker attach socket hits when max_execution_time elapses.
type timeoutReader struct {
	data []byte
	pos  int
}

func (r *timeoutReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, &net.OpError{Op: "read", Err: timeoutErr{}}
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestDemultiplexStream_TimeoutMapsToMaxExecutionTime(t *testing.T) {
	r := &timeoutReader{data: frame(1, []byte("partial"))[:4]}

	_, err := DemultiplexStream(r, 1024)
	require.Error(t, err)
	assert.True(t, IsMaxExecutionTime(err))
	assert.False(t, IsMaxReadSize(err))
}

type brokenReader struct{ pos int }

func (r *brokenReader) Read(p []byte) (int, error) {
	if r.pos == 0 {
		r.pos++
		p[0] = 1
		return 1, nil
	}
	return 0, io.ErrClosedPipe
}

func TestDemultiplexStream_NonTimeoutReadErrorIsGeneric(t *testing.T) {
	_, err := DemultiplexStream(&brokenReader{}, 1024)
	require.Error(t, err)
	assert.False(t, IsMaxExecutionTime(err))
	assert.False(t, IsMaxReadSize(err))
}

func TestDemultiplexStream_EmptyStreamIsEmptyOutput(t *testing.T) {
	out, err := DemultiplexStream(bytes.NewReader(nil), 1024)
	require.NoError(t, err)
	assert.Empty(t, out.Stdout)
	assert.Empty(t, out.Stderr)
	assert.Empty(t, out.Stdin)
}
