package docker

import (
	"bufio"
	"fmt"
	"io"
)

// DockerCreateBody is the wire body for POST /containers/create. Field
// names are PascalCase because that's what the Docker Engine API expects —
// not Go convention, the actual JSON the daemon parses.
type DockerCreateBody struct {
	Hostname        string     `json:"Hostname"`
	User            string     `json:"User"`
	AttachStdin     bool       `json:"AttachStdin"`
	AttachStdout    bool       `json:"AttachStdout"`
	AttachStderr    bool       `json:"AttachStderr"`
	Tty             bool       `json:"Tty"`
	OpenStdin       bool       `json:"OpenStdin"`
	StdinOnce       bool       `json:"StdinOnce"`
	Image           string     `json:"Image"`
	NetworkDisabled bool       `json:"NetworkDisabled"`
	HostConfig      HostConfig `json:"HostConfig"`
}

type HostConfig struct {
	Memory         int64             `json:"Memory"`
	Privileged     bool              `json:"Privileged"`
	CapAdd         []string          `json:"CapAdd"`
	CapDrop        []string          `json:"CapDrop"`
	Ulimits        []Ulimit          `json:"Ulimits"`
	ReadonlyRootfs bool              `json:"ReadonlyRootfs"`
	Tmpfs          map[string]string `json:"Tmpfs,omitempty"`
}

type Ulimit struct {
	Name string `json:"Name"`
	Soft int64  `json:"Soft"`
	Hard int64  `json:"Hard"`
}

// ContainerCreatedResponse is the body of a successful create call.
type ContainerCreatedResponse struct {
	Id       string   `json:"Id"`
	Warnings []string `json:"Warnings"`
}

// VersionResponse is the body of GET /version.
type VersionResponse struct {
	Version       string                     `json:"Version"`
	APIVersion    string                     `json:"ApiVersion"`
	GitCommit     string                     `json:"GitCommit"`
	GoVersion     string                     `json:"GoVersion"`
	Os            string                     `json:"Os"`
	Arch          string                     `json:"Arch"`
	KernelVersion string                     `json:"KernelVersion"`
	BuildTime     string                     `json:"BuildTime"`
	Platform      VersionPlatformResponse    `json:"Platform"`
	Components    []VersionComponentResponse `json:"Components"`
}

type VersionPlatformResponse struct {
	Name string `json:"Name"`
}

type VersionComponentResponse struct {
	Name    string `json:"Name"`
	Version string `json:"Version"`
}

func commonHeaders() []Header {
	return []Header{
		{Name: "Host", Value: "127.0.0.1"},
		{Name: "Connection", Value: "close"},
	}
}

func jsonRequestHeaders(bodyLen int) []Header {
	return append(commonHeaders(),
		Header{Name: "Content-Type", Value: "application/json"},
		Header{Name: "Accept", Value: "application/json"},
		Header{Name: "Content-Length", Value: fmt.Sprintf("%d", bodyLen)},
	)
}

func acceptJSONHeaders() []Header {
	return append(commonHeaders(), Header{Name: "Accept", Value: "application/json"})
}

// VersionRequest builds GET /version.
func VersionRequest() Request {
	return Request{
		Method:  "GET",
		Path:    "/version",
		Headers: acceptJSONHeaders(),
		Body:    EmptyBody(),
	}
}

// Version sends GET /version over rw and decodes the daemon's version info.
func Version(rw io.ReadWriter) (VersionResponse, error) {
	return SendRequest[VersionResponse](rw, VersionRequest())
}

// CreateContainerRequest builds POST /containers/create.
func CreateContainerRequest(cfg DockerCreateBody) (Request, error) {
	body, err := JSONBody(cfg)
	if err != nil {
		return Request{}, err
	}

	return Request{
		Method:  "POST",
		Path:    "/containers/create",
		Headers: jsonRequestHeaders(body.Len()),
		Body:    body,
	}, nil
}

// CreateContainer issues POST /containers/create over rw.
func CreateContainer(rw io.ReadWriter, cfg DockerCreateBody) (ContainerCreatedResponse, error) {
	req, err := CreateContainerRequest(cfg)
	if err != nil {
		return ContainerCreatedResponse{}, wrapErr("prepare_request", err)
	}

	return SendRequest[ContainerCreatedResponse](rw, req)
}

// StartContainerRequest builds POST /containers/{id}/start.
func StartContainerRequest(containerID string) Request {
	return Request{
		Method:  "POST",
		Path:    fmt.Sprintf("/containers/%s/start", containerID),
		Headers: acceptJSONHeaders(),
		Body:    EmptyBody(),
	}
}

// StartContainer issues POST /containers/{id}/start over rw.
func StartContainer(rw io.ReadWriter, containerID string) error {
	_, err := SendRequest[emptyResponse](rw, StartContainerRequest(containerID))
	return err
}

// RemoveContainerRequest builds DELETE /containers/{id}?v=1&force=1.
func RemoveContainerRequest(containerID string) Request {
	return Request{
		Method:  "DELETE",
		Path:    fmt.Sprintf("/containers/%s?v=1&force=1", containerID),
		Headers: acceptJSONHeaders(),
		Body:    EmptyBody(),
	}
}

// RemoveContainer issues DELETE /containers/{id}?v=1&force=1 over rw.
func RemoveContainer(rw io.ReadWriter, containerID string) error {
	_, err := SendRequest[emptyResponse](rw, RemoveContainerRequest(containerID))
	return err
}

// AttachContainerRequest builds POST /containers/{id}/attach?stream=1&stdout=1&stdin=1&stderr=1.
func AttachContainerRequest(containerID string) Request {
	return Request{
		Method:  "POST",
		Path:    fmt.Sprintf("/containers/%s/attach?stream=1&stdout=1&stdin=1&stderr=1", containerID),
		Headers: commonHeaders(),
		Body:    EmptyBody(),
	}
}

// AttachContainer sends the attach request over rw and returns the buffered
// reader positioned immediately after the HTTP response head. After this
// call returns, the same connection carries the live mux stream (§4.4); the
// caller must keep reading from the returned reader, not from rw directly,
// since bufio may already have buffered mux bytes past the head.
func AttachContainer(rw io.ReadWriter, containerID string) (*bufio.Reader, error) {
	_, _, reader, err := sendAndReadHead(rw, AttachContainerRequest(containerID))
	if err != nil {
		return nil, err
	}
	return reader, nil
}

// emptyResponse decodes successfully regardless of body shape — used for
// calls whose 2xx response carries no data the caller needs.
type emptyResponse struct{}
