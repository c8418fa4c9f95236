// Package executor drives one Docker container lifecycle end to end:
// create, start, attach, exchange a JSON payload over the mux stream, and
// guaranteed removal. It owns the container-policy-to-wire-config mapping
// and the run-level error taxonomy; internal/docker supplies the transport.
package executor

import "time"

// ContainerPolicy is the service-wide shape every run's container is built
// from. It never varies per request except for the image name and the
// caller's limits.
type ContainerPolicy struct {
	Hostname string
	User     string

	MemoryBytes     int64
	NetworkDisabled bool

	UlimitNofileSoft int64
	UlimitNofileHard int64
	UlimitNprocSoft  int64
	UlimitNprocHard  int64

	CapAdd  []string
	CapDrop []string

	ReadonlyRootfs bool

	TmpDir  *Tmpfs
	WorkDir *Tmpfs
}

// Tmpfs is a single tmpfs mount: the container path and its mount options
// string (e.g. "rw,noexec,nosuid,size=64m").
type Tmpfs struct {
	Path    string
	Options string
}

// TmpfsMounts returns the Docker Tmpfs map built from whichever of TmpDir
// and WorkDir are present.
func (p ContainerPolicy) TmpfsMounts() map[string]string {
	mounts := make(map[string]string)
	for _, t := range []*Tmpfs{p.TmpDir, p.WorkDir} {
		if t != nil {
			mounts[t.Path] = t.Options
		}
	}
	if len(mounts) == 0 {
		return nil
	}
	return mounts
}

// RunLimits bounds a single run: the wall-clock window the attach phase is
// allowed, and the combined byte budget across stdin/stdout/stderr.
type RunLimits struct {
	MaxExecutionTime time.Duration
	MaxOutputSize    int
}

// RunRequest is everything one run needs beyond the process-wide socket
// config and container policy: the image to run, the payload to write to
// the container's stdin, and the limits that bound it.
type RunRequest struct {
	Image   string
	Payload any
	Limits  RunLimits
}

// RunOutcome is the decoded JSON object a successful run's container
// printed to stdout.
type RunOutcome map[string]any
