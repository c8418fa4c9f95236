package executor

import "github.com/voidrunnerhq/coderunner/internal/docker"

// PrepareContainerConfig maps a ContainerPolicy and an image name onto the
// Docker create-container wire body. The attach/tty/stdin fields are fixed
// by the engine's needs, not by policy — every run attaches all three
// streams, runs without a tty, and opens stdin for exactly one write.
func PrepareContainerConfig(image string, policy ContainerPolicy) docker.DockerCreateBody {
	capAdd := policy.CapAdd
	if capAdd == nil {
		capAdd = []string{}
	}
	capDrop := policy.CapDrop
	if capDrop == nil {
		capDrop = []string{}
	}

	return docker.DockerCreateBody{
		Hostname:        policy.Hostname,
		User:            policy.User,
		AttachStdin:     true,
		AttachStdout:    true,
		AttachStderr:    true,
		Tty:             false,
		OpenStdin:       true,
		StdinOnce:       true,
		Image:           image,
		NetworkDisabled: policy.NetworkDisabled,
		HostConfig: docker.HostConfig{
			Memory:     policy.MemoryBytes,
			Privileged: false,
			CapAdd:     capAdd,
			CapDrop:    capDrop,
			Ulimits: []docker.Ulimit{
				{Name: "nofile", Soft: policy.UlimitNofileSoft, Hard: policy.UlimitNofileHard},
				{Name: "nproc", Soft: policy.UlimitNprocSoft, Hard: policy.UlimitNprocHard},
			},
			ReadonlyRootfs: policy.ReadonlyRootfs,
			Tmpfs:          policy.TmpfsMounts(),
		},
	}
}
