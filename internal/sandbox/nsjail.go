package sandbox

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"syscall"
)

func init() {
	Register("nsjail", nsjailBackend{})
}

// nsjailBackend runs the agent process under Google's nsjail, using Linux
// namespaces and cgroups for isolation. This is the preferred backend for
// Linux server deployments that want container-grade isolation without a
// full Docker daemon.
type nsjailBackend struct{}

func (nsjailBackend) Launch(ctx context.Context, key string, cfg Config, binary string, args []string) (Instance, error) {
	nsArgs := []string{"--mode", "o", "--disable_proc"}
	if !cfg.NetworkEnabled {
		nsArgs = append(nsArgs, "--disable_clone_newnet=false")
	}
	if cfg.MemoryMB > 0 {
		nsArgs = append(nsArgs, "--rlimit_as", strconv.Itoa(cfg.MemoryMB))
	}
	if cfg.TimeoutSec > 0 {
		nsArgs = append(nsArgs, "--time_limit", strconv.Itoa(cfg.TimeoutSec))
	}
	if cfg.WorkspaceAccess != AccessNone {
		ro := "0"
		if cfg.WorkspaceAccess == AccessRO {
			ro = "1"
		}
		nsArgs = append(nsArgs, "--bindmount"+mountFlagSuffix(ro), "/workspace")
	}
	nsArgs = append(nsArgs, "--", binary)
	nsArgs = append(nsArgs, args...)

	cmd := exec.Command("nsjail", nsArgs...)
	cmd.Env = buildEnv(cfg)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("sandbox(nsjail): stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("sandbox(nsjail): stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("sandbox(nsjail): start: %w", err)
	}
	return &subprocessInstance{cmd: cmd, id: key, stdin: stdin, stdout: stdout}, nil
}

func mountFlagSuffix(ro string) string {
	if ro == "1" {
		return "_ro"
	}
	return ""
}
