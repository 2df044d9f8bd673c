package sandbox

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

func init() {
	Register("seatbelt", seatbeltBackend{})
}

// seatbeltBackend runs the agent process under macOS's sandbox-exec with a
// generated profile restricting filesystem and network access. It is the
// lightest-weight isolation option on macOS development machines, trading
// the stronger guarantees of a container for near-zero startup latency.
type seatbeltBackend struct{}

func (seatbeltBackend) Launch(ctx context.Context, key string, cfg Config, binary string, args []string) (Instance, error) {
	profile, err := os.CreateTemp("", "ax-seatbelt-*.sb")
	if err != nil {
		return nil, fmt.Errorf("sandbox(seatbelt): write profile: %w", err)
	}
	if _, err := profile.WriteString(seatbeltProfile(cfg)); err != nil {
		profile.Close()
		return nil, fmt.Errorf("sandbox(seatbelt): write profile: %w", err)
	}
	profile.Close()

	fullArgs := append([]string{"-f", profile.Name(), binary}, args...)
	cmd := exec.Command("sandbox-exec", fullArgs...)
	cmd.Env = buildEnv(cfg)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("sandbox(seatbelt): stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("sandbox(seatbelt): stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("sandbox(seatbelt): start: %w", err)
	}
	return &subprocessInstance{cmd: cmd, id: key, stdin: stdin, stdout: stdout}, nil
}

// seatbeltProfile renders a minimal Scheme sandbox profile: deny by
// default, allow process execution and the workspace path per
// WorkspaceAccess, deny network unless explicitly enabled.
func seatbeltProfile(cfg Config) string {
	var b []byte
	b = append(b, "(version 1)\n(deny default)\n(allow process-fork)\n(allow process-exec)\n"...)
	b = append(b, "(allow file-read*)\n"...)
	switch cfg.WorkspaceAccess {
	case AccessRW:
		b = append(b, "(allow file-write* (subpath \"/workspace\"))\n"...)
	case AccessRO, AccessNone:
		// read-only or no workspace: file-read* above already covers RO
	}
	if cfg.NetworkEnabled {
		b = append(b, "(allow network*)\n"...)
	}
	return string(b)
}
