package mkv

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// runs an external tool and returns what it wrote to stdout
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// runs the command with exec.CommandContext; stderr is folded into the error
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(string(out))
		}
		return out, fmt.Errorf("%s: %w: %s", name, err, msg)
	}
	return out, nil
}

func orExec(r Runner) Runner {
	if r == nil {
		return ExecRunner
	}
	return r
}

func orDefault(binary, fallback string) string {
	if b := strings.TrimSpace(binary); b != "" {
		return b
	}
	return fallback
}
