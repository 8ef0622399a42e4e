//go:build !windows

package host

import (
	"context"
	"strings"
	"testing"
)

func TestOSExecutor(t *testing.T) {
	ctx := context.Background()
	var ex OSExecutor

	out, err := ex.Exec(ctx, ExecCommandInput{Command: "sh", Args: []string{"-c", "echo out; echo err >&2; exit 3"}})
	if err != nil {
		t.Fatalf("Exec error: %v", err)
	}
	if out.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", out.ExitCode)
	}
	if strings.TrimSpace(out.Stdout) != "out" {
		t.Errorf("Stdout = %q", out.Stdout)
	}
	if strings.TrimSpace(out.Stderr) != "err" {
		t.Errorf("Stderr = %q", out.Stderr)
	}
}

func TestOSExecutorEnvAndDir(t *testing.T) {
	dir := t.TempDir()
	out, err := OSExecutor{}.Exec(context.Background(), ExecCommandInput{
		Command:    "sh",
		Args:       []string{"-c", "echo $GREETING; pwd"},
		Env:        map[string]string{"GREETING": "hello"},
		WorkingDir: dir,
	})
	if err != nil {
		t.Fatalf("Exec error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.Stdout), "\n")
	if len(lines) != 2 || lines[0] != "hello" {
		t.Fatalf("Stdout = %q", out.Stdout)
	}
	if !strings.HasSuffix(lines[1], dir[strings.LastIndex(dir, "/"):]) {
		t.Errorf("working dir = %q, want %q", lines[1], dir)
	}
}

func TestOSExecutorMissingBinary(t *testing.T) {
	_, err := OSExecutor{}.Exec(context.Background(), ExecCommandInput{Command: "definitely-not-a-real-binary-xyz"})
	if err == nil {
		t.Error("Exec of a missing binary should fail")
	}
}
