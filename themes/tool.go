package themes

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// runTool executes an external theme tool with a hard timeout. A non-zero
// exit surfaces the tool's stderr; a timeout is reported as such.
func runTool(ctx context.Context, timeout time.Duration, bin string, args ...string) error {
	toolCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(toolCtx, bin, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if errors.Is(toolCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s timed out after %s", bin, timeout)
	}
	msg := strings.TrimSpace(stderr.String())
	if msg == "" {
		msg = err.Error()
	}
	return fmt.Errorf("%s: %s", bin, msg)
}
