// Package claudecli integrates with the host `claude` CLI when present.
// Its absence is never fatal: callers degrade to printing the manual steps.
package claudecli

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/plugfarm/plugfarm/internal/logging"
)

const binary = "claude"

// Available reports whether the host CLI is on PATH.
func Available() bool {
	_, err := exec.LookPath(binary)
	return err == nil
}

// InstallPlugin delegates installation of an externally-hosted plugin to
// the host CLI's own marketplace mechanism.
func InstallPlugin(pluginID string) error {
	log := logging.Get("claudecli")
	log.Debug().Str("plugin", pluginID).Msg("delegating to host CLI")

	cmd := exec.Command(binary, "plugin", "install", pluginID)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("claude plugin install %s failed: %s", pluginID, msg)
	}
	return nil
}

// ManualInstructions returns the steps a user runs by hand when the host
// CLI is missing.
func ManualInstructions(pluginID string) string {
	var sb strings.Builder
	sb.WriteString("  1. Install the claude CLI (https://claude.com/claude-code)\n")
	fmt.Fprintf(&sb, "  2. Run: claude plugin install %s\n", pluginID)
	return sb.String()
}
