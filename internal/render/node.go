package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/decknotes/internal/metrics"
)

// Renderer turns annotation text into a vector PDF fragment sized to the
// target rectangle. The mechanism behind it (subprocess, RPC, embedded
// library) is an implementation detail.
type Renderer interface {
	Render(ctx context.Context, text string, width, height float64) ([]byte, error)
}

// NodeRenderer invokes an external Node script. The script reads annotation
// text (UTF-8) on stdin, receives the target size via NOTE_WIDTH and
// NOTE_HEIGHT (integer page units) in its environment, and writes PDF bytes
// to stdout. Any non-zero exit is fatal for the run.
type NodeRenderer struct {
	NodeBin string
	Script  string
	Timeout time.Duration
}

func NewNodeRenderer(nodeBin, script string, timeout time.Duration) *NodeRenderer {
	if nodeBin == "" {
		nodeBin = "node"
	}
	return &NodeRenderer{NodeBin: nodeBin, Script: script, Timeout: timeout}
}

// CheckInstallation verifies the Node binary and the renderer script exist
// before any page is processed.
func (r *NodeRenderer) CheckInstallation() error {
	if _, err := exec.LookPath(r.NodeBin); err != nil {
		return fmt.Errorf("node binary %q not found, install Node.js first: %w", r.NodeBin, err)
	}
	if _, err := os.Stat(r.Script); err != nil {
		return fmt.Errorf("renderer script %q not found: %w", r.Script, err)
	}
	return nil
}

func (r *NodeRenderer) Render(ctx context.Context, text string, width, height float64) ([]byte, error) {
	start := time.Now()

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.NodeBin, r.Script)
	cmd.Stdin = strings.NewReader(text)
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("NOTE_WIDTH=%d", int(width)),
		fmt.Sprintf("NOTE_HEIGHT=%d", int(height)),
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	metrics.ObserveRender(time.Since(start))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("renderer timed out after %v", r.Timeout)
		}
		diag := strings.TrimSpace(stderr.String())
		log.Error().Str("script", r.Script).Str("stderr", diag).Msg("fragment renderer failed")
		if diag != "" {
			return nil, fmt.Errorf("renderer %s failed: %w: %s", r.Script, err, diag)
		}
		return nil, fmt.Errorf("renderer %s failed: %w", r.Script, err)
	}

	out := stdout.Bytes()
	if len(out) == 0 {
		return nil, fmt.Errorf("renderer %s produced no output", r.Script)
	}
	log.Debug().Int("bytes", len(out)).Dur("duration", time.Since(start)).Msg("rendered note fragment")
	return out, nil
}
