// Package toolchain ensures the cross-compilation toolchains for the
// configured target triples are installed before any build stage runs, and
// owns the per-triple environment overrides.
package toolchain

import (
	"context"
	"fmt"
	"strings"

	"duckci-agent/src/config"
	"duckci-agent/src/logger"
	"duckci-agent/src/shell"
)

// ProvisioningError means a required toolchain could not be installed or
// validated. It is fatal to the run and is not retried within a single run.
type ProvisioningError struct {
	Triple string
	Err    error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provisioning toolchain for %s: %v", e.Triple, e.Err)
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}

// Provisioner installs rustup targets and validates per-triple cross linkers.
type Provisioner struct {
	runner shell.Runner
	cfg    *config.PipelineConfig
	logger logger.Logger
}

// NewProvisioner creates a Provisioner for the given pipeline manifest.
func NewProvisioner(runner shell.Runner, cfg *config.PipelineConfig, log logger.Logger) *Provisioner {
	return &Provisioner{runner: runner, cfg: cfg, logger: log}
}

// Ensure installs every configured target triple and verifies that each
// triple's overridden compiler and linker binaries resolve. Any failure is a
// ProvisioningError.
func (p *Provisioner) Ensure(ctx context.Context) error {
	for _, target := range p.cfg.Targets {
		p.logger.Info("[Provisioner] Ensuring target %s", target.Triple)

		if _, err := p.runner.Run(ctx, shell.Command{
			Name: "rustup",
			Args: []string{"target", "add", target.Triple},
		}); err != nil {
			return &ProvisioningError{Triple: target.Triple, Err: err}
		}

		for _, bin := range toolBinaries(target.Env) {
			if _, err := p.runner.Run(ctx, shell.Command{
				Name: "which",
				Args: []string{bin},
			}); err != nil {
				return &ProvisioningError{
					Triple: target.Triple,
					Err:    fmt.Errorf("required tool %s not found: %w", bin, err),
				}
			}
		}
	}
	return nil
}

// Env returns the environment overrides for exactly one triple, as a slice
// ready for a shell.Command. The result is built fresh per call so one
// build's overrides can never leak into another's.
func (p *Provisioner) Env(triple string) ([]string, error) {
	target, ok := p.cfg.Target(triple)
	if !ok {
		return nil, fmt.Errorf("unknown target triple %s", triple)
	}

	env := make([]string, 0, len(target.Env))
	for key, value := range target.Env {
		env = append(env, key+"="+value)
	}
	return env, nil
}

// toolBinaries extracts the binaries named by compiler/archiver/linker
// overrides so Ensure can verify they exist.
func toolBinaries(env map[string]string) []string {
	var bins []string
	for key, value := range env {
		switch {
		case key == "CC" || key == "AR":
			bins = append(bins, value)
		case strings.HasPrefix(key, "CARGO_TARGET_") && strings.HasSuffix(key, "_LINKER"):
			bins = append(bins, value)
		}
	}
	return bins
}
