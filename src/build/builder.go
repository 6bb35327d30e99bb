// Package build invokes the compiler for one (profile, target triple) pair,
// producing a single binary artifact or a CompileError.
package build

import (
	"context"
	"fmt"
	"path/filepath"

	"duckci-agent/src/artifact"
	"duckci-agent/src/config"
	"duckci-agent/src/logger"
	"duckci-agent/src/shell"
	"duckci-agent/src/toolchain"
)

// CompileError carries the compiler output of a failed build. Fatal to the
// build phase it belongs to.
type CompileError struct {
	Triple  string
	Profile config.Profile
	Stderr  string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compiling %s (%s): %v", e.Triple, e.Profile, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// Request identifies one build invocation.
type Request struct {
	Profile config.Profile
	Triple  string
}

// Builder runs cargo builds with triple-scoped environments. Builds within a
// profile share no mutable state and may run concurrently.
type Builder struct {
	runner      shell.Runner
	cfg         *config.PipelineConfig
	provisioner *toolchain.Provisioner
	workdir     string
	logger      logger.Logger
}

// NewBuilder creates a Builder operating in the repository checkout at
// workdir.
func NewBuilder(runner shell.Runner, cfg *config.PipelineConfig, prov *toolchain.Provisioner, workdir string, log logger.Logger) *Builder {
	return &Builder{
		runner:      runner,
		cfg:         cfg,
		provisioner: prov,
		workdir:     workdir,
		logger:      log,
	}
}

// Build compiles the binary for the requested profile and triple. The env
// overrides for the triple are passed explicitly to this invocation only.
func (b *Builder) Build(ctx context.Context, req Request) (artifact.Artifact, error) {
	env, err := b.provisioner.Env(req.Triple)
	if err != nil {
		return artifact.Artifact{}, &CompileError{Triple: req.Triple, Profile: req.Profile, Err: err}
	}

	args := []string{"build", "--target", req.Triple}
	if req.Profile == config.ProfileRelease {
		args = append(args, "--release")
	}

	b.logger.Info("[Builder] cargo %v (%s)", args, req.Triple)

	result, err := b.runner.Run(ctx, shell.Command{
		Dir:  b.workdir,
		Env:  env,
		Name: "cargo",
		Args: args,
	})
	if err != nil {
		return artifact.Artifact{}, &CompileError{
			Triple:  req.Triple,
			Profile: req.Profile,
			Stderr:  result.Stderr,
			Err:     err,
		}
	}

	return artifact.Artifact{
		Name:    b.cfg.Binary,
		Triple:  req.Triple,
		Profile: string(req.Profile),
		Path:    filepath.Join(b.workdir, "target", req.Triple, string(req.Profile), b.cfg.Binary),
	}, nil
}
