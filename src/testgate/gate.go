// Package testgate runs the test suite against the reference target. Its
// outcome gates everything downstream: no release artifact may exist for a
// commit whose tests did not pass on the reference target.
//
// Tests run only on the primary architecture, never on the secondary
// cross-compiled target. That mirrors the observed pipeline and is a scope
// decision, not an oversight.
package testgate

import (
	"context"
	"fmt"

	"duckci-agent/src/config"
	"duckci-agent/src/logger"
	"duckci-agent/src/shell"
	"duckci-agent/src/toolchain"
)

// TestFailureError means the suite failed on the reference target. Fatal to
// the release phase.
type TestFailureError struct {
	Triple string
	Report *Report
	Err    error
}

func (e *TestFailureError) Error() string {
	if e.Report != nil && e.Report.Failed > 0 {
		return fmt.Sprintf("test gate on %s: %d of %d tests failed", e.Triple, e.Report.Failed, e.Report.Total())
	}
	return fmt.Sprintf("test gate on %s: %v", e.Triple, e.Err)
}

func (e *TestFailureError) Unwrap() error {
	return e.Err
}

// Gate runs cargo test on the reference target.
type Gate struct {
	runner      shell.Runner
	cfg         *config.PipelineConfig
	provisioner *toolchain.Provisioner
	workdir     string
	logger      logger.Logger
}

// NewGate creates a Gate operating in the repository checkout at workdir.
func NewGate(runner shell.Runner, cfg *config.PipelineConfig, prov *toolchain.Provisioner, workdir string, log logger.Logger) *Gate {
	return &Gate{runner: runner, cfg: cfg, provisioner: prov, workdir: workdir, logger: log}
}

// Run executes the suite against the reference target and returns its
// parsed report. A failing suite returns a TestFailureError along with the
// report.
func (g *Gate) Run(ctx context.Context) (*Report, error) {
	triple := g.cfg.ReferenceTarget

	env, err := g.provisioner.Env(triple)
	if err != nil {
		return nil, &TestFailureError{Triple: triple, Err: err}
	}

	g.logger.Info("[TestGate] cargo test --target %s", triple)

	result, runErr := g.runner.Run(ctx, shell.Command{
		Dir:  g.workdir,
		Env:  env,
		Name: "cargo",
		Args: []string{"test", "--target", triple},
	})

	report := ParseReport(result.Stdout)
	if runErr != nil {
		return report, &TestFailureError{Triple: triple, Report: report, Err: runErr}
	}
	if report.Failed > 0 {
		return report, &TestFailureError{Triple: triple, Report: report,
			Err: fmt.Errorf("%d failing tests", report.Failed)}
	}

	g.logger.Info("[TestGate] %d passed, %d failed", report.Passed, report.Failed)
	return report, nil
}
