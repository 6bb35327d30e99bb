package toolchain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"duckci-agent/src/config"
	"duckci-agent/src/logger"
	"duckci-agent/src/shell"
)

func testManifest(t *testing.T) *config.PipelineConfig {
	t.Helper()
	cfg, err := config.ParsePipeline([]byte(`binary: ducksync
reference_target: x86_64-unknown-linux-musl
targets:
  - triple: x86_64-unknown-linux-musl
  - triple: aarch64-unknown-linux-musl
    env:
      CC: aarch64-linux-gnu-gcc
      AR: aarch64-linux-gnu-ar
      CARGO_TARGET_AARCH64_UNKNOWN_LINUX_MUSL_LINKER: aarch64-linux-gnu-gcc
`))
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	return cfg
}

func TestProvisioner_EnsureAddsAllTargets(t *testing.T) {
	stub := shell.NewStubRunner()
	p := NewProvisioner(stub, testManifest(t), logger.NewSilentLogger())

	if err := p.Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	var added []string
	for _, call := range stub.Calls() {
		if call.Name == "rustup" {
			added = append(added, call.Args[2])
		}
	}
	sort.Strings(added)
	want := []string{"aarch64-unknown-linux-musl", "x86_64-unknown-linux-musl"}
	if len(added) != 2 || added[0] != want[0] || added[1] != want[1] {
		t.Errorf("rustup target add calls = %v, want %v", added, want)
	}
}

func TestProvisioner_EnsureVerifiesCrossTools(t *testing.T) {
	stub := shell.NewStubRunner()
	p := NewProvisioner(stub, testManifest(t), logger.NewSilentLogger())

	if err := p.Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	checked := make(map[string]bool)
	for _, call := range stub.Calls() {
		if call.Name == "which" {
			checked[call.Args[0]] = true
		}
	}
	if !checked["aarch64-linux-gnu-gcc"] || !checked["aarch64-linux-gnu-ar"] {
		t.Errorf("cross tools not verified: %v", checked)
	}
}

func TestProvisioner_EnsureFailureIsFatal(t *testing.T) {
	stub := shell.NewStubRunner()
	stub.Respond("rustup target", shell.StubResponse{
		Err: fmt.Errorf("could not download component"),
	})
	p := NewProvisioner(stub, testManifest(t), logger.NewSilentLogger())

	err := p.Ensure(context.Background())
	if err == nil {
		t.Fatal("expected provisioning error")
	}
	var provErr *ProvisioningError
	if !errors.As(err, &provErr) {
		t.Fatalf("error type = %T, want *ProvisioningError", err)
	}
}

func TestProvisioner_EnvIsScopedPerTriple(t *testing.T) {
	p := NewProvisioner(shell.NewStubRunner(), testManifest(t), logger.NewSilentLogger())

	armEnv, err := p.Env("aarch64-unknown-linux-musl")
	if err != nil {
		t.Fatalf("Env failed: %v", err)
	}
	if len(armEnv) != 3 {
		t.Errorf("aarch64 env = %v, want 3 overrides", armEnv)
	}

	x86Env, err := p.Env("x86_64-unknown-linux-musl")
	if err != nil {
		t.Fatalf("Env failed: %v", err)
	}
	if len(x86Env) != 0 {
		t.Errorf("x86_64 env picked up overrides from another triple: %v", x86Env)
	}

	if _, err := p.Env("riscv64gc-unknown-linux-musl"); err == nil {
		t.Error("expected error for unknown triple")
	}
}
