package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is a build profile recognized by the pipeline.
type Profile string

const (
	ProfileDebug   Profile = "debug"
	ProfileRelease Profile = "release"
)

// Target describes one cross-compilation target triple and the environment
// overrides scoped to it. Overrides for one triple are never visible to the
// build of another.
type Target struct {
	// Triple is the (architecture, runtime-ABI) identifier,
	// e.g. "aarch64-unknown-linux-musl".
	Triple string `yaml:"triple"`
	// Env holds per-triple overrides: compiler binary, archiver binary,
	// linker flags. Keys are raw environment variable names.
	Env map[string]string `yaml:"env,omitempty"`
}

// CacheConfig names the manifests that key the two cache namespaces.
type CacheConfig struct {
	// DependencyManifest is the lockfile whose digest keys the
	// dependency-registry cache (e.g. Cargo.lock).
	DependencyManifest string `yaml:"dependency_manifest"`
	// BuildManifest is the build-configuration manifest whose digest keys
	// the compiled-artifact cache (e.g. Cargo.toml).
	BuildManifest string `yaml:"build_manifest"`
}

// ArtifactConfig names the published artifact collections per profile.
type ArtifactConfig struct {
	Debug   string `yaml:"debug"`
	Release string `yaml:"release"`
}

// ReviewBotConfig carries the options shared by both dispatcher entry states.
type ReviewBotConfig struct {
	// Model is the identifier of the AI model used for reviews.
	Model string `yaml:"model"`
	// Endpoint is the AI reviewer backend URL.
	Endpoint string `yaml:"endpoint"`
	// Exclude lists path globs stripped from the diff before submission
	// (manifests, lockfiles, documentation).
	Exclude []string `yaml:"exclude"`
}

// PipelineConfig is the parsed duckci.yaml manifest.
type PipelineConfig struct {
	// Repository in "owner/name" form.
	Repository string `yaml:"repository"`
	// Binary is the name of the binary produced by the build (e.g. ducksync).
	Binary string `yaml:"binary"`
	// ReferenceTarget is the triple the test gate runs against.
	ReferenceTarget string `yaml:"reference_target"`
	// Targets lists all cross-compilation targets, reference included.
	Targets []Target `yaml:"targets"`
	// Profiles lists the build profiles to run, in pipeline order.
	Profiles []Profile `yaml:"profiles"`

	Cache     CacheConfig     `yaml:"cache"`
	Artifacts ArtifactConfig  `yaml:"artifacts"`
	ReviewBot ReviewBotConfig `yaml:"reviewbot"`
}

// LoadPipeline reads and parses a duckci.yaml manifest from the given path.
func LoadPipeline(path string) (*PipelineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pipeline manifest %s: %w", path, err)
	}
	return ParsePipeline(data)
}

// ParsePipeline parses a duckci.yaml manifest and validates it.
func ParsePipeline(data []byte) (*PipelineConfig, error) {
	var cfg PipelineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing pipeline manifest: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the manifest for the invariants the orchestrator relies on.
func (c *PipelineConfig) Validate() error {
	if len(c.Targets) == 0 {
		return fmt.Errorf("pipeline manifest: at least one target is required")
	}
	if c.Binary == "" {
		return fmt.Errorf("pipeline manifest: binary name is required")
	}

	seen := make(map[string]bool, len(c.Targets))
	for _, t := range c.Targets {
		if t.Triple == "" {
			return fmt.Errorf("pipeline manifest: target with empty triple")
		}
		if seen[t.Triple] {
			return fmt.Errorf("pipeline manifest: duplicate target %s", t.Triple)
		}
		seen[t.Triple] = true
	}

	if c.ReferenceTarget == "" {
		c.ReferenceTarget = c.Targets[0].Triple
	}
	if !seen[c.ReferenceTarget] {
		return fmt.Errorf("pipeline manifest: reference target %s is not in the target list", c.ReferenceTarget)
	}

	if len(c.Profiles) == 0 {
		c.Profiles = []Profile{ProfileDebug, ProfileRelease}
	}
	for _, p := range c.Profiles {
		if p != ProfileDebug && p != ProfileRelease {
			return fmt.Errorf("pipeline manifest: unknown profile %q", p)
		}
	}

	if c.Cache.DependencyManifest == "" {
		c.Cache.DependencyManifest = "Cargo.lock"
	}
	if c.Cache.BuildManifest == "" {
		c.Cache.BuildManifest = "Cargo.toml"
	}

	return nil
}

// Target returns the target entry for the given triple.
func (c *PipelineConfig) Target(triple string) (Target, bool) {
	for _, t := range c.Targets {
		if t.Triple == triple {
			return t, true
		}
	}
	return Target{}, false
}

// CollectionName returns the artifact collection name for a profile.
func (c *PipelineConfig) CollectionName(p Profile) string {
	switch p {
	case ProfileRelease:
		if c.Artifacts.Release != "" {
			return c.Artifacts.Release
		}
	default:
		if c.Artifacts.Debug != "" {
			return c.Artifacts.Debug
		}
	}
	return fmt.Sprintf("%s-%s", c.Binary, p)
}
