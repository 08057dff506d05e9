// Package config centralizes the tuning knobs the distilled specification
// calls out as scattered across the original system's call sites (0.4, 0.45,
// 0.5, 0.55, 0.65, 0.9, 0.99 similarity cutoffs — spec.md §9 Open
// Questions). Callers load a Thresholds record once per session rather than
// hard-coding a constant at each comparison site.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Thresholds names every similarity/confidence cutoff used by the proof and
// query engines. Field-level doc comments record which call site each one
// replaces.
type Thresholds struct {
	// ExactMatch is the similarity above which two vectors are treated as
	// the same atom (replaces the scattered 0.99 cutoff).
	ExactMatch float64 `yaml:"exactMatch"`

	// HighConfidence gates a proof step as strong evidence rather than a
	// weak candidate (replaces 0.9).
	HighConfidence float64 `yaml:"highConfidence"`

	// ModerateConfidence is the threshold used for accepting a symbolic
	// supplement when holographic priority did not already validate
	// (replaces 0.65).
	ModerateConfidence float64 `yaml:"moderateConfidence"`

	// WeakCandidate is the floor below which a decoded candidate is
	// discarded rather than surfaced with a low-confidence warning
	// (replaces 0.4/0.45/0.5 depending on call site; unified here).
	WeakCandidate float64 `yaml:"weakCandidate"`

	// BundleMembership is the similarity a fact's vector must reach against
	// the KB bundle to be considered "present" via the holographic path
	// (replaces 0.55).
	BundleMembership float64 `yaml:"bundleMembership"`

	// UnbindExactInverse is the similarity floor for treating an
	// approximate-strategy unbind as an exact inverse (replaces the 0.99
	// carve-out in spec.md §8's round-trip property for sparse-polynomial).
	UnbindExactInverse float64 `yaml:"unbindExactInverse"`
}

// DefaultThresholds returns the values documented above, chosen to match the
// qualitative bounds spec.md §8's testable properties assert.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ExactMatch:         0.99,
		HighConfidence:     0.9,
		ModerateConfidence: 0.65,
		WeakCandidate:       0.45,
		BundleMembership:   0.55,
		UnbindExactInverse: 0.99,
	}
}

// SolverLimits bounds the proof engine and CSP/planning search, per spec.md
// §4.5 and §5.
type SolverLimits struct {
	MaxProofDepth int           `yaml:"maxProofDepth"`
	ProofTimeout  time.Duration `yaml:"proofTimeout"`
	MaxPlanDepth  int           `yaml:"maxPlanDepth"`
	MaxSolutions  int           `yaml:"maxSolutions"`
}

// DefaultSolverLimits matches the defaults named in spec.md §4.5.
func DefaultSolverLimits() SolverLimits {
	return SolverLimits{
		MaxProofDepth: 8,
		ProofTimeout:  2 * time.Second,
		MaxPlanDepth:  20,
		MaxSolutions:  1000,
	}
}

// Session is the full ambient configuration record a Session is constructed
// from: geometry/strategy choice plus the tuning knobs above. It is the YAML
// document shape loaded from a config file by cmd/hdreason.
type Session struct {
	Strategy        string       `yaml:"strategy"`
	Geometry        int          `yaml:"geometry"`
	Thresholds      Thresholds   `yaml:"thresholds"`
	Limits          SolverLimits `yaml:"limits"`
	RejectContradictions bool    `yaml:"rejectContradictions"`
	CWA             bool         `yaml:"cwa"`
	LogLevel        string       `yaml:"logLevel"`
	CoreVersionConstraint string `yaml:"coreVersionConstraint"`
}

// DefaultSessionConfig returns a ready-to-use configuration: dense-binary at
// a 10240-bit geometry, default thresholds and limits, contradictions
// rejected, CWA off.
func DefaultSessionConfig() Session {
	return Session{
		Strategy:             "dense-binary",
		Geometry:             10240,
		Thresholds:           DefaultThresholds(),
		Limits:               DefaultSolverLimits(),
		RejectContradictions: true,
		CWA:                  false,
		LogLevel:             "warn",
	}
}

// Load reads a YAML session configuration from path, filling unset fields
// from DefaultSessionConfig.
func Load(path string) (Session, error) {
	cfg := DefaultSessionConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %q: %w", path, err)
	}
	return cfg, nil
}
