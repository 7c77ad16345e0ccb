// Package cimatrix models the repository's CI pipeline file: the toolchain
// and OS axes, the script sequences, the cache scope and the allowed-failure
// policy. It expands and classifies matrix cells and evaluates an overall run
// status from per-cell results; executing the scripts is the CI platform's
// job, not ours.
package cimatrix

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Pipeline is the parsed CI configuration.
type Pipeline struct {
	// Language selects the tooling family. Only "go" is recognized.
	Language string `yaml:"language"`

	// Toolchains is the ordered toolchain channel axis of the matrix.
	Toolchains []string `yaml:"go"`

	// OSes is the ordered operating system axis of the matrix.
	OSes []string `yaml:"os"`

	// BeforeScript runs once per matrix cell before Script.
	BeforeScript []string `yaml:"before_script"`

	// Script is the ordered build/check pipeline for each cell.
	Script []string `yaml:"script"`

	Cache  Cache  `yaml:"cache"`
	Matrix Matrix `yaml:"matrix"`
}

// Cache lists directories the platform persists between runs.
type Cache struct {
	Directories []string `yaml:"directories"`
}

// Matrix holds the failure policy knobs.
type Matrix struct {
	// FastFinish reports the overall status as soon as every cell not
	// matched by AllowFailures has finished.
	FastFinish bool `yaml:"fast_finish"`

	// AllowFailures selects cells whose failure is reported but excluded
	// from the overall pass/fail determination.
	AllowFailures []Selector `yaml:"allow_failures"`
}

// Selector matches matrix cells by field subset equality: empty fields match
// anything.
type Selector struct {
	Toolchain string `yaml:"go,omitempty"`
	OS        string `yaml:"os,omitempty"`
}

// Matches reports whether the selector matches the cell.
func (s Selector) Matches(c Cell) bool {
	if s.Toolchain != "" && s.Toolchain != c.Toolchain {
		return false
	}
	if s.OS != "" && s.OS != c.OS {
		return false
	}
	return true
}

// Cell is one expanded matrix combination.
type Cell struct {
	Toolchain string
	OS        string
}

func (c Cell) String() string {
	return c.Toolchain + "/" + c.OS
}

// Load reads and parses the pipeline file at path.
func Load(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline file: %w", err)
	}
	return Parse(data)
}

// Parse decodes pipeline YAML. Unknown keys are rejected.
func Parse(data []byte) (*Pipeline, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Pipeline
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("parse pipeline: %w", err)
	}
	return &p, nil
}

// Cells expands the toolchain × OS cross product in declaration order,
// toolchains outer, OSes inner.
func (p *Pipeline) Cells() []Cell {
	cells := make([]Cell, 0, len(p.Toolchains)*len(p.OSes))
	for _, tc := range p.Toolchains {
		for _, osName := range p.OSes {
			cells = append(cells, Cell{Toolchain: tc, OS: osName})
		}
	}
	return cells
}

// AllowedToFail reports whether any allow_failures selector matches the cell.
func (p *Pipeline) AllowedToFail(c Cell) bool {
	for _, sel := range p.Matrix.AllowFailures {
		if sel.Matches(c) {
			return true
		}
	}
	return false
}

// AllowedFailures returns the generated cells matched by allow_failures.
func (p *Pipeline) AllowedFailures() []Cell {
	var allowed []Cell
	for _, c := range p.Cells() {
		if p.AllowedToFail(c) {
			allowed = append(allowed, c)
		}
	}
	return allowed
}

// Validate checks the structural invariants of the pipeline.
func (p *Pipeline) Validate() error {
	if p.Language != "go" {
		return fmt.Errorf("unsupported language %q", p.Language)
	}
	if len(p.Toolchains) == 0 {
		return fmt.Errorf("matrix has no toolchain axis")
	}
	if len(p.OSes) == 0 {
		return fmt.Errorf("matrix has no os axis")
	}
	if len(p.Script) == 0 {
		return fmt.Errorf("script sequence is empty")
	}

	cells := p.Cells()
	for i, sel := range p.Matrix.AllowFailures {
		matched := false
		for _, c := range cells {
			if sel.Matches(c) {
				matched = true
				break
			}
		}
		if !matched {
			return fmt.Errorf("allow_failures[%d] matches no matrix cell", i)
		}
	}
	return nil
}

// RunStatus is the overall outcome of a matrix run.
type RunStatus int

const (
	// StatusPending: results are still outstanding.
	StatusPending RunStatus = iota
	// StatusPassed: every cell counted toward the outcome passed.
	StatusPassed
	// StatusFailed: a cell counted toward the outcome failed.
	StatusFailed
)

func (s RunStatus) String() string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Outcome evaluates the overall run status from per-cell results. Cells
// absent from results are still running. Allowed-to-fail cells never affect
// the outcome; with FastFinish the status is settled once every required
// cell has reported, otherwise the run stays pending until all cells report.
func (p *Pipeline) Outcome(results map[Cell]bool) RunStatus {
	requiredDone := true
	allDone := true
	failed := false

	for _, c := range p.Cells() {
		passed, done := results[c]
		if !done {
			allDone = false
			if !p.AllowedToFail(c) {
				requiredDone = false
			}
			continue
		}
		if !passed && !p.AllowedToFail(c) {
			failed = true
		}
	}

	settled := allDone || (p.Matrix.FastFinish && requiredDone)
	if !settled {
		return StatusPending
	}
	if failed {
		return StatusFailed
	}
	return StatusPassed
}
