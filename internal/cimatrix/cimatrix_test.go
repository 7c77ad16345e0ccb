package cimatrix

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadRepoPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := Load(filepath.Join("..", "..", ".travis.yml"))
	require.NoError(t, err)
	require.NoError(t, p.Validate())
	return p
}

func TestRepoPipelineStructure(t *testing.T) {
	p := loadRepoPipeline(t)

	assert.Equal(t, "go", p.Language)
	assert.Len(t, p.Toolchains, 3)
	assert.Equal(t, []string{"linux", "osx"}, p.OSes)
	assert.Len(t, p.BeforeScript, 2)
	assert.Len(t, p.Script, 4)
	assert.True(t, p.Matrix.FastFinish)
	assert.NotEmpty(t, p.Cache.Directories)

	// Script order: format check, lint, test, build.
	assert.Contains(t, p.Script[0], "gofmt")
	assert.Contains(t, p.Script[1], "lint")
	assert.Contains(t, p.Script[2], "go test")
	assert.Contains(t, p.Script[3], "go build")
}

func TestRepoPipelineCells(t *testing.T) {
	p := loadRepoPipeline(t)

	cells := p.Cells()
	require.Len(t, cells, 6)

	// Toolchains are the outer axis.
	assert.Equal(t, Cell{Toolchain: p.Toolchains[0], OS: "linux"}, cells[0])
	assert.Equal(t, Cell{Toolchain: p.Toolchains[0], OS: "osx"}, cells[1])
	assert.Equal(t, Cell{Toolchain: p.Toolchains[2], OS: "osx"}, cells[5])

	allowed := p.AllowedFailures()
	require.Len(t, allowed, 2)
	for _, c := range allowed {
		assert.Equal(t, "tip", c.Toolchain)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("language: go\ngo: [stable]\nos: [linux]\nscript: [true]\nsudo: required\n"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Pipeline {
		return &Pipeline{
			Language:   "go",
			Toolchains: []string{"stable", "tip"},
			OSes:       []string{"linux"},
			Script:     []string{"go test ./..."},
		}
	}

	t.Run("ok", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("wrong language", func(t *testing.T) {
		p := base()
		p.Language = "rust"
		assert.Error(t, p.Validate())
	})

	t.Run("empty axis", func(t *testing.T) {
		p := base()
		p.OSes = nil
		assert.Error(t, p.Validate())
	})

	t.Run("empty script", func(t *testing.T) {
		p := base()
		p.Script = nil
		assert.Error(t, p.Validate())
	})

	t.Run("selector matching nothing", func(t *testing.T) {
		p := base()
		p.Matrix.AllowFailures = []Selector{{Toolchain: "beta"}}
		assert.Error(t, p.Validate())
	})
}

func TestOutcome(t *testing.T) {
	p := &Pipeline{
		Language:   "go",
		Toolchains: []string{"stable", "tip"},
		OSes:       []string{"linux", "osx"},
		Script:     []string{"go test ./..."},
		Matrix: Matrix{
			FastFinish:    true,
			AllowFailures: []Selector{{Toolchain: "tip"}},
		},
	}

	stableLinux := Cell{Toolchain: "stable", OS: "linux"}
	stableOSX := Cell{Toolchain: "stable", OS: "osx"}
	tipLinux := Cell{Toolchain: "tip", OS: "linux"}
	tipOSX := Cell{Toolchain: "tip", OS: "osx"}

	t.Run("pending while required cells run", func(t *testing.T) {
		assert.Equal(t, StatusPending, p.Outcome(map[Cell]bool{stableLinux: true}))
	})

	t.Run("fast finish settles before allowed cells report", func(t *testing.T) {
		got := p.Outcome(map[Cell]bool{stableLinux: true, stableOSX: true})
		assert.Equal(t, StatusPassed, got)
	})

	t.Run("allowed failure does not fail the run", func(t *testing.T) {
		got := p.Outcome(map[Cell]bool{
			stableLinux: true, stableOSX: true,
			tipLinux: false, tipOSX: false,
		})
		assert.Equal(t, StatusPassed, got)
	})

	t.Run("required failure fails the run", func(t *testing.T) {
		got := p.Outcome(map[Cell]bool{
			stableLinux: true, stableOSX: false,
			tipLinux: true, tipOSX: true,
		})
		assert.Equal(t, StatusFailed, got)
	})

	t.Run("without fast finish the run waits for every cell", func(t *testing.T) {
		slow := *p
		slow.Matrix.FastFinish = false
		got := slow.Outcome(map[Cell]bool{stableLinux: true, stableOSX: true})
		assert.Equal(t, StatusPending, got)
	})
}
