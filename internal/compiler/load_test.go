package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpusFile(t *testing.T, dir, name, src string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
}

func TestLoadCorpusMergesFiles(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "add.cue", `
rule: "fadd-neg-zero": {
	seq: 1
	lhs: [{bind: "%r", op: "fadd", x: "%x", y: "-0.0"}]
	rhs: result: "%x"
}
`)
	writeCorpusFile(t, dir, "sub.cue", `
rule: "fsub-zero": {
	seq: 2
	lhs: [{bind: "%r", op: "fsub", x: "%x", y: "0.0"}]
	rhs: result: "%x"
}
`)

	corpus, err := LoadCorpus(dir)
	require.NoError(t, err)
	require.Len(t, corpus.Rules, 2)
	assert.Equal(t, "fadd-neg-zero", corpus.Rules[0].Name)
	assert.Equal(t, "fsub-zero", corpus.Rules[1].Name)
}

func TestLoadCorpusMissingDirectory(t *testing.T) {
	_, err := LoadCorpus(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestLoadCorpusNoCUEFiles(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "readme.txt", "not a corpus")

	_, err := LoadCorpus(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no CUE files")
}

func TestLoadCorpusSyntaxError(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "broken.cue", `rule: { this is not cue`)

	_, err := LoadCorpus(dir)
	require.Error(t, err)
}
