package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/santoshn/alive-nj/internal/checker"
)

// Suite is one conformance suite definition.
type Suite struct {
	// Name identifies the suite and its golden fixture.
	Name string `yaml:"name"`

	// Corpus is the corpus directory, relative to the suite file.
	Corpus string `yaml:"corpus"`

	// Expect maps rule names to their expected outcome. Rules absent from
	// the map are verified but not asserted on.
	Expect map[string]string `yaml:"expect"`

	// Options tune the checker for this suite.
	Options SuiteOptions `yaml:"options,omitempty"`

	// dir is the suite file's directory, kept for resolving Corpus.
	dir string
}

// SuiteOptions are per-suite checker settings. Zero values keep the
// checker's defaults.
type SuiteOptions struct {
	Workers        int `yaml:"workers,omitempty"`
	MaxAssignments int `yaml:"max_assignments,omitempty"`
}

var validExpectations = map[string]bool{
	string(checker.OutcomeProved):        true,
	string(checker.OutcomeProvedVacuous): true,
	string(checker.OutcomeDisproved):     true,
	string(checker.OutcomeUnknown):       true,
	string(checker.OutcomeMalformed):     true,
}

// LoadSuite reads and validates a suite file. Decoding is strict: unknown
// YAML fields are errors, so a typo in a suite fails loudly instead of
// silently asserting nothing.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite %s: %w", path, err)
	}

	var suite Suite
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&suite); err != nil {
		return nil, fmt.Errorf("parse suite %s: %w", path, err)
	}

	if suite.Name == "" {
		return nil, fmt.Errorf("suite %s: name is required", path)
	}
	if suite.Corpus == "" {
		return nil, fmt.Errorf("suite %s: corpus is required", path)
	}
	if len(suite.Expect) == 0 {
		return nil, fmt.Errorf("suite %s: expect lists no rules", path)
	}
	for rule, want := range suite.Expect {
		if !validExpectations[want] {
			return nil, fmt.Errorf("suite %s: rule %s expects unknown outcome %q", path, rule, want)
		}
	}

	suite.dir = filepath.Dir(path)
	return &suite, nil
}

// CorpusDir resolves the suite's corpus directory.
func (s *Suite) CorpusDir() string {
	if filepath.IsAbs(s.Corpus) {
		return s.Corpus
	}
	return filepath.Join(s.dir, s.Corpus)
}
