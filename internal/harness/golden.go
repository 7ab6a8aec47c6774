package harness

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/santoshn/alive-nj/internal/checker"
)

// AssertGolden compares a report's text rendering against the fixture in
// testdata/golden/{name}.golden. The rendering omits the corpus hash, so a
// fixture only changes when verdicts or rule order do.
//
// Regenerate fixtures with:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, report *checker.Report) {
	t.Helper()

	var buf bytes.Buffer
	if err := report.WriteText(&buf); err != nil {
		t.Fatalf("render report: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, buf.Bytes())
}
