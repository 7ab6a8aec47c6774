package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReportMatchesGolden(t *testing.T) {
	suite, err := LoadSuite(filepath.Join("testdata", "suites", "identities.yaml"))
	require.NoError(t, err)

	result, err := Run(context.Background(), suite)
	require.NoError(t, err)

	AssertGolden(t, "identities", result.Report)
}
