package report

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneeighty/connect/internal/registry/companieshouse"
)

func testSummary() Summary {
	return Summary{
		RunID:            "01ABC",
		StartedAt:        "2026-09-01T10:00:00Z",
		Duration:         "1m30s",
		CharitiesFetched: 30,
		CompaniesFetched: 120,
		Merged:           140,
		Persisted:        140,
		Localities: map[string]companieshouse.LocalityStats{
			"Sheffield": {AutoInclude: 40, CICTypes: 5, SICFiltered: 10},
			"Leeds":     {AutoInclude: 50, CICTypes: 8, SICFiltered: 7},
		},
	}
}

func TestRenderProducesPDF(t *testing.T) {
	doc, err := NewGenerator(t.TempDir()).Render(testSummary())
	require.NoError(t, err)

	content, err := io.ReadAll(doc)
	require.NoError(t, err)
	assert.True(t, len(content) > 0)
	assert.Equal(t, "%PDF", string(content[:4]))
}

func TestWriteSavesRunReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")

	path, err := NewGenerator(dir).Write(testSummary())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "run_01ABC.pdf"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.Size() > 0)
}
