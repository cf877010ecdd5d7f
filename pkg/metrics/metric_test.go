package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorWriteTextfile(t *testing.T) {
	c := NewCollector()
	c.SamplesRead.Add(10)
	c.NoRouteSkipped.Inc()
	c.ExportErrors.WithLabelValues("csv").Inc()

	path := filepath.Join(t.TempDir(), "biketrips.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "biketrips_samples_read_total 10")
	assert.Contains(t, string(data), "biketrips_no_route_skipped_total 1")
	assert.Contains(t, string(data), `biketrips_export_errors_total{format="csv"} 1`)
}

func TestWriteTextfileDisabled(t *testing.T) {
	assert.NoError(t, NewCollector().WriteTextfile(""))
}
