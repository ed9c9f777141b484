package encoding

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/svcinfo/internal/observability"
	"github.com/vyrodovalexey/svcinfo/internal/value"
)

func newTestLogger() observability.Logger {
	logger, _ := observability.NewLogger(observability.LogConfig{
		Level:  "debug",
		Format: "console",
		Output: "stderr",
	})
	return logger
}

// metricsTable builds a small table with every scalar kind.
func metricsTable(t *testing.T) value.Table {
	t.Helper()

	b := value.NewTableBuilder("metric_name", "value", "unit")
	require.NoError(t, b.AppendFields(
		value.F("metric_name", value.String("requests_total")),
		value.F("value", value.Int(1024)),
		value.F("unit", value.String("requests")),
	))
	require.NoError(t, b.AppendFields(
		value.F("metric_name", value.String("uptime")),
		value.F("value", value.Duration(3*time.Hour+12*time.Minute)),
		value.F("unit", value.String("duration")),
	))
	require.NoError(t, b.AppendFields(
		value.F("metric_name", value.String("load")),
		value.F("value", value.Float(2)),
		value.F("unit", value.Null()),
	))
	require.NoError(t, b.AppendFields(
		value.F("metric_name", value.String("ready")),
		value.F("value", value.Bool(true)),
		value.F("unit", value.String("")),
	))

	table, err := b.Build()
	require.NoError(t, err)
	return table
}

// emptyMetricsTable builds a table with columns and no rows.
func emptyMetricsTable(t *testing.T) value.Table {
	t.Helper()

	table, err := value.NewTable([]string{"metric_name", "value", "unit"})
	require.NoError(t, err)
	return table
}

// trickyString contains a comma, a newline, a double quote and HTML
// metacharacters.
const trickyString = "a,b\n\"c\" <d> & 'e'"
