package aeron

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestSystemCountersIncrement(t *testing.T) {
	reg := prometheus.NewRegistry()
	counters := NewSystemCounters(reg, 5, 9).(*prometheusCounters)

	counters.IncStatusMessagesSent()
	counters.IncStatusMessagesSent()
	counters.IncFlowControlUnderRuns()
	counters.IncFlowControlOverRuns()
	counters.IncFlowControlOverRuns()
	counters.IncFlowControlOverRuns()

	require.Equal(t, float64(2), testutil.ToFloat64(counters.statusMessagesSent))
	require.Equal(t, float64(1), testutil.ToFloat64(counters.flowControlUnderRun))
	require.Equal(t, float64(3), testutil.ToFloat64(counters.flowControlOverRun))
}
