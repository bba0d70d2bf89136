// MIT License
//
// Copyright (c) 2016-2017 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package aeron

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// prometheusCounters is the named atomic counter set named in §6
// (statusMessagesSent, flowControlUnderRuns, flowControlOverRuns), backed by
// prometheus counters the way adred-codev-ws_poc's internal/metrics package
// wires its connection/message counters via promauto.
type prometheusCounters struct {
	statusMessagesSent  prometheus.Counter
	flowControlUnderRun prometheus.Counter
	flowControlOverRun  prometheus.Counter
}

// NewSystemCounters registers the connection's counters against reg. Pass
// prometheus.NewRegistry() in tests to avoid collisions with the default
// registry across parallel test connections.
func NewSystemCounters(reg prometheus.Registerer, sessionID, streamID int32) SystemCounters {
	labels := prometheus.Labels{
		"session_id": strconv.Itoa(int(sessionID)),
		"stream_id":  strconv.Itoa(int(streamID)),
	}
	factory := promauto.With(reg)
	return &prometheusCounters{
		statusMessagesSent: factory.NewCounter(prometheus.CounterOpts{
			Name:        "aeron_status_messages_sent_total",
			Help:        "Total number of status messages sent by this connection.",
			ConstLabels: labels,
		}),
		flowControlUnderRun: factory.NewCounter(prometheus.CounterOpts{
			Name:        "aeron_flow_control_underruns_total",
			Help:        "Total number of frames dropped for arriving below the contiguous tail.",
			ConstLabels: labels,
		}),
		flowControlOverRun: factory.NewCounter(prometheus.CounterOpts{
			Name:        "aeron_flow_control_overruns_total",
			Help:        "Total number of frames dropped for exceeding the advertised window.",
			ConstLabels: labels,
		}),
	}
}

func (c *prometheusCounters) IncStatusMessagesSent()   { c.statusMessagesSent.Inc() }
func (c *prometheusCounters) IncFlowControlUnderRuns() { c.flowControlUnderRun.Inc() }
func (c *prometheusCounters) IncFlowControlOverRuns()  { c.flowControlOverRun.Inc() }
