package fsmkit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Send outcome labels.
const (
	outcomeHandled   = "handled"
	outcomeUnhandled = "unhandled"
	outcomeError     = "error"
)

var (
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fsm_events_total",
		Help: "Total events processed by machine, event type, and outcome (handled, unhandled, error)",
	}, []string{"machine", "event", "outcome"})

	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fsm_transitions_total",
		Help: "Total state transitions by machine, source state, and target state",
	}, []string{"machine", "from", "to"})

	sendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fsm_send_duration_seconds",
		Help:    "Duration of event processing by machine and outcome",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"machine", "outcome"})

	actionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fsm_action_duration_seconds",
		Help:    "Duration of action execution by machine, action, phase, and outcome",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"machine", "action", "phase", "outcome"})
)

func recordSend(machine string, event EventType, outcome string, elapsed time.Duration) {
	m := sanitizeMachine(machine)
	eventsTotal.WithLabelValues(m, string(event), outcome).Inc()
	sendDuration.WithLabelValues(m, outcome).Observe(elapsed.Seconds())
}

func recordTransition(machine string, from, to StateID) {
	transitionsTotal.WithLabelValues(sanitizeMachine(machine), string(from), string(to)).Inc()
}

func recordAction(machine string, action ActionRef, phase string, elapsed time.Duration, err error) {
	outcome := outcomeHandled
	if err != nil {
		outcome = outcomeError
	}
	actionDuration.WithLabelValues(sanitizeMachine(machine), string(action), phase, outcome).Observe(elapsed.Seconds())
}

func sanitizeMachine(machine string) string {
	if machine == "" {
		return "unknown"
	}
	return machine
}
