package session

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Metrics counts renewals and replays. A nil *Metrics records nothing.
type Metrics struct {
	renewals *prometheus.CounterVec
	replays  prometheus.Counter
	waiters  prometheus.Counter
}

// NewMetrics creates the session counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		renewals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docvault",
			Subsystem: "session",
			Name:      "renewals_total",
			Help:      "Calls to the refresh endpoint, by outcome.",
		}, []string{"outcome"}),
		replays: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docvault",
			Subsystem: "session",
			Name:      "replays_total",
			Help:      "Requests re-dispatched after a successful renewal.",
		}),
		waiters: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docvault",
			Subsystem: "session",
			Name:      "renewal_waiters_total",
			Help:      "Requests that joined a renewal already in flight.",
		}),
	}

	for _, c := range []prometheus.Collector{m.renewals, m.replays, m.waiters} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) renewal(outcome string) {
	if m == nil {
		return
	}
	m.renewals.WithLabelValues(outcome).Inc()
}

func (m *Metrics) replay() {
	if m == nil {
		return
	}
	m.replays.Inc()
}

func (m *Metrics) waiter() {
	if m == nil {
		return
	}
	m.waiters.Inc()
}
