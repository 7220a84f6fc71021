package metrics

import "github.com/prometheus/client_golang/prometheus"

// EstimatorMetrics exposes counters for the quote flow.
type EstimatorMetrics struct {
	estimatesTotal *prometheus.CounterVec
	leadsTotal     *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	answerLatency  *prometheus.HistogramVec
}

func NewEstimatorMetrics(reg prometheus.Registerer) *EstimatorMetrics {
	m := &EstimatorMetrics{
		estimatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "homequote",
			Subsystem: "estimator",
			Name:      "estimates_total",
			Help:      "Total price estimates computed",
		}, []string{"service", "clamped"}),
		leadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "homequote",
			Subsystem: "estimator",
			Name:      "leads_saved_total",
			Help:      "Total leads persisted",
		}, []string{"service"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "homequote",
			Subsystem: "estimator",
			Name:      "errors_total",
			Help:      "Total conversation errors by kind",
		}, []string{"kind"}),
		answerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "homequote",
			Subsystem: "estimator",
			Name:      "answer_latency_seconds",
			Help:      "Latency of answer handling including validation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.estimatesTotal, m.leadsTotal, m.errorsTotal, m.answerLatency)
	return m
}

func (m *EstimatorMetrics) ObserveEstimate(service, clamped string) {
	if m == nil {
		return
	}
	if clamped == "" {
		clamped = "none"
	}
	m.estimatesTotal.WithLabelValues(service, clamped).Inc()
}

func (m *EstimatorMetrics) ObserveLeadSaved(service string) {
	if m == nil {
		return
	}
	m.leadsTotal.WithLabelValues(service).Inc()
}

func (m *EstimatorMetrics) ObserveError(kind string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(kind).Inc()
}

func (m *EstimatorMetrics) ObserveAnswerLatency(service string, seconds float64) {
	if m == nil {
		return
	}
	m.answerLatency.WithLabelValues(service).Observe(seconds)
}
