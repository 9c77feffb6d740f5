package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	HTTPInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fitcoin",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fitcoin",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fitcoin",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	WagerEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fitcoin",
			Subsystem: "ledger",
			Name:      "wager_events_total",
			Help:      "Wager lifecycle transitions by kind.",
		},
		[]string{"event"},
	)

	CoinsMoved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fitcoin",
			Subsystem: "ledger",
			Name:      "coins_moved_total",
			Help:      "FitCoins debited or credited by the ledger.",
		},
		[]string{"direction"},
	)

	ChallengeResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fitcoin",
			Subsystem: "ledger",
			Name:      "challenge_resolutions_total",
			Help:      "Sub-challenge resolutions by type and outcome.",
		},
		[]string{"challenge_type", "outcome"},
	)

	FundRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fitcoin",
			Subsystem: "ledger",
			Name:      "fund_requests_total",
			Help:      "Fund request transitions by resulting status.",
		},
		[]string{"status"},
	)

	JobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fitcoin",
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Background job runs.",
		},
		[]string{"job", "success"},
	)
)

func init() {
	Registry.MustRegister(
		HTTPInFlight,
		HTTPRequests,
		HTTPDuration,
		WagerEvents,
		CoinsMoved,
		ChallengeResolutions,
		FundRequests,
		JobRuns,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordWager counts a wager lifecycle event (created, countered, cancelled, settled, refunded).
func RecordWager(event string) {
	WagerEvents.WithLabelValues(event).Inc()
}

// RecordWagers counts n events of one kind at once.
func RecordWagers(event string, n int) {
	if n > 0 {
		WagerEvents.WithLabelValues(event).Add(float64(n))
	}
}

// RecordDebit counts coins leaving user balances.
func RecordDebit(amount int64) {
	if amount > 0 {
		CoinsMoved.WithLabelValues("debit").Add(float64(amount))
	}
}

// RecordCredit counts coins entering user balances.
func RecordCredit(amount int64) {
	if amount > 0 {
		CoinsMoved.WithLabelValues("credit").Add(float64(amount))
	}
}

func RecordResolution(challengeType, outcome string) {
	ChallengeResolutions.WithLabelValues(challengeType, outcome).Inc()
}

func RecordFundRequest(status string) {
	FundRequests.WithLabelValues(status).Inc()
}

func RecordJobRun(job string, success bool) {
	label := "true"
	if !success {
		label = "false"
	}
	JobRuns.WithLabelValues(job, label).Inc()
}
