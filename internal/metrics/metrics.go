// Package metrics exposes prometheus collectors for the scheduling path.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nextup_resolutions_total",
		Help: "Schedule resolutions by outcome",
	}, []string{"outcome"}) // outcome=event|gap|error

	resolveDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nextup_resolve_duration_seconds",
		Help:    "Time spent answering one getNext request, retries included",
		Buckets: prometheus.DefBuckets,
	})

	retryAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nextup_retry_attempts_total",
		Help: "Total resolution retry attempts after a failed first try",
	})

	rosterChannels = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nextup_roster_channels",
		Help: "Number of channels in the roster (last refresh)",
	})

	rosterRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nextup_roster_refresh_total",
		Help: "Roster refresh cycles by outcome",
	}, []string{"outcome"}) // outcome=success|failure

	playbackFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nextup_playback_failures_total",
		Help: "Selections the host reported as failed to load",
	})
)

func RecordResolution(outcome string) { resolutionsTotal.WithLabelValues(outcome).Inc() }
func ObserveResolve(d time.Duration)  { resolveDurationSeconds.Observe(d.Seconds()) }
func IncRetryAttempt()                { retryAttemptsTotal.Inc() }
func RecordRosterSize(n int)          { rosterChannels.Set(float64(n)) }
func IncPlaybackFailure()             { playbackFailuresTotal.Inc() }

func RecordRosterRefresh(ok bool) {
	if ok {
		rosterRefreshTotal.WithLabelValues("success").Inc()
	} else {
		rosterRefreshTotal.WithLabelValues("failure").Inc()
	}
}
