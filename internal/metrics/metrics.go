// Package metrics registers the service's Prometheus collectors. Counters
// are package-level so any layer can record without plumbing a registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AttendanceMarks counts attendance toggles by result (committed,
	// rolled_back).
	AttendanceMarks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seating_attendance_marks_total",
		Help: "Attendance toggle commands by final result.",
	}, []string{"result"})

	// LayoutSaves counts persisted seating plans.
	LayoutSaves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seating_layout_saves_total",
		Help: "Seating layouts saved to storage.",
	})

	// UpstreamRequests counts calls to the school API by outcome
	// (ok, error).
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seating_upstream_requests_total",
		Help: "Requests to the upstream school API by outcome.",
	}, []string{"endpoint", "outcome"})
)
