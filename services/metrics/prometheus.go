package metricsvc

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trezcool/fyp/core"
)

// Recorder exports scheduling and allocation counters to Prometheus.
type Recorder struct {
	bookings    *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	allocations *prometheus.CounterVec
}

var _ core.Metrics = (*Recorder)(nil)

// NewRecorder registers the counters on reg. Counters already registered on reg are reused.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	bookings, err := registerCounterVec(reg, prometheus.CounterOpts{
		Namespace: "fyp",
		Name:      "bookings_total",
		Help:      "Presentation schedules created, by source.",
	}, "source")
	if err != nil {
		return nil, err
	}
	rejections, err := registerCounterVec(reg, prometheus.CounterOpts{
		Namespace: "fyp",
		Name:      "booking_conflicts_total",
		Help:      "Bookings refused because of a conflict, by conflict code.",
	}, "code")
	if err != nil {
		return nil, err
	}
	allocations, err := registerCounterVec(reg, prometheus.CounterOpts{
		Namespace: "fyp",
		Name:      "allocations_total",
		Help:      "Supervisor allocations, by operation and outcome.",
	}, "op", "outcome")
	if err != nil {
		return nil, err
	}
	return &Recorder{bookings: bookings, rejections: rejections, allocations: allocations}, nil
}

func registerCounterVec(reg prometheus.Registerer, opts prometheus.CounterOpts, labels ...string) (*prometheus.CounterVec, error) {
	cv := prometheus.NewCounterVec(opts, labels)
	if err := reg.Register(cv); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec), nil
		}
		return nil, err
	}
	return cv, nil
}

func (r *Recorder) BookingCreated(source string) {
	r.bookings.WithLabelValues(source).Inc()
}

func (r *Recorder) BookingRejected(code string) {
	r.rejections.WithLabelValues(code).Inc()
}

// AllocationDone counts the allocation under "ok" or the error's kind.
func (r *Recorder) AllocationDone(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = core.KindOf(err).String()
	}
	r.allocations.WithLabelValues(op, outcome).Inc()
}
