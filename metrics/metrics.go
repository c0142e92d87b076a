package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReservationTransitions counts lifecycle moves by source and target status.
	ReservationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_reservation_transitions_total",
			Help: "Reservation status transitions",
		},
		[]string{"from", "to"},
	)

	ReservationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hotel_reservations_created_total",
			Help: "Reservations created",
		},
	)

	RoomUnavailableRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hotel_room_unavailable_rejections_total",
			Help: "Create requests rejected because the room was taken",
		},
	)

	DiscountApplications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_discount_applications_total",
			Help: "Discount application attempts by result",
		},
		[]string{"result"},
	)

	SyncPasses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_sync_passes_total",
			Help: "Reconciliation passes run",
		},
		[]string{"kind"},
	)

	SyncWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_sync_writes_total",
			Help: "Entities written by reconciliation passes",
		},
		[]string{"entity"},
	)

	SyncFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_sync_failures_total",
			Help: "Per-entity failures inside reconciliation passes",
		},
		[]string{"entity"},
	)

	SyncPassDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hotel_sync_pass_duration_seconds",
			Help:    "Duration of reconciliation passes",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	InvariantViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_invariant_violations_total",
			Help: "Calendar inconsistencies found by the deep pass",
		},
		[]string{"kind"},
	)

	RoomsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hotel_rooms",
			Help: "Rooms per status",
		},
		[]string{"status"},
	)

	ReservationsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hotel_reservations",
			Help: "Reservations per status",
		},
		[]string{"status"},
	)

	OccupancyRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hotel_occupancy_ratio",
			Help: "Occupied rooms over total rooms",
		},
	)

	// RevenueTotal, ArrivalsToday and DeparturesToday are refreshed by the deep pass.
	RevenueTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hotel_revenue_total",
			Help: "Amount billed by finalized reservations",
		},
	)

	ArrivalsToday = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hotel_arrivals_today",
			Help: "Reservations starting today",
		},
	)

	DeparturesToday = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hotel_departures_today",
			Help: "Reservations ending today",
		},
	)

	SinkDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_sink_dropped_total",
			Help: "Audit or notification entries dropped because the buffer was full",
		},
		[]string{"sink"},
	)
)
