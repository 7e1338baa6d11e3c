package rpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type metrics struct {
	buyTickets      *prometheus.CounterVec
	composeDuration *prometheus.HistogramVec
}

// newMetrics registers the settler collectors and the runtime collectors on reg
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		buyTickets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "settler_buy_ticket_total",
			Help: "Ticket purchases composed, by result.",
		}, []string{"result"}),
		composeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "settler_compose_duration_seconds",
			Help:    "Time spent answering a settler procedure, chain queries included.",
			Buckets: prometheus.DefBuckets,
		}, []string{"procedure"}),
	}

	for _, c := range []prometheus.Collector{
		m.buyTickets,
		m.composeDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return m, nil
}

// buyTicketResult labels a BuyTicket outcome
func buyTicketResult(err error) string {
	if err == nil {
		return "success"
	}
	switch connect.CodeOf(err) {
	case connect.CodeFailedPrecondition:
		return "insufficient_funds"
	case connect.CodeInvalidArgument:
		return "invalid_input"
	default:
		return "error"
	}
}

// metricsInterceptor records the duration of every procedure and the BuyTicket outcomes
func metricsInterceptor(m *metrics) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			procedure := req.Spec().Procedure
			m.composeDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
			if procedure == BuyTicketProcedure {
				m.buyTickets.WithLabelValues(buyTicketResult(err)).Inc()
			}
			return resp, err
		}
	}
}
