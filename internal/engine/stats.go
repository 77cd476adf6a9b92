package engine

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rafflechain/settler/internal/raffle"
)

var ErrFailedToRegisterStats = errors.New("failed to register stats collector")

type Stats struct {
	transitions      *prometheus.CounterVec
	ticketsSold      prometheus.Counter
	versionConflicts prometheus.Counter
	expiredClosed    prometheus.Counter
}

func NewStats(reg prometheus.Registerer) (*Stats, error) {
	s := &Stats{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "settler_engine_transitions",
			Help: "Nr of raffle state transitions by target status",
		}, []string{"status"}),
		ticketsSold: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "settler_engine_tickets_sold",
			Help: "Nr of tickets sold",
		}),
		versionConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "settler_engine_version_conflicts",
			Help: "Nr of concurrent modifications which required a reload",
		}),
		expiredClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "settler_engine_expired_closed",
			Help: "Nr of expired raffles closed or voided by the expiry job",
		}),
	}

	for _, c := range []prometheus.Collector{s.transitions, s.ticketsSold, s.versionConflicts, s.expiredClosed} {
		err := reg.Register(c)
		if err != nil {
			return nil, errors.Join(ErrFailedToRegisterStats, err)
		}
	}

	return s, nil
}

func (s *Stats) transition(status raffle.Status) {
	if s == nil {
		return
	}
	s.transitions.WithLabelValues(string(status)).Inc()
}

func (s *Stats) sold(quantity int64) {
	if s == nil {
		return
	}
	s.ticketsSold.Add(float64(quantity))
}

func (s *Stats) conflict() {
	if s == nil {
		return
	}
	s.versionConflicts.Inc()
}

func (s *Stats) expired(n int) {
	if s == nil {
		return
	}
	s.expiredClosed.Add(float64(n))
}
