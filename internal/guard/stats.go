package guard

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var ErrFailedToRegisterStats = errors.New("failed to register stats collector")

type Stats struct {
	blockedAttempts *prometheus.CounterVec
}

func NewStats(reg prometheus.Registerer) (*Stats, error) {
	s := &Stats{
		blockedAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "settler_guard_blocked_attempts",
			Help: "Nr of operations blocked by the payment guard",
		}, []string{"operation", "reason_code"}),
	}

	err := reg.Register(s.blockedAttempts)
	if err != nil {
		return nil, errors.Join(ErrFailedToRegisterStats, err)
	}

	return s, nil
}

func (s *Stats) blocked(op Operation, reasonCode string) {
	if s == nil {
		return
	}
	s.blockedAttempts.WithLabelValues(string(op), reasonCode).Inc()
}
