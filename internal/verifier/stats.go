package verifier

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var ErrFailedToRegisterStats = errors.New("failed to register stats collector")

type Stats struct {
	verdicts     *prometheus.CounterVec
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	ledgerErrors prometheus.Counter
}

func NewStats(reg prometheus.Registerer) (*Stats, error) {
	s := &Stats{
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "settler_verifier_verdicts",
			Help: "Nr of payment verdicts by result",
		}, []string{"result"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "settler_verifier_cache_hits",
			Help: "Nr of verifications answered from cache",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "settler_verifier_cache_misses",
			Help: "Nr of verifications which required ledger calls",
		}),
		ledgerErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "settler_verifier_ledger_unavailable",
			Help: "Nr of verifications failed because the ledger was unavailable",
		}),
	}

	for _, c := range []prometheus.Collector{s.verdicts, s.cacheHits, s.cacheMisses, s.ledgerErrors} {
		err := reg.Register(c)
		if err != nil {
			return nil, errors.Join(ErrFailedToRegisterStats, err)
		}
	}

	return s, nil
}

func (s *Stats) verdict(v *Verdict) {
	if s == nil {
		return
	}

	if v.FromCache {
		s.cacheHits.Inc()
	} else {
		s.cacheMisses.Inc()
	}

	result := "verified"
	if !v.Verified {
		result = string(v.Reason)
	}
	s.verdicts.WithLabelValues(result).Inc()
}

func (s *Stats) ledgerUnavailable() {
	if s == nil {
		return
	}
	s.ledgerErrors.Inc()
}
