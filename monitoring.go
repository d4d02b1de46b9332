package farmstore

import (
	"encoding/json"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	ops       *prometheus.CounterVec
	idsIssued prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "farmstore",
			Name:      "ops_total",
			Help:      "Store operations by region and kind; writes are counted once committed.",
		}, []string{"region", "op"}),
		idsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "farmstore",
			Name:      "ids_issued_total",
			Help:      "Identifiers issued by counters and committed.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	var err error
	if m.ops, err = register(reg, m.ops); err != nil {
		return nil, err
	}
	if m.idsIssued, err = register(reg, m.idsIssued); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg. If an equal collector is already there (the space
// was opened before in this process) the existing one keeps counting.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, err
}

func (m *metrics) op(r *Region, op string) {
	m.ops.WithLabelValues(r.name, op).Inc()
}

type RegionStats struct {
	Records int
	Size    int64
	Alloc   int64
}

func (tx *Tx) RegionStats(r *Region) RegionStats {
	u := tx.bucket(r).Usage()
	return RegionStats{
		Records: u.Keys,
		Size:    u.Inuse,
		Alloc:   u.Alloc,
	}
}

func loggableRow(row any) string {
	if row == nil {
		return "<none>"
	}
	return string(must(json.Marshal(row)))
}
