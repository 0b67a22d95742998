package probe1

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/erebus-edge/edgeprobe/internal/metrics"
	"github.com/jellydator/ttlcache/v3"
)

// inflight tracks the timestamps of probes that have not been echoed yet.
// Entries expire after the probe timeout, at which point the probe is
// counted as lost. It is used for accounting only: echoes are turned into
// samples whether or not their probe is still tracked here.
type inflight struct {
	cache    *ttlcache.Cache[float64, time.Time]
	lost     atomic.Int64
	stopOnce sync.Once
}

func newInflight(ttl time.Duration) *inflight {
	cache := ttlcache.New(
		ttlcache.WithTTL[float64, time.Time](ttl),
		ttlcache.WithDisableTouchOnHit[float64, time.Time](),
	)
	f := &inflight{cache: cache}
	cache.OnEviction(func(ctx context.Context,
		er ttlcache.EvictionReason,
		i *ttlcache.Item[float64, time.Time]) {
		if er != ttlcache.EvictionReasonExpired {
			return
		}
		f.lost.Add(1)
		metrics.ProbesLost.Inc()
		log.Debug("probe lost", "timestamp", i.Key(), "sent", i.Value())
	})
	go cache.Start()
	return f
}

// add starts tracking a probe sent at sent and stamped with ts.
func (f *inflight) add(ts float64, sent time.Time) {
	f.cache.Set(ts, sent, ttlcache.DefaultTTL)
}

// ack stops tracking the probe stamped with ts. It returns false if the
// probe was unknown, already acknowledged or already expired.
func (f *inflight) ack(ts float64) bool {
	if f.cache.Get(ts) == nil {
		return false
	}
	f.cache.Delete(ts)
	return true
}

// outstanding returns the number of probes still waiting for an echo.
func (f *inflight) outstanding() int {
	return f.cache.Len()
}

// stop halts the expiration goroutine. It is safe to call more than once.
func (f *inflight) stop() {
	f.stopOnce.Do(f.cache.Stop)
}
