package export

import (
	"log/slog"
	"sync"
	"time"
)

// progress counts processed tiles across workers
type progress struct {
	mu      sync.Mutex
	total   int
	written int
	failed  int
}

func newProgress(total int) *progress {
	return &progress{total: total}
}

func (p *progress) add(written, failed int) {
	p.mu.Lock()
	p.written += written
	p.failed += failed
	p.mu.Unlock()
}

func (p *progress) totals() (written, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written, p.failed
}

// percent of tiles done, written or failed
func (p *progress) percent() float64 {
	written, failed := p.totals()
	return float64(written+failed) / float64(p.total) * 100.0
}

func (p *progress) report(logger *slog.Logger, every time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	start := time.Now()
	for {
		select {
		case <-stop:
			return
		case t := <-ticker.C:
			pct := p.percent()
			elapsed := t.Sub(start).Round(time.Second)
			var remaining time.Duration
			if pct > 0 {
				remaining = (time.Duration(float64(elapsed)/(pct/100.0)) - elapsed).Round(time.Second)
			}
			logger.Info("progress", "percent", pct, "elapsed", elapsed, "remaining", remaining)
		}
	}
}
