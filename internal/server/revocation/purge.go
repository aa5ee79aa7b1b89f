package revocation

import (
	"context"
	"time"

	"github.com/dmitrijs2005/falcontrade/internal/logging"
)

// PurgeLoop removes expired denylist entries every interval until ctx is done.
// Only the PostgreSQL registry needs it; Redis keys carry their own TTL.
type PurgeLoop struct {
	purger   Purger
	interval time.Duration
	logger   logging.Logger
	now      func() time.Time
}

func NewPurgeLoop(p Purger, interval time.Duration, l logging.Logger) *PurgeLoop {
	return &PurgeLoop{
		purger:   p,
		interval: interval,
		logger:   l.With("module", "revocation_purge"),
		now:      time.Now,
	}
}

func (p *PurgeLoop) Run(ctx context.Context) {
	if p.interval <= 0 {
		p.logger.Info(ctx, "revocation purge disabled")
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.purgeOnce(ctx)
		}
	}
}

func (p *PurgeLoop) purgeOnce(ctx context.Context) {
	n, err := p.purger.PurgeExpired(ctx, p.now())
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Error(ctx, "revocation purge failed", "error", err.Error())
		}
		return
	}
	if n > 0 {
		p.logger.Info(ctx, "expired revocations purged", "count", n)
	}
}
