// Package scheduler runs the periodic background jobs: refreshing the
// inventory gauges and warning about audits left open too long.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/assettrack/assettrack/internal/metrics"
	"github.com/assettrack/assettrack/internal/repo"
	"github.com/robfig/cron/v3"
)

// Run starts the cron scheduler and blocks. staleAfter is how long an
// audit may stay open before a warning is logged on each sweep.
func Run(items *repo.ItemRepo, audits *repo.AuditRepo, staleAfter time.Duration) {
	c := cron.New()

	refresh := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if n, err := items.CountActive(ctx); err != nil {
			slog.Error("scheduler: count active items", "err", err)
		} else {
			metrics.SetActiveItems(n)
		}

		open, err := audits.OpenAudits(ctx)
		if err != nil {
			slog.Error("scheduler: list open audits", "err", err)
			return
		}
		metrics.SetOpenAudits(len(open))

		for _, a := range open {
			if age := time.Since(a.StartedAt); age > staleAfter {
				slog.Warn("audit open for a long time",
					"audit_id", a.ID,
					"name", a.Name,
					"open_for", age.Round(time.Hour).String())
			}
		}
	}

	if _, err := c.AddFunc("@every 1m", refresh); err != nil {
		slog.Error("scheduler: add refresh job", "err", err)
		return
	}

	refresh()
	c.Start()
	select {}
}
