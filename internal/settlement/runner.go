package settlement

import (
	"context"
	"os"
	"time"

	"bidding-engine/utils"

	"code.cloudfoundry.org/clock"
)

const DefaultInterval = time.Minute

// Runner is an ifrit.Runner that settles lapsed auctions on every tick.
// A tick that is still running when the next one is due swallows it, so scans never overlap.
type Runner struct {
	settler  *Settler
	clock    clock.Clock
	interval time.Duration
}

// NewRunner creates a Runner ticking every interval
func NewRunner(settler *Settler, clk clock.Clock, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Runner{settler: settler, clock: clk, interval: interval}
}

// Run ticks until signalled
func (r *Runner) Run(signals <-chan os.Signal, ready chan<- struct{}) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	utils.Info("settlement runner started", map[string]any{"interval": r.interval.String()})
	close(ready)

	for {
		select {
		case sig := <-signals:
			utils.Info("settlement runner stopping", map[string]any{"signal": sig.String()})
			return nil
		case now := <-ticker.C():
			done := make(chan struct{})
			go func() {
				defer close(done)
				r.Tick(ctx, now)
			}()

			select {
			case <-done:
			case sig := <-signals:
				utils.Info("settlement runner stopping mid-scan", map[string]any{"signal": sig.String()})
				cancel()
				<-done
				return nil
			}
		}
	}
}

// Tick runs one settlement scan followed by document and notice retry passes
func (r *Runner) Tick(ctx context.Context, now time.Time) {
	report, err := r.settler.SettleLapsedAuctions(ctx, now)
	if err != nil {
		utils.Error("settlement scan failed", map[string]any{"error": err.Error()})
	} else if report.Scanned > 0 {
		utils.Info("settlement scan finished", map[string]any{
			"scanned":               report.Scanned,
			"settled":               report.Settled,
			"unsold":                report.Unsold,
			"skipped":               report.Skipped,
			"failed":                report.Failed,
			"document_failures":     report.DocumentFailures,
			"notification_failures": report.NotificationFailures,
		})
	}

	attached, err := r.settler.RegenerateMissingDocuments(ctx)
	if err != nil {
		utils.Warn("invoice document retry failed", map[string]any{"error": err.Error()})
	} else if attached > 0 {
		utils.Info("invoice documents attached", map[string]any{"count": attached})
	}

	delivered, err := r.settler.RetryPendingNotices(ctx, now)
	if err != nil {
		utils.Warn("notice retry failed", map[string]any{"error": err.Error()})
	} else if delivered > 0 {
		utils.Info("pending notices delivered", map[string]any{"count": delivered})
	}
}
