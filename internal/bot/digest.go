package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spravuz/spravbot/internal/gateway"
	"github.com/spravuz/spravbot/internal/store"
)

// DigestOpts configures the periodic stats digest posted to an admin chat.
type DigestOpts struct {
	Enabled bool
	Cron    string // 5-field cron expression
	ChatID  int64
}

// runDigestScheduler fires the stats digest on the configured cron
// schedule until the context is cancelled.
func (d *Daemon) runDigestScheduler(ctx context.Context) {
	dur := nextCronDuration(d.digest.Cron)
	if dur <= 0 {
		log.Printf("bot: digest: invalid cron expression %q", d.digest.Cron)
		return
	}

	timer := time.NewTimer(dur)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			d.fireDigest(ctx)
			if dur := nextCronDuration(d.digest.Cron); dur > 0 {
				timer.Reset(dur)
			}
		}
	}
}

// fireDigest builds and sends one stats digest (best-effort).
func (d *Daemon) fireDigest(ctx context.Context) {
	stats, err := d.store.Stats()
	if err != nil {
		log.Printf("bot: digest: %v", err)
		return
	}
	if err := d.gateway.Send(ctx, gateway.OutboundPrompt{
		Identity: d.digest.ChatID,
		Text:     FormatDigest(stats),
	}); err != nil {
		log.Printf("bot: send digest: %v", err)
	}
}

// FormatDigest renders the stats summary sent to the admin chat.
func FormatDigest(stats *store.Stats) string {
	return fmt.Sprintf(
		"📊 Заявки: %d всего\n🆕 Новые: %d\n⏳ В работе: %d\n✅ Завершены: %d\n👥 Пользователи: %d",
		stats.TotalRequests, stats.NewRequests, stats.InProgress, stats.Completed, stats.TotalUsers)
}
