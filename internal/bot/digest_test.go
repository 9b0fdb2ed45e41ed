package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spravuz/spravbot/internal/store"
)

func TestNextCronDuration(t *testing.T) {
	tests := []struct {
		expr  string
		valid bool
	}{
		{"* * * * *", true},
		{"0 9 * * *", true},
		{"*/5 * * * *", true},
		{"", false},
		{"not a cron", false},
		{"0 9 * *", false}, // 4 fields
	}
	for _, tt := range tests {
		d := nextCronDuration(tt.expr)
		if tt.valid && d <= 0 {
			t.Errorf("nextCronDuration(%q) = %v, want positive", tt.expr, d)
		}
		if !tt.valid && d != 0 {
			t.Errorf("nextCronDuration(%q) = %v, want 0", tt.expr, d)
		}
	}
}

func TestNextCronDuration_EveryMinuteIsUnderAMinute(t *testing.T) {
	if d := nextCronDuration("* * * * *"); d > time.Minute {
		t.Errorf("duration = %v, want at most a minute", d)
	}
}

func TestFormatDigest(t *testing.T) {
	got := FormatDigest(&store.Stats{
		TotalRequests: 10, NewRequests: 4, InProgress: 3, Completed: 3, TotalUsers: 7,
	})
	for _, want := range []string{"10", "4", "3", "7", "Заявки", "Пользователи"} {
		if !strings.Contains(got, want) {
			t.Errorf("digest %q missing %q", got, want)
		}
	}
}

func TestFireDigest_SendsToConfiguredChat(t *testing.T) {
	d, st, gw := newTestDaemon(t)
	d.digest = DigestOpts{Enabled: true, Cron: "0 9 * * *", ChatID: -100}

	st.CreateRequest(1, store.MessagePayload{Message: "x"})
	d.fireDigest(context.Background())

	sent, ok := gw.LastSent()
	if !ok {
		t.Fatal("digest not sent")
	}
	if sent.Identity != -100 {
		t.Errorf("digest sent to %d, want -100", sent.Identity)
	}
	if !strings.Contains(sent.Text, "1") {
		t.Errorf("digest text = %q", sent.Text)
	}
}

func TestFireDigest_ToleratesSendFailure(t *testing.T) {
	d, _, gw := newTestDaemon(t)
	d.digest = DigestOpts{Enabled: true, Cron: "0 9 * * *", ChatID: -100}

	gw.FailNextSends(1)
	d.fireDigest(context.Background()) // must not panic

	if gw.SentCount() != 0 {
		t.Errorf("sent = %d, want 0", gw.SentCount())
	}
}
