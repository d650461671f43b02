package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/Vodeneev/nbaprops/internal/pkg/config"
	"github.com/Vodeneev/nbaprops/internal/pkg/performance"
)

func TestTelegramNotifierSendsSummary(t *testing.T) {
	var sent []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"props","username":"props_bot"}}`)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			if err := r.ParseForm(); err != nil {
				t.Errorf("parse form: %v", err)
			}
			if r.FormValue("chat_id") != "42" {
				t.Errorf("chat_id = %q", r.FormValue("chat_id"))
			}
			sent = append(sent, r.FormValue("text"))
			fmt.Fprint(w, `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`)
		default:
			t.Errorf("unexpected call %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	n, err := newTelegramNotifier("TOKEN", 42, srv.URL+"/bot%s/%s", srv.Client(), nil)
	if err != nil {
		t.Fatalf("newTelegramNotifier: %v", err)
	}

	r := performance.NewRunReport("run-1", "2024-12-10 18:00:00", time.Now())
	r.AddMarket(performance.MarketResult{MarketID: 156, Market: "Points o/u", Rows: 10, Inserted: 8, Players: 5})
	r.AddMarket(performance.MarketResult{MarketID: 157, Market: "Rebounds o/u", Error: "store rows: disk full"})
	r.Finish(time.Now(), nil)

	if err := n.NotifyRun(context.Background(), r); err != nil {
		t.Fatalf("NotifyRun: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	for _, want := range []string{"2024-12-10 18:00:00", "Points o/u: 10 rows, 8 new", "Rebounds o/u: store rows: disk full"} {
		if !strings.Contains(sent[0], want) {
			t.Errorf("message %q does not contain %q", sent[0], want)
		}
	}
}

func TestNewFromConfigDisabled(t *testing.T) {
	n, err := NewFromConfig(config.TelegramConfig{}, nil)
	if err != nil || n != nil {
		t.Fatalf("NewFromConfig(empty) = %v, %v; want nil, nil", n, err)
	}
}

func TestTruncateMessage(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantRunes int
		truncated bool
	}{
		{"short text untouched", "Nikola Jokić: 3 rows", 20, false},
		{"exact limit untouched", strings.Repeat("é", 10), 10, false},
		{"multi-byte text cut on rune boundary", strings.Repeat("é", 15), 10, true},
		{"ascii text cut", strings.Repeat("a", 15), 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateMessage(tt.text, 10)
			if tt.truncated == (got == tt.text) {
				t.Fatalf("truncateMessage(%q) = %q", tt.text, got)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("result is not valid UTF-8: %q", got)
			}
			if tt.truncated {
				if n := utf8.RuneCountInString(got); n != 10 || !strings.HasSuffix(got, "...") {
					t.Fatalf("got %q (%d runes), want 10 runes ending in ...", got, n)
				}
			} else if utf8.RuneCountInString(got) != tt.wantRunes {
				t.Fatalf("got %q", got)
			}
		})
	}
}
