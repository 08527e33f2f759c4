package health

import (
	"net/http"
	"testing"
	"time"

	"github.com/caremate/caremate-web/chat"
	"github.com/caremate/caremate-web/forms"
	"github.com/caremate/caremate-web/session"
)

type stubWidget struct {
	ready bool
}

func (w *stubWidget) Kind() string { return chat.KindEmbed }
func (w *stubWidget) Ready() bool  { return w.ready }
func (w *stubWidget) Open() (chat.Launch, error) {
	if !w.ready {
		return chat.Launch{}, chat.ErrNotReady
	}
	return chat.Launch{Kind: chat.KindEmbed}, nil
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		wantStatus string
	}{
		{"chat ready", true, "healthy"},
		{"chat loading", false, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := session.NewStore(time.Hour)
			store.Mount("a", &forms.FoodEntry{})
			store.Mount("b", &forms.Profile{})

			checker := NewHealthChecker(store, &stubWidget{ready: tt.ready}, time.Now())
			status, data, httpStatus := checker.HealthCheck()

			if status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status, tt.wantStatus)
			}
			if httpStatus != http.StatusOK {
				t.Errorf("httpStatus = %d, want 200", httpStatus)
			}
			if data["mounted_pages"] != 2 {
				t.Errorf("mounted_pages = %v, want 2", data["mounted_pages"])
			}
			chatData, ok := data["chat"].(map[string]any)
			if !ok {
				t.Fatalf("Expected chat details, got %T", data["chat"])
			}
			if chatData["ready"] != tt.ready || chatData["kind"] != chat.KindEmbed {
				t.Errorf("Unexpected chat details %v", chatData)
			}
		})
	}
}

func TestHealthCheckPopup(t *testing.T) {
	checker := NewHealthChecker(session.NewStore(time.Hour), chat.NewPopup(), time.Now())
	if status, _, _ := checker.HealthCheck(); status != "healthy" {
		t.Errorf("Expected popup widget to be healthy, got %s", status)
	}
}

func TestStartedAt(t *testing.T) {
	started := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	checker := NewHealthChecker(session.NewStore(time.Hour), chat.NewPopup(), started)
	if !checker.StartedAt().Equal(started) {
		t.Errorf("StartedAt() = %v, want %v", checker.StartedAt(), started)
	}
}
