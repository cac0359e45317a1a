package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Strob0t/lukthan/internal/config"
	"github.com/Strob0t/lukthan/internal/domain/agent"
	"github.com/Strob0t/lukthan/internal/domain/history"
	"github.com/Strob0t/lukthan/internal/domain/settings"
	"github.com/Strob0t/lukthan/internal/port/promptapi"
	"github.com/Strob0t/lukthan/internal/service"
)

// stubAPI implements only the calls the mirror reaches; the embedded nil
// interface panics on anything else.
type stubAPI struct {
	promptapi.API

	mu     sync.Mutex
	limits []int
	resets int
}

func (s *stubAPI) Chat(_ context.Context, req promptapi.ChatRequest) (*agent.Result, error) {
	return &agent.Result{Intent: agent.IntentConversation, Response: "re: " + req.UserInput}, nil
}

func (s *stubAPI) ListHistory(_ context.Context, limit int) (*history.Page, error) {
	s.mu.Lock()
	s.limits = append(s.limits, limit)
	s.mu.Unlock()
	return &history.Page{Sessions: []history.Item{{ID: 7, RawPrompt: "write a haiku"}}, Total: 1}, nil
}

func (s *stubAPI) GetSession(_ context.Context, id int64) (*history.Session, error) {
	if id != 7 {
		return nil, &promptapi.Error{Status: http.StatusNotFound, Detail: "Session not found"}
	}
	return &history.Session{Item: history.Item{ID: 7}}, nil
}

func (s *stubAPI) ResetConversation(context.Context) (*promptapi.ResetResult, error) {
	s.mu.Lock()
	s.resets++
	s.mu.Unlock()
	return &promptapi.ResetResult{Success: true}, nil
}

type fixedViewers int

func (v fixedViewers) ConnectionCount() int { return int(v) }

func newTestRouter(t *testing.T) (http.Handler, *service.Session, *stubAPI) {
	t.Helper()
	api := &stubAPI{}
	cfg := config.Defaults()
	sess := service.NewSession(&cfg, service.SessionDeps{API: api})
	t.Cleanup(func() { _ = sess.Close() })
	h := &Handlers{Session: sess, Viewers: fixedViewers(2)}
	return NewRouter(h, nil, cfg.Mirror, "lukthan-test", nil), sess, api
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	r, _, _ := newTestRouter(t)
	rec := do(t, r, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Status  string `json:"status"`
		Viewers int    `json:"viewers"`
		Busy    bool   `json:"busy"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" || body.Viewers != 2 || body.Busy {
		t.Errorf("unexpected health %+v", body)
	}
}

func TestGetConversation(t *testing.T) {
	r, sess, _ := newTestRouter(t)
	if _, err := sess.Send(context.Background(), "hello"); err != nil {
		t.Fatal(err)
	}

	rec := do(t, r, http.MethodGet, "/api/conversation", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var view SessionView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatal(err)
	}
	if len(view.Messages) != 2 || view.Messages[0].Text != "hello" || view.Messages[1].Pending {
		t.Errorf("unexpected messages %+v", view.Messages)
	}
	if view.Busy || view.Thinking != "" {
		t.Errorf("idle session reported busy: %+v", view)
	}
}

func TestPatchSettings(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantResets int
	}{
		{"switch to guided", `{"mode":"guided"}`, http.StatusOK, 1},
		{"change target", `{"target_ai":"gemini"}`, http.StatusOK, 0},
		{"invalid mode", `{"mode":"auto"}`, http.StatusBadRequest, 0},
		{"unknown field", `{"colour":"red"}`, http.StatusBadRequest, 0},
		{"malformed", `{`, http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, sess, api := newTestRouter(t)
			rec := do(t, r, http.MethodPatch, "/api/settings", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if api.resets != tt.wantResets {
				t.Errorf("resets = %d, want %d", api.resets, tt.wantResets)
			}
			if tt.wantStatus != http.StatusOK && sess.Settings.Get() != settings.Defaults() {
				t.Errorf("rejected patch changed settings: %+v", sess.Settings.Get())
			}
		})
	}
}

func TestPatchSettingsValidationMessage(t *testing.T) {
	r, _, _ := newTestRouter(t)
	rec := do(t, r, http.MethodPatch, "/api/settings", `{"mode":"auto"}`)
	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(body.Error, "mode must be direct or guided") {
		t.Errorf("error = %q", body.Error)
	}
}

func TestListHistory(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantLimit  int
	}{
		{"default limit", "", http.StatusOK, history.DefaultLimit},
		{"explicit limit", "?limit=5", http.StatusOK, 5},
		{"zero", "?limit=0", http.StatusBadRequest, 0},
		{"not a number", "?limit=ten", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, api := newTestRouter(t)
			rec := do(t, r, http.MethodGet, "/api/history"+tt.query, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantLimit == 0 {
				if len(api.limits) != 0 {
					t.Error("rejected request reached the backend")
				}
				return
			}
			if len(api.limits) != 1 || api.limits[0] != tt.wantLimit {
				t.Errorf("limits = %v, want [%d]", api.limits, tt.wantLimit)
			}
		})
	}
}

func TestGetHistorySession(t *testing.T) {
	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/api/history/7", http.StatusOK},
		{"/api/history/8", http.StatusNotFound},
		{"/api/history/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r, _, _ := newTestRouter(t)
			if rec := do(t, r, http.MethodGet, tt.path, ""); rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler(), slog.New(slog.DiscardHandler))
	}()
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Serve returned %v", err)
	}
}
