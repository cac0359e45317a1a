package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Strob0t/lukthan/internal/config"
	"github.com/Strob0t/lukthan/internal/domain"
	"github.com/Strob0t/lukthan/internal/domain/agent"
	"github.com/Strob0t/lukthan/internal/port/notifier"
	"github.com/Strob0t/lukthan/internal/port/promptapi"
)

func newTestSession(api *fakeAPI, n *mockNotifier) *Session {
	cfg := config.Defaults()
	cfg.Wizard.AdvanceDelay = 0
	return NewSession(&cfg, SessionDeps{
		API:       api,
		Device:    &fakeDevice{capture: &fakeCapture{data: []byte("a")}},
		Notifiers: []notifier.Notifier{n},
	})
}

func TestSession_SendConsumesAttachment(t *testing.T) {
	api := &fakeAPI{}
	s := newTestSession(api, &mockNotifier{})
	ctx := context.Background()

	if _, err := s.Attachments.Upload(ctx, "spec.md", strings.NewReader("# title")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Send(ctx, "   "); !errors.Is(err, domain.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if s.Attachments.Pending() == nil {
		t.Fatal("rejected send must keep the attachment")
	}

	if _, err := s.Send(ctx, "summarize"); err != nil {
		t.Fatal(err)
	}
	if req := api.chatReqs[0]; req.FileContent != "# title" || req.FileType != "txt" {
		t.Errorf("attachment not sent: %+v", req)
	}
	if s.Attachments.Pending() != nil {
		t.Error("attachment not consumed by send")
	}
}

func TestSession_FailedSendStillConsumesAttachment(t *testing.T) {
	api := &fakeAPI{chatFn: func(context.Context, promptapi.ChatRequest) (*agent.Result, error) {
		return nil, errors.New("down")
	}}
	s := newTestSession(api, &mockNotifier{})
	ctx := context.Background()
	_, _ = s.Attachments.Upload(ctx, "a.txt", strings.NewReader("x"))

	if _, err := s.Send(ctx, "go"); err == nil {
		t.Fatal("expected error")
	}
	if s.Attachments.Pending() != nil {
		t.Error("attachment should be cleared after an attempted send")
	}
}

func TestSession_UploadDuringSendStaysPending(t *testing.T) {
	inFlight := make(chan struct{})
	release := make(chan struct{})
	api := &fakeAPI{chatFn: func(context.Context, promptapi.ChatRequest) (*agent.Result, error) {
		close(inFlight)
		<-release
		return &agent.Result{Intent: agent.IntentConversation, Response: "ok"}, nil
	}}
	s := newTestSession(api, &mockNotifier{})
	ctx := context.Background()
	if _, err := s.Attachments.Upload(ctx, "first.txt", strings.NewReader("one")); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.Send(ctx, "hi")
		done <- err
	}()
	<-inFlight
	if _, err := s.Attachments.Upload(ctx, "notes.txt", strings.NewReader("two")); err != nil {
		t.Fatal(err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	if got := api.chatReqs[0].FileContent; got != "one" {
		t.Errorf("sent file content = %q", got)
	}
	pending := s.Attachments.Pending()
	if pending == nil || pending.Name != "notes.txt" {
		t.Fatalf("file chosen during the send was dropped, pending = %+v", pending)
	}
}

func TestSession_SendWithoutAttachmentKeepsLaterUpload(t *testing.T) {
	inFlight := make(chan struct{})
	release := make(chan struct{})
	api := &fakeAPI{chatFn: func(context.Context, promptapi.ChatRequest) (*agent.Result, error) {
		close(inFlight)
		<-release
		return &agent.Result{Intent: agent.IntentConversation, Response: "ok"}, nil
	}}
	s := newTestSession(api, &mockNotifier{})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := s.Send(ctx, "hi")
		done <- err
	}()
	<-inFlight
	_, _ = s.Attachments.Upload(ctx, "late.txt", strings.NewReader("x"))
	close(release)
	<-done

	if s.Attachments.Pending() == nil {
		t.Error("upload made during a plain send was dropped")
	}
}

func TestSession_RegenerateLast(t *testing.T) {
	api := &fakeAPI{}
	s := newTestSession(api, &mockNotifier{})
	ctx := context.Background()

	if _, err := s.RegenerateLast(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on empty log, got %v", err)
	}
	_, _ = s.Send(ctx, "hello")
	if _, err := s.RegenerateLast(ctx); err != nil {
		t.Fatal(err)
	}
	if api.chatCount() != 2 {
		t.Errorf("expected 2 chat calls, got %d", api.chatCount())
	}
}

func TestSession_NewChat(t *testing.T) {
	s := newTestSession(&fakeAPI{}, &mockNotifier{})
	ctx := context.Background()
	_, _ = s.Send(ctx, "hello")
	_, _ = s.Attachments.Upload(ctx, "a.txt", strings.NewReader("x"))
	_ = s.Wizard.Select("api")

	s.NewChat()
	if s.Log.Len() != 0 || s.Attachments.Pending() != nil || s.Wizard.View().Step != 1 {
		t.Error("NewChat left state behind")
	}
}

func TestSession_ResetConversation(t *testing.T) {
	n := &mockNotifier{}
	api := &fakeAPI{}
	s := newTestSession(api, n)
	if err := s.ResetConversation(context.Background()); err != nil {
		t.Fatal(err)
	}
	if api.resetCount() != 1 || n.last().Message != "reset" {
		t.Errorf("resets %d, notice %+v", api.resetCount(), n.last())
	}

	api.resetErr = errors.New("x")
	if err := s.ResetConversation(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if n.last().Message != "Failed to reset guided conversation." {
		t.Errorf("notice = %q", n.last().Message)
	}
}

func TestSession_SourcesIncludeVoice(t *testing.T) {
	s := newTestSession(&fakeAPI{}, &mockNotifier{})
	if got := len(s.Sources()); got != 4 {
		t.Errorf("expected 4 sources, got %d", got)
	}
	if err := s.Close(); err != nil {
		t.Error(err)
	}
}
