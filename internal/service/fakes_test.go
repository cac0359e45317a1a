package service

import (
	"context"
	"io"
	"sync"

	"github.com/Strob0t/lukthan/internal/domain/agent"
	"github.com/Strob0t/lukthan/internal/domain/history"
	"github.com/Strob0t/lukthan/internal/domain/voice"
	"github.com/Strob0t/lukthan/internal/port/promptapi"
)

// uploadCall records one multipart upload as the backend would see it.
type uploadCall struct {
	Filename    string
	ContentType string
	Data        []byte
}

// fakeAPI implements promptapi.API. Each hook, when set, replaces the
// default reply; every call is recorded.
type fakeAPI struct {
	mu sync.Mutex

	chatFn       func(context.Context, promptapi.ChatRequest) (*agent.Result, error)
	optimizeFn   func(context.Context, promptapi.ChatRequest) (*agent.Result, error)
	uploadFn     func(context.Context, uploadCall) (*promptapi.Extraction, error)
	transcribeFn func(context.Context, uploadCall) (*voice.Transcription, error)
	listFn       func(context.Context, int) (*history.Page, error)
	getFn        func(context.Context, int64) (*history.Session, error)
	deleteErr    error
	clearErr     error
	resetErr     error

	chatReqs     []promptapi.ChatRequest
	optimizeReqs []promptapi.ChatRequest
	uploads      []uploadCall
	transcribes  []uploadCall
	lists        []int
	gets         []int64
	deletes      []int64
	clears       int
	resets       int
}

var _ promptapi.API = (*fakeAPI)(nil)

func (f *fakeAPI) Chat(ctx context.Context, req promptapi.ChatRequest) (*agent.Result, error) {
	f.mu.Lock()
	f.chatReqs = append(f.chatReqs, req)
	fn := f.chatFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return &agent.Result{Intent: agent.IntentConversation, Response: "ok"}, nil
}

func (f *fakeAPI) Optimize(ctx context.Context, req promptapi.ChatRequest) (*agent.Result, error) {
	f.mu.Lock()
	f.optimizeReqs = append(f.optimizeReqs, req)
	fn := f.optimizeFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return &agent.Result{
		Intent:       agent.IntentPromptOptimization,
		Response:     "optimized",
		Thinking:     []agent.ThinkingStep{},
		Optimization: &agent.Optimization{OptimizedPrompt: "optimized", QualityScore: 80},
	}, nil
}

func readUpload(u promptapi.Upload) uploadCall {
	data, _ := io.ReadAll(u.Body)
	return uploadCall{Filename: u.Filename, ContentType: u.ContentType, Data: data}
}

func (f *fakeAPI) UploadFile(ctx context.Context, u promptapi.Upload) (*promptapi.Extraction, error) {
	call := readUpload(u)
	f.mu.Lock()
	f.uploads = append(f.uploads, call)
	fn := f.uploadFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, call)
	}
	return &promptapi.Extraction{Content: string(call.Data), FileType: "txt"}, nil
}

func (f *fakeAPI) Transcribe(ctx context.Context, u promptapi.Upload) (*voice.Transcription, error) {
	call := readUpload(u)
	f.mu.Lock()
	f.transcribes = append(f.transcribes, call)
	fn := f.transcribeFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, call)
	}
	return &voice.Transcription{Text: "hello world", Success: true}, nil
}

func (f *fakeAPI) ListHistory(ctx context.Context, limit int) (*history.Page, error) {
	f.mu.Lock()
	f.lists = append(f.lists, limit)
	fn := f.listFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, limit)
	}
	return &history.Page{Sessions: []history.Item{{ID: 1, RawPrompt: "p"}}, Total: 1}, nil
}

func (f *fakeAPI) GetSession(ctx context.Context, id int64) (*history.Session, error) {
	f.mu.Lock()
	f.gets = append(f.gets, id)
	fn := f.getFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, id)
	}
	return &history.Session{Item: history.Item{ID: id}}, nil
}

func (f *fakeAPI) DeleteSession(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return f.deleteErr
}

func (f *fakeAPI) ClearHistory(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	return f.clearErr
}

func (f *fakeAPI) ResetConversation(context.Context) (*promptapi.ResetResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	if f.resetErr != nil {
		return nil, f.resetErr
	}
	return &promptapi.ResetResult{Success: true, Message: "reset"}, nil
}

func (f *fakeAPI) chatCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chatReqs)
}

func (f *fakeAPI) resetCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resets
}

func (f *fakeAPI) transcribeCalls() []uploadCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uploadCall(nil), f.transcribes...)
}
