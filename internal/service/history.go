package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/Strob0t/lukthan/internal/domain/history"
	"github.com/Strob0t/lukthan/internal/port/cache"
	"github.com/Strob0t/lukthan/internal/port/promptapi"
)

const (
	historyListPrefix = "history:list:"

	listFailed   = "Failed to load history."
	getFailed    = "Failed to load session."
	deleteFailed = "Failed to delete session."
	clearFailed  = "Failed to clear history."
)

// HistoryService browses the backend's record of past optimizations.
// List results are cached until they expire or history is modified.
type HistoryService struct {
	api    promptapi.API
	cache  cache.Cache
	ttl    time.Duration
	notify *NotificationService
	log    *slog.Logger

	mu   sync.Mutex
	keys map[string]struct{}
}

// NewHistoryService creates a HistoryService. c may be nil to disable caching.
func NewHistoryService(api promptapi.API, c cache.Cache, ttl time.Duration, notify *NotificationService, log *slog.Logger) *HistoryService {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &HistoryService{api: api, cache: c, ttl: ttl, notify: notify, log: log, keys: make(map[string]struct{})}
}

// List returns up to limit sessions, newest first. A limit <= 0 uses
// history.DefaultLimit.
func (s *HistoryService) List(ctx context.Context, limit int) (*history.Page, error) {
	if limit <= 0 {
		limit = history.DefaultLimit
	}
	key := historyListPrefix + strconv.Itoa(limit)

	if page, ok := s.cached(ctx, key); ok {
		return page, nil
	}

	page, err := s.api.ListHistory(ctx, limit)
	if err != nil {
		s.log.Warn("list history failed", "limit", limit, "error", err)
		s.notify.Error(ctx, "history.list", promptapi.Detail(err, listFailed), err)
		return nil, fmt.Errorf("list history: %w", err)
	}
	s.store(ctx, key, page)
	return page, nil
}

// Get returns one session with its versions.
func (s *HistoryService) Get(ctx context.Context, id int64) (*history.Session, error) {
	sess, err := s.api.GetSession(ctx, id)
	if err != nil {
		s.log.Warn("get history session failed", "session_id", id, "error", err)
		s.notify.Error(ctx, "history.get", promptapi.Detail(err, getFailed), err)
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}
	return sess, nil
}

// Delete removes one session.
func (s *HistoryService) Delete(ctx context.Context, id int64) error {
	if err := s.api.DeleteSession(ctx, id); err != nil {
		s.log.Warn("delete history session failed", "session_id", id, "error", err)
		s.notify.Error(ctx, "history.delete", promptapi.Detail(err, deleteFailed), err)
		return fmt.Errorf("delete session %d: %w", id, err)
	}
	s.invalidate(ctx)
	s.notify.Success(ctx, "history.delete", "Session deleted.")
	return nil
}

// Clear removes every session.
func (s *HistoryService) Clear(ctx context.Context) error {
	if err := s.api.ClearHistory(ctx); err != nil {
		s.log.Warn("clear history failed", "error", err)
		s.notify.Error(ctx, "history.clear", promptapi.Detail(err, clearFailed), err)
		return fmt.Errorf("clear history: %w", err)
	}
	s.invalidate(ctx)
	s.notify.Success(ctx, "history.clear", "History cleared.")
	return nil
}

func (s *HistoryService) cached(ctx context.Context, key string) (*history.Page, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("history cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var page history.Page
	if err := json.Unmarshal(data, &page); err != nil {
		s.log.Warn("history cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	s.log.Debug("history cache hit", "key", key)
	return &page, true
}

func (s *HistoryService) store(ctx context.Context, key string, page *history.Page) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.log.Warn("history cache write failed", "key", key, "error", err)
		return
	}
	s.mu.Lock()
	s.keys[key] = struct{}{}
	s.mu.Unlock()
}

func (s *HistoryService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	keys := make([]string, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	clear(s.keys)
	s.mu.Unlock()

	for _, k := range keys {
		if err := s.cache.Delete(ctx, k); err != nil {
			s.log.Warn("history cache invalidate failed", "key", k, "error", err)
		}
	}
}
