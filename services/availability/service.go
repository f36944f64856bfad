package availability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"opsdash/models"

	"go.uber.org/zap"
)

// SlotSource is the part of the backend that publishes slots.
type SlotSource interface {
	ListAvailableSlots(ctx context.Context) ([]models.AvailableSlot, error)
}

// Service keeps the last fetched index. Every Refresh replaces it wholesale;
// slots are never merged or removed locally.
type Service struct {
	source SlotSource
	logger *zap.Logger

	mu        sync.RWMutex
	index     Index
	fetchedAt time.Time
	loaded    bool
}

func NewService(source SlotSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source: source,
		logger: logger,
		index:  IndexSlots(nil),
	}
}

// Refresh fetches the slot list and supersedes the held index. On failure the
// previous index is kept.
func (s *Service) Refresh(ctx context.Context) (Index, error) {
	slots, err := s.source.ListAvailableSlots(ctx)
	if err != nil {
		s.logger.Warn("availability refresh failed", zap.Error(err))
		return s.Current(), fmt.Errorf("failed to fetch available slots: %w", err)
	}
	idx := IndexSlots(slots)

	s.mu.Lock()
	s.index = idx
	s.fetchedAt = time.Now()
	s.loaded = true
	s.mu.Unlock()

	s.logger.Debug("availability refreshed",
		zap.Int("slots", idx.Len()),
		zap.Int("dates", len(idx.UniqueDates)),
	)
	return idx, nil
}

// Current returns the last index without fetching.
func (s *Service) Current() Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Get returns the held index, fetching it first if nothing was loaded yet.
func (s *Service) Get(ctx context.Context) (Index, error) {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if !loaded {
		return s.Refresh(ctx)
	}
	return s.Current(), nil
}

// FetchedAt is the time of the last successful refresh.
func (s *Service) FetchedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchedAt
}
