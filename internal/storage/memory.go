package storage

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"daytrack/internal/core"
)

// MemoryStore keeps records in a slice, newest first like the list the
// front end renders.
type MemoryStore struct {
	mu    sync.Mutex
	items []core.DailyRecord
	now   func() time.Time
}

var _ RecordStore = (*MemoryStore)(nil)

func NewMemoryStore(seed ...core.DailyRecord) *MemoryStore {
	s := &MemoryStore{now: time.Now}
	for _, r := range seed {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		s.items = append(s.items, r)
	}
	return s
}

func (s *MemoryStore) List(_ context.Context) ([]core.DailyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items), nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (core.DailyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		return s.items[i], nil
	}
	return core.DailyRecord{}, ErrNotFound
}

func (s *MemoryStore) Create(_ context.Context, r core.DailyRecord) (core.DailyRecord, error) {
	if err := r.Validate(); err != nil {
		return core.DailyRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = uuid.NewString()
	r.CreatedAt = s.now().UTC()
	s.items = append([]core.DailyRecord{r}, s.items...)
	return r, nil
}

func (s *MemoryStore) Update(_ context.Context, r core.DailyRecord) (core.DailyRecord, error) {
	if err := r.Validate(); err != nil {
		return core.DailyRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(r.ID)
	if i < 0 {
		return core.DailyRecord{}, ErrNotFound
	}
	r.CreatedAt = s.items[i].CreatedAt
	s.items[i] = r
	return r, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return ErrNotFound
	}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) index(id string) int {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.items, func(r core.DailyRecord) bool { return r.ID == id })
}
