package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kuyajp123/Rescuenect-sub003/internal/domain"
)

// MemoryNotificationsRepository is the test/DB-less notifications store.
type MemoryNotificationsRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.NotificationRecord
}

func NewMemoryNotificationsRepository() *MemoryNotificationsRepository {
	return &MemoryNotificationsRepository{records: map[string]*domain.NotificationRecord{}}
}

var _ NotificationsRepository = (*MemoryNotificationsRepository)(nil)

func (r *MemoryNotificationsRepository) Create(_ context.Context, n *domain.NotificationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *n
	cp.ReadBy = append([]string{}, n.ReadBy...)
	r.records[n.ID] = &cp
	return nil
}

func (r *MemoryNotificationsRepository) Get(_ context.Context, id string) (*domain.NotificationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *n
	cp.ReadBy = append([]string{}, n.ReadBy...)
	return &cp, nil
}

func (r *MemoryNotificationsRepository) MarkRead(_ context.Context, id, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.records[id]
	if !ok {
		return ErrNotFound
	}
	if !n.ReadByUser(uid) {
		n.ReadBy = append(n.ReadBy, uid)
	}
	return nil
}

func (r *MemoryNotificationsRepository) List(_ context.Context, limit int) ([]*domain.NotificationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	out := []*domain.NotificationRecord{}
	for _, n := range r.records {
		cp := *n
		cp.ReadBy = append([]string{}, n.ReadBy...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryNotificationsRepository) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, rec := range r.records {
		if rec.ExpiresAt != nil && !rec.ExpiresAt.After(now) {
			delete(r.records, id)
			n++
		}
	}
	return n, nil
}

// MemoryDeviceTokensRepository is the test/DB-less token store.
type MemoryDeviceTokensRepository struct {
	mu     sync.RWMutex
	tokens map[string]*domain.DeviceToken
}

func NewMemoryDeviceTokensRepository() *MemoryDeviceTokensRepository {
	return &MemoryDeviceTokensRepository{tokens: map[string]*domain.DeviceToken{}}
}

var _ DeviceTokensRepository = (*MemoryDeviceTokensRepository)(nil)

func (r *MemoryDeviceTokensRepository) Register(_ context.Context, t *domain.DeviceToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.tokens[t.Token] = &cp
	return nil
}

func (r *MemoryDeviceTokensRepository) Remove(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

func (r *MemoryDeviceTokensRepository) ListAll(_ context.Context) ([]*domain.DeviceToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.DeviceToken{}
	for _, t := range r.tokens {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MemoryDeviceTokensRepository) ListByUID(_ context.Context, uid string) ([]*domain.DeviceToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.DeviceToken{}
	for _, t := range r.tokens {
		if t.UID == uid {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}
