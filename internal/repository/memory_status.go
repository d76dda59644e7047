package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kuyajp123/Rescuenect-sub003/internal/domain"
)

// MemoryStatusRepository backs unit tests and DB-less local runs. The mutex
// gives Create the same supersede atomicity the Postgres transaction does.
type MemoryStatusRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.StatusRecord // versionID -> record
}

func NewMemoryStatusRepository() *MemoryStatusRepository {
	return &MemoryStatusRepository{records: map[string]*domain.StatusRecord{}}
}

var _ StatusRepository = (*MemoryStatusRepository)(nil)

func (r *MemoryStatusRepository) CreateStatus(_ context.Context, rec *domain.StatusRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records {
		if existing.UID == rec.UID && existing.Type == domain.StatusTypeCurrent {
			existing.Type = domain.StatusTypeHistory
			t := rec.CreatedAt
			existing.UpdatedAt = &t
			rec.ParentID = existing.ParentID
			break
		}
	}

	rec.Type = domain.StatusTypeCurrent
	cp := *rec
	r.records[rec.VersionID] = &cp
	return nil
}

func (r *MemoryStatusRepository) GetCurrent(_ context.Context, uid string) (*domain.StatusRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.records {
		if rec.UID == uid && rec.Type == domain.StatusTypeCurrent {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryStatusRepository) DeleteCurrent(_ context.Context, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.records {
		if rec.UID == uid && rec.Type == domain.StatusTypeCurrent {
			now := time.Now()
			rec.Type = domain.StatusTypeDeleted
			rec.DeletedAt = &now
			rec.UpdatedAt = &now
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryStatusRepository) ResolveCurrent(_ context.Context, parentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.records {
		if rec.ParentID == parentID && rec.Type == domain.StatusTypeCurrent {
			now := time.Now()
			rec.Type = domain.StatusTypeHistory
			rec.ResolvedAt = &now
			rec.UpdatedAt = &now
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryStatusRepository) ListVersions(_ context.Context, uid, parentID string) ([]*domain.StatusRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.StatusRecord{}
	for _, rec := range r.records {
		if rec.UID == uid && rec.ParentID == parentID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryStatusRepository) ListLatest(_ context.Context, now time.Time) ([]*domain.StatusRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.StatusRecord{}
	for _, rec := range r.records {
		if rec.Type == domain.StatusTypeCurrent && rec.IsActive(now) {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryStatusRepository) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, rec := range r.records {
		if !rec.IsRetained(now) && rec.Type != domain.StatusTypeCurrent {
			delete(r.records, id)
			n++
		}
	}
	return n, nil
}
