// Package memory is a process-local LinkRepository used by tests and by the
// server when no database is configured.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/domain"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/ports"
)

var ErrNotFound = errors.New("link not found")

type Repository struct {
	mu      sync.RWMutex
	links   map[string]*domain.Link
	deleted map[string]struct{} // ids stay reserved after Delete
	visits  []domain.Visit
}

func NewRepository() *Repository {
	return &Repository{
		links:   make(map[string]*domain.Link),
		deleted: make(map[string]struct{}),
	}
}

func (r *Repository) Get(ctx context.Context, id string) (*domain.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	link, ok := r.links[id]
	if !ok {
		return nil, nil
	}
	out := link.Clone()
	out.ApplyDefaults()
	return out, nil
}

func (r *Repository) Set(ctx context.Context, link *domain.Link) error {
	if link == nil || link.ID == "" {
		return errors.New("link id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := link.Clone()
	if existing, ok := r.links[link.ID]; ok && existing.Clicks > stored.Clicks {
		// clicks only move through IncrementClicks
		stored.Clicks = existing.Clicks
	}
	r.links[link.ID] = stored
	return nil
}

func (r *Repository) IncrementClicks(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[id]
	if !ok {
		return ErrNotFound
	}
	link.Clicks++
	link.UpdatedAt = time.Now()
	return nil
}

func (r *Repository) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.links[id]; ok {
		return true, nil
	}
	_, ok := r.deleted[id]
	return ok, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.links[id]; ok {
		delete(r.links, id)
		r.deleted[id] = struct{}{}
	}
	return nil
}

func (r *Repository) List(ctx context.Context, limit, offset int, filters map[string]interface{}) ([]domain.Link, error) {
	links := r.filtered(filters)
	sort.SliceStable(links, func(i, j int) bool {
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})
	return page(links, limit, offset), nil
}

func (r *Repository) Count(ctx context.Context, filters map[string]interface{}) (int64, error) {
	return int64(len(r.filtered(filters))), nil
}

func (r *Repository) Dump(ctx context.Context) ([]domain.Link, error) {
	links := r.filtered(nil)
	sort.Slice(links, func(i, j int) bool { return links[i].ID < links[j].ID })
	return links, nil
}

func (r *Repository) RecordVisit(ctx context.Context, visit *domain.Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[visit.LinkID]
	if !ok {
		return ErrNotFound
	}
	link.Analytics.Record(visit.DeviceInfo())
	r.visits = append(r.visits, *visit)
	return nil
}

func (r *Repository) GetLinkStats(ctx context.Context, id string) (*domain.LinkStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	link, ok := r.links[id]
	if !ok {
		return nil, ErrNotFound
	}

	stats := &domain.LinkStats{
		Analytics:   link.Analytics.Copy(),
		Referrers:   make(map[string]int64),
		DailyClicks: []domain.DailyClick{},
	}

	daily := map[string]int64{}
	for _, v := range r.visits {
		if v.LinkID != id {
			continue
		}
		stats.TotalClicks++
		ref := v.Referer
		if ref == "" {
			ref = "Direct"
		}
		stats.Referrers[ref]++
		daily[v.CreatedAt.Format("2006-01-02")]++
	}
	for date, count := range daily {
		stats.DailyClicks = append(stats.DailyClicks, domain.DailyClick{Date: date, Count: count})
	}
	sort.Slice(stats.DailyClicks, func(i, j int) bool {
		return stats.DailyClicks[i].Date > stats.DailyClicks[j].Date
	})
	return stats, nil
}

func (r *Repository) GetDashboardStats(ctx context.Context, limit int, filters map[string]interface{}) ([]domain.Link, int64, error) {
	links := r.filtered(filters)
	var total int64
	for _, l := range r.filtered(nil) {
		total += l.Clicks
	}
	sort.SliceStable(links, func(i, j int) bool { return links[i].Clicks > links[j].Clicks })
	return page(links, limit, 0), total, nil
}

// Visits returns a copy of the recorded visits.
func (r *Repository) Visits() []domain.Visit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Visit(nil), r.visits...)
}

func (r *Repository) filtered(filters map[string]interface{}) []domain.Link {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search, _ := filters["search"].(string)
	domainFilter, _ := filters["domain"].(string)

	links := make([]domain.Link, 0, len(r.links))
	for _, l := range r.links {
		if search != "" && !strings.Contains(l.ID, search) && !strings.Contains(l.OriginalURL, search) {
			continue
		}
		if domainFilter != "" && !strings.Contains(l.OriginalURL, domainFilter) {
			continue
		}
		out := l.Clone()
		out.ApplyDefaults()
		links = append(links, *out)
	}
	return links
}

func page(links []domain.Link, limit, offset int) []domain.Link {
	if offset >= len(links) {
		return []domain.Link{}
	}
	links = links[offset:]
	if limit > 0 && limit < len(links) {
		links = links[:limit]
	}
	return links
}

// Ensure interface compliance
var _ ports.LinkRepository = (*Repository)(nil)
