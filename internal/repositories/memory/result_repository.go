package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/ArowuTest/lasto-station-backend/internal/notify"
	"github.com/ArowuTest/lasto-station-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ repositories.ResultRepository = (*ResultRepository)(nil)

// ResultRepository keeps one result per date.
type ResultRepository struct {
	events
	mu      sync.RWMutex
	results map[string]*models.Result
}

// NewResultRepository creates an empty repository.
func NewResultRepository(notifier notify.Notifier) *ResultRepository {
	return &ResultRepository{
		events:  events{name: models.CollectionResults, notifier: notifier},
		results: make(map[string]*models.Result),
	}
}

// FindByDate finds the result for a date
func (r *ResultRepository) FindByDate(ctx context.Context, date string) (*models.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.results[date]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *res
	return &c, nil
}

// Upsert merges the given fields into the result for a date
func (r *ResultRepository) Upsert(ctx context.Context, date string, fields map[string]string) (*models.Result, error) {
	r.mu.Lock()
	res, ok := r.results[date]
	if !ok {
		res = &models.Result{ID: primitive.NewObjectID(), Date: date}
		r.results[date] = res
	}
	res.Apply(fields)
	res.Timestamp = time.Now()
	c := *res
	r.mu.Unlock()

	r.publish(models.OpUpdate, c.ID)
	return &c, nil
}

// FindLatest returns the most recent results, newest first
func (r *ResultRepository) FindLatest(ctx context.Context, limit int) ([]*models.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Result, 0, len(r.results))
	for _, res := range r.results {
		c := *res
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
