package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/ArowuTest/lasto-station-backend/internal/notify"
	"github.com/ArowuTest/lasto-station-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ repositories.LoadControlRepository = (*LoadControlRepository)(nil)

// LoadControlRepository holds at most one document.
type LoadControlRepository struct {
	events
	mu sync.RWMutex
	lc *models.LoadControl
}

// NewLoadControlRepository creates an empty repository.
func NewLoadControlRepository(notifier notify.Notifier) *LoadControlRepository {
	return &LoadControlRepository{events: events{name: models.CollectionLoadControl, notifier: notifier}}
}

// Get returns the load control document
func (r *LoadControlRepository) Get(ctx context.Context) (*models.LoadControl, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.lc == nil {
		return nil, repositories.ErrNotFound
	}
	return copyLoadControl(r.lc), nil
}

// Upsert replaces the load control document, keeping its ID
func (r *LoadControlRepository) Upsert(ctx context.Context, lc *models.LoadControl) (*models.LoadControl, error) {
	r.mu.Lock()
	saved := copyLoadControl(lc)
	if r.lc == nil {
		saved.ID = primitive.NewObjectID()
	} else {
		saved.ID = r.lc.ID
	}
	saved.UpdatedAt = time.Now()
	r.lc = saved
	out := copyLoadControl(saved)
	r.mu.Unlock()

	r.publish(models.OpUpdate, out.ID)
	return out, nil
}
