package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/ArowuTest/lasto-station-backend/internal/notify"
	"github.com/ArowuTest/lasto-station-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ repositories.UserRepository = (*UserRepository)(nil)

// UserRepository keeps profiles in a map.
type UserRepository struct {
	events
	mu    sync.RWMutex
	users map[primitive.ObjectID]*models.User
}

// NewUserRepository creates an empty repository.
func NewUserRepository(notifier notify.Notifier) *UserRepository {
	return &UserRepository{
		events: events{name: models.CollectionUsers, notifier: notifier},
		users:  make(map[primitive.ObjectID]*models.User),
	}
}

// Create stores a new profile, keeping a preset ID
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	for _, u := range r.users {
		if u.Email == user.Email {
			r.mu.Unlock()
			return fmt.Errorf("duplicate email %q", user.Email)
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = copyUser(user)
	r.mu.Unlock()

	r.publish(models.OpInsert, user.ID)
	return nil
}

// FindByID finds a profile by ID
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyUser(u), nil
}

// FindByEmail finds a profile by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repositories.ErrNotFound
}

// FindAll returns every profile
func (r *UserRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, copyUser(u))
	}
	return out, nil
}

// Delete removes a profile by ID
func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	if _, ok := r.users[id]; !ok {
		r.mu.Unlock()
		return repositories.ErrNotFound
	}
	delete(r.users, id)
	r.mu.Unlock()

	r.publish(models.OpDelete, id)
	return nil
}

// Count returns the number of profiles
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}

// IdentityRepository keeps credential records in a map.
type IdentityRepository struct {
	mu         sync.RWMutex
	identities map[primitive.ObjectID]*models.Identity
}

var _ repositories.IdentityRepository = (*IdentityRepository)(nil)

// NewIdentityRepository creates an empty repository.
func NewIdentityRepository() *IdentityRepository {
	return &IdentityRepository{identities: make(map[primitive.ObjectID]*models.Identity)}
}

// Create stores a new identity
func (r *IdentityRepository) Create(ctx context.Context, identity *models.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.identities {
		if i.Email == identity.Email {
			return fmt.Errorf("duplicate email %q", identity.Email)
		}
	}
	identity.ID = primitive.NewObjectID()
	identity.CreatedAt = time.Now()
	c := *identity
	r.identities[identity.ID] = &c
	return nil
}

// FindByEmail finds an identity by email
func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, i := range r.identities {
		if i.Email == email {
			c := *i
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// Delete removes an identity by ID
func (r *IdentityRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.identities[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.identities, id)
	return nil
}
