package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"github.com/ArowuTest/lasto-station-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var _ repositories.IdentityRepository = (*IdentityRepository)(nil)

// IdentityRepository stores credentials, usually in a database of its own.
type IdentityRepository struct {
	collection *mongo.Collection
}

// NewIdentityRepository creates a new IdentityRepository
func NewIdentityRepository(db *mongo.Database) *IdentityRepository {
	return &IdentityRepository{
		collection: db.Collection(models.CollectionIdentities),
	}
}

// Create inserts a credential record and assigns its ID
func (r *IdentityRepository) Create(ctx context.Context, identity *models.Identity) error {
	identity.ID = primitive.NewObjectID()
	identity.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, identity)
	return err
}

// FindByEmail finds a credential record by email
func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	var identity models.Identity
	if err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&identity); err != nil {
		return nil, notFound(err)
	}
	return &identity, nil
}

// Delete removes a credential record
func (r *IdentityRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
