package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hirehub/jobboard/internal/core/domain"
)

const collectionCompanies = "companies"

// CompanyRepository implements ports.CompanyRepository. Records share the
// owning employer's id.
type CompanyRepository struct {
	store *Store
}

func NewCompanyRepository(store *Store) *CompanyRepository {
	return &CompanyRepository{store: store}
}

func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*domain.Company, error) {
	return findByID[domain.Company](ctx, r.store, collectionCompanies, id, domain.ErrCompanyNotFound)
}

func (r *CompanyRepository) Create(ctx context.Context, c *domain.Company) error {
	return r.store.insert(ctx, collectionCompanies, c, domain.ErrAlreadyExists)
}

func (r *CompanyRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.store.updateByID(ctx, collectionCompanies, id, setFields(fields), domain.ErrCompanyNotFound)
}

// IncrementJobCount adjusts the posted job counter atomically.
func (r *CompanyRepository) IncrementJobCount(ctx context.Context, id string, delta int64) error {
	update := bson.M{
		"$inc": bson.M{"job_count": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	return r.store.updateByID(ctx, collectionCompanies, id, update, domain.ErrCompanyNotFound)
}

func (r *CompanyRepository) EnsureIndexes(ctx context.Context) error {
	return ensureIndexes(ctx, r.store.collection(collectionCompanies), []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
	})
}
