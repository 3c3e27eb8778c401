package mongo

import (
	"context"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hirehub/jobboard/internal/core/domain"
	"github.com/hirehub/jobboard/internal/core/ports"
)

const collectionProfiles = "profiles"

// ProfileRepository implements ports.ProfileRepository.
type ProfileRepository struct {
	store *Store
}

func NewProfileRepository(store *Store) *ProfileRepository {
	return &ProfileRepository{store: store}
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*domain.Profile, error) {
	return findByID[domain.Profile](ctx, r.store, collectionProfiles, id, domain.ErrProfileNotFound)
}

func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	return r.store.insert(ctx, collectionProfiles, p, domain.ErrAlreadyExists)
}

func (r *ProfileRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.store.updateByID(ctx, collectionProfiles, id, setFields(fields), domain.ErrProfileNotFound)
}

// ListEmployers returns employer profiles carrying a company name, newest
// first. Industry and size match exactly. Search is applied by the caller.
func (r *ProfileRepository) ListEmployers(ctx context.Context, filter ports.CompanyFilter) ([]*domain.Profile, error) {
	q := bson.M{
		"role":         domain.RoleEmployer,
		"company_name": bson.M{"$exists": true, "$ne": ""},
	}
	if filter.Industry != "" {
		q["company_industry"] = filter.Industry
	}
	if filter.Size != "" {
		q["company_size"] = filter.Size
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[domain.Profile](ctx, r.store, collectionProfiles, q, opts, "created_at:-1")
}

func (r *ProfileRepository) EnsureIndexes(ctx context.Context) error {
	return ensureIndexes(ctx, r.store.collection(collectionProfiles), []mongo.IndexModel{
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "company_industry", Value: 1}}},
	})
}

// prefixPattern matches values starting with s, ignoring case.
func prefixPattern(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(strings.TrimSpace(s)), Options: "i"}
}
