package mongo

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hirehub/jobboard/internal/core/domain"
)

const collectionAccounts = "accounts"

// AccountRepository stores identity provider credentials.
type AccountRepository struct {
	store *Store
}

func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}
	return findOne[domain.Account](ctx, r.store, collectionAccounts, filter, domain.ErrUserNotFound)
}

func (r *AccountRepository) FindByFederatedSubject(ctx context.Context, subject string) (*domain.Account, error) {
	return findOne[domain.Account](ctx, r.store, collectionAccounts, bson.M{"federated_subject": subject}, domain.ErrUserNotFound)
}

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	return r.store.insert(ctx, collectionAccounts, a, domain.ErrUserExists)
}

func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	return ensureIndexes(ctx, r.store.collection(collectionAccounts), []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "federated_subject", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	})
}
