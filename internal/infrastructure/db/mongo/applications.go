package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hirehub/jobboard/internal/core/domain"
)

const collectionApplications = "job_applications"

// ApplicationRepository implements ports.ApplicationRepository.
type ApplicationRepository struct {
	store *Store
}

func NewApplicationRepository(store *Store) *ApplicationRepository {
	return &ApplicationRepository{store: store}
}

// Create inserts the application. With the unique (job, applicant) index in
// place a second submission fails with domain.ErrAlreadyApplied.
func (r *ApplicationRepository) Create(ctx context.Context, a *domain.Application) error {
	return r.store.insert(ctx, collectionApplications, a, domain.ErrAlreadyApplied)
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*domain.Application, error) {
	return findByID[domain.Application](ctx, r.store, collectionApplications, id, domain.ErrApplicationNotFound)
}

func (r *ApplicationRepository) Exists(ctx context.Context, jobID, applicantID string) (bool, error) {
	if err := r.store.writable(); err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"job_id": jobID, "applicant_id": applicantID}
	n, err := r.store.collection(collectionApplications).CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count applications: %w", err)
	}
	return n > 0, nil
}

func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID string) ([]*domain.Application, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[domain.Application](ctx, r.store, collectionApplications, bson.M{"job_id": jobID}, opts, "created_at:-1")
}

func (r *ApplicationRepository) ListByApplicant(ctx context.Context, applicantID string, limit int) ([]*domain.Application, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	shape := fmt.Sprintf("created_at:-1:%d", limit)
	return findMany[domain.Application](ctx, r.store, collectionApplications, bson.M{"applicant_id": applicantID}, opts, shape)
}

// UpdateStatus sets the status and appends the change to the history in a
// single write.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, change domain.StatusChange) error {
	update := bson.M{
		"$set": bson.M{
			"status":     change.Status,
			"updated_at": change.Timestamp.UTC(),
		},
		"$push": bson.M{"status_history": change},
	}
	return r.store.updateByID(ctx, collectionApplications, id, update, domain.ErrApplicationNotFound)
}

func (r *ApplicationRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.store.updateByID(ctx, collectionApplications, id, setFields(fields), domain.ErrApplicationNotFound)
}

// EnsureIndexes creates the lookup indexes. When unique is set the
// (job, applicant) pair is enforced by the store as well.
func (r *ApplicationRepository) EnsureIndexes(ctx context.Context, unique bool) error {
	return ensureIndexes(ctx, r.store.collection(collectionApplications), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "job_id", Value: 1}, {Key: "applicant_id", Value: 1}},
			Options: options.Index().SetUnique(unique),
		},
		{Keys: bson.D{{Key: "applicant_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "job_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
}
