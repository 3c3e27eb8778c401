package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hirehub/jobboard/internal/core/domain"
	"github.com/hirehub/jobboard/internal/core/ports"
)

const (
	collectionJobs  = "jobs"
	defaultJobLimit = 100
)

// JobRepository implements ports.JobRepository.
type JobRepository struct {
	store *Store
}

func NewJobRepository(store *Store) *JobRepository {
	return &JobRepository{store: store}
}

func (r *JobRepository) Create(ctx context.Context, j *domain.Job) error {
	return r.store.insert(ctx, collectionJobs, j, domain.ErrAlreadyExists)
}

func (r *JobRepository) FindByID(ctx context.Context, id string) (*domain.Job, error) {
	return findByID[domain.Job](ctx, r.store, collectionJobs, id, domain.ErrJobNotFound)
}

// FindByIdempotencyKey retrieves a job the employer already posted with key.
func (r *JobRepository) FindByIdempotencyKey(ctx context.Context, employerID, key string) (*domain.Job, error) {
	filter := bson.M{"employer_id": employerID, "idempotency_key": key}
	return findOne[domain.Job](ctx, r.store, collectionJobs, filter, domain.ErrJobNotFound)
}

// List returns matching jobs, newest first. Search and location match a
// case-insensitive prefix.
func (r *JobRepository) List(ctx context.Context, f ports.JobFilter) ([]*domain.Job, error) {
	q := jobListQuery(f)

	limit := f.Limit
	if limit <= 0 {
		limit = defaultJobLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	return findMany[domain.Job](ctx, r.store, collectionJobs, q, opts, fmt.Sprintf("created_at:-1:%d", limit))
}

// jobListQuery builds the find filter for f. The remote type matches the
// is_remote flag, so a full-time remote posting is listed under it too.
func jobListQuery(f ports.JobFilter) bson.M {
	q := bson.M{}
	if f.EmployerID != "" {
		q["employer_id"] = f.EmployerID
	}
	if f.OpenOnly {
		q["status"] = domain.JobOpen
	}
	switch {
	case f.Type == domain.JobRemote:
		q["is_remote"] = true
	case f.Type != "":
		q["type"] = f.Type
	}
	if f.Search != "" {
		q["title"] = prefixPattern(f.Search)
	}
	if f.Location != "" {
		q["location"] = prefixPattern(f.Location)
	}
	return q
}

func (r *JobRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.store.updateByID(ctx, collectionJobs, id, setFields(fields), domain.ErrJobNotFound)
}

func (r *JobRepository) Delete(ctx context.Context, id string) error {
	return r.store.deleteByID(ctx, collectionJobs, id, domain.ErrJobNotFound)
}

func (r *JobRepository) IncrementViews(ctx context.Context, id string) error {
	return r.store.updateByID(ctx, collectionJobs, id, bson.M{"$inc": bson.M{"views": 1}}, domain.ErrJobNotFound)
}

// AddApplication appends the application id once and bumps the counter in
// the same write.
func (r *JobRepository) AddApplication(ctx context.Context, jobID, applicationID string) error {
	if err := r.store.writable(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	col := r.store.collection(collectionJobs)
	filter := bson.M{"_id": jobID, "application_ids": bson.M{"$ne": applicationID}}
	update := bson.M{
		"$push": bson.M{"application_ids": applicationID},
		"$inc":  bson.M{"application_count": 1},
	}
	res, err := col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("add application to job %s: %w", jobID, err)
	}
	r.store.forget(ctx, collectionJobs, jobID)
	if res.MatchedCount > 0 {
		return nil
	}

	// Either the job is gone or the id is already recorded.
	n, err := col.CountDocuments(ctx, bson.M{"_id": jobID}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("count job %s: %w", jobID, err)
	}
	if n == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

func (r *JobRepository) EnsureIndexes(ctx context.Context) error {
	return ensureIndexes(ctx, r.store.collection(collectionJobs), []mongo.IndexModel{
		{Keys: bson.D{{Key: "employer_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{
			Keys: bson.D{{Key: "employer_id", Value: 1}, {Key: "idempotency_key", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$exists": true}}),
		},
	})
}
