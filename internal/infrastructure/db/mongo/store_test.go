package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/hirehub/jobboard/internal/core/domain"
	"github.com/hirehub/jobboard/internal/core/ports"
)

type memoryCache struct {
	data map[string][]byte
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string][]byte{}} }

func (c *memoryCache) Get(_ context.Context, key string, dest any) error {
	raw, ok := c.data[key]
	if !ok {
		return domain.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func offlineStore(t *testing.T, cache ports.DocumentCache) *Store {
	t.Helper()
	s := NewStore(nil, cache, zerolog.Nop())
	require.NoError(t, s.DisableNetwork(context.Background()))
	require.False(t, s.NetworkEnabled())
	return s
}

// ---------------------------------------------------------------------------
// Offline reads
// ---------------------------------------------------------------------------

func TestStore_Offline_FindByIDServedFromCache(t *testing.T) {
	cache := newMemoryCache()
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, docKey(collectionJobs, "job-1"), &domain.Job{ID: "job-1", Title: "Backend Engineer"}))

	repo := NewJobRepository(offlineStore(t, cache))

	job, err := repo.FindByID(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", job.Title)

	_, err = repo.FindByID(ctx, "job-2")
	assert.ErrorIs(t, err, domain.ErrOffline)
}

func TestStore_Offline_ListServedFromCache(t *testing.T) {
	cache := newMemoryCache()
	ctx := context.Background()
	filter := bson.M{"applicant_id": "seeker-1"}
	cached := []*domain.Application{{ID: "a-1", ApplicantID: "seeker-1"}}
	require.NoError(t, cache.Set(ctx, queryKey(collectionApplications, filter, "created_at:-1:10"), cached))

	repo := NewApplicationRepository(offlineStore(t, cache))

	apps, err := repo.ListByApplicant(ctx, "seeker-1", 10)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "a-1", apps[0].ID)

	_, err = repo.ListByApplicant(ctx, "seeker-1", 20)
	assert.ErrorIs(t, err, domain.ErrOffline, "different shape misses")
}

func TestStore_Offline_NoCache(t *testing.T) {
	repo := NewProfileRepository(offlineStore(t, nil))
	_, err := repo.FindByID(context.Background(), "u-1")
	assert.ErrorIs(t, err, domain.ErrOffline)
}

// ---------------------------------------------------------------------------
// Offline writes
// ---------------------------------------------------------------------------

func TestStore_Offline_WritesRejected(t *testing.T) {
	s := offlineStore(t, newMemoryCache())
	ctx := context.Background()

	assert.ErrorIs(t, NewProfileRepository(s).Create(ctx, &domain.Profile{ID: "u-1"}), domain.ErrOffline)
	assert.ErrorIs(t, NewCompanyRepository(s).IncrementJobCount(ctx, "c-1", 1), domain.ErrOffline)
	assert.ErrorIs(t, NewJobRepository(s).AddApplication(ctx, "job-1", "a-1"), domain.ErrOffline)
	assert.ErrorIs(t, NewJobRepository(s).Delete(ctx, "job-1"), domain.ErrOffline)

	exists, err := NewApplicationRepository(s).Exists(ctx, "job-1", "seeker-1")
	assert.ErrorIs(t, err, domain.ErrOffline)
	assert.False(t, exists)

	_, err = NewAccountRepository(s).FindByEmail(ctx, "ada@example.com")
	assert.ErrorIs(t, err, domain.ErrOffline)

	blobs := NewBlobStore(s, "", "https://api.test/", time.Second)
	assert.ErrorIs(t, blobs.Upload(ctx, "avatars/u-1/x.png", []byte("x"), ports.BlobMetadata{}), domain.ErrOffline)
	assert.ErrorIs(t, blobs.Delete(ctx, "avatars/u-1/x.png"), domain.ErrOffline)
}

func TestStore_NetworkToggle(t *testing.T) {
	s := NewStore(nil, nil, zerolog.Nop())
	assert.True(t, s.NetworkEnabled())
	assert.NoError(t, s.writable())

	require.NoError(t, s.DisableNetwork(context.Background()))
	assert.ErrorIs(t, s.writable(), domain.ErrOffline)

	require.NoError(t, s.EnableNetwork(context.Background()))
	assert.NoError(t, s.writable())
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func TestBlobStore_DownloadURL(t *testing.T) {
	b := NewBlobStore(nil, "", "https://api.test/", 0)
	assert.Equal(t, "https://api.test/files/resumes/u-1/cv.pdf", b.DownloadURL("resumes/u-1/cv.pdf"))
	assert.Equal(t, defaultBucket, b.bucketName)
	assert.Equal(t, defaultTimeout, b.timeout)
}

func TestPrefixPattern_EscapesInput(t *testing.T) {
	p := prefixPattern(" c++ (senior) ")
	assert.Equal(t, `^c\+\+ \(senior\)`, p.Pattern)
	assert.Equal(t, "i", p.Options)
}

func TestClassify(t *testing.T) {
	assert.ErrorIs(t, classify(context.DeadlineExceeded), domain.ErrTransient)

	plain := errors.New("quota exceeded")
	assert.Same(t, plain, classify(plain))
}

func TestSetFields_CopiesInput(t *testing.T) {
	fields := map[string]any{"title": "Go Engineer"}
	update := setFields(fields)
	fields["title"] = "changed"
	assert.Equal(t, bson.M{"$set": bson.M{"title": "Go Engineer"}}, update)
}

func TestJobListQuery(t *testing.T) {
	t.Run("remote matches the flag", func(t *testing.T) {
		q := jobListQuery(ports.JobFilter{Type: domain.JobRemote, OpenOnly: true})
		assert.Equal(t, bson.M{"is_remote": true, "status": domain.JobOpen}, q)
	})

	t.Run("other types match the field", func(t *testing.T) {
		q := jobListQuery(ports.JobFilter{Type: domain.JobContract, EmployerID: "emp-1"})
		assert.Equal(t, bson.M{"type": domain.JobContract, "employer_id": "emp-1"}, q)
	})

	t.Run("empty filter", func(t *testing.T) {
		assert.Empty(t, jobListQuery(ports.JobFilter{}))
	})
}

func TestJobRepository_Offline_RemoteListUsesFlag(t *testing.T) {
	cache := newMemoryCache()
	ctx := context.Background()
	filter := bson.M{"is_remote": true, "status": domain.JobOpen}
	cached := []*domain.Job{{ID: "job-1", Type: domain.JobFullTime, IsRemote: true}}
	require.NoError(t, cache.Set(ctx, queryKey(collectionJobs, filter, "created_at:-1:100"), cached))

	repo := NewJobRepository(offlineStore(t, cache))

	jobs, err := repo.List(ctx, ports.JobFilter{Type: domain.JobRemote, OpenOnly: true})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-1", jobs[0].ID)
}

func TestApplicationRepository_Offline_ReadsJobApplicationsCollection(t *testing.T) {
	cache := newMemoryCache()
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "doc:job_applications:a-1", &domain.Application{ID: "a-1", JobID: "job-1"}))

	app, err := NewApplicationRepository(offlineStore(t, cache)).FindByID(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", app.JobID)
}
